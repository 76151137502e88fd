package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type answerReq struct {
	Option *int `json:"option"`
}

func (h *handler) startAttempt(w http.ResponseWriter, r *http.Request) {
	courseID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	snap, err := h.Exams.Start(r.Context(), claims(r).UserID, courseID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *handler) getAttempt(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Exams.Get(chi.URLParam(r, "id"), claims(r).UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *handler) answer(w http.ResponseWriter, r *http.Request) {
	qid, ok := intParam(w, r, "qid")
	if !ok {
		return
	}
	var in answerReq
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Option == nil {
		writeErr(w, http.StatusBadRequest, "option is required")
		return
	}
	snap, err := h.Exams.SelectAnswer(chi.URLParam(r, "id"), claims(r).UserID, qid, *in.Option)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *handler) submit(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Exams.Submit(chi.URLParam(r, "id"), claims(r).UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *handler) retry(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Exams.Retry(r.Context(), chi.URLParam(r, "id"), claims(r).UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *handler) abandonAttempt(w http.ResponseWriter, r *http.Request) {
	if err := h.Exams.Abandon(chi.URLParam(r, "id"), claims(r).UserID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requestCertificate spends a credit on a passed attempt. A refusal for
// lack of credits answers 402 with the redirect to the offer page.
func (h *handler) requestCertificate(w http.ResponseWriter, r *http.Request) {
	res, err := h.Exams.RequestCertificate(r.Context(), chi.URLParam(r, "id"), claims(r).UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusPaymentRequired
	}
	writeJSON(w, status, res)
}
