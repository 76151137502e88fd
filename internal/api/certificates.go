package api

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/certifica/internal/certificate"
)

// verifyResp is the public view of a certificate. It omits contact and
// document data.
type verifyResp struct {
	Valid         bool      `json:"valid"`
	Code          string    `json:"code"`
	LearnerName   string    `json:"learnerName"`
	CourseTitle   string    `json:"courseTitle"`
	DurationHours int       `json:"durationHours"`
	IssuedAt      time.Time `json:"issuedAt"`
}

func (h *handler) printCertificate(w http.ResponseWriter, r *http.Request) {
	d, err := h.Store.Certificates().Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := certificate.Render(&buf, certificate.FromDetail(&d)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *handler) verifyCertificate(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	if !certificate.ValidCode(code) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"valid": false, "error": "malformed code"})
		return
	}
	d, err := h.Store.Certificates().ByCode(r.Context(), code)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v := certificate.FromDetail(&d).WithDefaults()
	writeJSON(w, http.StatusOK, verifyResp{
		Valid:         true,
		Code:          v.Code,
		LearnerName:   v.LearnerName,
		CourseTitle:   v.CourseTitle,
		DurationHours: v.DurationHours,
		IssuedAt:      v.IssuedAt,
	})
}
