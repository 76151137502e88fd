package api

import (
	"io"
	"net/http"

	"github.com/abhisek/certifica/internal/payment"
)

type webhookResp struct {
	Received bool `json:"received"`
	payment.Result
}

// paymentWebhook credits the customer of a paid billing. Anything other
// than a bad signature, a malformed body or a storage failure answers 200
// so the provider stops retrying.
func (h *handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if err := payment.VerifySignature(h.WebhookSecret, body, r.Header.Get(payment.SignatureHeader)); err != nil {
		h.Logger.Warn("webhook signature rejected", "remote", r.RemoteAddr)
		h.fail(w, r, err)
		return
	}
	e, err := payment.ParseEvent(body)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.Payments.Handle(r.Context(), e)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, webhookResp{Received: true, Result: res})
}
