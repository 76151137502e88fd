package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/certifica/internal/auth"
	"github.com/abhisek/certifica/internal/exam"
	"github.com/abhisek/certifica/internal/payment"
	"github.com/abhisek/certifica/internal/store"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type errResp struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}

// statusFor maps a domain error to an HTTP status. Zero means the error is
// unexpected.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, exam.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateEmail),
		errors.Is(err, store.ErrDuplicateTitle),
		errors.Is(err, store.ErrInUse),
		errors.Is(err, exam.ErrNotInProgress),
		errors.Is(err, exam.ErrNotPassed),
		errors.Is(err, exam.ErrNotFailed),
		errors.Is(err, exam.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, store.ErrInsufficientCredits):
		return http.StatusPaymentRequired
	case errors.Is(err, exam.ErrIncomplete),
		errors.Is(err, exam.ErrUnknownQuestion),
		errors.Is(err, exam.ErrInvalidOption),
		errors.Is(err, auth.ErrTermsNotAccepted),
		errors.Is(err, auth.ErrMissingFields),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrUnknownPlan),
		errors.Is(err, payment.ErrMissingID):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, payment.ErrBadSignature):
		return http.StatusUnauthorized
	}
	return 0
}

// fail writes err with its mapped status. Unexpected errors are logged and
// reported as 500 without detail.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == 0 {
		h.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	resp := errResp{Error: err.Error()}
	if errors.Is(err, store.ErrDuplicateEmail) {
		resp.Redirect = "/login"
	}
	writeJSON(w, status, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n <= 0 {
		writeErr(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return n, true
}

// claims returns the authenticated caller. Routes using it run behind
// auth.Middleware.
func claims(r *http.Request) *auth.Claims {
	c, _ := auth.FromContext(r.Context())
	return c
}
