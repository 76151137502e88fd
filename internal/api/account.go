package api

import (
	"net/http"

	"github.com/abhisek/certifica/internal/auth"
	"github.com/abhisek/certifica/internal/store"
)

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string     `json:"token"`
	User  store.User `json:"user"`
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := h.Auth.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	token, err := h.Auth.Issue(u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, loginResp{Token: token, User: u})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var in loginReq
	if !decodeJSON(w, r, &in) {
		return
	}
	token, u, err := h.Auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Token: token, User: u})
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Store.Users().Get(r.Context(), claims(r).UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) myCredits(w http.ResponseWriter, r *http.Request) {
	u, err := h.Store.Users().Get(r.Context(), claims(r).UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"credits": u.Credits})
}

func (h *handler) myCertificates(w http.ResponseWriter, r *http.Request) {
	certs, err := h.Store.Certificates().ListByUser(r.Context(), claims(r).UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(certs))
}

func (h *handler) myAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.Store.Attempts().ListByUser(r.Context(), claims(r).UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(attempts))
}

func (h *handler) myPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.Store.Purchases().ListByUser(r.Context(), claims(r).UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(purchases))
}

// nonNil makes empty lists encode as [] instead of null.
func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
