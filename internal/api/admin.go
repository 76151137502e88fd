package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/certifica/internal/catalog"
	"github.com/abhisek/certifica/internal/store"
)

// adminCertificateLimit caps the admin certificate listing.
const adminCertificateLimit = 500

type creditsReq struct {
	Delta int `json:"delta"`
}

type courseReq struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	PriceCents    int      `json:"priceCents"`
	DurationHours int      `json:"durationHours"`
	Modules       []string `json:"modules"`
}

func (h *handler) adminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.Users().List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(users))
}

func (h *handler) adminAdjustCredits(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	var in creditsReq
	if !decodeJSON(w, r, &in) {
		return
	}
	balance, err := h.Store.Users().AdjustCredits(r.Context(), id, in.Delta)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.Logger.Info("credits adjusted by admin",
		"admin", claims(r).UserID, "user", id, "delta", in.Delta, "balance", balance)
	writeJSON(w, http.StatusOK, map[string]int{"credits": balance})
}

func (h *handler) adminCertificates(w http.ResponseWriter, r *http.Request) {
	certs, err := h.Store.Certificates().List(r.Context(), adminCertificateLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(certs))
}

func (h *handler) adminDeleteCertificate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.Certificates().Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.Logger.Info("certificate deleted by admin", "admin", claims(r).UserID, "certificate", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) adminCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Store.Courses().Summaries(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(courses))
}

func (h *handler) adminCreateCourse(w http.ResponseWriter, r *http.Request) {
	var in courseReq
	if !decodeJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		writeErr(w, http.StatusBadRequest, "title is required")
		return
	}
	if in.PriceCents < 0 || in.DurationHours < 0 {
		writeErr(w, http.StatusBadRequest, "price and duration must not be negative")
		return
	}
	nc := catalog.Custom(store.NewCourse{
		Title:         in.Title,
		Description:   in.Description,
		PriceCents:    in.PriceCents,
		DurationHours: in.DurationHours,
		Modules:       in.Modules,
	})
	c, err := h.Store.Courses().Create(r.Context(), nc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.Logger.Info("course created by admin", "admin", claims(r).UserID, "course", c.ID, "title", c.Title)
	writeJSON(w, http.StatusCreated, c)
}

func (h *handler) adminDeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.Store.Courses().Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.Logger.Info("course deleted by admin", "admin", claims(r).UserID, "course", id)
	w.WriteHeader(http.StatusNoContent)
}
