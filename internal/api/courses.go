package api

import (
	"net/http"

	"github.com/abhisek/certifica/internal/payment"
	"github.com/abhisek/certifica/internal/store"
)

func (h *handler) listCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Store.Courses().List(r.Context(), true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(courses))
}

func (h *handler) getCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.Store.Courses().Get(r.Context(), id)
	if err == nil && !c.Published {
		err = store.ErrNotFound
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type planResp struct {
	payment.Plan
	Price string `json:"price"`
}

func (h *handler) listPlans(w http.ResponseWriter, r *http.Request) {
	plans := payment.Plans()
	out := make([]planResp, len(plans))
	for i, p := range plans {
		out[i] = planResp{Plan: p, Price: p.Price()}
	}
	writeJSON(w, http.StatusOK, out)
}
