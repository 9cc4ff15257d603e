package httpapi

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"jobboard-engine/internal/store"
)

type JobsHandler struct {
	Jobs JobReader
}

// List serves GET /jobs?keyword=&limit=. An empty result is a 404.
func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.ListJobsOpts{Keyword: strings.TrimSpace(q.Get("keyword"))}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		opts.Limit = n
	}

	jobs, err := h.Jobs.List(r.Context(), opts)
	if err != nil {
		log.Printf("level=error msg=\"list jobs\" request_id=%s err=%v", RequestIDFrom(r.Context()), err)
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "failed to list jobs")
		return
	}
	if len(jobs) == 0 {
		WriteError(w, r, http.StatusNotFound, "not_found", "No jobs found")
		return
	}

	out := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toView(j))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"jobs": out, "count": len(out)})
}

func (h JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "id must be a UUID")
		return
	}

	job, err := h.Jobs.Get(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, "not_found", "job not found")
		return
	case err != nil:
		log.Printf("level=error msg=\"get job\" request_id=%s id=%s err=%v", RequestIDFrom(r.Context()), id, err)
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "failed to load job")
		return
	}
	WriteJSON(w, http.StatusOK, toDetailView(job))
}
