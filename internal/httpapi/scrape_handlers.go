package httpapi

import (
	"context"
	"errors"
	"net/http"

	"jobboard-engine/internal/poll"
	"jobboard-engine/internal/runlock"
)

type ScrapeHandler struct {
	Runs       RunController
	RunContext context.Context
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Runs.Status())
}

// Run starts an ingestion run in the background. It answers 409 when a run
// is already in flight.
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := h.RunContext
	if ctx == nil {
		ctx = context.WithoutCancel(r.Context())
	}

	err := h.Runs.TriggerAsync(ctx)
	switch {
	case errors.Is(err, poll.ErrAlreadyRunning), errors.Is(err, runlock.ErrLocked):
		WriteError(w, r, http.StatusConflict, "already_running", "an ingestion run is already in progress")
		return
	case err != nil:
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
