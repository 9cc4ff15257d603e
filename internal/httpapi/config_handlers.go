package httpapi

import (
	"net/http"
	"path/filepath"

	"jobboard-engine/internal/config"
)

// ConfigHandler exposes the config the server is running with. It never
// echoes the config itself since the store DSN may carry a password.
type ConfigHandler struct {
	Config config.Config
	Path   string
}

func (h ConfigHandler) ConfigPath(w http.ResponseWriter, r *http.Request) {
	abs := h.Path
	if abs != "" {
		if p, err := filepath.Abs(h.Path); err == nil {
			abs = p
		}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"path": abs})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	_, vr := config.NormalizeAndValidate(h.Config)
	if vr.Errors == nil {
		vr.Errors = []string{}
	}
	if vr.Warnings == nil {
		vr.Warnings = []string{}
	}
	WriteJSON(w, http.StatusOK, vr)
}
