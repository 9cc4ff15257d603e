package httpapi

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"jobboard-engine/internal/secrets"
)

type SecretsHandler struct{}

type setSecretReq struct {
	Value string `json:"value"`
}

// List reports which accounts resolve to a value, never the values.
func (h SecretsHandler) List(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]bool, len(secrets.Accounts()))
	for _, acct := range secrets.Accounts() {
		out[acct] = secrets.Lookup(acct, secrets.EnvKey(acct)) != ""
	}
	WriteJSON(w, http.StatusOK, out)
}

func (h SecretsHandler) Set(w http.ResponseWriter, r *http.Request) {
	acct := chi.URLParam(r, "account")
	if !slices.Contains(secrets.Accounts(), acct) {
		WriteError(w, r, http.StatusNotFound, "unknown_account", "unknown secret account")
		return
	}

	var req setSecretReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		WriteError(w, r, http.StatusBadRequest, "empty_value", "value is required")
		return
	}
	if err := secrets.Set(acct, req.Value); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_error", "failed to store secret: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	acct := chi.URLParam(r, "account")
	if !slices.Contains(secrets.Accounts(), acct) {
		WriteError(w, r, http.StatusNotFound, "unknown_account", "unknown secret account")
		return
	}
	if err := secrets.Delete(acct); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_error", "failed to delete secret: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
