package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ericfisherdev/shortest/internal/application"
	"github.com/ericfisherdev/shortest/internal/domain/model"
	"github.com/ericfisherdev/shortest/internal/domain/port/driven"
)

// SetToken stores a provider access token and activates it for subsequent requests.
func (h *Handler) SetToken(w http.ResponseWriter, r *http.Request) {
	if h.credentialSvc == nil {
		writeError(w, http.StatusServiceUnavailable, "credential storage unavailable")
		return
	}

	var req SetTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	provider := model.Provider(r.PathValue("provider"))
	if err := h.credentialSvc.SaveToken(r.Context(), provider, req.Token); err != nil {
		h.writeCredentialError(w, provider, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearToken removes a stored provider token, reverting to the environment token.
func (h *Handler) ClearToken(w http.ResponseWriter, r *http.Request) {
	if h.credentialSvc == nil {
		writeError(w, http.StatusServiceUnavailable, "credential storage unavailable")
		return
	}

	provider := model.Provider(r.PathValue("provider"))
	if err := h.credentialSvc.ClearToken(r.Context(), provider); err != nil {
		h.writeCredentialError(w, provider, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeCredentialError(w http.ResponseWriter, provider model.Provider, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidProvider):
		writeError(w, http.StatusBadRequest, "invalid provider: expected github or gitlab")
	case errors.Is(err, application.ErrEmptyToken):
		writeError(w, http.StatusBadRequest, "token is required")
	case errors.Is(err, driven.ErrEncryptionKeyNotSet):
		writeError(w, http.StatusServiceUnavailable, "credential storage requires SHORTEST_SECRET_KEY")
	default:
		h.logger.Error("failed to update credential", "provider", provider, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
