package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/Nayab-Gohar-95/llm-saas-backend/internal/errors"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeError maps a domain error to its HTTP status. Unknown errors are
// logged and reported as a generic 500 so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	status, message := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		message = "internal server error"
	}
	writeJSONError(w, status, message)
}

func statusForError(err error) (int, string) {
	switch {
	case apperrors.Is(err, apperrors.ErrMalformedToken),
		apperrors.Is(err, apperrors.ErrBadSignature),
		apperrors.Is(err, apperrors.ErrTokenExpired),
		apperrors.Is(err, apperrors.ErrInvalidCredentials),
		apperrors.Is(err, apperrors.ErrRevokedOrDeleted),
		apperrors.Is(err, apperrors.ErrStaleCredential):
		return http.StatusUnauthorized, err.Error()
	case apperrors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case apperrors.Is(err, apperrors.ErrTenantNotFound),
		apperrors.Is(err, apperrors.ErrUserNotFound),
		apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case apperrors.Is(err, apperrors.ErrDuplicateTenant),
		apperrors.Is(err, apperrors.ErrDuplicateEmail):
		return http.StatusConflict, err.Error()
	case apperrors.Is(err, apperrors.ErrProviderUnavailable),
		apperrors.Is(err, apperrors.ErrProviderTimeout),
		apperrors.Is(err, apperrors.ErrGenerationFailed),
		apperrors.Is(err, apperrors.ErrStreamInterrupted):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
