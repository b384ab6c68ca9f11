package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

// writeError maps core errors onto responses. Anything that would reveal
// whether an event exists, has voting configured or is open answers 404.
func writeError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid input", Fields: verr.Fields})
	case errors.Is(err, domain.ErrVotingUnavailable),
		errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrSettingsNotFound),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrInvalidAccessToken):
		notFound(w)
	default:
		slog.ErrorContext(r.Context(), failure, "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: failure})
	}
}
