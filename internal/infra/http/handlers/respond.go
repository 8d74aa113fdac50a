package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/gogo-imperial/gogo-web/internal/usecase"
)

type errorResponse struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Details map[string][]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeUsecaseError maps use case failures onto HTTP statuses. Technical
// errors are logged and reported without their cause.
func writeUsecaseError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status := http.StatusBadRequest
		switch de.Code {
		case usecase.CodeNotFound:
			status = http.StatusNotFound
		case usecase.CodeConflict:
			status = http.StatusConflict
		case usecase.CodeUnauthorized:
			status = http.StatusUnauthorized
		case usecase.CodeLoginDisabled:
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, errorResponse{Error: de.Message, Details: de.Details})
		return
	}

	logger.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// decodeJSON rejects unknown content and bodies over 1 MiB.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}
