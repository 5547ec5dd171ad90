package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

type messageResponse struct {
	Message string `json:"message"`
}

// writeJSON writes JSON response with status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps a service error onto a status code and client message.
// A request that ran past its deadline is a 504; anything else unrecognised
// is logged and reported as a bare 500.
func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrDuplicateUser):
		writeMessage(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, common.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, common.ErrorUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, common.ErrValidation):
		writeMessage(w, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(r.Context().Err(), context.DeadlineExceeded):
		rt.logger.Warn(r.Context(), "request timed out", "error", err, "path", r.URL.Path)
		writeMessage(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		rt.logger.Error(r.Context(), "request failed", "error", err, "path", r.URL.Path)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// validationMessage strips the sentinel prefix, leaving the field detail.
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), common.ErrValidation.Error()+": ")
	if msg == "" || msg == common.ErrValidation.Error() {
		return "Validation error"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", common.ErrValidation)
	}
	return nil
}
