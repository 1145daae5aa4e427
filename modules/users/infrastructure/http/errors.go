package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rai/user-records-go/modules/users/domain"
)

// messageInternal is the only message a 500 response ever carries.
const messageInternal = "Error encountered"

type errorResponse struct {
	Error   string         `json:"error"`
	Kind    domain.Kind    `json:"kind"`
	Details []domain.Issue `json:"details,omitempty"`
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidRequest:
		return http.StatusBadRequest
	case domain.KindUserNotFound:
		return http.StatusNotFound
	case domain.KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// toErrorResponse maps err to its status and body. Anything that is not a
// client-facing domain error collapses to the generic 500 body.
func toErrorResponse(err error) (int, errorResponse) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		return http.StatusInternalServerError, errorResponse{Error: messageInternal, Kind: domain.KindOperationFailed}
	}

	status := statusFor(derr.Kind)
	if status == http.StatusInternalServerError {
		return status, errorResponse{Error: messageInternal, Kind: domain.KindOperationFailed}
	}
	return status, errorResponse{Error: derr.Error(), Kind: derr.Kind, Details: derr.Issues}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := toErrorResponse(err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
