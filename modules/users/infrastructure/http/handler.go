// Package http provides HTTP handlers for the users module.
// Handlers translate HTTP requests into commands/queries and format responses.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rai/user-records-go/modules/users/application/commands"
	"github.com/rai/user-records-go/modules/users/application/queries"
	"github.com/rai/user-records-go/modules/users/domain"
)

const messageInvalidBody = "Invalid request body"

// Service is the users API the handler drives.
type Service interface {
	CreateUser(ctx context.Context, req commands.CreateUserCommand) (*queries.UserDTO, error)
	GetUser(ctx context.Context, userID string) (*queries.UserDTO, error)
	UpdateUser(ctx context.Context, req commands.UpdateUserCommand) (*queries.UserDTO, error)
	DeleteUser(ctx context.Context, userID string) error
}

// Handler handles HTTP requests for the users module.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the users routes under /users. Any other method on
// those paths is answered with a method_not_allowed error.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.MethodNotAllowed(h.handleMethodNotAllowed)

		r.Post("/", h.handleCreateUser)
		r.Get("/{userId}", h.handleGetUser)
		r.Put("/{userId}", h.handleUpdateUser)
		r.Delete("/{userId}", h.handleDeleteUser)
	})
}

type deleteUserResponse struct {
	UserID string `json:"userId"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req commands.CreateUserCommand
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req commands.UpdateUserCommand
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	// The path identifies the user; a userId in the body is ignored.
	req.UserID = chi.URLParam(r, "userId")

	user, err := h.service.UpdateUser(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteUserResponse{UserID: userID})
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, domain.MethodNotAllowed("Method "+r.Method+" is not allowed"))
}

// decodeBody reads a JSON object into dst. An empty body decodes as {} so
// that the request reaches validation and reports the missing fields.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return domain.InvalidRequest(messageInvalidBody, domain.Issue{
		Path:    "body",
		Code:    "invalid_json",
		Message: err.Error(),
	})
}
