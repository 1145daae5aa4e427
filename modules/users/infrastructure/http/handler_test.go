package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rai/user-records-go/modules/users/application/commands"
	"github.com/rai/user-records-go/modules/users/application/queries"
	"github.com/rai/user-records-go/modules/users/domain"
)

const testUserID = "7b1f3c2e-9a4d-4c1e-8f3b-2d6e5a9c0b11"

type fakeService struct {
	createFn func(ctx context.Context, req commands.CreateUserCommand) (*queries.UserDTO, error)
	getFn    func(ctx context.Context, userID string) (*queries.UserDTO, error)
	updateFn func(ctx context.Context, req commands.UpdateUserCommand) (*queries.UserDTO, error)
	deleteFn func(ctx context.Context, userID string) error
}

func (f *fakeService) CreateUser(ctx context.Context, req commands.CreateUserCommand) (*queries.UserDTO, error) {
	return f.createFn(ctx, req)
}

func (f *fakeService) GetUser(ctx context.Context, userID string) (*queries.UserDTO, error) {
	return f.getFn(ctx, userID)
}

func (f *fakeService) UpdateUser(ctx context.Context, req commands.UpdateUserCommand) (*queries.UserDTO, error) {
	return f.updateFn(ctx, req)
}

func (f *fakeService) DeleteUser(ctx context.Context, userID string) error {
	return f.deleteFn(ctx, userID)
}

func newTestRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func sampleUser() *queries.UserDTO {
	return &queries.UserDTO{
		UserID:    testUserID,
		FirstName: "John",
		LastName:  "Doe",
		DOB:       "1990-01-01",
		Emails:    []string{"a@example.com"},
		UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestHandler_CreateUser(t *testing.T) {
	var got commands.CreateUserCommand
	svc := &fakeService{
		createFn: func(_ context.Context, req commands.CreateUserCommand) (*queries.UserDTO, error) {
			got = req
			return sampleUser(), nil
		},
	}

	rec := do(t, newTestRouter(svc), http.MethodPost, "/users",
		`{"firstName":"John","lastName":"Doe","dob":"1990-01-01","emails":["a@example.com"]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, commands.CreateUserCommand{
		FirstName: "John",
		LastName:  "Doe",
		DOB:       "1990-01-01",
		Emails:    []string{"a@example.com"},
	}, got)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, testUserID, body["userId"])
	assert.Equal(t, []any{"a@example.com"}, body["emails"])
	assert.Equal(t, "2024-01-02T03:04:05Z", body["updatedAt"])
}

func TestHandler_CreateUser_EmptyBodyReachesValidation(t *testing.T) {
	called := false
	svc := &fakeService{
		createFn: func(_ context.Context, req commands.CreateUserCommand) (*queries.UserDTO, error) {
			called = true
			assert.Equal(t, commands.CreateUserCommand{}, req)
			return nil, domain.InvalidRequest("Invalid user data", domain.Issue{Path: "firstName", Code: "required", Message: "First name is required"})
		},
	}

	rec := do(t, newTestRouter(svc), http.MethodPost, "/users", "")

	assert.True(t, called)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_CreateUser_MalformedBody(t *testing.T) {
	svc := &fakeService{
		createFn: func(context.Context, commands.CreateUserCommand) (*queries.UserDTO, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	rec := do(t, newTestRouter(svc), http.MethodPost, "/users", `{"firstName":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorResponse](t, rec)
	assert.Equal(t, "Invalid request body", body.Error)
	assert.Equal(t, domain.KindInvalidRequest, body.Kind)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "body", body.Details[0].Path)
}

func TestHandler_GetUser(t *testing.T) {
	svc := &fakeService{
		getFn: func(_ context.Context, userID string) (*queries.UserDTO, error) {
			assert.Equal(t, testUserID, userID)
			return sampleUser(), nil
		},
	}

	rec := do(t, newTestRouter(svc), http.MethodGet, "/users/"+testUserID, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "John", decode[queries.UserDTO](t, rec).FirstName)
}

func TestHandler_UpdateUser_PathIDWins(t *testing.T) {
	var got commands.UpdateUserCommand
	svc := &fakeService{
		updateFn: func(_ context.Context, req commands.UpdateUserCommand) (*queries.UserDTO, error) {
			got = req
			return sampleUser(), nil
		},
	}

	rec := do(t, newTestRouter(svc), http.MethodPut, "/users/"+testUserID,
		`{"userId":"someone-else","firstName":"John","lastName":"Doe","dob":"1990-01-01","emails":["a@example.com","b@example.com"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testUserID, got.UserID)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, got.Emails)
}

func TestHandler_DeleteUser(t *testing.T) {
	svc := &fakeService{
		deleteFn: func(_ context.Context, userID string) error {
			assert.Equal(t, testUserID, userID)
			return nil
		},
	}

	rec := do(t, newTestRouter(svc), http.MethodDelete, "/users/"+testUserID, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"userId": testUserID}, decode[map[string]any](t, rec))
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(&fakeService{})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/users"},
		{http.MethodDelete, "/users"},
		{http.MethodPost, "/users/" + testUserID},
		{http.MethodPatch, "/users/" + testUserID},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, "")

			require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			body := decode[errorResponse](t, rec)
			assert.Equal(t, domain.KindMethodNotAllowed, body.Kind)
			assert.Equal(t, "Method "+tt.method+" is not allowed", body.Error)
		})
	}
}

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   errorResponse
	}{
		{
			name:       "invalid request with issues",
			err:        domain.InvalidRequest("Invalid user id", domain.Issue{Path: "userId", Code: "uuid", Message: "User id must be a valid UUID"}),
			wantStatus: http.StatusBadRequest,
			wantBody: errorResponse{
				Error:   "Invalid user id",
				Kind:    domain.KindInvalidRequest,
				Details: []domain.Issue{{Path: "userId", Code: "uuid", Message: "User id must be a valid UUID"}},
			},
		},
		{
			name:       "user not found",
			err:        domain.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   errorResponse{Error: "User not found", Kind: domain.KindUserNotFound},
		},
		{
			name:       "operation failed hides the message",
			err:        domain.OperationFailed("Could not retrieve user"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   errorResponse{Error: "Error encountered", Kind: domain.KindOperationFailed},
		},
		{
			name:       "unclassified error",
			err:        errors.New("connection reset by peer"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   errorResponse{Error: "Error encountered", Kind: domain.KindOperationFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{
				getFn: func(context.Context, string) (*queries.UserDTO, error) {
					return nil, tt.err
				},
			}

			rec := do(t, newTestRouter(svc), http.MethodGet, "/users/"+testUserID, "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, decode[errorResponse](t, rec))
		})
	}
}

func TestHandler_ServerErrorBodyIsExact(t *testing.T) {
	svc := &fakeService{
		deleteFn: func(context.Context, string) error {
			return domain.OperationFailed("Could not delete user")
		},
	}

	rec := do(t, newTestRouter(svc), http.MethodDelete, "/users/"+testUserID, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error encountered","kind":"operation_failed"}`, rec.Body.String())
}
