package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talenttrek/internal/types"
)

// testTokenValidator is a test implementation of TokenValidator for unit tests.
type testTokenValidator struct {
	validTokens map[string]uuid.UUID
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{
		validTokens: make(map[string]uuid.UUID),
	}
}

func (v *testTokenValidator) addValidToken(token string, userID uuid.UUID) {
	v.validTokens[token] = userID
}

func (v *testTokenValidator) ValidateToken(tokenString string) (UserIDGetter, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}
	userID, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return &testClaims{userID: userID}, nil
}

type testClaims struct {
	userID uuid.UUID
}

func (c *testClaims) GetUserID() uuid.UUID {
	return c.userID
}

type testUsers struct {
	users map[uuid.UUID]*types.User
	err   error
}

func (u *testUsers) LoadUser(_ context.Context, id uuid.UUID) (*types.User, error) {
	if u.err != nil {
		return nil, u.err
	}
	return u.users[id], nil
}

func setup(t *testing.T, role string) (*testTokenValidator, *testUsers, *types.User, string) {
	t.Helper()
	user := &types.User{ID: uuid.New(), Name: "Asha", Email: "asha@example.com", Role: role}
	tokens := newTestTokenValidator()
	token := "valid-test-token-" + user.ID.String()
	tokens.addValidToken(token, user.ID)
	return tokens, &testUsers{users: map[uuid.UUID]*types.User{user.ID: user}}, user, token
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Message
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens, users, user, token := setup(t, types.RoleJobSeeker)

	handlerCalled := false
	var contextUser *types.User
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		got, err := GetUser(r)
		require.NoError(t, err)
		contextUser = got
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	AuthMiddleware(tokens, users)(handler).ServeHTTP(w, req)

	assert.True(t, handlerCalled, "handler should be called")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user, contextUser)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	tokens, users, _, _ := setup(t, types.RoleJobSeeker)

	handlerCalled := false
	handler := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		handlerCalled = true
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	AuthMiddleware(tokens, users)(handler).ServeHTTP(w, req)

	assert.False(t, handlerCalled, "handler should not be called")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, MsgNoToken, decodeMessage(t, w))
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	tokens, users, _, token := setup(t, types.RoleJobSeeker)

	tests := []struct {
		name       string
		authHeader string
		allowed    bool
	}{
		{name: "missing Bearer prefix", authHeader: token},
		{name: "empty token", authHeader: "Bearer "},
		{name: "only Bearer", authHeader: "Bearer"},
		{name: "unknown token", authHeader: "Bearer not.a.valid.jwt"},
		{name: "three parts", authHeader: "Bearer " + token + " extra"},
		{name: "multiple spaces", authHeader: "Bearer  " + token, allowed: true},
		{name: "lowercase bearer", authHeader: "bearer " + token, allowed: true},
		{name: "mixed case bearer", authHeader: "BeArEr " + token, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", tt.authHeader)
			w := httptest.NewRecorder()

			AuthMiddleware(tokens, users)(handler).ServeHTTP(w, req)

			assert.Equal(t, tt.allowed, handlerCalled)
			if tt.allowed {
				assert.Equal(t, http.StatusOK, w.Code)
				return
			}
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, MsgInvalidToken, decodeMessage(t, w))
		})
	}
}

func TestAuthMiddleware_DeletedUser(t *testing.T) {
	tokens, _, _, token := setup(t, types.RoleJobSeeker)
	users := &testUsers{users: map[uuid.UUID]*types.User{}}

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	AuthMiddleware(tokens, users)(http.NotFoundHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, MsgUserNotFound, decodeMessage(t, w))
}

func TestAuthMiddleware_LoaderError(t *testing.T) {
	tokens, _, _, token := setup(t, types.RoleJobSeeker)
	users := &testUsers{err: errors.New("db down")}

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	AuthMiddleware(tokens, users)(http.NotFoundHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		role     string
		expected int
	}{
		{types.RoleRecruiter, http.StatusOK},
		{types.RoleEmployer, http.StatusOK},
		{types.RoleJobSeeker, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			handler := RequireRole("Access denied. Recruiters only.", types.RoleRecruiter, types.RoleEmployer)(
				http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusOK)
				}))

			user := &types.User{ID: uuid.New(), Role: tt.role}
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req = req.WithContext(WithUser(req.Context(), user))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expected, w.Code)
			if tt.expected == http.StatusForbidden {
				assert.Equal(t, "Access denied. Recruiters only.", decodeMessage(t, w))
			}
		})
	}
}

func TestRequireRole_NoUser(t *testing.T) {
	handler := RequireRole("nope", types.RoleRecruiter)(http.NotFoundHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetUserID_Success(t *testing.T) {
	user := &types.User{ID: uuid.New()}

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(WithUser(req.Context(), user))

	extractedUserID, err := GetUserID(req)
	require.NoError(t, err)
	assert.Equal(t, user.ID, extractedUserID)
}

func TestGetUserID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	userID, err := GetUserID(req)
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, userID)
	assert.Contains(t, err.Error(), "user not found")
}

func TestGetUser_InvalidType(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(context.WithValue(req.Context(), userKey, "not-a-user"))

	user, err := GetUser(req)
	assert.Error(t, err)
	assert.Nil(t, user)
}
