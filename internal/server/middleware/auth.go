// Package middleware provides HTTP middleware for authentication and authorization.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/talenttrek/internal/types"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// userKey is the context key for storing the authenticated user.
const userKey ContextKey = "user"

// Messages written by the middleware.
const (
	MsgNoToken      = "Access denied. No token provided."
	MsgInvalidToken = "Invalid token."
	MsgUserNotFound = "Invalid token. User not found."
)

// TokenValidator is an interface for validating JWT tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (UserIDGetter, error)
}

// UserIDGetter is an interface for extracting user ID from token claims.
type UserIDGetter interface {
	GetUserID() uuid.UUID
}

// UserLoader resolves the account a token was issued to. It returns nil, nil when the
// account no longer exists.
type UserLoader interface {
	LoadUser(ctx context.Context, id uuid.UUID) (*types.User, error)
}

// AuthMiddleware creates middleware that validates bearer tokens, loads the account they
// belong to and adds it to the request context.
func AuthMiddleware(tokens TokenValidator, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, http.StatusUnauthorized, MsgNoToken)
				return
			}

			// Handle case-insensitive "Bearer" prefix
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				WriteError(w, http.StatusUnauthorized, MsgInvalidToken)
				return
			}

			claims, err := tokens.ValidateToken(parts[1])
			if err != nil {
				WriteError(w, http.StatusUnauthorized, MsgInvalidToken)
				return
			}

			user, err := users.LoadUser(r.Context(), claims.GetUserID())
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "Server error")
				return
			}
			if user == nil {
				WriteError(w, http.StatusUnauthorized, MsgUserNotFound)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireRole rejects authenticated users whose role is not in roles with 403 and message.
// It must run after AuthMiddleware.
func RequireRole(message string, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := GetUser(r)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, MsgNoToken)
				return
			}
			if !slices.Contains(roles, user.Role) {
				WriteError(w, http.StatusForbidden, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *types.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser extracts the authenticated user from the request context.
func GetUser(r *http.Request) (*types.User, error) {
	user, ok := r.Context().Value(userKey).(*types.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in request context")
	}
	return user, nil
}

// GetUserID extracts the authenticated user ID from the request context.
func GetUserID(r *http.Request) (uuid.UUID, error) {
	user, err := GetUser(r)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// WriteError writes the {"success": false, "message": ...} envelope.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
