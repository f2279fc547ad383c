package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/talenttrek/internal/server/middleware"
	"github.com/jonathan/talenttrek/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	responder
	userService *UserService
	jwtService  *JWTService
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService, rs responder) *AuthHandler {
	return &AuthHandler{
		responder:   rs,
		userService: userService,
		jwtService:  jwtService,
	}
}

// Signup handles account creation and returns a token for the new account.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req types.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err, msgServerError)
		return
	}
	req.Email = normalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		h.fail(w, r, validationError(err), msgServerError)
		return
	}

	user, err := h.userService.Signup(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err, msgServerError)
		return
	}
	h.issue(w, r, user)
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err, msgServerError)
		return
	}
	req.Email = normalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		// Malformed credentials are reported like wrong ones.
		h.fail(w, r, &ErrInvalidCredentials{}, msgServerError)
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err, msgServerError)
		return
	}
	h.issue(w, r, user)
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, user *types.User) {
	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		h.fail(w, r, err, msgServerError)
		return
	}
	h.ok(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

// Protected returns the authenticated account.
func (h *AuthHandler) Protected(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUser(r)
	if err != nil {
		h.fail(w, r, err, msgServerError)
		return
	}
	h.ok(w, http.StatusOK, map[string]any{"user": user})
}

// UpdatePassword changes the caller's password after checking the current one.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		h.fail(w, r, err, msgServerError)
		return
	}

	var req types.UpdatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err, msgServerError)
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, validationError(err), msgServerError)
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(w, r, err, "Error updating password")
		return
	}
	h.message(w, "Password updated successfully")
}

// DeleteAccount removes the caller's account.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		h.fail(w, r, err, msgServerError)
		return
	}
	if err := h.userService.DeleteAccount(r.Context(), userID); err != nil {
		h.fail(w, r, err, "Error deleting account")
		return
	}
	h.message(w, "Account deleted successfully")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
