/*
auth.go - Auth handlers and bearer middleware

PURPOSE:
  HTTP surface of the auth collaborator: register, login,
  change-password, me, plus the optional bearer middleware that gates
  the works routes. The works contract itself is unaffected by auth;
  unauthenticated calls are rejected here, before the core logic runs.

STATUS CODES:
  400  missing/short username or password
  401  bad credentials, or no token where one is required
  403  token present but invalid or expired
  409  username already exists
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/warp/worklog-engine/auth"
)

type contextKey string

const claimsKey contextKey = "auth-claims"

// claimsFrom returns the verified claims the middleware stored.
func claimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// RequireToken rejects requests without a valid bearer token.
func (h *Handler) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Access token required", nil)
			return
		}

		claims, err := h.Auth.Verify(token)
		if err != nil {
			writeError(w, http.StatusForbidden, "Invalid or expired token", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// Register creates an account and returns a fresh token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required", nil)
		return
	}

	token, user, err := h.Auth.Register(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrWeakCredentials):
		writeError(w, http.StatusBadRequest, "Username must be at least 3 and password at least 8 characters", nil)
		return
	case errors.Is(err, auth.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username already exists", nil)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to register", err)
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "User registered successfully",
		Token:   token,
		User:    user,
	})
}

// Login verifies credentials and returns a fresh token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required", nil)
		return
	}

	token, user, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to log in", err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    user,
	})
}

// ChangePassword verifies the old password before storing a new one.
// Mounted behind RequireToken.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Old password and new password are required", nil)
		return
	}

	err := h.Auth.ChangePassword(r.Context(), claims.UserID, req.OldPassword, req.NewPassword)
	switch {
	case errors.Is(err, auth.ErrWeakCredentials):
		writeError(w, http.StatusBadRequest, "New password must be at least 8 characters", nil)
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Current password is incorrect", nil)
		return
	case errors.Is(err, auth.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to change password", err)
		return
	}

	writeJSON(w, http.StatusOK, SaveResponse{Success: true, Message: "Password changed successfully"})
}

// Me returns the account behind the presented token.
// Mounted behind RequireToken.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	user, err := h.Auth.Me(r.Context(), claims.UserID)
	if errors.Is(err, auth.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Success: true, User: user})
}
