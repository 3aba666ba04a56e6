/*
dto.go - Request/response envelopes for the work tracking API

PURPOSE:
  JSON shapes for API communication. The work-item wire shape is the
  domain type itself (worklog.WorkItem / worklog.YearPartition); only
  acknowledgements, errors and auth payloads need dedicated types.
*/
package api

import "github.com/warp/worklog-engine/auth"

// ErrorResponse is returned on every failure: a human-readable message
// plus optional details. The status code carries the machine kind.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SaveResponse acknowledges a successful write.
type SaveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// =============================================================================
// AUTH TYPES
// =============================================================================

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of change-password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Token   string     `json:"token,omitempty"`
	User    *auth.User `json:"user,omitempty"`
}
