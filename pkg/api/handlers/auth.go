package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ezshare/ezshare/internal/logger"
	"github.com/ezshare/ezshare/pkg/api/middleware"
	"github.com/ezshare/ezshare/pkg/auth"
	"github.com/ezshare/ezshare/pkg/metrics"
	"github.com/ezshare/ezshare/pkg/models"
	"github.com/ezshare/ezshare/pkg/store"
)

// AuthHandler handles the login handshake, session lifecycle, registration
// and password changes.
type AuthHandler struct {
	store           store.AccountStore
	sessions        *auth.Registry
	sessionLifetime time.Duration
	cookieSecure    bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(s store.AccountStore, sessions *auth.Registry, sessionLifetime time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		store:           s,
		sessions:        sessions,
		sessionLifetime: sessionLifetime,
		cookieSecure:    cookieSecure,
	}
}

// LoginRequest is the request body for POST /api/login. The handshake takes
// two round trips: the first omits PasswordHash and fetches the account
// salt, the second carries the salt-derived PasswordHash.
type LoginRequest struct {
	// Username is a display name only; lookups always go through
	// IdentityToken.
	Username      string `json:"username"`
	IdentityToken string `json:"identityToken"`
	PasswordHash  string `json:"passwordHash"`
}

// SaltResponse is the first-step response of the login handshake.
type SaltResponse struct {
	Salt string `json:"salt"`
}

// LoginResponse is the second-step response of the login handshake.
type LoginResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    models.Permissions `json:"data"`
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if _, err := h.sessions.Get(cookie.Value); err == nil {
			BadRequest(w, "User already logged in")
			return
		}
	}

	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.IdentityToken == "" {
		BadRequest(w, "Identity token is required")
		return
	}

	account, err := h.store.GetAccount(r.Context(), req.IdentityToken)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			// Same wire response as a bad password so the endpoint does
			// not confirm which identities exist.
			logger.Info("Login rejected, unknown identity token")
			metrics.LoginFailures.Inc()
			Unauthorized(w, "Invalid credentials")
			return
		}
		logger.Error("Failed to look up account", "error", err)
		InternalServerError(w, "Login failed")
		return
	}

	// First round trip: hand out the salt so the client can derive the
	// password hash.
	if req.PasswordHash == "" {
		WriteJSONOK(w, SaltResponse{Salt: account.Salt})
		return
	}

	if !auth.VerifyKey(req.PasswordHash, account.Salt, account.PasswordHash) {
		logger.Info("Login rejected, password mismatch")
		metrics.LoginFailures.Inc()
		Unauthorized(w, "Invalid credentials")
		return
	}

	session := h.sessions.Create(account.IdentityToken, req.Username, account.Permissions())
	metrics.ActiveSessions.Set(float64(h.sessions.Len()))
	h.setSessionCookie(w, session.ID)

	// Non-critical; the login itself already succeeded.
	if err := h.store.UpdateLastLogin(r.Context(), account.IdentityToken, time.Now()); err != nil {
		logger.Warn("Failed to update last login time", "error", err)
	}

	logger.Info("Login successful", "username", req.Username)
	WriteJSONOK(w, LoginResponse{
		Success: true,
		Message: "Login successful",
		Data:    account.Permissions(),
	})
}

// LogoutResponse is the response body for POST /api/logout.
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Logout handles POST /api/logout. Destroying the server-side session is
// what actually revokes the cookie; clearing it client-side is courtesy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		Unauthorized(w, "User not logged in")
		return
	}

	h.sessions.Destroy(session.ID)
	metrics.ActiveSessions.Set(float64(h.sessions.Len()))
	h.clearSessionCookie(w)

	WriteJSONOK(w, LogoutResponse{Success: true, Message: "Logout successful"})
}

// SessionState is the payload of the session recovery response.
type SessionState struct {
	Username   string `json:"username"`
	IsLoggedIn bool   `json:"isLoggedIn"`
	models.Permissions
}

// SessionRecoveryResponse is the response body for GET /api/sessionRecovery.
type SessionRecoveryResponse struct {
	Data SessionState `json:"data"`
}

// SessionRecovery handles GET /api/sessionRecovery. It re-reads the account
// so permission changes made since login take effect without a re-login.
func (h *AuthHandler) SessionRecovery(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		Unauthorized(w, "User not logged in")
		return
	}

	permissions := session.Permissions
	account, err := h.store.GetAccount(r.Context(), session.IdentityToken)
	if err != nil {
		logger.Warn("Failed to refresh permissions from store", "error", err)
	} else {
		permissions = account.Permissions()
		if err := h.sessions.SetPermissions(session.ID, permissions); err != nil {
			logger.Warn("Failed to update session permissions", "error", err)
		}
	}

	WriteJSONOK(w, SessionRecoveryResponse{
		Data: SessionState{
			Username:    session.Username,
			IsLoggedIn:  true,
			Permissions: permissions,
		},
	})
}

// RegisterRequest is the request body for POST /api/register.
type RegisterRequest struct {
	IdentityToken string `json:"identityToken"`
	PasswordHash  string `json:"passwordHash"`
	Email         string `json:"email"`
	ClipboardPerm bool   `json:"clipboardPerm"`
	UploadPerm    bool   `json:"uploadPerm"`
}

// SuccessResponse is a minimal success acknowledgment.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// Register handles POST /api/register. The caller's session needs the
// register permission, enforced by the router.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.IdentityToken == "" || req.PasswordHash == "" {
		BadRequest(w, "Identity token and password hash are required")
		return
	}

	salt, err := auth.NewSalt()
	if err != nil {
		logger.Error("Failed to generate salt", "error", err)
		InternalServerError(w, "Registration failed")
		return
	}

	// Never store the client hash as-is; re-hash it with the fresh salt.
	storedHash, err := auth.DeriveKey(req.PasswordHash, salt)
	if err != nil {
		logger.Error("Failed to derive password hash", "error", err)
		InternalServerError(w, "Registration failed")
		return
	}

	_, err = h.store.CreateAccount(r.Context(), &models.Account{
		IdentityToken:    req.IdentityToken,
		PasswordHash:     storedHash,
		Salt:             salt,
		Email:            req.Email,
		ClipboardAllowed: req.ClipboardPerm,
		UploadAllowed:    req.UploadPerm,
	})
	if err != nil {
		// A duplicate is not distinguished on the wire; the detail would
		// confirm the identity token exists.
		if errors.Is(err, models.ErrDuplicateAccount) {
			logger.Info("Registration rejected, duplicate identity token")
		} else {
			logger.Error("Failed to create account", "error", err)
		}
		InternalServerError(w, "Registration failed")
		return
	}

	logger.Info("Account registered", "clipboard", req.ClipboardPerm, "upload", req.UploadPerm)
	WriteJSONOK(w, SuccessResponse{Success: true})
}

// ChangePasswordRequest is the request body for POST /api/changePassword.
// Changing the password rotates the identity token too, since the token is
// derived from the password-protected username.
type ChangePasswordRequest struct {
	NewIdentityToken string `json:"newUsername"`
	NewPasswordHash  string `json:"newPassword"`
}

// ChangePassword handles POST /api/changePassword.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		Unauthorized(w, "User not logged in")
		return
	}

	var req ChangePasswordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.NewIdentityToken == "" || req.NewPasswordHash == "" {
		BadRequest(w, "New identity token and password hash are required")
		return
	}

	account, err := h.store.GetAccount(r.Context(), session.IdentityToken)
	if err != nil {
		logger.Error("Failed to look up account for password change", "error", err)
		InternalServerError(w, "Password change failed")
		return
	}

	// The existing salt is reused, not regenerated.
	storedHash, err := auth.DeriveKey(req.NewPasswordHash, account.Salt)
	if err != nil {
		logger.Error("Failed to derive password hash", "error", err)
		InternalServerError(w, "Password change failed")
		return
	}

	if err := h.store.UpdateCredentials(r.Context(), session.IdentityToken, req.NewIdentityToken, storedHash); err != nil {
		if errors.Is(err, models.ErrDuplicateAccount) {
			logger.Info("Password change rejected, identity token taken")
		} else {
			logger.Error("Failed to update credentials", "error", err)
		}
		InternalServerError(w, "Password change failed")
		return
	}

	if err := h.sessions.SetIdentityToken(session.ID, req.NewIdentityToken); err != nil {
		logger.Warn("Failed to update session identity token", "error", err)
	}

	logger.Info("Password changed")
	WriteJSONOK(w, SuccessResponse{Success: true})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.sessionLifetime.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
