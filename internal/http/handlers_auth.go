package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/medicare-dental/clinic-portal/internal/domain/auth"
	"github.com/medicare-dental/clinic-portal/internal/ports"
	"github.com/medicare-dental/clinic-portal/internal/service"
)

// SessionCookieName is the cookie carrying the opaque session ID.
const SessionCookieName = "session_id"

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	Login(ctx context.Context, user domainauth.User) (domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
	ValidateSession(ctx context.Context, sessionID string) (*domainauth.User, error)
}

// RegistrationServiceInterface defines the interface for patient registration.
type RegistrationServiceInterface interface {
	RegisterPatient(ctx context.Context, in service.RegisterPatientInput) (domainauth.User, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Auth         AuthServiceInterface
	Credentials  ports.CredentialChecker
	Registration RegistrationServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles the credential login endpoint.
// POST /auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.Credentials.Check(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ports.ErrInvalidCredentials) {
			WriteError(w, ErrorParams{
				Code:    http.StatusUnauthorized,
				ErrCode: "invalid_credentials",
				Err:     errors.New("email or password is incorrect"),
			})
			return
		}
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("login failed"),
		})
		return
	}

	session, err := h.Auth.Login(r.Context(), user)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "session creation failed", "user_id", user.ID, "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("login failed"),
		})
		return
	}

	h.setSessionCookie(w, r, session)

	// The caller lands on their role's dashboard, optionally via a safe
	// relative redirect_uri they arrived with.
	redirectTo := domainauth.DashboardPath(user.Role)
	if requested := r.URL.Query().Get("redirect_uri"); requested != "" {
		if safe := safeRedirectPath(requested); safe != "/" {
			redirectTo = safe
		}
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user":        userPayload(user),
		"redirect_to": redirectTo,
	})
}

// Logout handles the logout endpoint.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	// Invalidate the server-side session if the cookie is present.
	if sessionCookie, err := r.Cookie(SessionCookieName); err == nil {
		if logoutErr := h.Auth.Logout(r.Context(), sessionCookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}

	// Clear the cookie on the client regardless.
	h.clearCookie(w, r, SessionCookieName)

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":      "signed_out",
		"redirect_to": domainauth.LoginPath,
	})
}

// Session reports the current authentication state, revalidating the stored
// session against the identity tables.
// GET /auth/session.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	sessionCookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	user, err := h.Auth.ValidateSession(r.Context(), sessionCookie.Value)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "session validation errored", "error", err)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	if user == nil {
		// The session is gone or was rejected; drop the stale cookie.
		h.clearCookie(w, r, SessionCookieName)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          userPayload(*user),
		"dashboard":     domainauth.DashboardPath(user.Role),
	})
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Register handles patient self-registration.
// POST /auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.Registration.RegisterPatient(r.Context(), service.RegisterPatientInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			WriteError(w, ErrorParams{
				Code:    http.StatusConflict,
				ErrCode: "email_taken",
				Err:     errors.New("an account with this email already exists"),
			})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_registration", Err: err})
		return
	}

	// New accounts await front-desk approval, so no session is created here.
	WriteJSON(w, http.StatusCreated, map[string]any{
		"user":   userPayload(user),
		"status": domainauth.StatusPending,
	})
}

// userPayload is the JSON shape for a user across auth responses.
func userPayload(u domainauth.User) map[string]any {
	return map[string]any{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  int(u.Role),
	}
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting
// cookies to maximize compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}
