package httpx

import (
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/medicare-dental/clinic-portal/internal/domain/auth"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles guards a route for the given roles. An unauthenticated request
// is redirected to the login page with the current path carried as
// redirect_uri. An authenticated user whose role is not allowed is redirected
// to their own dashboard, never back to login; they already hold a valid
// session, they are just on the wrong page.
func RequireRoles(authSvc AuthServiceInterface, allowed ...domainauth.Role) func(http.Handler) http.Handler {
	allowedSet := make(map[domainauth.Role]bool, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := userFromRequest(r, authSvc)
			if user == nil {
				redirectToLogin(w, r)
				return
			}

			if !allowedSet[user.Role] {
				http.Redirect(w, r, domainauth.DashboardPath(user.Role), http.StatusSeeOther)
				return
			}

			ctx := SetUserInContext(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PublicOnly guards pages like login and registration that make no sense for
// a signed-in user. An authenticated request is bounced to the user's own
// dashboard; everyone else passes through.
func PublicOnly(authSvc AuthServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := userFromRequest(r, authSvc); user != nil {
				http.Redirect(w, r, domainauth.DashboardPath(user.Role), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// userFromRequest resolves the session cookie to a validated user. It returns
// nil for missing cookies, unknown sessions, and sessions the identity tables
// reject; the guards treat all of those the same way.
func userFromRequest(r *http.Request, authSvc AuthServiceInterface) *domainauth.User {
	sessionCookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}

	user, err := authSvc.ValidateSession(r.Context(), sessionCookie.Value)
	if err != nil {
		return nil
	}
	return user
}

// redirectToLogin redirects the request to the login page with the current URL
// carried as redirect_uri.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	redirectPath := safeRedirectPath(r.URL.RequestURI())
	loginURL := domainauth.LoginPath + "?redirect_uri=" + url.QueryEscape(redirectPath)
	http.Redirect(w, r, loginURL, http.StatusSeeOther)
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
