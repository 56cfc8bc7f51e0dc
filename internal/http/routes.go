package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/medicare-dental/clinic-portal/internal/domain/auth"
	"github.com/medicare-dental/clinic-portal/internal/ports"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth         AuthServiceInterface
	Credentials  ports.CredentialChecker
	Registration RegistrationServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Auth:         services.Auth,
		Credentials:  services.Credentials,
		Registration: services.Registration,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}

	registerAuthRoutes(mux, authHandlers, services.Auth)
	registerDashboardRoutes(mux, services.Auth)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return mux
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, authSvc AuthServiceInterface) {
	publicOnly := PublicOnly(authSvc)

	// A signed-in user visiting the login or registration page is bounced to
	// their own dashboard instead.
	mux.Handle("GET "+domainauth.LoginPath, publicOnly(http.HandlerFunc(loginPageHandler)))
	mux.Handle("POST /auth/login", publicOnly(http.HandlerFunc(h.Login)))
	mux.Handle("POST /auth/register", publicOnly(http.HandlerFunc(h.Register)))
	mux.Handle("POST /auth/logout", http.HandlerFunc(h.Logout))
	mux.Handle("GET /auth/session", http.HandlerFunc(h.Session))
}

// registerDashboardRoutes guards one dashboard per role. Each dashboard admits
// only its own role; everyone else lands on the dashboard their role maps to.
func registerDashboardRoutes(mux *http.ServeMux, authSvc AuthServiceInterface) {
	for _, role := range []domainauth.Role{
		domainauth.RoleDentist,
		domainauth.RoleReceptionist,
		domainauth.RoleCashier,
		domainauth.RoleInventory,
		domainauth.RoleAdmin,
		domainauth.RolePatient,
	} {
		guard := RequireRoles(authSvc, role)
		mux.Handle("GET "+domainauth.DashboardPath(role), guard(dashboardHandler(role)))
	}
}

// loginPageHandler serves the login entry point for unauthenticated clients.
func loginPageHandler(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"page":     "login",
		"endpoint": "/auth/login",
	})
}

// dashboardHandler serves the dashboard payload for a role. The guard has
// already put the validated user in the request context.
func dashboardHandler(role domainauth.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUserFromContext(r.Context())
		if !ok {
			// The guard always sets the user; a miss here is a wiring bug.
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"dashboard": domainauth.DisplayName(role),
			"user":      userPayload(*user),
		})
	})
}
