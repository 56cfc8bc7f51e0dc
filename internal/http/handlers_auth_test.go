package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/medicare-dental/clinic-portal/internal/domain/auth"
	mockauth "github.com/medicare-dental/clinic-portal/internal/mocks/auth"
	"github.com/medicare-dental/clinic-portal/internal/service"
)

type stubRegistration struct {
	user domainauth.User
	err  error
}

func (s *stubRegistration) RegisterPatient(_ context.Context, _ service.RegisterPatientInput) (domainauth.User, error) {
	return s.user, s.err
}

func newAuthHandlersFixture(t *testing.T) (*AuthHandlers, *service.AuthService, *mockauth.MemorySessionStore) {
	t.Helper()
	store := mockauth.NewMemorySessionStore()
	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Sessions:  store,
		Validator: &mockauth.StubValidator{},
	})
	handlers := &AuthHandlers{
		Auth: authSvc,
		Credentials: &mockauth.StubCredentialChecker{
			Email:    "dana.reyes@medicare.dev",
			Password: "correct horse",
			User: domainauth.User{
				ID:    7,
				Name:  "Dana Reyes",
				Email: "dana.reyes@medicare.dev",
				Role:  domainauth.RoleDentist,
			},
		},
		Registration: &stubRegistration{user: domainauth.User{
			ID:   101,
			Name: "Ana Cruz",
			Role: domainauth.RolePatient,
		}},
	}
	return handlers, authSvc, store
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sessionCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandlers_Login(t *testing.T) {
	handlers, _, store := newAuthHandlersFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"dana.reyes@medicare.dev","password":"correct horse"}`))
	rec := httptest.NewRecorder()
	handlers.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookieFrom(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.NotEmpty(t, cookie.Value)
	assert.Equal(t, 1, store.Len())

	body := decodeBody(t, rec)
	assert.Equal(t, "/dentist", body["redirect_to"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Dana Reyes", user["name"])
	assert.Equal(t, float64(domainauth.RoleDentist), user["role"])
}

func TestAuthHandlers_Login_RedirectURIHonored(t *testing.T) {
	handlers, _, _ := newAuthHandlersFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login?redirect_uri=%2Fdentist%3Ftab%3Dschedule",
		strings.NewReader(`{"email":"dana.reyes@medicare.dev","password":"correct horse"}`))
	rec := httptest.NewRecorder()
	handlers.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/dentist?tab=schedule", decodeBody(t, rec)["redirect_to"])
}

func TestAuthHandlers_Login_UnsafeRedirectURIFallsBack(t *testing.T) {
	handlers, _, _ := newAuthHandlersFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login?redirect_uri=https%3A%2F%2Fevil.example%2F",
		strings.NewReader(`{"email":"dana.reyes@medicare.dev","password":"correct horse"}`))
	rec := httptest.NewRecorder()
	handlers.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// An off-origin redirect target is ignored in favor of the role dashboard.
	assert.Equal(t, "/dentist", decodeBody(t, rec)["redirect_to"])
}

func TestAuthHandlers_Login_BadCredentials(t *testing.T) {
	handlers, _, store := newAuthHandlersFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"dana.reyes@medicare.dev","password":"wrong"}`))
	rec := httptest.NewRecorder()
	handlers.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", decodeBody(t, rec)["error"])
	assert.Nil(t, sessionCookieFrom(rec))
	assert.Equal(t, 0, store.Len())
}

func TestAuthHandlers_Login_MalformedBody(t *testing.T) {
	handlers, _, _ := newAuthHandlersFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	handlers.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", decodeBody(t, rec)["error"])
}

func TestAuthHandlers_Logout(t *testing.T) {
	handlers, authSvc, store := newAuthHandlersFixture(t)

	session, err := authSvc.Login(t.Context(), domainauth.User{
		ID: 7, Name: "Dana Reyes", Role: domainauth.RoleDentist,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.ID})
	rec := httptest.NewRecorder()
	handlers.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, store.Len())

	cookie := sessionCookieFrom(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestAuthHandlers_Logout_NoCookie(t *testing.T) {
	handlers, _, _ := newAuthHandlersFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	handlers.Logout(rec, req)

	// Logging out while logged out is fine.
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandlers_Session_Authenticated(t *testing.T) {
	handlers, authSvc, _ := newAuthHandlersFixture(t)

	session, err := authSvc.Login(t.Context(), domainauth.User{
		ID: 7, Name: "Dana Reyes", Email: "dana.reyes@medicare.dev", Role: domainauth.RoleDentist,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.ID})
	rec := httptest.NewRecorder()
	handlers.Session(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "/dentist", body["dashboard"])
}

func TestAuthHandlers_Session_NoCookie(t *testing.T) {
	handlers, _, _ := newAuthHandlersFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	rec := httptest.NewRecorder()
	handlers.Session(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["authenticated"])
}

func TestAuthHandlers_Session_StaleCookieCleared(t *testing.T) {
	handlers, _, _ := newAuthHandlersFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "no-such-session"})
	rec := httptest.NewRecorder()
	handlers.Session(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["authenticated"])

	cookie := sessionCookieFrom(rec)
	require.NotNil(t, cookie)
	assert.Negative(t, cookie.MaxAge)
}

func TestAuthHandlers_Register(t *testing.T) {
	handlers, _, store := newAuthHandlersFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"first_name":"Ana","last_name":"Cruz","email":"ana.cruz@example.com","password":"s3cret-pass"}`))
	rec := httptest.NewRecorder()
	handlers.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, domainauth.StatusPending, body["status"])
	// Registration does not sign the patient in.
	assert.Nil(t, sessionCookieFrom(rec))
	assert.Equal(t, 0, store.Len())
}

func TestAuthHandlers_Register_EmailTaken(t *testing.T) {
	handlers, _, _ := newAuthHandlersFixture(t)
	handlers.Registration = &stubRegistration{err: service.ErrEmailTaken}

	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"first_name":"Ana","last_name":"Cruz","email":"taken@example.com","password":"s3cret-pass"}`))
	rec := httptest.NewRecorder()
	handlers.Register(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "email_taken", decodeBody(t, rec)["error"])
}
