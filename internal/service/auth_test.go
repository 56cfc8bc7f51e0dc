package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/medicare-dental/clinic-portal/internal/domain/auth"
	mockauth "github.com/medicare-dental/clinic-portal/internal/mocks/auth"
	"github.com/medicare-dental/clinic-portal/internal/ports"
)

func testUser() domainauth.User {
	return domainauth.User{
		ID:    42,
		Name:  "Ana Cruz",
		Email: "ana.cruz@example.com",
		Role:  domainauth.RolePatient,
	}
}

func newTestAuthService(store ports.SessionStore, validator ports.IdentityValidator) *AuthService {
	return NewAuthService(AuthServiceOptions{
		Sessions:  store,
		Validator: validator,
	})
}

func TestAuthService_Login_SessionUsableImmediately(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	svc := newTestAuthService(store, &mockauth.StubValidator{})

	session, err := svc.Login(context.Background(), testUser())
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)

	// The session is readable as soon as Login returns.
	got, err := svc.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	user, err := got.User()
	require.NoError(t, err)
	assert.Equal(t, testUser(), user)
}

func TestAuthService_Login_UnknownRole(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	svc := newTestAuthService(store, &mockauth.StubValidator{})

	_, err := svc.Login(context.Background(), domainauth.User{ID: 1, Name: "x", Role: domainauth.Role(99)})
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestAuthService_Login_DistinctSessionIDs(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	svc := newTestAuthService(store, &mockauth.StubValidator{})

	a, err := svc.Login(context.Background(), testUser())
	require.NoError(t, err)
	b, err := svc.Login(context.Background(), testUser())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAuthService_Logout(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	svc := newTestAuthService(store, &mockauth.StubValidator{})

	session, err := svc.Login(context.Background(), testUser())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), session.ID))
	assert.Equal(t, 0, store.Len())

	_, err = svc.GetSession(context.Background(), session.ID)
	assert.Error(t, err)
}

func TestAuthService_Logout_EmptyID(t *testing.T) {
	svc := newTestAuthService(mockauth.NewMemorySessionStore(), &mockauth.StubValidator{})
	assert.NoError(t, svc.Logout(context.Background(), ""))
}

func TestAuthService_GetSession_Expired(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	svc := newTestAuthService(store, &mockauth.StubValidator{})

	sess := domainauth.Session{
		ID:        "expired-session",
		Data:      domainauth.EncodeUser(testUser()),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.Save(context.Background(), sess))

	_, err := svc.GetSession(context.Background(), "expired-session")
	require.Error(t, err)
	// The expired session is cleared as a side effect.
	assert.Equal(t, 0, store.Len())
}

func TestAuthService_ValidateSession_RefreshesStoredData(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	refreshed := testUser()
	refreshed.Name = "Ana C. Cruz"
	validator := &mockauth.StubValidator{
		ValidateFunc: func(_ context.Context, _ domainauth.SessionData) (domainauth.User, error) {
			return refreshed, nil
		},
	}
	svc := newTestAuthService(store, validator)

	session, err := svc.Login(context.Background(), testUser())
	require.NoError(t, err)

	user, err := svc.ValidateSession(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Ana C. Cruz", user.Name)

	// The stored session carries the refreshed identity afterwards.
	stored, err := store.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana C. Cruz", stored.Data.UserName)
}

func TestAuthService_ValidateSession_RejectionClearsSession(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	validator := &mockauth.StubValidator{
		ValidateFunc: func(_ context.Context, _ domainauth.SessionData) (domainauth.User, error) {
			return domainauth.User{}, ports.ErrSessionInvalid
		},
	}
	svc := newTestAuthService(store, validator)

	session, err := svc.Login(context.Background(), testUser())
	require.NoError(t, err)

	user, err := svc.ValidateSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Equal(t, 0, store.Len())
}

func TestAuthService_ValidateSession_MissingSession(t *testing.T) {
	validator := &mockauth.StubValidator{}
	svc := newTestAuthService(mockauth.NewMemorySessionStore(), validator)

	user, err := svc.ValidateSession(context.Background(), "no-such-session")
	require.NoError(t, err)
	assert.Nil(t, user)
	// No identity lookup happens for a session that does not exist.
	assert.Equal(t, 0, validator.Calls())
}

func TestAuthService_ValidateSession_EmptyID(t *testing.T) {
	svc := newTestAuthService(mockauth.NewMemorySessionStore(), &mockauth.StubValidator{})

	user, err := svc.ValidateSession(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestAuthService_ValidateSession_Idempotent(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	svc := newTestAuthService(store, &mockauth.StubValidator{})

	session, err := svc.Login(context.Background(), testUser())
	require.NoError(t, err)

	first, err := svc.ValidateSession(context.Background(), session.ID)
	require.NoError(t, err)
	second, err := svc.ValidateSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAuthService_ValidateSession_ConcurrentCallsShareOneLookup(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	release := make(chan struct{})
	validator := &mockauth.StubValidator{
		ValidateFunc: func(_ context.Context, d domainauth.SessionData) (domainauth.User, error) {
			<-release
			return d.ToUser()
		},
	}
	svc := newTestAuthService(store, validator)

	session, err := svc.Login(context.Background(), testUser())
	require.NoError(t, err)

	const callers = 10
	var wg sync.WaitGroup
	results := make([]*domainauth.User, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.ValidateSession(context.Background(), session.ID)
		}()
	}

	// Give every goroutine time to reach the coalesced call, then let the
	// single in-flight lookup finish.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, validator.Calls())
	for i := range callers {
		require.NoError(t, errs[i], "caller %d", i)
		require.NotNil(t, results[i], "caller %d", i)
		assert.Equal(t, testUser(), *results[i])
	}
}
