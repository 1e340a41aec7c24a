package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/kalindhi/kalindhi-api/internal/models"
	pkglogger "github.com/kalindhi/kalindhi-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestOAuthService(users *MockUserRepository, provider *MockIdentityProvider, states *MockStateStore) *OAuthService {
	logger := discardLogger()
	return NewOAuthService(provider, states, users, newTestTokenManager(), logger, pkglogger.NewAuditLogger(logger))
}

func stateFrom(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestOAuthService_CreatesFederatedUser(t *testing.T) {
	users := memoryUsers()
	provider := &MockIdentityProvider{
		ExchangeFunc: func(ctx context.Context, code string) (*FederatedProfile, error) {
			return &FederatedProfile{ProviderID: "g-123", Email: "asha@gmail.com", EmailVerified: true}, nil
		},
	}
	svc := newTestOAuthService(users, provider, &MockStateStore{})
	ctx := context.Background()

	authURL, err := svc.Begin(ctx)
	require.NoError(t, err)

	res, err := svc.Complete(ctx, stateFrom(t, authURL), "auth-code")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "Google User", res.User.Name)

	created, err := users.GetByEmail(ctx, "asha@gmail.com")
	require.NoError(t, err)
	assert.Nil(t, created.PasswordHash)
	require.NotNil(t, created.Provider)
	assert.Equal(t, models.ProviderGoogle, *created.Provider)
	assert.Equal(t, "g-123", *created.ProviderID)
}

func TestOAuthService_ReusesExistingUser(t *testing.T) {
	existing := NewTestUser("user_1", "asha@gmail.com", "Asha", "hash")
	created := false
	users := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return existing, nil
		},
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			created = true
			return user, nil
		},
	}
	provider := &MockIdentityProvider{
		ExchangeFunc: func(ctx context.Context, code string) (*FederatedProfile, error) {
			return &FederatedProfile{ProviderID: "g-123", Email: "asha@gmail.com", EmailVerified: true, Name: "Asha G"}, nil
		},
	}
	svc := newTestOAuthService(users, provider, &MockStateStore{})
	ctx := context.Background()

	authURL, err := svc.Begin(ctx)
	require.NoError(t, err)

	res, err := svc.Complete(ctx, stateFrom(t, authURL), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "user_1", res.User.ID)
	assert.False(t, created)
}

func TestOAuthService_StateIsSingleUse(t *testing.T) {
	provider := &MockIdentityProvider{
		ExchangeFunc: func(ctx context.Context, code string) (*FederatedProfile, error) {
			return &FederatedProfile{ProviderID: "g-1", Email: "asha@gmail.com", EmailVerified: true}, nil
		},
	}
	svc := newTestOAuthService(memoryUsers(), provider, &MockStateStore{})
	ctx := context.Background()

	_, err := svc.Complete(ctx, "forged", "auth-code")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	authURL, err := svc.Begin(ctx)
	require.NoError(t, err)
	state := stateFrom(t, authURL)

	_, err = svc.Complete(ctx, state, "auth-code")
	require.NoError(t, err)

	_, err = svc.Complete(ctx, state, "auth-code")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestOAuthService_RequiresEmail(t *testing.T) {
	provider := &MockIdentityProvider{
		ExchangeFunc: func(ctx context.Context, code string) (*FederatedProfile, error) {
			return &FederatedProfile{ProviderID: "g-1"}, nil
		},
	}
	svc := newTestOAuthService(memoryUsers(), provider, &MockStateStore{})
	ctx := context.Background()

	authURL, err := svc.Begin(ctx)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, stateFrom(t, authURL), "auth-code")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestOAuthService_RefusesUnverifiedProviderEmail(t *testing.T) {
	existing := NewTestUser("user_1", "asha@gmail.com", "Asha", "hash")
	users := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return existing, nil
		},
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			t.Fatal("no account should be created")
			return nil, nil
		},
	}
	provider := &MockIdentityProvider{
		ExchangeFunc: func(ctx context.Context, code string) (*FederatedProfile, error) {
			return &FederatedProfile{ProviderID: "g-9", Email: "asha@gmail.com", EmailVerified: false}, nil
		},
	}
	svc := newTestOAuthService(users, provider, &MockStateStore{})
	ctx := context.Background()

	authURL, err := svc.Begin(ctx)
	require.NoError(t, err)

	res, err := svc.Complete(ctx, stateFrom(t, authURL), "auth-code")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Nil(t, res)
}

func TestGoogleProvider_Exchange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"g-42","email":"asha@gmail.com","email_verified":true,"name":"Asha"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewGoogleProvider("client-id", "secret", "http://localhost/cb")
	p.config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	p.userInfoURL = srv.URL + "/userinfo"

	profile, err := p.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "g-42", profile.ProviderID)
	assert.Equal(t, "asha@gmail.com", profile.Email)
	assert.True(t, profile.EmailVerified)
	assert.Equal(t, "Asha", profile.Name)
}

func TestGoogleProvider_AuthCodeURL(t *testing.T) {
	p := NewGoogleProvider("client-id", "secret", "http://localhost:3000/api/auth/google/callback")

	u, err := url.Parse(p.AuthCodeURL("xyz"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "xyz", u.Query().Get("state"))
	assert.Equal(t, "client-id", u.Query().Get("client_id"))
	assert.Equal(t, "http://localhost:3000/api/auth/google/callback", u.Query().Get("redirect_uri"))
	assert.Contains(t, u.Query().Get("scope"), "email")
}
