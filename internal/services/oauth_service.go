package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kalindhi/kalindhi-api/internal/auth"
	"github.com/kalindhi/kalindhi-api/internal/models"
	pkglogger "github.com/kalindhi/kalindhi-api/pkg/logger"
	"golang.org/x/oauth2"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

var googleEndpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.google.com/o/oauth2/auth",
	TokenURL:  "https://oauth2.googleapis.com/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// FederatedProfile is the identity returned by an external provider
type FederatedProfile struct {
	ProviderID    string
	Email         string
	EmailVerified bool
	Name          string
}

// IdentityProvider drives the authorization code flow for one provider
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*FederatedProfile, error)
}

// StateStore holds single-use OAuth state values
type StateStore interface {
	Save(ctx context.Context, state string) error
	Consume(ctx context.Context, state string) (bool, error)
}

// GoogleProvider implements IdentityProvider with golang.org/x/oauth2
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Endpoint:     googleEndpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*FederatedProfile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var info struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	return &FederatedProfile{
		ProviderID:    info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		Name:          info.Name,
	}, nil
}

// OAuthService signs customers in through Google
type OAuthService struct {
	provider    IdentityProvider
	states      StateStore
	users       UserRepository
	tm          *auth.TokenManager
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewOAuthService(
	provider IdentityProvider,
	states StateStore,
	users UserRepository,
	tm *auth.TokenManager,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *OAuthService {
	return &OAuthService{
		provider:    provider,
		states:      states,
		users:       users,
		tm:          tm,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Begin stores a fresh state and returns the consent screen URL
func (s *OAuthService) Begin(ctx context.Context) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	if err := s.states.Save(ctx, state); err != nil {
		return "", err
	}

	return s.provider.AuthCodeURL(state), nil
}

// Complete validates the state, exchanges the code and returns a user token.
// Unknown emails get a new passwordless account. Profiles whose email the
// provider has not verified are refused, since the email is what links
// them to a local account.
func (s *OAuthService) Complete(ctx context.Context, state, code string) (*LoginResult, error) {
	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: unknown oauth state", models.ErrUnauthorized)
	}
	if code == "" {
		return nil, models.NewValidationError("Missing authorization code")
	}

	profile, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(profile.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: provider returned no email", models.ErrUnauthorized)
	}
	if !profile.EmailVerified {
		s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
			EventType:     "google_login_failed",
			Principal:     pkglogger.PrincipalUser,
			Email:         email,
			FailureReason: "email_not_verified_by_provider",
		})
		return nil, fmt.Errorf("%w: provider email not verified", models.ErrUnauthorized)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		user, err = s.createFederatedUser(ctx, email, profile)
	}
	if err != nil {
		return nil, err
	}

	token, err := s.tm.GenerateUserToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: "google_login_success",
		Principal: pkglogger.PrincipalUser,
		SubjectID: user.ID,
		Email:     user.Email,
		Success:   true,
	})

	return &LoginResult{Token: token, User: user.Public()}, nil
}

func (s *OAuthService) createFederatedUser(ctx context.Context, email string, profile *FederatedProfile) (*models.User, error) {
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = "Google User"
	}

	provider := models.ProviderGoogle
	providerID := profile.ProviderID

	user, err := s.users.Create(ctx, &models.User{
		Name:       name,
		Email:      email,
		Provider:   &provider,
		ProviderID: &providerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create federated user: %w", err)
	}

	s.logger.Info("federated user created", slog.String("user_id", user.ID), slog.String("provider", provider))
	return user, nil
}
