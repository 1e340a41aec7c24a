package handlers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kalindhi/kalindhi-api/internal/handlers"
	"github.com/kalindhi/kalindhi-api/internal/models"
	"github.com/kalindhi/kalindhi-api/internal/services"
	pkghttp "github.com/kalindhi/kalindhi-api/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testPublicUser(verified bool) *models.PublicUser {
	return &models.PublicUser{ID: "user-1", Name: "Asha", Email: "asha@x.com", IsVerified: verified}
}

func TestSignup_Success(t *testing.T) {
	var got services.SignupInput
	mockAuth := &handlers.MockAuthService{
		SignupFunc: func(ctx context.Context, in services.SignupInput) (*services.SignupResult, error) {
			got = in
			return &services.SignupResult{Message: "Verification code sent", Email: in.Email}, nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, discardLogger)
	req := handlers.NewTestRequest(t, http.MethodPost, "/auth/signup", handlers.SignupRequest{
		Name:     "Asha",
		Email:    "asha@x.com",
		Password: "pw123456",
	})

	w := httptest.NewRecorder()
	handler.Signup(w, req)

	var resp services.SignupResult
	handlers.AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, "asha@x.com", resp.Email)
	assert.Equal(t, "Asha", got.Name)
	assert.Nil(t, got.Phone)
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    handlers.SignupRequest
		message string
	}{
		{"missing name", handlers.SignupRequest{Email: "a@x.com", Password: "pw"}, "name is required"},
		{"missing email", handlers.SignupRequest{Name: "A", Password: "pw"}, "email is required"},
		{"bad email", handlers.SignupRequest{Name: "A", Email: "nope", Password: "pw"}, "email must be a valid email address"},
		{"missing password", handlers.SignupRequest{Name: "A", Email: "a@x.com"}, "password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mockAuth := &handlers.MockAuthService{
				SignupFunc: func(ctx context.Context, in services.SignupInput) (*services.SignupResult, error) {
					called = true
					return nil, nil
				},
			}

			handler := handlers.NewAuthHandler(mockAuth, discardLogger)
			w := httptest.NewRecorder()
			handler.Signup(w, handlers.NewTestRequest(t, http.MethodPost, "/auth/signup", tt.body))

			handlers.AssertErrorResponse(t, w, http.StatusBadRequest, tt.message)
			assert.False(t, called)
		})
	}
}

func TestSignup_Conflict(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, discardLogger)
	req := handlers.NewTestRequest(t, http.MethodPost, "/auth/signup", handlers.SignupRequest{
		Name: "Asha", Email: "asha@x.com", Password: "pw123456",
	})

	w := httptest.NewRecorder()
	handler.Signup(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusConflict, "Email already registered")
}

func TestSignup_MalformedBody(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, discardLogger)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader("{not json"))

	w := httptest.NewRecorder()
	handler.Signup(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "Invalid request body")
}

func TestLogin_Success(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.LoginResult, error) {
			return &services.LoginResult{Token: "token-123", User: testPublicUser(true)}, nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, discardLogger)
	req := handlers.NewTestRequest(t, http.MethodPost, "/auth/login", handlers.LoginRequest{
		Email: "asha@x.com", Password: "pw123456",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	var resp services.LoginResult
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "token-123", resp.Token)
	require.NotNil(t, resp.User)
	assert.True(t, resp.User.IsVerified)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, discardLogger)
	req := handlers.NewTestRequest(t, http.MethodPost, "/auth/login", handlers.LoginRequest{
		Email: "asha@x.com", Password: "wrong",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusUnauthorized, "Invalid credentials")
}

func TestLogin_VerificationRequired(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.LoginResult, error) {
			return nil, models.ErrEmailNotVerified
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, discardLogger)
	req := handlers.NewTestRequest(t, http.MethodPost, "/auth/login", handlers.LoginRequest{
		Email: "asha@x.com", Password: "pw123456",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	var resp pkghttp.VerificationRequiredResponse
	handlers.AssertJSONResponse(t, w, http.StatusForbidden, &resp)
	assert.True(t, resp.RequiresVerification)
	assert.Equal(t, "asha@x.com", resp.Email)
	assert.NotEmpty(t, resp.Error)
	assert.NotContains(t, w.Body.String(), "token")
}

func TestLogin_InternalErrorIsGeneric(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.LoginResult, error) {
			return nil, errors.New("dial tcp 10.0.0.5:5432: connection refused")
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, discardLogger)
	req := handlers.NewTestRequest(t, http.MethodPost, "/auth/login", handlers.LoginRequest{
		Email: "asha@x.com", Password: "pw123456",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusInternalServerError, "Internal server error")
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestVerifyOTP(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockAuth := &handlers.MockAuthService{
			VerifyOTPFunc: func(ctx context.Context, email, code string) (*services.VerifyResult, error) {
				assert.Equal(t, "123456", code)
				return &services.VerifyResult{Message: "Email verified successfully", Token: "tok", User: testPublicUser(true)}, nil
			},
		}

		handler := handlers.NewAuthHandler(mockAuth, discardLogger)
		w := httptest.NewRecorder()
		handler.VerifyOTP(w, handlers.NewTestRequest(t, http.MethodPost, "/auth/verify-otp", handlers.VerifyOTPRequest{
			Email: "asha@x.com", Code: "123456",
		}))

		var resp services.VerifyResult
		handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
		assert.Equal(t, "tok", resp.Token)
		assert.Equal(t, "Email verified successfully", resp.Message)
	})

	t.Run("wrong or expired code", func(t *testing.T) {
		handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, discardLogger)
		w := httptest.NewRecorder()
		handler.VerifyOTP(w, handlers.NewTestRequest(t, http.MethodPost, "/auth/verify-otp", handlers.VerifyOTPRequest{
			Email: "asha@x.com", Code: "000000",
		}))

		handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "Invalid or expired code")
	})

	t.Run("missing code", func(t *testing.T) {
		handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, discardLogger)
		w := httptest.NewRecorder()
		handler.VerifyOTP(w, handlers.NewTestRequest(t, http.MethodPost, "/auth/verify-otp", handlers.VerifyOTPRequest{
			Email: "asha@x.com",
		}))

		handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "code is required")
	})
}

func TestResendOTP(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, discardLogger)
		w := httptest.NewRecorder()
		handler.ResendOTP(w, handlers.NewTestRequest(t, http.MethodPost, "/auth/resend-otp", handlers.ResendOTPRequest{
			Email: "asha@x.com",
		}))

		var resp handlers.MessageResponse
		handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
		assert.NotEmpty(t, resp.Message)
	})

	t.Run("unknown email", func(t *testing.T) {
		mockAuth := &handlers.MockAuthService{
			ResendOTPFunc: func(ctx context.Context, email string) error {
				return models.ErrNotFound
			},
		}
		handler := handlers.NewAuthHandler(mockAuth, discardLogger)
		w := httptest.NewRecorder()
		handler.ResendOTP(w, handlers.NewTestRequest(t, http.MethodPost, "/auth/resend-otp", handlers.ResendOTPRequest{
			Email: "ghost@x.com",
		}))

		handlers.AssertErrorResponse(t, w, http.StatusNotFound, "User not found")
	})
}

func TestGetProfile(t *testing.T) {
	t.Run("uses token subject", func(t *testing.T) {
		mockAuth := &handlers.MockAuthService{
			GetProfileFunc: func(ctx context.Context, userID string) (*models.PublicUser, error) {
				assert.Equal(t, "user-1", userID)
				return testPublicUser(true), nil
			},
		}

		handler := handlers.NewAuthHandler(mockAuth, discardLogger)
		req := handlers.WithUserContext(httptest.NewRequest(http.MethodGet, "/auth/profile", nil), "user-1", "asha@x.com")
		w := httptest.NewRecorder()
		handler.GetProfile(w, req)

		var resp handlers.ProfileResponse
		handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
		require.NotNil(t, resp.User)
		assert.True(t, resp.User.IsVerified)
	})

	t.Run("no claims", func(t *testing.T) {
		handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, discardLogger)
		w := httptest.NewRecorder()
		handler.GetProfile(w, httptest.NewRequest(http.MethodGet, "/auth/profile", nil))

		handlers.AssertErrorResponse(t, w, http.StatusUnauthorized, "Authentication required")
	})

	t.Run("deleted user", func(t *testing.T) {
		handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, discardLogger)
		req := handlers.WithUserContext(httptest.NewRequest(http.MethodGet, "/auth/profile", nil), "gone", "gone@x.com")
		w := httptest.NewRecorder()
		handler.GetProfile(w, req)

		handlers.AssertErrorResponse(t, w, http.StatusNotFound, "User not found")
	})
}

func TestUpdateProfile(t *testing.T) {
	var got services.ProfileUpdate
	mockAuth := &handlers.MockAuthService{
		UpdateProfileFunc: func(ctx context.Context, userID string, in services.ProfileUpdate) (*models.PublicUser, error) {
			got = in
			u := testPublicUser(true)
			u.Name = *in.Name
			return u, nil
		},
	}

	name := "Asha K"
	handler := handlers.NewAuthHandler(mockAuth, discardLogger)
	req := handlers.NewTestRequest(t, http.MethodPut, "/auth/profile", handlers.UpdateProfileRequest{Name: &name})
	req = handlers.WithUserContext(req, "user-1", "asha@x.com")

	w := httptest.NewRecorder()
	handler.UpdateProfile(w, req)

	var resp handlers.UpdateProfileResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "Asha K", resp.User.Name)
	assert.Equal(t, "Profile updated", resp.Message)
	assert.Nil(t, got.Password)
}

func TestUpdateProfile_ValidationFromService(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		UpdateProfileFunc: func(ctx context.Context, userID string, in services.ProfileUpdate) (*models.PublicUser, error) {
			return nil, models.NewValidationError("Name cannot be empty")
		},
	}

	empty := " "
	handler := handlers.NewAuthHandler(mockAuth, discardLogger)
	req := handlers.NewTestRequest(t, http.MethodPut, "/auth/profile", handlers.UpdateProfileRequest{Name: &empty})
	req = handlers.WithUserContext(req, "user-1", "asha@x.com")

	w := httptest.NewRecorder()
	handler.UpdateProfile(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "Name cannot be empty")
}
