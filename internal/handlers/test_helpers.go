package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kalindhi/kalindhi-api/internal/auth"
	"github.com/kalindhi/kalindhi-api/internal/background"
	"github.com/kalindhi/kalindhi-api/internal/models"
	"github.com/kalindhi/kalindhi-api/internal/services"
	pkghttp "github.com/kalindhi/kalindhi-api/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithUserContext adds customer claims to the request context
func WithUserContext(req *http.Request, userID, email string) *http.Request {
	claims := &models.TokenClaims{
		Email:            email,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

// WithAdminContext adds admin claims to the request context
func WithAdminContext(req *http.Request, adminID, email string) *http.Request {
	claims := &models.TokenClaims{
		Email:            email,
		IsAdmin:          true,
		RegisteredClaims: jwt.RegisteredClaims{Subject: adminID},
	}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

// WithURLParam sets a chi route parameter on the request
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return req
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks the status and the {"error"} message
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedMessage, resp.Error, "Error message mismatch")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	SignupFunc        func(ctx context.Context, in services.SignupInput) (*services.SignupResult, error)
	LoginFunc         func(ctx context.Context, email, password string) (*services.LoginResult, error)
	VerifyOTPFunc     func(ctx context.Context, email, code string) (*services.VerifyResult, error)
	ResendOTPFunc     func(ctx context.Context, email string) error
	GetProfileFunc    func(ctx context.Context, userID string) (*models.PublicUser, error)
	UpdateProfileFunc func(ctx context.Context, userID string, in services.ProfileUpdate) (*models.PublicUser, error)
}

func (m *MockAuthService) Signup(ctx context.Context, in services.SignupInput) (*services.SignupResult, error) {
	if m.SignupFunc == nil {
		return nil, models.ErrConflict
	}
	return m.SignupFunc(ctx, in)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.LoginFunc(ctx, email, password)
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, email, code string) (*services.VerifyResult, error) {
	if m.VerifyOTPFunc == nil {
		return nil, models.ErrInvalidOTP
	}
	return m.VerifyOTPFunc(ctx, email, code)
}

func (m *MockAuthService) ResendOTP(ctx context.Context, email string) error {
	if m.ResendOTPFunc == nil {
		return nil
	}
	return m.ResendOTPFunc(ctx, email)
}

func (m *MockAuthService) GetProfile(ctx context.Context, userID string) (*models.PublicUser, error) {
	if m.GetProfileFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetProfileFunc(ctx, userID)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID string, in services.ProfileUpdate) (*models.PublicUser, error) {
	if m.UpdateProfileFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateProfileFunc(ctx, userID, in)
}

// MockAdminAuthService implements AdminAuthServiceInterface for testing
type MockAdminAuthService struct {
	RequestAccessFunc func(ctx context.Context, in services.AccessRequest) error
	LoginFunc         func(ctx context.Context, email, password string) (*services.AdminLoginResult, error)
	VerifyFunc        func(ctx context.Context, email, code string) (*services.AdminVerifyResult, error)
}

func (m *MockAdminAuthService) RequestAccess(ctx context.Context, in services.AccessRequest) error {
	if m.RequestAccessFunc == nil {
		return nil
	}
	return m.RequestAccessFunc(ctx, in)
}

func (m *MockAdminAuthService) Login(ctx context.Context, email, password string) (*services.AdminLoginResult, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.LoginFunc(ctx, email, password)
}

func (m *MockAdminAuthService) Verify(ctx context.Context, email, code string) (*services.AdminVerifyResult, error) {
	if m.VerifyFunc == nil {
		return nil, models.ErrInvalidOTP
	}
	return m.VerifyFunc(ctx, email, code)
}

// MockAdminService implements AdminServiceInterface for testing
type MockAdminService struct {
	ListUsersFunc          func(ctx context.Context) ([]*models.PublicUser, error)
	DeleteUserFunc         func(ctx context.Context, actorID, userID string) error
	ListAdminsFunc         func(ctx context.Context) ([]*models.AdminListing, error)
	ApproveAdminFunc       func(ctx context.Context, actorID, adminID string) (*models.AdminListing, error)
	DeleteAdminFunc        func(ctx context.Context, actorID, adminID string) error
	ListEnquiriesFunc      func(ctx context.Context) ([]*models.Enquiry, error)
	SetEnquiryReadFunc     func(ctx context.Context, id string, read bool) error
	SetEnquiryArchivedFunc func(ctx context.Context, id string, archived bool) error
	DeleteEnquiryFunc      func(ctx context.Context, actorID, id string) error
}

func (m *MockAdminService) ListUsers(ctx context.Context) ([]*models.PublicUser, error) {
	if m.ListUsersFunc == nil {
		return []*models.PublicUser{}, nil
	}
	return m.ListUsersFunc(ctx)
}

func (m *MockAdminService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if m.DeleteUserFunc == nil {
		return models.ErrNotFound
	}
	return m.DeleteUserFunc(ctx, actorID, userID)
}

func (m *MockAdminService) ListAdmins(ctx context.Context) ([]*models.AdminListing, error) {
	if m.ListAdminsFunc == nil {
		return []*models.AdminListing{}, nil
	}
	return m.ListAdminsFunc(ctx)
}

func (m *MockAdminService) ApproveAdmin(ctx context.Context, actorID, adminID string) (*models.AdminListing, error) {
	if m.ApproveAdminFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.ApproveAdminFunc(ctx, actorID, adminID)
}

func (m *MockAdminService) DeleteAdmin(ctx context.Context, actorID, adminID string) error {
	if m.DeleteAdminFunc == nil {
		return models.ErrNotFound
	}
	return m.DeleteAdminFunc(ctx, actorID, adminID)
}

func (m *MockAdminService) ListEnquiries(ctx context.Context) ([]*models.Enquiry, error) {
	if m.ListEnquiriesFunc == nil {
		return []*models.Enquiry{}, nil
	}
	return m.ListEnquiriesFunc(ctx)
}

func (m *MockAdminService) SetEnquiryRead(ctx context.Context, id string, read bool) error {
	if m.SetEnquiryReadFunc == nil {
		return models.ErrNotFound
	}
	return m.SetEnquiryReadFunc(ctx, id, read)
}

func (m *MockAdminService) SetEnquiryArchived(ctx context.Context, id string, archived bool) error {
	if m.SetEnquiryArchivedFunc == nil {
		return models.ErrNotFound
	}
	return m.SetEnquiryArchivedFunc(ctx, id, archived)
}

func (m *MockAdminService) DeleteEnquiry(ctx context.Context, actorID, id string) error {
	if m.DeleteEnquiryFunc == nil {
		return models.ErrNotFound
	}
	return m.DeleteEnquiryFunc(ctx, actorID, id)
}

// MockUploadService implements UploadServiceInterface for testing
type MockUploadService struct {
	UploadFunc func(ctx context.Context, r io.Reader) (*services.UploadResult, error)
}

func (m *MockUploadService) Upload(ctx context.Context, r io.Reader) (*services.UploadResult, error) {
	if m.UploadFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.UploadFunc(ctx, r)
}

// MockContactService implements ContactServiceInterface for testing
type MockContactService struct {
	SubmitFunc func(ctx context.Context, name, email, message string) (*models.Enquiry, error)
}

func (m *MockContactService) Submit(ctx context.Context, name, email, message string) (*models.Enquiry, error) {
	if m.SubmitFunc == nil {
		return &models.Enquiry{ID: "enq-1", Name: name, Email: email, Message: message}, nil
	}
	return m.SubmitFunc(ctx, name, email, message)
}

// MockOAuthService implements OAuthServiceInterface for testing
type MockOAuthService struct {
	BeginFunc    func(ctx context.Context) (string, error)
	CompleteFunc func(ctx context.Context, state, code string) (*services.LoginResult, error)
}

func (m *MockOAuthService) Begin(ctx context.Context) (string, error) {
	if m.BeginFunc == nil {
		return "https://accounts.google.com/o/oauth2/auth?state=test", nil
	}
	return m.BeginFunc(ctx)
}

func (m *MockOAuthService) Complete(ctx context.Context, state, code string) (*services.LoginResult, error) {
	if m.CompleteFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.CompleteFunc(ctx, state, code)
}

// MockHealthChecker implements HealthChecker for testing
type MockHealthChecker struct {
	Err error
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Err
}

// MockMailStats implements MailStats for testing
type MockMailStats struct {
	Snapshot background.NotifierStats
}

func (m *MockMailStats) Stats() background.NotifierStats {
	return m.Snapshot
}
