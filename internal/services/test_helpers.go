package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/kalindhi/kalindhi-api/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc       func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	ListFunc          func(ctx context.Context) ([]*models.User, error)
	CreateFunc        func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateProfileFunc func(ctx context.Context, id string, name, passwordHash *string) (*models.User, error)
	MarkVerifiedFunc  func(ctx context.Context, email string) (*models.User, error)
	DeleteFunc        func(ctx context.Context, id string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id string, name, passwordHash *string) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, name, passwordHash)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) MarkVerified(ctx context.Context, email string) (*models.User, error) {
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockAdminRepository implements AdminRepository for testing
type MockAdminRepository struct {
	GetByIDFunc     func(ctx context.Context, id string) (*models.Admin, error)
	GetByEmailFunc  func(ctx context.Context, email string) (*models.Admin, error)
	ListFunc        func(ctx context.Context) ([]*models.Admin, error)
	CreateFunc      func(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	SetApprovedFunc func(ctx context.Context, id string, approved bool) (*models.Admin, error)
	DeleteFunc      func(ctx context.Context, id string) error
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockAdminRepository) List(ctx context.Context) ([]*models.Admin, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Admin{}, nil
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, admin)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAdminRepository) SetApproved(ctx context.Context, id string, approved bool) (*models.Admin, error) {
	if m.SetApprovedFunc != nil {
		return m.SetApprovedFunc(ctx, id, approved)
	}
	return nil, models.ErrNotFound
}

func (m *MockAdminRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockEnquiryRepository implements EnquiryRepository for testing
type MockEnquiryRepository struct {
	CreateFunc      func(ctx context.Context, name, email, message string) (*models.Enquiry, error)
	ListFunc        func(ctx context.Context) ([]*models.Enquiry, error)
	SetReadFunc     func(ctx context.Context, id string, read bool) error
	SetArchivedFunc func(ctx context.Context, id string, archived bool) error
	DeleteFunc      func(ctx context.Context, id string) error
}

func (m *MockEnquiryRepository) Create(ctx context.Context, name, email, message string) (*models.Enquiry, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, name, email, message)
	}
	return &models.Enquiry{ID: "enq_1", Name: name, Email: email, Message: message, CreatedAt: time.Now()}, nil
}

func (m *MockEnquiryRepository) List(ctx context.Context) ([]*models.Enquiry, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Enquiry{}, nil
}

func (m *MockEnquiryRepository) SetRead(ctx context.Context, id string, read bool) error {
	if m.SetReadFunc != nil {
		return m.SetReadFunc(ctx, id, read)
	}
	return nil
}

func (m *MockEnquiryRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	if m.SetArchivedFunc != nil {
		return m.SetArchivedFunc(ctx, id, archived)
	}
	return nil
}

func (m *MockEnquiryRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MemoryOTPRepository is an in-memory OTP ledger with a controllable clock
type MemoryOTPRepository struct {
	mu      sync.Mutex
	entries map[string][]*models.OTPEntry
	Now     func() time.Time
}

func NewMemoryOTPRepository() *MemoryOTPRepository {
	return &MemoryOTPRepository{entries: make(map[string][]*models.OTPEntry), Now: time.Now}
}

func (m *MemoryOTPRepository) DeleteByEmail(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, email)
	return nil
}

func (m *MemoryOTPRepository) Insert(ctx context.Context, email, code string, expiresAt time.Time) (*models.OTPEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := &models.OTPEntry{Email: email, Code: code, ExpiresAt: expiresAt, CreatedAt: m.Now()}
	m.entries[email] = append(m.entries[email], entry)
	return entry, nil
}

func (m *MemoryOTPRepository) FindValid(ctx context.Context, email, code string) (*models.OTPEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries[email] {
		if e.Code == code && e.ExpiresAt.After(m.Now()) {
			return e, nil
		}
	}
	return nil, models.ErrNotFound
}

// Live returns the stored entries for email
func (m *MemoryOTPRepository) Live(email string) []*models.OTPEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.OTPEntry(nil), m.entries[email]...)
}

// MockDispatcher records dispatched messages
type MockDispatcher struct {
	mu       sync.Mutex
	Messages []models.EmailMessage
	Reject   bool
}

func (m *MockDispatcher) Dispatch(msg models.EmailMessage) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Reject {
		return false
	}
	m.Messages = append(m.Messages, msg)
	return true
}

// Last returns the most recent message, or the zero value
func (m *MockDispatcher) Last() models.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Messages) == 0 {
		return models.EmailMessage{}
	}
	return m.Messages[len(m.Messages)-1]
}

// MockObjectPutter implements ObjectPutter for testing
type MockObjectPutter struct {
	PutFunc func(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

func (m *MockObjectPutter) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, r, size, contentType)
	}
	return "https://cdn.example.com/" + key, nil
}

// MockIdentityProvider implements IdentityProvider for testing
type MockIdentityProvider struct {
	ExchangeFunc func(ctx context.Context, code string) (*FederatedProfile, error)
}

func (m *MockIdentityProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (m *MockIdentityProvider) Exchange(ctx context.Context, code string) (*FederatedProfile, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code)
	}
	return nil, models.ErrUnauthorized
}

// MockStateStore is an in-memory StateStore
type MockStateStore struct {
	mu     sync.Mutex
	states map[string]bool
	Err    error
}

func (m *MockStateStore) Save(ctx context.Context, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.states == nil {
		m.states = make(map[string]bool)
	}
	m.states[state] = true
	return nil
}

func (m *MockStateStore) Consume(ctx context.Context, state string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	ok := m.states[state]
	delete(m.states, state)
	return ok, nil
}

// NewTestUser creates a verified password user
func NewTestUser(id, email, name, passwordHash string) *models.User {
	return &models.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: &passwordHash,
		IsVerified:   true,
		CreatedAt:    time.Now(),
	}
}

// NewTestAdmin creates an admin account
func NewTestAdmin(id, email, passwordHash string, approved bool) *models.Admin {
	return &models.Admin{
		ID:           id,
		Name:         "Test Admin",
		Email:        email,
		PasswordHash: passwordHash,
		IsApproved:   approved,
		CreatedAt:    time.Now(),
	}
}
