package user

import (
	"context"
	"testing"

	"taskhive/internal/domain"
	apiError "taskhive/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, query string, limit int) ([]domain.User, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) IncreaseTokenVersion(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) SetPushEnabled(ctx context.Context, id uint64, enabled bool) error {
	args := m.Called(ctx, id, enabled)
	return args.Error(0)
}

func (m *MockUserRepository) Deactivate(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockClaimer struct {
	mock.Mock
}

func (m *MockClaimer) ClaimInvitations(ctx context.Context, userID uint64, verifiedEmail string) {
	m.Called(ctx, userID, verifiedEmail)
}

func apiStatus(t *testing.T, err error) int {
	t.Helper()
	apiErr, ok := err.(*apiError.APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	return apiErr.Status
}

func hashOf(password string) string {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(hash)
}

func TestRegister_Success(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, nil)

	repo.On("FindByEmail", mock.Anything, "bob@x.com").Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	newUser := &domain.User{Name: "Bob", Email: "bob@x.com", Password: "secret123"}
	err := svc.Register(context.Background(), newUser)

	assert.NoError(t, err)
	assert.NotEmpty(t, newUser.PasswordHash)
	assert.NotEqual(t, "secret123", newUser.PasswordHash)
	assert.True(t, newUser.IsActive)
	assert.Equal(t, domain.PlanFree, newUser.PlanTier)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, nil)

	repo.On("FindByEmail", mock.Anything, "bob@x.com").
		Return(&domain.User{ID: 2, Email: "bob@x.com"}, nil)

	err := svc.Register(context.Background(), &domain.User{Email: "bob@x.com", Password: "x"})

	assert.Equal(t, 422, apiStatus(t, err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// A successful login claims every late-bound invitation addressed to the
// now-verified email.
func TestLogin_ClaimsInvitations(t *testing.T) {
	repo := new(MockUserRepository)
	claimer := new(MockClaimer)
	svc := NewService(repo, claimer)

	repo.On("FindByEmail", mock.Anything, "bob@x.com").Return(&domain.User{
		ID:           2,
		Email:        "bob@x.com",
		PasswordHash: hashOf("secret123"),
		IsActive:     true,
	}, nil)
	claimer.On("ClaimInvitations", mock.Anything, uint64(2), "bob@x.com").Return()

	user, err := svc.Login(context.Background(), "bob@x.com", "secret123")

	assert.NoError(t, err)
	assert.Equal(t, uint64(2), user.ID)
	claimer.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	claimer := new(MockClaimer)
	svc := NewService(repo, claimer)

	repo.On("FindByEmail", mock.Anything, "bob@x.com").Return(&domain.User{
		ID:           2,
		Email:        "bob@x.com",
		PasswordHash: hashOf("secret123"),
		IsActive:     true,
	}, nil)

	_, err := svc.Login(context.Background(), "bob@x.com", "wrong")

	assert.Error(t, err)
	claimer.AssertNotCalled(t, "ClaimInvitations", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_InactiveUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, nil)

	repo.On("FindByEmail", mock.Anything, "bob@x.com").Return(&domain.User{
		ID:           2,
		Email:        "bob@x.com",
		PasswordHash: hashOf("secret123"),
		IsActive:     false,
	}, nil)

	_, err := svc.Login(context.Background(), "bob@x.com", "secret123")

	assert.Equal(t, 401, apiStatus(t, err))
}

func TestSearchUsers_ShortQueryReturnsNothing(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, nil)

	result, err := svc.SearchUsers(context.Background(), "b")

	assert.NoError(t, err)
	assert.Empty(t, result)
	repo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchUsers_StripsCredentials(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, nil)

	repo.On("Search", mock.Anything, "bo", 20).Return([]domain.User{
		{ID: 2, Name: "Bob", Email: "bob@x.com", PasswordHash: "hash"},
	}, nil)

	result, err := svc.SearchUsers(context.Background(), "bo")

	assert.NoError(t, err)
	if assert.Len(t, result, 1) {
		assert.Equal(t, "Bob", result[0].Name)
		assert.Equal(t, "bob@x.com", result[0].Email)
	}
}

func TestCollaboratorLimit_PerPlan(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, nil)

	repo.On("FindByID", mock.Anything, uint64(1)).
		Return(&domain.User{ID: 1, PlanTier: domain.PlanFree}, nil)
	repo.On("FindByID", mock.Anything, uint64(2)).
		Return(&domain.User{ID: 2, PlanTier: domain.PlanPro}, nil)
	repo.On("FindByID", mock.Anything, uint64(3)).
		Return(&domain.User{ID: 3, PlanTier: "legacy"}, nil)

	limit, err := svc.CollaboratorLimit(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 5, limit)

	limit, err = svc.CollaboratorLimit(context.Background(), 2)
	assert.NoError(t, err)
	assert.Equal(t, 50, limit)

	// unknown tiers fall back to the free ceiling
	limit, err = svc.CollaboratorLimit(context.Background(), 3)
	assert.NoError(t, err)
	assert.Equal(t, 5, limit)
}
