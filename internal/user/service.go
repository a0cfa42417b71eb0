package user

import (
	"context"
	defError "errors"

	"taskhive/internal/domain"
	"taskhive/internal/errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InvitationClaimer binds late-bound invitations to a freshly verified
// identity. Run after every successful login; idempotent.
type InvitationClaimer interface {
	ClaimInvitations(ctx context.Context, userID uint64, verifiedEmail string)
}

// Plan-tier collaborator ceilings, counted across all of a user's entities.
var planCollaboratorLimits = map[string]int{
	domain.PlanFree: 5,
	domain.PlanPro:  50,
}

// Service defines the interface for user business logic
type Service interface {
	Register(ctx context.Context, user *domain.User) error
	Login(ctx context.Context, email, password string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uint64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	SearchUsers(ctx context.Context, query string) ([]domain.SafeUser, error)
	IncreaseTokenVersion(ctx context.Context, id uint64) error
	SetPushEnabled(ctx context.Context, id uint64, enabled bool) error
	CollaboratorLimit(ctx context.Context, userID uint64) (int, error)
	DeactivateUser(ctx context.Context, id uint64) error
}

// DefaultService implements Service
type DefaultService struct {
	repository UserRepository
	claimer    InvitationClaimer
}

// NewService creates a new user service. claimer may be nil when the
// collaboration core isn't wired (seeding, tests).
func NewService(repository UserRepository, claimer InvitationClaimer) *DefaultService {
	return &DefaultService{repository: repository, claimer: claimer}
}

// SetClaimer wires the collaboration core in after construction; the user
// service and collaboration service reference each other.
func (s *DefaultService) SetClaimer(claimer InvitationClaimer) {
	s.claimer = claimer
}

// Register registers a new user
func (s *DefaultService) Register(ctx context.Context, user *domain.User) error {
	// Check if user with email already exists
	_, err := s.repository.FindByEmail(ctx, user.Email)
	if err != nil && !defError.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil {
		return errors.UnprocessableEntity("User already registered", nil)
	}

	// Hash the password before saving
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.UnprocessableEntity("Invalid password", err)
	}
	user.PasswordHash = string(hashedPassword)
	user.IsActive = true
	if user.PlanTier == "" {
		user.PlanTier = domain.PlanFree
	}

	return s.repository.Create(ctx, user)
}

// Login authenticates a user and claims any invitations addressed to the
// now-verified email.
func (s *DefaultService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repository.FindByEmail(ctx, email)
	if err != nil {
		return nil, errors.Unauthorized("User not found", err)
	}

	if !user.IsActive {
		return nil, errors.Unauthorized("User is not active", nil)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, errors.UnprocessableEntity("Wrong password", err)
	}

	if s.claimer != nil {
		s.claimer.ClaimInvitations(ctx, user.ID, user.Email)
	}

	return user, nil
}

// GetUserByID gets a user by ID
func (s *DefaultService) GetUserByID(ctx context.Context, id uint64) (*domain.User, error) {
	return s.repository.FindByID(ctx, id)
}

// FindByEmail gets a user by email
func (s *DefaultService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repository.FindByEmail(ctx, email)
}

// SearchUsers finds users matching a name or email fragment
func (s *DefaultService) SearchUsers(ctx context.Context, query string) ([]domain.SafeUser, error) {
	if len(query) < 2 {
		return []domain.SafeUser{}, nil
	}

	users, err := s.repository.Search(ctx, query, 20)
	if err != nil {
		return nil, err
	}

	result := make([]domain.SafeUser, 0, len(users))
	for _, u := range users {
		result = append(result, u.ToSafeUser())
	}
	return result, nil
}

// IncreaseTokenVersion revokes every outstanding token for the user
func (s *DefaultService) IncreaseTokenVersion(ctx context.Context, id uint64) error {
	return s.repository.IncreaseTokenVersion(ctx, id)
}

// SetPushEnabled flips the push delivery preference
func (s *DefaultService) SetPushEnabled(ctx context.Context, id uint64, enabled bool) error {
	return s.repository.SetPushEnabled(ctx, id, enabled)
}

// CollaboratorLimit answers the plan-quota question for invitations.
func (s *DefaultService) CollaboratorLimit(ctx context.Context, userID uint64) (int, error) {
	user, err := s.repository.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	limit, ok := planCollaboratorLimits[user.PlanTier]
	if !ok {
		limit = planCollaboratorLimits[domain.PlanFree]
	}
	return limit, nil
}

// DeactivateUser deactivates a user
func (s *DefaultService) DeactivateUser(ctx context.Context, id uint64) error {
	return s.repository.Deactivate(ctx, id)
}
