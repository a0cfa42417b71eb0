package domain

import "time"

// Plan tiers. The tier caps how many collaborators a user may have across
// all of their entities.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// User represents a user in the system
type User struct {
	ID           uint64
	Name         string
	Email        string `gorm:"uniqueIndex"`
	Password     string `gorm:"-"` // input only, not stored in db
	PasswordHash string
	TokenVersion uint64 `gorm:"default:0"`
	PlanTier     string `gorm:"default:free"`
	PushEnabled  bool   `gorm:"default:true"`
	IsActive     bool   `gorm:"default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SafeUser represents a user without sensitive information
type SafeUser struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PlanTier    string    `json:"plan_tier"`
	PushEnabled bool      `json:"push_enabled"`
	CreatedAt   time.Time `json:"created_at"`
	IsActive    bool      `json:"is_active"`
}

// ToSafeUser converts a User to a SafeUser
func (u *User) ToSafeUser() SafeUser {
	return SafeUser{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PlanTier:    u.PlanTier,
		PushEnabled: u.PushEnabled,
		CreatedAt:   u.CreatedAt,
		IsActive:    u.IsActive,
	}
}
