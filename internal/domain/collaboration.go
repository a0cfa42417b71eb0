package domain

import "time"

// Collaboration roles, strongest first. Owner is implicit (the entity's
// UserID); the rest live on Collaboration rows.
const (
	RoleOwner    = "owner"
	RoleEditor   = "editor"
	RoleAssignee = "assignee"
	RoleViewer   = "viewer"
)

var roleRank = map[string]int{
	RoleOwner:    4,
	RoleEditor:   3,
	RoleAssignee: 2,
	RoleViewer:   1,
}

// ValidInviteRole reports whether role may be granted through an invitation.
// Owner is never grantable.
func ValidInviteRole(role string) bool {
	return role == RoleEditor || role == RoleAssignee || role == RoleViewer
}

// RoleAtLeast reports whether role is at least as strong as min.
func RoleAtLeast(role, min string) bool {
	return roleRank[role] >= roleRank[min]
}

// Collaboration statuses. Expired is mostly derived: a pending row past its
// token expiry is expired no matter what the column says.
const (
	CollabPending = "pending"
	CollabActive  = "active"
	CollabRemoved = "removed"
	CollabExpired = "expired"
)

// Collaboration represents one user's relationship to one entity.
type Collaboration struct {
	ID                uint64
	EntityType        EntityType `gorm:"index:idx_entity,priority:1"`
	EntityID          uint64     `gorm:"index:idx_entity,priority:2"`
	OwnerID           uint64     `gorm:"index"`
	CollaboratorEmail string     `gorm:"index"`
	CollaboratorID    *uint64    `gorm:"index"` // nil until the invited email registers
	Role              string
	Status            string `gorm:"index"`
	InvitationToken   string `gorm:"uniqueIndex"`
	TokenExpiresAt    time.Time
	InvitedByID       uint64
	AcceptedAt        *time.Time
	RemovedAt         *time.Time
	ShareMessage      *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (c *Collaboration) Ref() EntityRef {
	return EntityRef{Type: c.EntityType, ID: c.EntityID}
}

// StatusAt derives the effective status at a point in time. The stored
// column may lag behind the token expiry; time is the ground truth.
func (c *Collaboration) StatusAt(now time.Time) string {
	if c.Status == CollabPending && now.After(c.TokenExpiresAt) {
		return CollabExpired
	}
	return c.Status
}

// ShareLink grants a fixed role on one entity to anyone holding the token.
// Independent of Collaboration rows until redeemed.
type ShareLink struct {
	ID          uint64
	EntityType  EntityType `gorm:"index:idx_share_entity,priority:1"`
	EntityID    uint64     `gorm:"index:idx_share_entity,priority:2"`
	Token       string     `gorm:"uniqueIndex"`
	Role        string
	CreatedByID uint64
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

func (l *ShareLink) ExpiredAt(now time.Time) bool {
	return now.After(l.ExpiresAt)
}
