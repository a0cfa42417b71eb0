package domain

import (
	"time"

	"gorm.io/gorm"
)

// Notification priorities, client-side sort hints only.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Notification is the durable record of one delivered business event.
// Immutable after creation except IsRead and soft deletion; live and push
// channels are best-effort amplifiers of this row, never the other way
// around.
type Notification struct {
	ID          uint64     `json:"id"`
	RecipientID uint64     `gorm:"index:idx_recipient_read,priority:1" json:"recipient_id"`
	SenderID    uint64     `json:"sender_id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	EntityType  EntityType `json:"entity_type"`
	EntityID    uint64     `json:"entity_id"`
	ActionURL   string     `json:"action_url"`
	Priority    string     `json:"priority"`
	IsRead      bool       `gorm:"default:false;index:idx_recipient_read,priority:2" json:"is_read"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// PushSubscription is one browser/device push endpoint for a user.
// Pruned automatically when the provider reports the endpoint gone.
type PushSubscription struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `gorm:"index" json:"user_id"`
	Endpoint  string    `gorm:"uniqueIndex" json:"endpoint"`
	P256dh    string    `json:"-"`
	Auth      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
