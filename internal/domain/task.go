package domain

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	ID          uint64
	Title       string
	Description *string
	Category    string `gorm:"default:general"`
	Status      string `gorm:"default:open"`
	Priority    string `gorm:"default:medium"`
	Completed   bool   `gorm:"default:false"`
	DueDate     *time.Time
	UserID      uint64 `gorm:"index"` // owner, immutable after creation
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Task) Ref() EntityRef {
	return EntityRef{Type: EntityTask, ID: t.ID}
}
