package models

import (
	"time"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// Task is removed with a hard delete; there is no soft-delete column.
// CompletedAt is set once, when Completed flips to true.
type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Title       string       `gorm:"type:varchar(100);not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'Medium'" json:"priority"`
	Category    string       `gorm:"type:varchar(50);not null;default:'General'" json:"category"`
	DueDate     *time.Time   `json:"due_date"`
	Completed   bool         `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time   `json:"completed_at"`
	OwnerID     *uint64      `json:"owner_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}
