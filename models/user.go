package models

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID           string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Email        string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"column:name" json:"name"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	IsActive     bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"-"`
}

func (User) TableName() string { return "users" }

const (
	SyncStatusPending = "pending"
	SyncStatusDone    = "done"
	SyncStatusFailed  = "failed"

	SyncOpUpsert = "upsert"
)

// UserSyncEvent is an outbox row; it doubles as the audit trail of directory syncs.
type UserSyncEvent struct {
	ID          uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      string         `gorm:"column:user_id;index;not null" json:"user_id"`
	Op          string         `gorm:"column:op;not null" json:"op"`
	Payload     datatypes.JSON `gorm:"column:payload" json:"payload"`
	Status      string         `gorm:"column:status;index;not null" json:"status"`
	Attempts    int            `gorm:"column:attempts" json:"attempts"`
	LastError   string         `gorm:"column:last_error" json:"last_error,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`
	ProcessedAt *time.Time     `gorm:"column:processed_at" json:"processed_at,omitempty"`
}

func (UserSyncEvent) TableName() string { return "user_sync_events" }
