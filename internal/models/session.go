package models

import "time"

type SessionType string

const (
	SessionTypeTask    SessionType = "task"
	SessionTypeSubtask SessionType = "subtask"
)

func (t SessionType) IsValid() bool {
	return t == SessionTypeTask || t == SessionTypeSubtask
}

// Session is an immutable record of elapsed minutes attributed to a task or
// to one of its subtasks. Sessions are only ever created and deleted, never
// edited.
type Session struct {
	ID       uint64 `gorm:"primarykey" json:"id"`
	TaskID   uint64 `gorm:"not null;index" json:"task_id"`
	Duration int    `gorm:"not null" json:"duration"`
	// Date marks when the recorded interval ended.
	Date      time.Time   `gorm:"not null" json:"date"`
	Type      SessionType `gorm:"type:varchar(10);not null;default:'task'" json:"type"`
	TargetID  uint64      `gorm:"not null" json:"target_id"`
	CreatedAt time.Time   `json:"created_at"`
}
