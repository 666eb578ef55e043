package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether p is one of the three known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type TaskKind string

const (
	KindTask  TaskKind = "task"
	KindHabit TaskKind = "habit"
)

func (k TaskKind) IsValid() bool {
	return k == KindTask || k == KindHabit
}

type ArchivedStatus string

const (
	StatusOpen   ArchivedStatus = "open"
	StatusClosed ArchivedStatus = "closed"
)

func (s ArchivedStatus) IsValid() bool {
	return s == StatusOpen || s == StatusClosed
}

// StringList stores category labels as a JSON array in a single text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type %T for StringList", value)
	}
}

type Task struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	Name       string         `gorm:"not null;uniqueIndex:idx_habit_instance_day" json:"name"`
	DueDate    *time.Time     `json:"due_date"`
	Priority   Priority       `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	Categories StringList     `gorm:"type:text" json:"categories"`
	Kind       TaskKind       `gorm:"type:varchar(10);not null;default:'task';uniqueIndex:idx_habit_instance_day" json:"kind"`
	Day        *string        `gorm:"type:varchar(10);uniqueIndex:idx_habit_instance_day" json:"day,omitempty"`
	Archived   ArchivedStatus `gorm:"type:varchar(10);not null;default:'open'" json:"archived"`
	ArchivedAt *time.Time     `json:"archived_at"`
	// TotalMinutes is recomputed from sessions on every session write.
	TotalMinutes int            `gorm:"not null;default:0" json:"total_minutes"`
	Version      uint64         `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Sessions []Session `gorm:"foreignKey:TaskID" json:"sessions,omitempty"`
	Subtasks []Subtask `gorm:"foreignKey:TaskID" json:"subtasks,omitempty"`
}

// IsHabitTemplate reports whether the task is a habit pattern rather than a
// dated instance. Templates carry no Day; instances always do.
func (t *Task) IsHabitTemplate() bool {
	return t.Kind == KindHabit && t.Day == nil
}

// FindSubtask returns the subtask with the given ID, or nil if the task does
// not own it.
func (t *Task) FindSubtask(subtaskID uint64) *Subtask {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			return &t.Subtasks[i]
		}
	}
	return nil
}

// SessionsFor returns the sessions attributed to a specific subtask.
func (t *Task) SessionsFor(subtaskID uint64) []Session {
	var out []Session
	for _, s := range t.Sessions {
		if s.Type == SessionTypeSubtask && s.TargetID == subtaskID {
			out = append(out, s)
		}
	}
	return out
}
