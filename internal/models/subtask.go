package models

import (
	"time"

	"gorm.io/gorm"
)

type Subtask struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	TaskID     uint64         `gorm:"not null;uniqueIndex:idx_subtask_task_name" json:"task_id"`
	Name       string         `gorm:"not null;uniqueIndex:idx_subtask_task_name" json:"name"`
	Priority   Priority       `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	Archived   ArchivedStatus `gorm:"type:varchar(10);not null;default:'open'" json:"archived"`
	ArchivedAt *time.Time     `json:"archived_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
