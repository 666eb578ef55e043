package dto

import (
	"time"

	"github.com/aorus88/TaskFlow-sub000/internal/models"
)

// SessionDTO represents a session in API responses
type SessionDTO struct {
	ID       uint64             `json:"id"`
	Duration int                `json:"duration"`
	Date     time.Time          `json:"date"`
	Type     models.SessionType `json:"type"`
	TargetID uint64             `json:"target_id"`
}

// SubtaskDTO represents a subtask with its own session slice and total
type SubtaskDTO struct {
	ID           uint64                `json:"id"`
	Name         string                `json:"name"`
	Priority     models.Priority       `json:"priority"`
	Archived     models.ArchivedStatus `json:"archived"`
	ArchivedAt   *time.Time            `json:"archived_at"`
	TotalMinutes int                   `json:"total_minutes"`
	Sessions     []SessionDTO          `json:"sessions,omitempty"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uint64                `json:"id"`
	Name         string                `json:"name"`
	DueDate      *time.Time            `json:"due_date"`
	Priority     models.Priority       `json:"priority"`
	Categories   []string              `json:"categories"`
	Kind         models.TaskKind       `json:"kind"`
	Day          *string               `json:"day,omitempty"`
	Archived     models.ArchivedStatus `json:"archived"`
	ArchivedAt   *time.Time            `json:"archived_at"`
	TotalMinutes int                   `json:"total_minutes"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	Sessions     []SessionDTO          `json:"sessions,omitempty"`
	Subtasks     []SubtaskDTO          `json:"subtasks,omitempty"`
}

// TaskListItemDTO represents a task in list responses (minimal data)
type TaskListItemDTO struct {
	ID           uint64                `json:"id"`
	Name         string                `json:"name"`
	DueDate      *time.Time            `json:"due_date"`
	Priority     models.Priority       `json:"priority"`
	Kind         models.TaskKind       `json:"kind"`
	Archived     models.ArchivedStatus `json:"archived"`
	TotalMinutes int                   `json:"total_minutes"`
	SubtaskCount int                   `json:"subtask_count"`
	CreatedAt    time.Time             `json:"created_at"`
}

// Conversion functions

// ToSessionDTO converts a Session model to SessionDTO
func ToSessionDTO(session models.Session) SessionDTO {
	return SessionDTO{
		ID:       session.ID,
		Duration: session.Duration,
		Date:     session.Date,
		Type:     session.Type,
		TargetID: session.TargetID,
	}
}

// ToTaskDTO converts a Task model to TaskDTO, attributing sessions to the
// subtasks they targeted.
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		Name:         task.Name,
		DueDate:      task.DueDate,
		Priority:     task.Priority,
		Categories:   task.Categories,
		Kind:         task.Kind,
		Day:          task.Day,
		Archived:     task.Archived,
		ArchivedAt:   task.ArchivedAt,
		TotalMinutes: task.TotalMinutes,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
	if dto.Categories == nil {
		dto.Categories = []string{}
	}

	for _, session := range task.Sessions {
		dto.Sessions = append(dto.Sessions, ToSessionDTO(session))
	}

	for _, subtask := range task.Subtasks {
		sub := SubtaskDTO{
			ID:         subtask.ID,
			Name:       subtask.Name,
			Priority:   subtask.Priority,
			Archived:   subtask.Archived,
			ArchivedAt: subtask.ArchivedAt,
		}
		for _, session := range task.SessionsFor(subtask.ID) {
			sub.Sessions = append(sub.Sessions, ToSessionDTO(session))
			sub.TotalMinutes += session.Duration
		}
		dto.Subtasks = append(dto.Subtasks, sub)
	}

	return dto
}

// ToTaskListItemDTO converts a Task model to TaskListItemDTO
func ToTaskListItemDTO(task models.Task) TaskListItemDTO {
	return TaskListItemDTO{
		ID:           task.ID,
		Name:         task.Name,
		DueDate:      task.DueDate,
		Priority:     task.Priority,
		Kind:         task.Kind,
		Archived:     task.Archived,
		TotalMinutes: task.TotalMinutes,
		SubtaskCount: len(task.Subtasks),
		CreatedAt:    task.CreatedAt,
	}
}

// ToTaskListItems converts a slice of tasks to list items
func ToTaskListItems(tasks []models.Task) []TaskListItemDTO {
	items := make([]TaskListItemDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskListItemDTO(task)
	}
	return items
}
