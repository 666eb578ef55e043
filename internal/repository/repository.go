package repository

import (
	"time"

	"github.com/aorus88/TaskFlow-sub000/internal/models"
)

// TaskRepository defines the interface for task data access. Tasks own their
// subtasks and sessions; every write below is atomic at task granularity.
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete hard deletes a task together with its subtasks and sessions
	Delete(id uint64) error

	// SetArchived writes the archival status and timestamp. The write is
	// idempotent: setting an already-closed task closed is not an error.
	SetArchived(taskID uint64, status models.ArchivedStatus, at *time.Time) error

	// AddSubtask appends a subtask to a task. A duplicate name within the
	// same task fails with gorm.ErrDuplicatedKey.
	AddSubtask(taskID uint64, subtask *models.Subtask) (*models.Task, error)

	// SetSubtaskArchived writes a subtask's archival status and timestamp
	// without touching the owning task's status.
	SetSubtaskArchived(taskID, subtaskID uint64, status models.ArchivedStatus, at *time.Time) (*models.Task, error)

	// DeleteSubtask removes a subtask. Sessions attributed to it stay on
	// the owning task.
	DeleteSubtask(taskID, subtaskID uint64) error

	// AddSession appends a session and recomputes the task's stored total
	// in one transaction, guarded by a compare-and-swap on the version the
	// caller loaded. Returns the reloaded task.
	AddSession(task *models.Task, session *models.Session) (*models.Task, error)

	// DeleteSession removes a session and recomputes the task total.
	DeleteSession(taskID, sessionID uint64) error

	// ListHabitTemplates returns open habit tasks that carry no day, i.e.
	// the patterns daily instances are stamped from.
	ListHabitTemplates() ([]models.Task, error)

	// HabitInstanceExists reports whether a dated instance already exists
	// for the given template name and calendar day.
	HabitInstanceExists(name, day string) (bool, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Archived      *models.ArchivedStatus
	Kind          *models.TaskKind
	DueDateFrom   *time.Time
	DueDateTo     *time.Time
	SortByDueDate bool
	Page          int
	PageSize      int
}
