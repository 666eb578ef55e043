package repository

import (
	"errors"
	"time"

	"github.com/aorus88/TaskFlow-sub000/internal/database"
	"github.com/aorus88/TaskFlow-sub000/internal/models"
	"github.com/aorus88/TaskFlow-sub000/internal/utils"
	"gorm.io/gorm"
)

// ErrVersionConflict is returned when a session write loses a
// compare-and-swap race against a concurrent recorder. Nothing is persisted;
// the caller reloads and retries.
var ErrVersionConflict = errors.New("task was modified concurrently")

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if filter.Archived != nil {
		query = query.Where("tasks.archived = ?", *filter.Archived)
	}
	if filter.Kind != nil {
		query = query.Where("tasks.kind = ?", *filter.Kind)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueDateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if filter.SortByDueDate {
		listQuery = listQuery.Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC")
	} else {
		listQuery = listQuery.Order("tasks.created_at DESC")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Preload("Subtasks").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete hard deletes a task together with its subtasks and sessions
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Unscoped().Delete(&models.Subtask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return err
		}

		result := tx.Unscoped().Delete(&models.Task{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// SetArchived writes the archival status and timestamp
func (r *GormTaskRepository) SetArchived(taskID uint64, status models.ArchivedStatus, at *time.Time) error {
	result := r.db.Model(&models.Task{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"archived":    status,
			"archived_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddSubtask appends a subtask to a task
func (r *GormTaskRepository) AddSubtask(taskID uint64, subtask *models.Subtask) (*models.Task, error) {
	subtask.TaskID = taskID
	if err := r.db.Create(subtask).Error; err != nil {
		return nil, err
	}
	return r.FindByID(taskID, "Subtasks", "Sessions")
}

// SetSubtaskArchived writes a subtask's archival status and timestamp
func (r *GormTaskRepository) SetSubtaskArchived(taskID, subtaskID uint64, status models.ArchivedStatus, at *time.Time) (*models.Task, error) {
	result := r.db.Model(&models.Subtask{}).
		Where("id = ? AND task_id = ?", subtaskID, taskID).
		Updates(map[string]interface{}{
			"archived":    status,
			"archived_at": at,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(taskID, "Subtasks", "Sessions")
}

// DeleteSubtask removes a subtask; its sessions remain on the owning task
func (r *GormTaskRepository) DeleteSubtask(taskID, subtaskID uint64) error {
	result := r.db.Where("id = ? AND task_id = ?", subtaskID, taskID).
		Unscoped().Delete(&models.Subtask{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddSession appends a session and recomputes the task total in one
// transaction. The version check makes concurrent recorders fail loudly
// instead of overwriting each other's totals.
func (r *GormTaskRepository) AddSession(task *models.Task, session *models.Session) (*models.Task, error) {
	session.TaskID = task.ID

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}

		var total int64
		if err := tx.Model(&models.Session{}).
			Where("task_id = ?", task.ID).
			Select("COALESCE(SUM(duration), 0)").
			Scan(&total).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Task{}).
			Where("id = ? AND version = ?", task.ID, task.Version).
			Updates(map[string]interface{}{
				"total_minutes": total,
				"version":       task.Version + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVersionConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(task.ID, "Subtasks", "Sessions")
}

// DeleteSession removes a session and recomputes the task total
func (r *GormTaskRepository) DeleteSession(taskID, sessionID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND task_id = ?", sessionID, taskID).
			Delete(&models.Session{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var total int64
		if err := tx.Model(&models.Session{}).
			Where("task_id = ?", taskID).
			Select("COALESCE(SUM(duration), 0)").
			Scan(&total).Error; err != nil {
			return err
		}

		return tx.Model(&models.Task{}).
			Where("id = ?", taskID).
			Updates(map[string]interface{}{
				"total_minutes": total,
				"version":       gorm.Expr("version + 1"),
			}).Error
	})
}

// ListHabitTemplates returns open habit tasks without a day
func (r *GormTaskRepository) ListHabitTemplates() ([]models.Task, error) {
	var templates []models.Task
	err := r.db.
		Where("kind = ? AND archived = ? AND day IS NULL", models.KindHabit, models.StatusOpen).
		Preload("Subtasks").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

// HabitInstanceExists reports whether a dated instance exists for the day
func (r *GormTaskRepository) HabitInstanceExists(name, day string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("name = ? AND kind = ? AND day = ?", name, models.KindHabit, day).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
