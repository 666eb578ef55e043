package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/aorus88/TaskFlow-sub000/internal/models"
	"github.com/aorus88/TaskFlow-sub000/internal/repository"
	"gorm.io/gorm"
)

// ArchiveService moves tasks and subtasks from open to closed. A delayed
// archive stays cancellable for a grace window before the closed status is
// durably committed; deletion is always immediate and irreversible.
type ArchiveService struct {
	taskRepo repository.TaskRepository
	grace    time.Duration

	mu      sync.Mutex
	pending map[uint64]*time.Timer

	now func() time.Time
}

// NewArchiveService creates a new ArchiveService
func NewArchiveService(taskRepo repository.TaskRepository, grace time.Duration) *ArchiveService {
	return &ArchiveService{
		taskRepo: taskRepo,
		grace:    grace,
		pending:  make(map[uint64]*time.Timer),
		now:      time.Now,
	}
}

// Archive marks a task closed. With delayed=true the write is deferred for
// the grace window and the task stays queryable as open meanwhile; a second
// delayed call while one is pending collapses onto the outstanding timer.
// Returns whether the archive is now pending rather than committed.
func (s *ArchiveService) Archive(taskID uint64, delayed bool) (bool, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrTaskNotFound
		}
		return false, fmt.Errorf("failed to find task: %w", err)
	}

	if !delayed {
		s.CancelPendingArchive(taskID)
		if err := s.archiveNow(taskID); err != nil {
			return false, err
		}
		return false, nil
	}

	if task.Archived == models.StatusClosed {
		// Nothing to defer, and the original archival timestamp stands.
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pending[taskID]; exists {
		return true, nil
	}
	s.pending[taskID] = time.AfterFunc(s.grace, func() {
		s.finalize(taskID)
	})
	return true, nil
}

// CancelPendingArchive stops a deferred archive before it commits. Returns
// whether anything was pending.
func (s *ArchiveService) CancelPendingArchive(taskID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer, exists := s.pending[taskID]
	if !exists {
		return false
	}
	timer.Stop()
	delete(s.pending, taskID)
	return true
}

// HasPending reports whether a deferred archive is outstanding for the task.
func (s *ArchiveService) HasPending(taskID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.pending[taskID]
	return exists
}

// ArchiveSubtask closes a single subtask without touching the owning task.
// Subtasks of a closed task are frozen along with it.
func (s *ArchiveService) ArchiveSubtask(taskID, subtaskID uint64) (*models.Task, error) {
	if err := s.requireOpenTask(taskID); err != nil {
		return nil, err
	}
	now := s.now()
	task, err := s.taskRepo.SetSubtaskArchived(taskID, subtaskID, models.StatusClosed, &now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubtaskNotFound
		}
		return nil, fmt.Errorf("failed to archive subtask: %w", err)
	}
	return task, nil
}

// ReopenSubtask clears a subtask's closed status.
func (s *ArchiveService) ReopenSubtask(taskID, subtaskID uint64) (*models.Task, error) {
	if err := s.requireOpenTask(taskID); err != nil {
		return nil, err
	}
	task, err := s.taskRepo.SetSubtaskArchived(taskID, subtaskID, models.StatusOpen, nil)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubtaskNotFound
		}
		return nil, fmt.Errorf("failed to reopen subtask: %w", err)
	}
	return task, nil
}

func (s *ArchiveService) requireOpenTask(taskID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}
	if task.Archived == models.StatusClosed {
		return ErrTaskClosed
	}
	return nil
}

// DeleteTask hard deletes a task immediately, dropping any pending archive.
func (s *ArchiveService) DeleteTask(taskID uint64) error {
	s.CancelPendingArchive(taskID)
	if err := s.taskRepo.Delete(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// DeleteSubtask hard deletes a subtask. Sessions attributed to it stay on
// the owning task so recorded work never silently disappears.
func (s *ArchiveService) DeleteSubtask(taskID, subtaskID uint64) error {
	if err := s.taskRepo.DeleteSubtask(taskID, subtaskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubtaskNotFound
		}
		return fmt.Errorf("failed to delete subtask: %w", err)
	}
	return nil
}

func (s *ArchiveService) archiveNow(taskID uint64) error {
	now := s.now()
	if err := s.taskRepo.SetArchived(taskID, models.StatusClosed, &now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to archive task: %w", err)
	}
	return nil
}

// finalize commits a deferred archive after the grace window. It removes
// itself from the pending map first so a racing cancel is a clean miss, and
// the status write itself is idempotent.
func (s *ArchiveService) finalize(taskID uint64) {
	s.mu.Lock()
	if _, exists := s.pending[taskID]; !exists {
		s.mu.Unlock()
		return
	}
	delete(s.pending, taskID)
	s.mu.Unlock()

	if err := s.archiveNow(taskID); err != nil {
		log.Printf("deferred archive of task %d failed: %v", taskID, err)
	}
}
