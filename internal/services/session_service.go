package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/aorus88/TaskFlow-sub000/internal/models"
	"github.com/aorus88/TaskFlow-sub000/internal/repository"
	"github.com/aorus88/TaskFlow-sub000/internal/timer"
	"gorm.io/gorm"
)

var (
	ErrInvalidSession     = errors.New("session duration must be positive")
	ErrInvalidSessionType = errors.New("session type must be task or subtask")
	ErrTaskNotFound       = errors.New("task not found")
	ErrSubtaskNotFound    = errors.New("subtask does not belong to this task")
	ErrSessionNotFound    = errors.New("session not found")
	ErrTaskClosed         = errors.New("task is archived")
)

// SessionService records elapsed timer intervals as immutable sessions
// attached to a task or to one of its subtasks.
type SessionService struct {
	taskRepo repository.TaskRepository
}

// NewSessionService creates a new SessionService
func NewSessionService(taskRepo repository.TaskRepository) *SessionService {
	return &SessionService{taskRepo: taskRepo}
}

// RecordSessionInput represents input for recording a session
type RecordSessionInput struct {
	TaskID   uint64
	Duration int
	Date     time.Time
	Type     models.SessionType
	TargetID uint64
}

// RecordSession validates the input, checks subtask containment, and
// persists the session together with the recomputed task total in a single
// atomic write. On any failure nothing is persisted.
func (s *SessionService) RecordSession(input RecordSessionInput) (*models.Task, error) {
	if input.Duration <= 0 {
		return nil, ErrInvalidSession
	}
	if input.Type == "" {
		input.Type = models.SessionTypeTask
	}
	if !input.Type.IsValid() {
		return nil, ErrInvalidSessionType
	}

	task, err := s.taskRepo.FindByID(input.TaskID, "Subtasks")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.Archived == models.StatusClosed {
		return nil, ErrTaskClosed
	}

	targetID := task.ID
	if input.Type == models.SessionTypeSubtask {
		subtask := task.FindSubtask(input.TargetID)
		if subtask == nil {
			return nil, ErrSubtaskNotFound
		}
		targetID = subtask.ID
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	session := &models.Session{
		Duration: input.Duration,
		Date:     date,
		Type:     input.Type,
		TargetID: targetID,
	}

	updated, err := s.taskRepo.AddSession(task, session)
	if err != nil {
		return nil, fmt.Errorf("failed to record session: %w", err)
	}

	return updated, nil
}

// DeleteSession removes a session from a task
func (s *SessionService) DeleteSession(taskID, sessionID uint64) error {
	if err := s.taskRepo.DeleteSession(taskID, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RecordElapsed implements timer.Recorder so a countdown machine can hand
// its elapsed intervals to the session store.
func (s *SessionService) RecordElapsed(target timer.Target, minutes int, endedAt time.Time) error {
	_, err := s.RecordSession(RecordSessionInput{
		TaskID:   target.TaskID,
		Duration: minutes,
		Date:     endedAt,
		Type:     target.Type,
		TargetID: target.TargetID,
	})
	return err
}
