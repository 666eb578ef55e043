package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/aorus88/TaskFlow-sub000/internal/models"
	"github.com/aorus88/TaskFlow-sub000/internal/repository"
	"gorm.io/gorm"
)

const dayLayout = "2006-01-02"

// HabitService stamps one dated instance per open habit template per
// calendar day. Regenerate is idempotent and safe to call redundantly; the
// storage-level unique index on (name, kind, day) closes the
// check-then-create race between overlapping runs.
type HabitService struct {
	taskRepo repository.TaskRepository
}

// NewHabitService creates a new HabitService
func NewHabitService(taskRepo repository.TaskRepository) *HabitService {
	return &HabitService{taskRepo: taskRepo}
}

// Regenerate creates today's missing habit instances and returns only the
// newly created ones.
func (s *HabitService) Regenerate(now time.Time) ([]models.Task, error) {
	templates, err := s.taskRepo.ListHabitTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to list habit templates: %w", err)
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := startOfDay.Format(dayLayout)

	created := make([]models.Task, 0, len(templates))
	for _, template := range templates {
		exists, err := s.taskRepo.HabitInstanceExists(template.Name, day)
		if err != nil {
			return created, fmt.Errorf("failed to check habit instance for %q: %w", template.Name, err)
		}
		if exists {
			continue
		}

		instance := s.instantiate(template, now, day)
		if err := s.taskRepo.Create(instance); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A concurrent run won the race; the instance exists.
				continue
			}
			return created, fmt.Errorf("failed to create habit instance for %q: %w", template.Name, err)
		}
		created = append(created, *instance)
	}

	return created, nil
}

// instantiate builds a fresh dated task from a template. Subtasks are copied
// open with new identifiers; sessions are never carried over.
func (s *HabitService) instantiate(template models.Task, now time.Time, day string) *models.Task {
	dueDate := now
	instance := &models.Task{
		Name:       template.Name,
		DueDate:    &dueDate,
		Priority:   template.Priority,
		Categories: append(models.StringList{}, template.Categories...),
		Kind:       models.KindHabit,
		Day:        &day,
		Archived:   models.StatusOpen,
	}

	for _, subtask := range template.Subtasks {
		instance.Subtasks = append(instance.Subtasks, models.Subtask{
			Name:     subtask.Name,
			Priority: subtask.Priority,
			Archived: models.StatusOpen,
		})
	}

	return instance
}
