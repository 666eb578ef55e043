package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aorus88/TaskFlow-sub000/internal/dto"
	apierrors "github.com/aorus88/TaskFlow-sub000/internal/errors"
	"github.com/aorus88/TaskFlow-sub000/internal/middleware"
	"github.com/aorus88/TaskFlow-sub000/internal/models"
	"github.com/aorus88/TaskFlow-sub000/internal/repository"
	"github.com/aorus88/TaskFlow-sub000/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SubtaskHandler struct {
	taskRepo       repository.TaskRepository
	archiveService *services.ArchiveService
}

func NewSubtaskHandler(taskRepo repository.TaskRepository, archiveService *services.ArchiveService) *SubtaskHandler {
	return &SubtaskHandler{
		taskRepo:       taskRepo,
		archiveService: archiveService,
	}
}

// AddSubtask appends a named subtask to the task. Duplicate names within the
// same task are rejected.
func (h *SubtaskHandler) AddSubtask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if task.Archived == models.StatusClosed {
		apierrors.InvalidState(c, "Cannot add subtasks to an archived task")
		return
	}

	type AddSubtaskRequest struct {
		Name     string          `json:"name" binding:"required"`
		Priority models.Priority `json:"priority"`
	}

	var req AddSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if !req.Priority.IsValid() {
		apierrors.BadRequest(c, "Priority must be low, medium or high")
		return
	}

	subtask := &models.Subtask{
		Name:     req.Name,
		Priority: req.Priority,
		Archived: models.StatusOpen,
	}

	updated, err := h.taskRepo.AddSubtask(task.ID, subtask)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			apierrors.Conflict(c, "A subtask with this name already exists on the task")
			return
		}
		apierrors.StorageError(c, "Failed to add subtask")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*updated))
}

// UpdateSubtaskStatus archives or reopens a single subtask without touching
// the owning task's status.
func (h *SubtaskHandler) UpdateSubtaskStatus(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	subtaskID, err := strconv.ParseUint(c.Param("subtask_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid subtask ID")
		return
	}

	type UpdateStatusRequest struct {
		Archived models.ArchivedStatus `json:"archived" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if !req.Archived.IsValid() {
		apierrors.BadRequest(c, "Archived must be open or closed")
		return
	}

	var updated *models.Task
	if req.Archived == models.StatusClosed {
		updated, err = h.archiveService.ArchiveSubtask(task.ID, subtaskID)
	} else {
		updated, err = h.archiveService.ReopenSubtask(task.ID, subtaskID)
	}
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSubtaskNotFound):
			apierrors.NotFound(c, "Subtask not found")
		case errors.Is(err, services.ErrTaskClosed):
			apierrors.InvalidState(c, "Cannot change subtasks of an archived task")
		default:
			apierrors.StorageError(c, "Failed to update subtask")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteSubtask hard deletes a subtask. Sessions recorded against it stay on
// the owning task.
func (h *SubtaskHandler) DeleteSubtask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	subtaskID, err := strconv.ParseUint(c.Param("subtask_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid subtask ID")
		return
	}

	if err := h.archiveService.DeleteSubtask(task.ID, subtaskID); err != nil {
		if errors.Is(err, services.ErrSubtaskNotFound) {
			apierrors.NotFound(c, "Subtask not found")
			return
		}
		apierrors.StorageError(c, "Failed to delete subtask")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subtask deleted"})
}
