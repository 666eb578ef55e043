package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/aorus88/TaskFlow-sub000/internal/dto"
	apierrors "github.com/aorus88/TaskFlow-sub000/internal/errors"
	"github.com/aorus88/TaskFlow-sub000/internal/middleware"
	"github.com/aorus88/TaskFlow-sub000/internal/models"
	"github.com/aorus88/TaskFlow-sub000/internal/repository"
	"github.com/aorus88/TaskFlow-sub000/internal/services"
	"github.com/aorus88/TaskFlow-sub000/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TaskHandler struct {
	taskRepo       repository.TaskRepository
	archiveService *services.ArchiveService
}

func NewTaskHandler(taskRepo repository.TaskRepository, archiveService *services.ArchiveService) *TaskHandler {
	return &TaskHandler{
		taskRepo:       taskRepo,
		archiveService: archiveService,
	}
}

// ListTasks returns tasks filtered by archival status and kind.
// The default query set is open tasks only.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := repository.TaskFilter{
		Page:          params.Page,
		PageSize:      params.Limit,
		SortByDueDate: c.Query("sort") == "due_date",
	}

	switch archived := c.DefaultQuery("archived", string(models.StatusOpen)); archived {
	case "all":
		// no status filter
	default:
		status := models.ArchivedStatus(archived)
		if !status.IsValid() {
			apierrors.BadRequest(c, "Invalid archived filter")
			return
		}
		filter.Archived = &status
	}

	if kindStr := c.Query("kind"); kindStr != "" {
		kind := models.TaskKind(kindStr)
		if !kind.IsValid() {
			apierrors.BadRequest(c, "Invalid kind filter")
			return
		}
		filter.Kind = &kind
	}

	if c.Query("due_today") == "true" {
		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endOfDay := startOfDay.Add(24 * time.Hour)
		filter.DueDateFrom = &startOfDay
		filter.DueDateTo = &endOfDay
	}

	tasks, total, err := h.taskRepo.List(filter)
	if err != nil {
		apierrors.StorageError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskListItems(tasks),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetTask returns a specific task by ID
// Task is already loaded with relations by RequireTask middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Name       string          `json:"name" binding:"required"`
		DueDate    *time.Time      `json:"due_date"`
		Priority   models.Priority `json:"priority"`
		Categories []string        `json:"categories"`
		Kind       models.TaskKind `json:"kind"`
	}

	var req CreateTaskRequest
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
	if req.Kind == "" {
		req.Kind = models.KindTask
	}
	if !req.Kind.IsValid() {
		apierrors.BadRequest(c, "Kind must be task or habit")
		return
	}

	task := &models.Task{
		Name:       req.Name,
		DueDate:    req.DueDate,
		Priority:   req.Priority,
		Categories: req.Categories,
		Kind:       req.Kind,
		Archived:   models.StatusOpen,
	}

	if err := h.taskRepo.Create(task); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			apierrors.Conflict(c, "A task with this name already exists for the day")
			return
		}
		apierrors.StorageError(c, "Failed to create task")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates fields of an existing task. Only fields present in the
// request body are touched; sending "archived" here is the documented direct
// edit that reverses an archival.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if name, ok := rawReq["name"]; ok {
		nameStr, ok := name.(string)
		if !ok || nameStr == "" {
			apierrors.BadRequest(c, "Name cannot be empty")
			return
		}
		task.Name = nameStr
	}
	if _, ok := rawReq["due_date"]; ok {
		if rawReq["due_date"] == nil {
			task.DueDate = nil
		} else if dateStr, ok := rawReq["due_date"].(string); ok {
			parsed, err := time.Parse(time.RFC3339, dateStr)
			if err != nil {
				apierrors.BadRequest(c, "Invalid due_date format")
				return
			}
			task.DueDate = &parsed
		}
	}
	if priority, ok := rawReq["priority"]; ok {
		priorityStr, _ := priority.(string)
		p := models.Priority(priorityStr)
		if !p.IsValid() {
			apierrors.BadRequest(c, "Priority must be low, medium or high")
			return
		}
		task.Priority = p
	}
	if categories, ok := rawReq["categories"]; ok {
		list, ok := categories.([]any)
		if !ok {
			apierrors.BadRequest(c, "Categories must be a list of strings")
			return
		}
		out := make(models.StringList, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				apierrors.BadRequest(c, "Categories must be a list of strings")
				return
			}
			out = append(out, s)
		}
		task.Categories = out
	}
	if archived, ok := rawReq["archived"]; ok {
		archivedStr, _ := archived.(string)
		status := models.ArchivedStatus(archivedStr)
		if !status.IsValid() {
			apierrors.BadRequest(c, "Archived must be open or closed")
			return
		}
		task.Archived = status
		if status == models.StatusOpen {
			task.ArchivedAt = nil
		} else if task.ArchivedAt == nil {
			now := time.Now()
			task.ArchivedAt = &now
		}
	}

	if err := h.taskRepo.Update(&task); err != nil {
		apierrors.StorageError(c, "Failed to update task")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// DeleteTask hard deletes a task. Unlike archival this is immediate and
// irreversible, and drops any pending deferred archive on the way out.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.archiveService.DeleteTask(task.ID); err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			apierrors.NotFound(c, "Task not found")
			return
		}
		apierrors.StorageError(c, "Failed to delete task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}
