package handlers

import (
	"errors"
	"net/http"

	apierrors "github.com/aorus88/TaskFlow-sub000/internal/errors"
	"github.com/aorus88/TaskFlow-sub000/internal/middleware"
	"github.com/aorus88/TaskFlow-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type ArchiveHandler struct {
	archiveService *services.ArchiveService
}

func NewArchiveHandler(archiveService *services.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{archiveService: archiveService}
}

// ArchiveTask closes a task, either immediately or after the grace window
// when the caller asks for a delayed archive.
func (h *ArchiveHandler) ArchiveTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type ArchiveRequest struct {
		Delayed bool `json:"delayed"`
	}

	var req ArchiveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	pending, err := h.archiveService.Archive(task.ID, req.Delayed)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			apierrors.NotFound(c, "Task not found")
			return
		}
		apierrors.StorageError(c, "Failed to archive task")
		return
	}

	if pending {
		c.JSON(http.StatusAccepted, gin.H{
			"message": "Archive pending",
			"pending": true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task archived",
		"pending": false,
	})
}

// CancelArchive stops a pending deferred archive before it commits.
func (h *ArchiveHandler) CancelArchive(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if !h.archiveService.CancelPendingArchive(task.ID) {
		apierrors.NotFound(c, "No pending archive for this task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Pending archive cancelled"})
}
