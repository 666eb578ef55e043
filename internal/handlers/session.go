package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aorus88/TaskFlow-sub000/internal/dto"
	apierrors "github.com/aorus88/TaskFlow-sub000/internal/errors"
	"github.com/aorus88/TaskFlow-sub000/internal/middleware"
	"github.com/aorus88/TaskFlow-sub000/internal/models"
	"github.com/aorus88/TaskFlow-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// AddSession records a session against the task or one of its subtasks.
func (h *SessionHandler) AddSession(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type AddSessionRequest struct {
		Duration int                `json:"duration" binding:"required"`
		Date     time.Time          `json:"date"`
		Type     models.SessionType `json:"type"`
		TargetID uint64             `json:"target_id"`
	}

	var req AddSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.sessionService.RecordSession(services.RecordSessionInput{
		TaskID:   task.ID,
		Duration: req.Duration,
		Date:     req.Date,
		Type:     req.Type,
		TargetID: req.TargetID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSession), errors.Is(err, services.ErrInvalidSessionType):
			apierrors.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrTaskNotFound), errors.Is(err, services.ErrSubtaskNotFound):
			apierrors.NotFound(c, err.Error())
		case errors.Is(err, services.ErrTaskClosed):
			apierrors.InvalidState(c, err.Error())
		default:
			apierrors.StorageError(c, "Failed to record session")
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*updated))
}

// DeleteSession removes a single session. Sessions are immutable, so
// deletion is the only mutation they support.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	sessionID, err := strconv.ParseUint(c.Param("session_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid session ID")
		return
	}

	if err := h.sessionService.DeleteSession(task.ID, sessionID); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			apierrors.NotFound(c, "Session not found")
			return
		}
		apierrors.StorageError(c, "Failed to delete session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}
