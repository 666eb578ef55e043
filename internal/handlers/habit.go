package handlers

import (
	"net/http"
	"time"

	"github.com/aorus88/TaskFlow-sub000/internal/dto"
	apierrors "github.com/aorus88/TaskFlow-sub000/internal/errors"
	"github.com/aorus88/TaskFlow-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type HabitHandler struct {
	habitService *services.HabitService
}

func NewHabitHandler(habitService *services.HabitService) *HabitHandler {
	return &HabitHandler{habitService: habitService}
}

// Regenerate stamps today's habit instances from open templates. Safe to
// call any number of times per day; repeat calls create nothing.
func (h *HabitHandler) Regenerate(c *gin.Context) {
	type RegenerateRequest struct {
		Now *time.Time `json:"now"`
	}

	var req RegenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	now := time.Now()
	if req.Now != nil {
		now = *req.Now
	}

	created, err := h.habitService.Regenerate(now)
	if err != nil {
		apierrors.StorageError(c, "Failed to regenerate habits")
		return
	}

	items := make([]dto.TaskDTO, len(created))
	for i, task := range created {
		items[i] = dto.ToTaskDTO(task)
	}

	c.JSON(http.StatusOK, gin.H{
		"created":       items,
		"created_count": len(items),
	})
}
