package handlers

import (
	"errors"
	"net/http"

	apierrors "github.com/aorus88/TaskFlow-sub000/internal/errors"
	"github.com/aorus88/TaskFlow-sub000/internal/models"
	"github.com/aorus88/TaskFlow-sub000/internal/timer"
	"github.com/gin-gonic/gin"
)

// TimerHandler exposes the process-wide countdown machine. All commands go
// through the machine's own serialization; the handler only translates
// errors into the API taxonomy.
type TimerHandler struct {
	machine *timer.Machine
}

func NewTimerHandler(machine *timer.Machine) *TimerHandler {
	return &TimerHandler{machine: machine}
}

// GetTimer returns a snapshot of the machine state.
func (h *TimerHandler) GetTimer(c *gin.Context) {
	c.JSON(http.StatusOK, h.machine.Snapshot())
}

// Configure sets the countdown length and target while idle.
func (h *TimerHandler) Configure(c *gin.Context) {
	type ConfigureRequest struct {
		DurationMinutes int                `json:"duration_minutes" binding:"required"`
		TargetType      models.SessionType `json:"target_type"`
		TaskID          uint64             `json:"task_id" binding:"required"`
		TargetID        uint64             `json:"target_id"`
	}

	var req ConfigureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if req.TargetType != "" && !req.TargetType.IsValid() {
		apierrors.BadRequest(c, "Target type must be task or subtask")
		return
	}

	err := h.machine.Configure(req.DurationMinutes, timer.Target{
		TaskID:   req.TaskID,
		Type:     req.TargetType,
		TargetID: req.TargetID,
	})
	if err != nil {
		h.respondTimerError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.machine.Snapshot())
}

// Start begins the countdown.
func (h *TimerHandler) Start(c *gin.Context) {
	h.command(c, h.machine.Start)
}

// Pause suspends the countdown.
func (h *TimerHandler) Pause(c *gin.Context) {
	h.command(c, h.machine.Pause)
}

// Resume continues a paused countdown.
func (h *TimerHandler) Resume(c *gin.Context) {
	h.command(c, h.machine.Resume)
}

// Stop ends the countdown and records the elapsed time.
func (h *TimerHandler) Stop(c *gin.Context) {
	h.command(c, h.machine.Stop)
}

// Tick advances the countdown by one simulated minute. Deployments driving
// the machine off the wall clock use Run instead of this endpoint.
func (h *TimerHandler) Tick(c *gin.Context) {
	h.command(c, h.machine.Tick)
}

func (h *TimerHandler) command(c *gin.Context, cmd func() error) {
	if err := cmd(); err != nil {
		h.respondTimerError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.machine.Snapshot())
}

func (h *TimerHandler) respondTimerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, timer.ErrInvalidDuration), errors.Is(err, timer.ErrNoTarget):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, timer.ErrInvalidTransition), errors.Is(err, timer.ErrNotIdle):
		apierrors.InvalidState(c, err.Error())
	default:
		apierrors.StorageError(c, err.Error())
	}
}
