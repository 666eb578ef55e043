package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aorus88/TaskFlow-sub000/internal/models"
)

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

var (
	ErrNoTarget          = errors.New("no timer target selected")
	ErrInvalidDuration   = errors.New("timer duration must be positive")
	ErrInvalidTransition = errors.New("timer command is not valid in the current state")
	ErrNotIdle           = errors.New("timer settings can only change while idle")
)

// Target identifies what an elapsed interval is attributed to: always a
// task, and optionally a specific subtask within it.
type Target struct {
	TaskID   uint64             `json:"task_id"`
	Type     models.SessionType `json:"type"`
	TargetID uint64             `json:"target_id"`
}

// Recorder persists an elapsed interval. The machine never retries a failed
// record; it keeps its elapsed computation so the caller can.
type Recorder interface {
	RecordElapsed(target Target, minutes int, endedAt time.Time) error
}

// Machine is a single-focus countdown. One mutex serializes commands with
// ticks, so no two transitions are ever evaluated concurrently. One machine
// instance exists per process.
type Machine struct {
	mu       sync.Mutex
	recorder Recorder

	state     State
	duration  int // configured minutes
	remaining int
	target    *Target

	now func() time.Time
}

// NewMachine creates an idle machine with the given default countdown.
func NewMachine(recorder Recorder, defaultMinutes int) *Machine {
	return &Machine{
		recorder:  recorder,
		state:     StateIdle,
		duration:  defaultMinutes,
		remaining: defaultMinutes,
		now:       time.Now,
	}
}

// Snapshot is a point-in-time view of the machine.
type Snapshot struct {
	State     State   `json:"state"`
	Duration  int     `json:"duration_minutes"`
	Remaining int     `json:"remaining_minutes"`
	Elapsed   int     `json:"elapsed_minutes"`
	Target    *Target `json:"target,omitempty"`
}

// Configure sets the countdown length and the session target. Only valid
// while idle.
func (m *Machine) Configure(minutes int, target Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle {
		return ErrNotIdle
	}
	if minutes <= 0 {
		return ErrInvalidDuration
	}
	if target.TaskID == 0 {
		return ErrNoTarget
	}
	if target.Type == "" {
		target.Type = models.SessionTypeTask
	}
	if target.Type == models.SessionTypeTask {
		target.TargetID = target.TaskID
	} else if target.TargetID == 0 {
		return ErrNoTarget
	}

	m.duration = minutes
	m.remaining = minutes
	m.target = &target
	return nil
}

// Start begins the countdown. Fails if no target has been configured.
func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle {
		return ErrInvalidTransition
	}
	if m.target == nil {
		return ErrNoTarget
	}

	m.remaining = m.duration
	m.state = StateRunning
	return nil
}

// Pause suspends a running countdown without losing elapsed time.
func (m *Machine) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateRunning {
		return ErrInvalidTransition
	}
	m.state = StatePaused
	return nil
}

// Resume continues a paused countdown.
func (m *Machine) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePaused {
		return ErrInvalidTransition
	}
	m.state = StateRunning
	return nil
}

// Stop ends the countdown early. Elapsed time is recorded as a session; the
// unconsumed remainder is discarded. With zero elapsed time nothing is
// recorded. The countdown is only reset after a successful record, so a
// failed record leaves the elapsed computation intact for a retry.
func (m *Machine) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateRunning && m.state != StatePaused {
		return ErrInvalidTransition
	}

	elapsed := m.duration - m.remaining
	if elapsed <= 0 {
		m.reset()
		return nil
	}

	if err := m.recorder.RecordElapsed(*m.target, elapsed, m.now()); err != nil {
		// Park so Stop can be retried with the same elapsed value.
		m.state = StatePaused
		return fmt.Errorf("failed to record session: %w", err)
	}

	m.reset()
	return nil
}

// Tick consumes one minute of a running countdown. Reaching zero records a
// session for the full configured duration and auto-resets to idle with a
// fresh countdown. Ticks outside the running state are ignored.
func (m *Machine) Tick() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateRunning {
		return nil
	}

	m.remaining--
	if m.remaining > 0 {
		return nil
	}
	m.remaining = 0

	if err := m.recorder.RecordElapsed(*m.target, m.duration, m.now()); err != nil {
		m.state = StatePaused
		return fmt.Errorf("failed to record session: %w", err)
	}

	m.reset()
	return nil
}

// Run drives the countdown on a wall-clock cadence until ctx is done. One
// interval equals one simulated minute.
func (m *Machine) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Record failures are surfaced through Snapshot's parked
			// state; the loop itself keeps going.
			_ = m.Tick()
		}
	}
}

// Snapshot returns the current machine state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		State:     m.state,
		Duration:  m.duration,
		Remaining: m.remaining,
		Elapsed:   m.duration - m.remaining,
		Target:    m.target,
	}
}

// reset returns to idle with a fresh countdown, keeping configuration.
func (m *Machine) reset() {
	m.state = StateIdle
	m.remaining = m.duration
}
