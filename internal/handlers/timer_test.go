package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aorus88/TaskFlow-sub000/internal/models"
	"github.com/aorus88/TaskFlow-sub000/internal/repository"
	"github.com/aorus88/TaskFlow-sub000/internal/services"
	"github.com/aorus88/TaskFlow-sub000/internal/timer"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TimerHandlerTestSuite drives the timer endpoints against a real machine
// recording into an in-memory store.
type TimerHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	repo   repository.TaskRepository
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *TimerHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.Task{},
		&models.Subtask{},
		&models.Session{},
	)
	suite.Require().NoError(err)

	suite.repo = repository.NewTaskRepository(suite.db)
	sessionService := services.NewSessionService(suite.repo)
	machine := timer.NewMachine(sessionService, 25)
	handler := NewTimerHandler(machine)

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.router.GET("/api/timer", handler.GetTimer)
	suite.router.POST("/api/timer/configure", handler.Configure)
	suite.router.POST("/api/timer/start", handler.Start)
	suite.router.POST("/api/timer/pause", handler.Pause)
	suite.router.POST("/api/timer/resume", handler.Resume)
	suite.router.POST("/api/timer/stop", handler.Stop)
	suite.router.POST("/api/timer/tick", handler.Tick)
}

// TearDownTest runs after each test
func (suite *TimerHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TimerHandlerTestSuite) createTestTask(name string) *models.Task {
	task := &models.Task{
		Name:     name,
		Priority: models.PriorityMedium,
		Kind:     models.KindTask,
		Archived: models.StatusOpen,
	}
	suite.db.Create(task)
	return task
}

func (suite *TimerHandlerTestSuite) post(url string, payload map[string]any) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", url, body)
	req.Header.Set("Content-Type", "application/json")
	suite.router.ServeHTTP(w, req)
	return w
}

// Configure for 25 minutes, run 10 simulated minutes, stop: one session of
// 10 minutes lands on the task and the timer is idle again with a fresh
// countdown.
func (suite *TimerHandlerTestSuite) TestStopAfterPartialRun() {
	task := suite.createTestTask("Write report")

	w := suite.post("/api/timer/configure", map[string]any{
		"duration_minutes": 25,
		"task_id":          task.ID,
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.post("/api/timer/start", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	for i := 0; i < 10; i++ {
		w = suite.post("/api/timer/tick", nil)
		suite.Require().Equal(http.StatusOK, w.Code)
	}

	w = suite.post("/api/timer/stop", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var snap timer.Snapshot
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(suite.T(), timer.StateIdle, snap.State)
	assert.Equal(suite.T(), 25, snap.Remaining)

	reloaded, err := suite.repo.FindByID(task.ID, "Sessions")
	suite.Require().NoError(err)
	suite.Require().Len(reloaded.Sessions, 1)
	assert.Equal(suite.T(), 10, reloaded.Sessions[0].Duration)
	assert.Equal(suite.T(), models.SessionTypeTask, reloaded.Sessions[0].Type)
	assert.Equal(suite.T(), 10, reloaded.TotalMinutes)
}

func (suite *TimerHandlerTestSuite) TestRunToCompletion() {
	task := suite.createTestTask("Write report")

	suite.post("/api/timer/configure", map[string]any{
		"duration_minutes": 3,
		"task_id":          task.ID,
	})
	suite.post("/api/timer/start", nil)
	for i := 0; i < 3; i++ {
		suite.post("/api/timer/tick", nil)
	}

	reloaded, err := suite.repo.FindByID(task.ID, "Sessions")
	suite.Require().NoError(err)
	suite.Require().Len(reloaded.Sessions, 1)
	assert.Equal(suite.T(), 3, reloaded.Sessions[0].Duration)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/timer", nil)
	suite.router.ServeHTTP(w, req)

	var snap timer.Snapshot
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(suite.T(), timer.StateIdle, snap.State)
}

func (suite *TimerHandlerTestSuite) TestPauseWhileIdleIsStateError() {
	w := suite.post("/api/timer/pause", nil)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "STATE_ERROR", response["code"])
}

func (suite *TimerHandlerTestSuite) TestConfigureValidation() {
	w := suite.post("/api/timer/configure", map[string]any{
		"duration_minutes": 25,
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.post("/api/timer/configure", map[string]any{
		"duration_minutes": 25,
		"task_id":          1,
		"target_type":      "sprint",
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// Recording against a missing task fails the stop, and the elapsed time
// survives for a retry after the task appears.
func (suite *TimerHandlerTestSuite) TestStopFailureKeepsElapsed() {
	suite.post("/api/timer/configure", map[string]any{
		"duration_minutes": 25,
		"task_id":          999,
	})
	suite.post("/api/timer/start", nil)
	for i := 0; i < 5; i++ {
		suite.post("/api/timer/tick", nil)
	}

	w := suite.post("/api/timer/stop", nil)
	assert.Equal(suite.T(), http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/timer", nil)
	suite.router.ServeHTTP(w, req)

	var snap timer.Snapshot
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(suite.T(), timer.StatePaused, snap.State)
	assert.Equal(suite.T(), 5, snap.Elapsed)
}

func TestTimerHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TimerHandlerTestSuite))
}
