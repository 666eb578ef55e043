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
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// HabitHandlerTestSuite defines the test suite for HabitHandler
type HabitHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *HabitHandlerTestSuite) SetupTest() {
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

	repo := repository.NewTaskRepository(suite.db)
	handler := NewHabitHandler(services.NewHabitService(repo))

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.router.POST("/api/habits/regenerate", handler.Regenerate)
}

// TearDownTest runs after each test
func (suite *HabitHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *HabitHandlerTestSuite) regenerate(payload map[string]any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/habits/regenerate", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HabitHandlerTestSuite) TestRegenerate_CreatesThenIdempotent() {
	template := &models.Task{
		Name:     "Drink water",
		Priority: models.PriorityMedium,
		Kind:     models.KindHabit,
		Archived: models.StatusOpen,
	}
	suite.db.Create(template)

	w := suite.regenerate(map[string]any{"now": "2024-06-01T08:00:00Z"})
	suite.Require().Equal(http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), float64(1), response["created_count"])

	created := response["created"].([]interface{})
	first := created[0].(map[string]interface{})
	assert.Equal(suite.T(), "Drink water", first["name"])
	assert.Equal(suite.T(), "habit", first["kind"])
	assert.Equal(suite.T(), "2024-06-01", first["day"])

	// Second call the same day creates nothing
	w = suite.regenerate(map[string]any{"now": "2024-06-01T20:00:00Z"})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), float64(0), response["created_count"])
}

func TestHabitHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HabitHandlerTestSuite))
}
