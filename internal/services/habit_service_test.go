package services

import (
	"testing"
	"time"

	"github.com/aorus88/TaskFlow-sub000/internal/models"
	"github.com/aorus88/TaskFlow-sub000/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// HabitServiceTestSuite defines the test suite for HabitService
type HabitServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	repo    repository.TaskRepository
	service *HabitService
}

// SetupTest runs before each test
func (suite *HabitServiceTestSuite) SetupTest() {
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
	suite.service = NewHabitService(suite.repo)
}

// TearDownTest runs after each test
func (suite *HabitServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *HabitServiceTestSuite) createTestTemplate(name string, priority models.Priority, categories ...string) *models.Task {
	template := &models.Task{
		Name:       name,
		Priority:   priority,
		Categories: models.StringList(categories),
		Kind:       models.KindHabit,
		Archived:   models.StatusOpen,
	}
	suite.db.Create(template)
	return template
}

func (suite *HabitServiceTestSuite) TestRegenerate_CreatesDatedInstance() {
	suite.createTestTemplate("Drink water", models.PriorityMedium, "health")

	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	created, err := suite.service.Regenerate(now)
	suite.Require().NoError(err)
	suite.Require().Len(created, 1)

	instance := created[0]
	assert.Equal(suite.T(), "Drink water", instance.Name)
	assert.Equal(suite.T(), models.KindHabit, instance.Kind)
	assert.Equal(suite.T(), models.PriorityMedium, instance.Priority)
	assert.Equal(suite.T(), []string{"health"}, []string(instance.Categories))
	suite.Require().NotNil(instance.Day)
	assert.Equal(suite.T(), "2024-06-01", *instance.Day)
	suite.Require().NotNil(instance.DueDate)
	assert.Equal(suite.T(), now, instance.DueDate.UTC())
}

// Running regeneration twice for the same day creates nothing the second
// time.
func (suite *HabitServiceTestSuite) TestRegenerate_Idempotent() {
	suite.createTestTemplate("Drink water", models.PriorityMedium)

	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	created, err := suite.service.Regenerate(now)
	suite.Require().NoError(err)
	suite.Require().Len(created, 1)

	created, err = suite.service.Regenerate(now)
	suite.Require().NoError(err)
	assert.Empty(suite.T(), created)

	// Later the same day changes nothing either
	created, err = suite.service.Regenerate(now.Add(9 * time.Hour))
	suite.Require().NoError(err)
	assert.Empty(suite.T(), created)

	var count int64
	suite.db.Model(&models.Task{}).
		Where("kind = ? AND day IS NOT NULL", models.KindHabit).
		Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *HabitServiceTestSuite) TestRegenerate_NewDayNewInstance() {
	suite.createTestTemplate("Drink water", models.PriorityMedium)

	day1 := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	created, err := suite.service.Regenerate(day1)
	suite.Require().NoError(err)
	suite.Require().Len(created, 1)

	day2 := day1.AddDate(0, 0, 1)
	created, err = suite.service.Regenerate(day2)
	suite.Require().NoError(err)
	suite.Require().Len(created, 1)
	assert.Equal(suite.T(), "2024-06-02", *created[0].Day)
}

// Subtasks are copied as fresh open subtasks; no sessions carry over.
func (suite *HabitServiceTestSuite) TestRegenerate_CopiesSubtasksFresh() {
	template := suite.createTestTemplate("Morning routine", models.PriorityHigh)
	sub := &models.Subtask{TaskID: template.ID, Name: "Stretch", Priority: models.PriorityLow, Archived: models.StatusClosed}
	suite.db.Create(sub)

	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	created, err := suite.service.Regenerate(now)
	suite.Require().NoError(err)
	suite.Require().Len(created, 1)

	instance, err := suite.repo.FindByID(created[0].ID, "Subtasks", "Sessions")
	suite.Require().NoError(err)
	suite.Require().Len(instance.Subtasks, 1)
	assert.Equal(suite.T(), "Stretch", instance.Subtasks[0].Name)
	assert.Equal(suite.T(), models.PriorityLow, instance.Subtasks[0].Priority)
	assert.Equal(suite.T(), models.StatusOpen, instance.Subtasks[0].Archived)
	assert.NotEqual(suite.T(), sub.ID, instance.Subtasks[0].ID)
	assert.Empty(suite.T(), instance.Sessions)
}

func (suite *HabitServiceTestSuite) TestRegenerate_SkipsArchivedTemplates() {
	template := suite.createTestTemplate("Drink water", models.PriorityMedium)
	now := time.Now()
	suite.db.Model(template).Updates(map[string]interface{}{
		"archived":    models.StatusClosed,
		"archived_at": &now,
	})

	created, err := suite.service.Regenerate(now)
	suite.Require().NoError(err)
	assert.Empty(suite.T(), created)
}

// Dated instances are ordinary tasks; they must never be treated as
// templates on the next day's run.
func (suite *HabitServiceTestSuite) TestRegenerate_InstancesAreNotTemplates() {
	suite.createTestTemplate("Drink water", models.PriorityMedium)

	day1 := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	_, err := suite.service.Regenerate(day1)
	suite.Require().NoError(err)

	day2 := day1.AddDate(0, 0, 1)
	created, err := suite.service.Regenerate(day2)
	suite.Require().NoError(err)
	suite.Require().Len(created, 1)

	var count int64
	suite.db.Model(&models.Task{}).
		Where("kind = ? AND day = ?", models.KindHabit, "2024-06-02").
		Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *HabitServiceTestSuite) TestRegenerate_MultipleTemplates() {
	suite.createTestTemplate("Drink water", models.PriorityMedium)
	suite.createTestTemplate("Read", models.PriorityLow, "learning")

	created, err := suite.service.Regenerate(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	suite.Require().NoError(err)
	assert.Len(suite.T(), created, 2)
}

func TestHabitServiceTestSuite(t *testing.T) {
	suite.Run(t, new(HabitServiceTestSuite))
}
