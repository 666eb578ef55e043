package middleware

import (
	"net/http"
	"strconv"

	"github.com/aorus88/TaskFlow-sub000/internal/database"
	"github.com/aorus88/TaskFlow-sub000/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireTask loads the task named by the :id route parameter, with its
// subtasks and sessions, into the request context. Unknown IDs abort with
// 404 before any handler runs.
func RequireTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskIDStr := c.Param("id")
		taskID, err := strconv.ParseUint(taskIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid task ID",
			})
			c.Abort()
			return
		}

		var task models.Task
		if err := database.GetDB().
			Preload("Subtasks").
			Preload("Sessions").
			First(&task, taskID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Task not found",
			})
			c.Abort()
			return
		}

		c.Set("task", task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTask.
func GetTask(c *gin.Context) (models.Task, bool) {
	taskInterface, exists := c.Get("task")
	if !exists {
		return models.Task{}, false
	}
	task, ok := taskInterface.(models.Task)
	return task, ok
}
