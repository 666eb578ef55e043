package config

import (
	"os"
	"strconv"

	"github.com/aorus88/TaskFlow-sub000/internal/constants"
)

type Config struct {
	DBHost              string
	DBPort              string
	DBUser              string
	DBPassword          string
	DBName              string
	GinMode             string
	ArchiveGraceSeconds int
	TimerMinutes        int
}

func Load() *Config {
	return &Config{
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "3306"),
		DBUser:              getEnv("DB_USER", "taskflow"),
		DBPassword:          getEnv("DB_PASSWORD", "taskflow"),
		DBName:              getEnv("DB_NAME", "taskflow"),
		GinMode:             getEnv("GIN_MODE", "debug"),
		ArchiveGraceSeconds: getEnvInt("ARCHIVE_GRACE_SECONDS", constants.DefaultArchiveGraceSeconds),
		TimerMinutes:        getEnvInt("TIMER_MINUTES", constants.DefaultTimerMinutes),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
