package app

import (
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-absences/internal/absence"
	"go-absences/internal/counter"
	"go-absences/internal/employee"
	"go-absences/internal/messaging/kafka"
	"go-absences/internal/shared/connection"
)

func BuildApp(router *gin.Engine) error {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	zap.L().Info("database connection established")

	if os.Getenv("DB_AUTO_MIGRATE") == "true" {
		if err := gormDB.AutoMigrate(
			&employee.Employee{},
			&counter.AbsenceCounter{},
			&absence.Absence{},
			&kafka.OutboxEvent{},
		); err != nil {
			return err
		}
		zap.L().Info("schema migration applied")
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	zap.L().Info("redis connection established")

	db, err := gormDB.DB()
	if err != nil {
		return err
	}

	return registerModules(router, db, gormDB, redisClient)
}
