package app

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"go-absences/internal/absence"
	"go-absences/internal/counter"
	"go-absences/internal/employee"
	"go-absences/internal/messaging/kafka"
	"go-absences/internal/middleware"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	absenceRepo := absence.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Counter Engine ---
	engine := counter.NewEngine(counter.PolicyFromEnv(), absenceRepo)

	// --- Services ---
	employeeService := employee.NewServiceWithOutbox(db, employeeRepo, counterRepo, engine, outboxRepo, rdb)
	absenceService := absence.NewServiceWithOutbox(db, absenceRepo, counterRepo, engine, outboxRepo, rdb)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService)
	absenceHandler := absence.NewHandler(absenceService)

	// --- Middleware ---
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimitByIP(rate.Limit(20), 40))

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		employee.RegisterRoutes(api, employeeHandler)
		absence.RegisterRoutes(api, absenceHandler)
	}

	return nil
}
