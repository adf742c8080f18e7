package app

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"go-absences/internal/absence"
	"go-absences/internal/accrual"
	"go-absences/internal/counter"
	"go-absences/internal/employee"
	"go-absences/internal/shared/connection"
)

// RunAccrual executes one worked-day accrual pass for the given date.
// An empty date means the current UTC day.
func RunAccrual(dateArg string) error {
	logger := zap.L().Named("app.accrual")

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if dateArg != "" {
		parsed, err := time.Parse("2006-01-02", dateArg)
		if err != nil {
			return err
		}
		date = parsed
	}

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

	db, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer db.Close()

	employeeRepo := employee.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	absenceRepo := absence.NewRepository(gormDB)
	engine := counter.NewEngine(counter.PolicyFromEnv(), absenceRepo)

	// The batch works without Redis; summaries just expire on their own.
	employeeService := employee.NewService(db, employeeRepo, counterRepo, engine, nil)

	runner := accrual.NewRunner(employeeService, logger)
	res, err := runner.RunForDate(context.Background(), date)
	if err != nil {
		return err
	}

	logger.Info("accrual batch done",
		zap.String("date", res.Date.Format("2006-01-02")),
		zap.Int("processed", res.Processed),
		zap.Int("failed", res.Failed),
	)
	return nil
}
