// Package accrual runs the daily worked-day tick across the whole staff.
// Every calendar day an employee is not absent with a not-worked type
// counts toward the accrual ladder of each counted absence type.
package accrual

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-absences/internal/employee"
)

type Runner struct {
	employees employee.Service
	logger    *zap.Logger
}

func NewRunner(employees employee.Service, logger ...*zap.Logger) *Runner {
	l := zap.L().Named("accrual.runner")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("accrual.runner")
	}
	return &Runner{employees: employees, logger: l}
}

// Result reports how a run went. A failed employee does not stop the run.
type Result struct {
	Date      time.Time
	Processed int
	Failed    int
}

// RunForDate credits one worked day to every employee for the given date.
// Failures are logged per employee and the run continues.
func (r *Runner) RunForDate(ctx context.Context, date time.Time) (Result, error) {
	staff, err := r.employees.GetAll(ctx)
	if err != nil {
		return Result{Date: date}, err
	}

	res := Result{Date: date}
	for _, e := range staff {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := r.employees.AccrueWorkedDay(ctx, e.ID, date); err != nil {
			res.Failed++
			r.logger.Error("worked day accrual failed",
				zap.String("employee_id", e.ID),
				zap.String("date", date.Format("2006-01-02")),
				zap.Error(err),
			)
			continue
		}
		res.Processed++
	}

	r.logger.Info("accrual run finished",
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("processed", res.Processed),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// RunToday runs the tick for the current UTC day.
func (r *Runner) RunToday(ctx context.Context) (Result, error) {
	return r.RunForDate(ctx, time.Now().UTC().Truncate(24*time.Hour))
}
