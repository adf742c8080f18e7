package counter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-absences/internal/absencetype"
	countererrors "go-absences/internal/counter/errors"
)

// AbsenceLookup is the read side of the absence store the engine consults
// on a worked-day tick. Implemented by the absence repository.
type AbsenceLookup interface {
	CoversDateOfType(ctx context.Context, employeeID string, date time.Time, types []absencetype.Type) (bool, error)
}

// Engine is the stateless counter rule engine. Counters are owned and
// persisted by the employee aggregate; every operation takes the caller's
// live counter set as an argument.
type Engine struct {
	policy   Policy
	absences AbsenceLookup
	logger   *zap.Logger
}

func NewEngine(policy Policy, absences AbsenceLookup, logger ...*zap.Logger) *Engine {
	l := zap.L().Named("counter.engine")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("counter.engine")
	}
	return &Engine{policy: policy, absences: absences, logger: l}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// Initialize produces one zeroed counter per counted type for a freshly
// created employee.
func (e *Engine) Initialize(employeeID uuid.UUID) []AbsenceCounter {
	counters := make([]AbsenceCounter, 0, len(e.policy.CountedTypes))
	for _, t := range e.policy.CountedTypes {
		counters = append(counters, AbsenceCounter{
			ID:         uuid.New(),
			EmployeeID: employeeID,
			Type:       t,
		})
	}
	return counters
}

// AccrueWorkedDay registers one worked day on every counter. A day covered
// by a sick or paid-leave absence is not worked, so no counter moves. When
// a counter reaches its accrual period the progress resets and one day
// becomes available.
func (e *Engine) AccrueWorkedDay(ctx context.Context, counters []AbsenceCounter, employeeID string, date time.Time) error {
	absent, err := e.absences.CoversDateOfType(ctx, employeeID, date, e.policy.AbsentTypes)
	if err != nil {
		return err
	}
	if absent {
		e.logger.Debug("worked day skipped, employee absent",
			zap.String("employee_id", employeeID),
			zap.String("date", date.Format("2006-01-02")),
		)
		return nil
	}

	for i := range counters {
		c := &counters[i]
		period, ok := e.policy.AccrualPeriods[c.Type]
		if !ok {
			continue
		}

		c.DaysWorked++
		if c.DaysWorked >= period {
			c.DaysWorked = 0
			c.DaysAvailable++
		}
	}

	return nil
}

// Debit subtracts the inclusive day count of an absence from the matching
// counter. Uncounted types never debit. The counter is left untouched when
// the balance is insufficient.
func (e *Engine) Debit(counters []AbsenceCounter, t absencetype.Type, start, end time.Time) error {
	if !t.In(e.policy.CountedTypes) {
		return nil
	}

	c := findCounter(counters, t)
	if c == nil {
		return countererrors.ErrCounterMissing
	}

	days := InclusiveDays(start, end)
	if c.DaysAvailable < days {
		return countererrors.ErrInsufficientDays
	}

	c.DaysAvailable -= days
	return nil
}

// Credit adds the inclusive day count of a cancelled absence back to the
// matching counter. Always succeeds for counted types; no upper bound is
// enforced on the balance.
func (e *Engine) Credit(counters []AbsenceCounter, t absencetype.Type, start, end time.Time) error {
	if !t.In(e.policy.CountedTypes) {
		return nil
	}

	c := findCounter(counters, t)
	if c == nil {
		return countererrors.ErrCounterMissing
	}

	c.DaysAvailable += InclusiveDays(start, end)
	return nil
}

// Revise credits the old absence and debits the new one. When the debit
// fails the credit is rolled back, leaving the counter set exactly as it
// was before the call.
func (e *Engine) Revise(counters []AbsenceCounter, oldType absencetype.Type, oldStart, oldEnd time.Time, newType absencetype.Type, newStart, newEnd time.Time) error {
	if err := e.Credit(counters, oldType, oldStart, oldEnd); err != nil {
		return err
	}

	if err := e.Debit(counters, newType, newStart, newEnd); err != nil {
		if oldType.In(e.policy.CountedTypes) {
			if c := findCounter(counters, oldType); c != nil {
				c.DaysAvailable -= InclusiveDays(oldStart, oldEnd)
			}
		}
		return err
	}

	return nil
}

// CounterInfo is the read-only projection of one counter for display.
type CounterInfo struct {
	Counter       string `json:"counter"`
	Type          string `json:"type"`
	DaysAvailable int    `json:"days_available"`
	DaysWorked    int    `json:"days_worked"`
	AccrualPeriod int    `json:"accrual_period"`
}

func (e *Engine) Project(counters []AbsenceCounter) []CounterInfo {
	infos := make([]CounterInfo, len(counters))
	for i, c := range counters {
		infos[i] = CounterInfo{
			Counter:       c.Type.Label(),
			Type:          string(c.Type),
			DaysAvailable: c.DaysAvailable,
			DaysWorked:    c.DaysWorked,
			AccrualPeriod: e.policy.AccrualPeriods[c.Type],
		}
	}
	return infos
}

// InclusiveDays counts whole days in [start, end], both bounds included.
func InclusiveDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

func findCounter(counters []AbsenceCounter, t absencetype.Type) *AbsenceCounter {
	for i := range counters {
		if counters[i].Type == t {
			return &counters[i]
		}
	}
	return nil
}
