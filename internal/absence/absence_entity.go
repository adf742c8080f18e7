package absence

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"go-absences/internal/absencetype"
	absenceerrors "go-absences/internal/absence/errors"
)

// Absence is one filed leave request with an inclusive whole-day range.
// It is a child entity of the employee aggregate: instances are created,
// modified and removed only through the absence service.
type Absence struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID        `gorm:"type:uuid;not null;index:idx_absences_employee_dates"`
	Type       absencetype.Type `gorm:"type:varchar(30);not null"`
	StartDate  time.Time        `gorm:"type:date;not null;index:idx_absences_employee_dates"`
	EndDate    time.Time        `gorm:"type:date;not null;index:idx_absences_employee_dates"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New validates the type tag and the date range and constructs an absence.
// It does not check overlaps or balances; that is the service's job.
func New(employeeID uuid.UUID, tag string, start, end time.Time) (*Absence, error) {
	t, err := absencetype.Parse(tag)
	if err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, absenceerrors.ErrInvalidDateRange
	}

	return &Absence{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Type:       t,
		StartDate:  start,
		EndDate:    end,
	}, nil
}

// Modify replaces type and dates after re-running the construction
// validation. On failure the absence keeps its previous values.
func (a *Absence) Modify(tag string, start, end time.Time) error {
	t, err := absencetype.Parse(tag)
	if err != nil {
		return err
	}
	if start.After(end) {
		return absenceerrors.ErrInvalidDateRange
	}

	a.Type = t
	a.StartDate = start
	a.EndDate = end
	return nil
}

// Formatted renders the absence for display, collapsing one-day absences
// to a single date.
func (a *Absence) Formatted(layout string) string {
	if a.StartDate.Equal(a.EndDate) {
		return fmt.Sprintf("%s (%s)", a.Type.Label(), a.StartDate.Format(layout))
	}
	return fmt.Sprintf("%s (%s - %s)", a.Type.Label(), a.StartDate.Format(layout), a.EndDate.Format(layout))
}
