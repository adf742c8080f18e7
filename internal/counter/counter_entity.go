package counter

import (
	"time"

	"github.com/google/uuid"

	"go-absences/internal/absencetype"
)

// AbsenceCounter is the per-employee running balance for one counted
// absence type. Exactly one row exists per (employee, counted type),
// created when the employee is created.
type AbsenceCounter struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uq_counter_employee_type"`
	Type       absencetype.Type `gorm:"type:varchar(30);not null;uniqueIndex:uq_counter_employee_type"`

	// DaysAvailable is debited when an absence is filed and credited back
	// when it is cancelled.
	DaysAvailable int `gorm:"type:int;not null;default:0"`

	// DaysWorked is the progress toward the next accrual. It resets to
	// zero every time the accrual period is reached.
	DaysWorked int `gorm:"type:int;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
