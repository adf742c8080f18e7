package employee

import (
	"time"

	"github.com/google/uuid"

	"go-absences/internal/counter"
)

// Employee is the aggregate root owning its absences and counters. Email
// identifies the employee and never changes after creation; rename only
// touches the full name.
type Employee struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email    string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_employee_email"`
	FullName string    `gorm:"type:varchar(255);not null"`

	Counters []counter.AbsenceCounter `gorm:"foreignKey:EmployeeID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
