package events

import "time"

const AbsenceLifecycleTopic = "hr.absence.lifecycle.v1"

const (
	AbsenceFiled     = "absence_filed"
	AbsenceRevised   = "absence_revised"
	AbsenceCancelled = "absence_cancelled"
)

type AbsenceEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	AbsenceID   string    `json:"absence_id"`
	EmployeeID  string    `json:"employee_id"`
	AbsenceType string    `json:"absence_type"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	OccurredAt  time.Time `json:"occurred_at"`
}
