package absence

type FileAbsenceRequest struct {
	Type      string `json:"type" binding:"required,oneof=SICK PAID_LEAVE REMOTE_WORK"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

type ReviseAbsenceRequest struct {
	Type      string `json:"type" binding:"required,oneof=SICK PAID_LEAVE REMOTE_WORK"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

type AbsenceResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Type       string `json:"type"`
	Label      string `json:"label"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	TotalDays  int    `json:"total_days"`
	Formatted  string `json:"formatted"`
}
