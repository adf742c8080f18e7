package employee

type CreateEmployeeRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required"`
}

type RenameEmployeeRequest struct {
	FullName string `json:"full_name" binding:"required"`
}

type EmployeeResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}
