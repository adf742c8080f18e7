package employeeerrors

import (
	"net/http"

	"go-absences/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrEmailAlreadyTaken = apperror.New(
		apperror.CodeConflict,
		"an employee with this email is already registered",
		http.StatusConflict,
	)
)
