package absenceerrors

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
	ErrInvalidAbsenceID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid absence id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrDateInPast = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must not be in the past",
		http.StatusBadRequest,
	)
	ErrAbsenceOverlap = apperror.New(
		apperror.CodeConflict,
		"an absence already exists in this period",
		http.StatusConflict,
	)
	ErrAbsenceNotFound = apperror.New(
		apperror.CodeNotFound,
		"absence not found",
		http.StatusNotFound,
	)
)
