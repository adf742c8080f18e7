package countererrors

import (
	"net/http"

	"go-absences/internal/shared/apperror"
)

var (
	ErrInsufficientDays = apperror.New(
		apperror.CodeInvalidState,
		"not enough days available for this absence type",
		http.StatusBadRequest,
	)

	// ErrCounterMissing indicates a broken invariant: every employee gets
	// one counter per counted type at creation time.
	ErrCounterMissing = apperror.New(
		apperror.CodeInternalError,
		"no counter exists for this absence type",
		http.StatusInternalServerError,
	)
)
