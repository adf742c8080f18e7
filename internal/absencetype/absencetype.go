// Package absencetype defines the closed set of absence types the whole
// system agrees on. Both the absence and counter packages depend on it.
package absencetype

import (
	"net/http"

	"go-absences/internal/shared/apperror"
)

type Type string

const (
	Sick       Type = "SICK"
	PaidLeave  Type = "PAID_LEAVE"
	RemoteWork Type = "REMOTE_WORK"
)

var ErrInvalidType = apperror.New(
	apperror.CodeInvalidInput,
	"unknown absence type",
	http.StatusBadRequest,
)

var labels = map[Type]string{
	Sick:       "Sick leave",
	PaidLeave:  "Paid leave",
	RemoteWork: "Remote work",
}

// Parse turns a wire tag into a Type. Tags are case sensitive.
func Parse(tag string) (Type, error) {
	t := Type(tag)
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

func (t Type) Valid() bool {
	_, ok := labels[t]
	return ok
}

// Label is the human readable name used in formatted output.
func (t Type) Label() string {
	return labels[t]
}

// In reports whether t is a member of the given set.
func (t Type) In(types []Type) bool {
	for _, other := range types {
		if t == other {
			return true
		}
	}
	return false
}
