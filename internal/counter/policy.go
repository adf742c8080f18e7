package counter

import (
	"os"
	"strconv"

	"go-absences/internal/absencetype"
)

// Policy carries the deployment-specific counter rules. The rules live in
// configuration rather than in package constants so that accrual periods
// can vary per environment without a rebuild.
type Policy struct {
	// CountedTypes draw down a balance when an absence is filed.
	CountedTypes []absencetype.Type

	// AbsentTypes mark a day as not worked for accrual purposes.
	AbsentTypes []absencetype.Type

	// AccrualPeriods is the number of worked days required to earn one
	// available day, per counted type.
	AccrualPeriods map[absencetype.Type]int

	// RejectPastStart refuses absences starting before the current date.
	RejectPastStart bool
}

func DefaultPolicy() Policy {
	return Policy{
		CountedTypes: []absencetype.Type{absencetype.PaidLeave, absencetype.RemoteWork},
		AbsentTypes:  []absencetype.Type{absencetype.Sick, absencetype.PaidLeave},
		AccrualPeriods: map[absencetype.Type]int{
			absencetype.PaidLeave:  10,
			absencetype.RemoteWork: 5,
		},
		RejectPastStart: false,
	}
}

// PolicyFromEnv starts from DefaultPolicy and applies environment
// overrides. Invalid values fall back to the defaults.
func PolicyFromEnv() Policy {
	p := DefaultPolicy()

	if v := os.Getenv("ACCRUAL_PERIOD_PAID_LEAVE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.AccrualPeriods[absencetype.PaidLeave] = n
		}
	}
	if v := os.Getenv("ACCRUAL_PERIOD_REMOTE_WORK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.AccrualPeriods[absencetype.RemoteWork] = n
		}
	}
	if v := os.Getenv("REJECT_PAST_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			p.RejectPastStart = b
		}
	}

	return p
}
