package model

import (
	"fmt"
	"time"

	"github.com/fieldworks/workorder-service/internal/errs"
)

// ComputeLaborHours derives total labor hours from the HH:MM time-in and
// time-out stamps. Returns nil while either stamp is missing. A time-out
// earlier than time-in means the shift crossed midnight and gets 24h added.
// A zero-length shift is allowed.
func ComputeLaborHours(timeIn, timeOut string) (*float64, error) {
	if timeIn == "" || timeOut == "" {
		return nil, nil
	}
	in, err := time.Parse(ClockLayout, timeIn)
	if err != nil {
		return nil, fmt.Errorf("%w: time_in %q is not HH:MM", errs.ErrValidation, timeIn)
	}
	out, err := time.Parse(ClockLayout, timeOut)
	if err != nil {
		return nil, fmt.Errorf("%w: time_out %q is not HH:MM", errs.ErrValidation, timeOut)
	}
	minutes := out.Sub(in).Minutes()
	if minutes < 0 {
		minutes += 24 * 60
	}
	hours := minutes / 60
	return &hours, nil
}

// ValidClock reports whether s is an HH:MM stamp. Empty is valid (field not
// set or being cleared).
func ValidClock(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(ClockLayout, s)
	return err == nil
}

// ValidDate reports whether s is a YYYY-MM-DD date. Empty is valid.
func ValidDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
