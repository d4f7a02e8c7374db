// Package clock supplies the current instant and calendar date.
package clock

import (
	"time"

	"github.com/expenseiq/expenseiq/internal/model"
)

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns T.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// Today returns the local calendar date of c.
func Today(c Clock) model.Date {
	return model.DateOf(c.Now())
}
