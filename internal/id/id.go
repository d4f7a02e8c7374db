package id

import (
	"github.com/google/uuid"
)

// New returns a time-ordered UUIDv7 string for a new expense. It falls back
// to a random UUIDv4 if the v7 generator fails.
func New() string {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}

// RequestID returns an identifier for an inbound API request.
func RequestID() string {
	return uuid.NewString()
}
