package domain

import "time"

// Service is a bookable salon service
type Service struct {
	ID              int64
	Name            string
	DurationMinutes int // multiple of the configured slot cadence
	Price           float64
	RequiresDeposit bool
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
