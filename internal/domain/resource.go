package domain

import "time"

// Resource is an interchangeable staff member that serves one booking at
// a time. With zero resources configured the salon runs in
// single-implicit-resource mode and appointments carry a nil ResourceID.
type Resource struct {
	ID        int64
	Name      string
	IsActive  bool
	SortOrder int // listing order, used as the auto-assign tie-break
	CreatedAt time.Time
	UpdatedAt time.Time
}
