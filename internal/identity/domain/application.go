package domain

import "time"

// Application is a system that consumes this service's tokens. Roles are
// scoped to the application that owns them.
type Application struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
