package domain

import "time"

// Group is a named set of users. Roles granted to a group apply to every
// member.
type Group struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
