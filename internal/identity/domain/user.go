// Package domain holds the identity service's data records. These are plain
// values passed between the store, services, and HTTP layers.
package domain

import "time"

type User struct {
	ID           int64
	Username     string
	PasswordHash string // argon2id encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
