package domain

import "time"

// User is a registered participant. The username is globally unique and
// never mutated after creation.
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}
