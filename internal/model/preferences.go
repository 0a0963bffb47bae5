package model

import "time"

// Preferences stores a user's preferred categories, upserted by user id.
type Preferences struct {
	ID         string
	UserID     string
	Categories []string
	CreatedAt  time.Time
}
