package models

import "time"

// RevokedToken marks an access token id as unusable until ExpiresAt.
type RevokedToken struct {
	JTI       string
	UserID    int64
	ExpiresAt time.Time
}
