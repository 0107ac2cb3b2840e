package domain

import "time"

type RefreshToken struct {
	ID        string
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time

	// RawToken is only populated on issuance; it is never persisted.
	RawToken string
}
