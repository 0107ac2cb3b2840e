package domain

import "time"

type ID string

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           ID
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	FullName     string
	Bio          string
	CreatedAt    time.Time
}

// Profile is the public view of a user; it never carries credentials.
type Profile struct {
	ID        ID
	Username  string
	FullName  string
	Bio       string
	CreatedAt time.Time
}
