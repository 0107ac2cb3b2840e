package domain

import "time"

const (
	TypeComment = "comment"
	TypeSystem  = "system"
)

type Notification struct {
	ID        string
	UserID    string
	Type      string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}
