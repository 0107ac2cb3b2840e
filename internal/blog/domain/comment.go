package domain

import "time"

type Comment struct {
	ID        string
	PostID    string
	AuthorID  string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Comment) OwnerID() string {
	return c.AuthorID
}

func (c Comment) ResourceName() string {
	return "comment"
}
