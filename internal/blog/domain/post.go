package domain

import "time"

type Post struct {
	ID          string
	AuthorID    string
	Title       string
	Content     string
	CategoryID  string
	Tags        []Tag
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Post) OwnerID() string {
	return p.AuthorID
}

func (p Post) ResourceName() string {
	return "post"
}
