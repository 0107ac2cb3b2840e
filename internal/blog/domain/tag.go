package domain

type Tag struct {
	ID   string
	Name string
}
