package pkguid

import "github.com/google/uuid"

// UUID generates version 7 UUID strings, so IDs sort by creation time.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

func (u *UUID) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
