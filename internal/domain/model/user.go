package model

import (
	"time"
)

const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// ValidRole reports whether role is one of the closed set accepted at
// registration. Exact match, no hierarchy.
func ValidRole(role string) bool {
	return role == RoleTeacher || role == RoleStudent
}

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}
