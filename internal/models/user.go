package models

import (
	"time"

	"github.com/google/uuid"
)

type UserType string

const (
	UserTypeOwner   UserType = "OWNER"
	UserTypeAdmin   UserType = "ADMIN"
	UserTypeTeacher UserType = "TEACHER"
	UserTypeStudent UserType = "STUDENT"
)

type User struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	Username         string     `json:"username"`
	FullName         string     `json:"full_name"`
	UserType         UserType   `json:"user_type"`
	InstitutionID    *uuid.UUID `json:"institution_id,omitempty"`
	DepartmentID     *uuid.UUID `json:"department_id,omitempty"`
	ConnectionsCount int        `json:"connections_count"`
	Searchable       bool       `json:"searchable"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type CreateUserParams struct {
	Email         string
	PasswordHash  string
	Username      string
	FullName      string
	UserType      UserType
	InstitutionID *uuid.UUID
	DepartmentID  *uuid.UUID
}

// UserSummary is the subset of a user embedded in lists (friends, members,
// suggestions) where the full profile is not needed.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
}
