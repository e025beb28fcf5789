// Package entity defines the data model exchanged with the e-learning API.
package entity

import "time"

// UserType enumerates the platform roles carried in access-token claims.
type UserType int

const (
	UserTypeStudent    UserType = 1
	UserTypeInstructor UserType = 2
	UserTypeSuperAdmin UserType = 3
)

// User is a platform account as returned by the users endpoints.
type User struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone,omitempty"`
	Bio             string     `json:"bio,omitempty"`
	Avatar          string     `json:"avatar,omitempty"`
	Title           string     `json:"title,omitempty"`
	FirstName       string     `json:"firstName,omitempty"`
	LastName        string     `json:"lastName,omitempty"`
	Location        string     `json:"location,omitempty"`
	IsEmailVerified bool       `json:"isEmailVerified,omitempty"`
	UserType        UserType   `json:"userType,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
}

// SignupRequest creates a new account. Field names follow the API contract.
type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Username  string `json:"username" validate:"required,min=3"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// LoginRequest exchanges credentials for a token pair.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserUpdateRequest carries the mutable profile fields. Nil pointers are
// omitted so partial updates leave the other fields untouched.
type UserUpdateRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Username  *string `json:"username,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
	Location  *string `json:"location,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// CourseStats summarizes a user's course activity. Which fields are populated
// depends on the role: students get completion counts, instructors get
// publishing and enrollment totals.
type CourseStats struct {
	CourseCount           int `json:"courseCount,omitempty"`
	TotalCompletedCourses int `json:"totalCompletedCourses,omitempty"`
	TotalCourseCount      int `json:"totalCourseCount,omitempty"`
	PublishedCourseCount  int `json:"publishedCourseCount,omitempty"`
	TotalStudentsCount    int `json:"totalStudentsCount,omitempty"`
}
