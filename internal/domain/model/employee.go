package model

import "time"

// Employee is a single staff record. ProfilePicture holds the stored upload
// filename only, never a filesystem path; it is null until a picture is
// uploaded.
type Employee struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Position       string    `json:"position"`
	Salary         float64   `json:"salary"`
	DateOfJoining  time.Time `json:"date_of_joining"`
	Department     string    `json:"department"`
	ProfilePicture *string   `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
