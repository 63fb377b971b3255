package models

import (
	"time"
)

// InstructorKind selects the collection an instructor lives in
type InstructorKind string

const (
	KindTrainer  InstructorKind = "trainer"
	KindExaminer InstructorKind = "examiner"
)

// DefaultMaxAssignments is used when a trainer is created without a limit
const DefaultMaxAssignments = 3

// Instructor is a trainer or an examiner. Both collections share this shape.
type Instructor struct {
	ID                 string         `json:"id"`
	Kind               InstructorKind `json:"kind"`
	ExternalID         string         `json:"externalId"`
	Name               string         `json:"name"`
	Email              string         `json:"email,omitempty"`
	Active             bool           `json:"active"`
	Busy               bool           `json:"busy"`
	CurrentAssignments int            `json:"currentAssignments"`
	MaxAssignments     int            `json:"maxAssignments"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// AvailableForPickup reports whether the instructor may claim another request
func (i *Instructor) AvailableForPickup() bool {
	return i.Active && !i.Busy && i.CurrentAssignments < i.MaxAssignments
}

// CreateInstructorRequest is the body of POST /trainers and POST /examiners
type CreateInstructorRequest struct {
	ExternalID     string `json:"externalId" binding:"required"`
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"omitempty,email"`
	MaxAssignments *int   `json:"maxAssignments" binding:"omitempty,min=1,max=50"`
}

// UpdateInstructorRequest is the body of PATCH /trainers/:id and /examiners/:id
type UpdateInstructorRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Active         *bool   `json:"active"`
	Busy           *bool   `json:"busy"`
	MaxAssignments *int    `json:"maxAssignments" binding:"omitempty,min=1,max=50"`
}
