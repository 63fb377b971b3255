package models

import (
	"time"
)

// InactivationStatus is the review state of an inactivation request
type InactivationStatus string

const (
	InactivationPending  InactivationStatus = "pending"
	InactivationApproved InactivationStatus = "approved"
	InactivationDenied   InactivationStatus = "denied"
)

// InactivationAction is what an approved request does to the instructor
type InactivationAction string

const (
	ActionInactivate InactivationAction = "inactivate"
	ActionActivate   InactivationAction = "activate"
)

// Period is an inclusive date range
type Period struct {
	From string `json:"from"`
	To   string `json:"to"`
	Days int    `json:"days"`
}

// InactivationRequest asks for an instructor to be marked inactive (or
// active again) for a date range, subject to admin approval
type InactivationRequest struct {
	ID            string             `json:"id"`
	UserID        string             `json:"userId"`
	UserName      string             `json:"userName,omitempty"`
	UserType      InstructorKind     `json:"userType"`
	Action        InactivationAction `json:"action"`
	Period        Period             `json:"period"`
	Reason        string             `json:"reason,omitempty"`
	Status        InactivationStatus `json:"status"`
	ReviewedBy    string             `json:"reviewedBy,omitempty"`
	ReviewerName  string             `json:"reviewerName,omitempty"`
	ReviewComment string             `json:"reviewComment,omitempty"`
	ReviewedAt    *time.Time         `json:"reviewedAt,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// CreateInactivationRequest is the body of POST /inactivation-requests
type CreateInactivationRequest struct {
	UserID   string             `json:"userId" binding:"required"`
	UserName string             `json:"userName"`
	UserType InstructorKind     `json:"userType" binding:"required,oneof=trainer examiner"`
	Action   InactivationAction `json:"action" binding:"omitempty,oneof=inactivate activate"`
	From     string             `json:"from" binding:"required,datetime=2006-01-02"`
	To       string             `json:"to" binding:"required,datetime=2006-01-02"`
	Reason   string             `json:"reason" binding:"max=2000"`
}

// ReviewInactivationRequest is the body of PATCH /inactivation-requests/:id/review
type ReviewInactivationRequest struct {
	Decision     InactivationStatus `json:"decision" binding:"required,oneof=approved denied"`
	ReviewedBy   string             `json:"reviewedBy" binding:"required"`
	ReviewerName string             `json:"reviewerName"`
	Comment      string             `json:"comment" binding:"max=2000"`
}
