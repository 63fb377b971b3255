package models

import (
	"time"
)

// RequestStatus is the lifecycle state of a training request
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusAssigned   RequestStatus = "assigned"
	RequestStatusInProgress RequestStatus = "in-progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

// ValidRequestStatuses defines allowed training request statuses
var ValidRequestStatuses = map[RequestStatus]bool{
	RequestStatusPending:    true,
	RequestStatusAssigned:   true,
	RequestStatusInProgress: true,
	RequestStatusCompleted:  true,
	RequestStatusCancelled:  true,
}

// Closed reports whether the request has reached a terminal state
func (s RequestStatus) Closed() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled
}

// TrainingRequest is a pilot's request for a training session
type TrainingRequest struct {
	ID                  string        `json:"id"`
	RequesterID         string        `json:"requesterId"`
	RequesterName       string        `json:"requesterName,omitempty"`
	TopicID             string        `json:"topicId"`
	TopicName           string        `json:"topicName,omitempty"`
	RequestedDate       string        `json:"requestedDate"`
	RequestedTime       string        `json:"requestedTime,omitempty"`
	Notes               string        `json:"notes,omitempty"`
	Status              RequestStatus `json:"status"`
	AssignedTrainerID   string        `json:"assignedTrainerId,omitempty"`
	AssignedTrainerName string        `json:"assignedTrainerName,omitempty"`
	AssignedAt          *time.Time    `json:"assignedAt,omitempty"`
	Version             int           `json:"version"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// RequestFilter narrows a training request listing
type RequestFilter struct {
	Status    RequestStatus
	TrainerID string
}

// CreateTrainingRequest is the body of POST /training-requests
type CreateTrainingRequest struct {
	RequesterID   string `json:"requesterId" binding:"required"`
	RequesterName string `json:"requesterName"`
	TopicID       string `json:"topicId" binding:"required"`
	RequestedDate string `json:"requestedDate" binding:"required,datetime=2006-01-02"`
	RequestedTime string `json:"requestedTime" binding:"omitempty,datetime=15:04"`
	Notes         string `json:"notes" binding:"max=2000"`
}

// UpdateTrainingRequest is the body of PATCH /training-requests/:id
type UpdateTrainingRequest struct {
	RequestedDate *string        `json:"requestedDate" binding:"omitempty,datetime=2006-01-02"`
	RequestedTime *string        `json:"requestedTime" binding:"omitempty,datetime=15:04"`
	Notes         *string        `json:"notes" binding:"omitempty,max=2000"`
	Status        *RequestStatus `json:"status" binding:"omitempty,oneof=in-progress completed cancelled"`
}

// AssignTrainingRequest is the body of POST /training-requests/assign and
// POST /training-requests/pickup
type AssignTrainingRequest struct {
	RequestID       string `json:"requestId" binding:"required"`
	TrainerID       string `json:"trainerId" binding:"required"`
	ExpectedVersion *int   `json:"expectedVersion" binding:"omitempty,min=1"`
}

// ReassignTrainingRequest is the body of POST /training-requests/reassign
type ReassignTrainingRequest struct {
	RequestID       string `json:"requestId" binding:"required"`
	NewTrainerID    string `json:"newTrainerId" binding:"required"`
	ExpectedVersion *int   `json:"expectedVersion" binding:"omitempty,min=1"`
}

// AssignmentStatus is the lifecycle state of a training assignment
type AssignmentStatus string

const (
	AssignmentStatusScheduled  AssignmentStatus = "scheduled"
	AssignmentStatusInProgress AssignmentStatus = "in-progress"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
	AssignmentStatusCancelled  AssignmentStatus = "cancelled"
)

// TrainingAssignment is a scheduled training session for a pilot. It is
// tracked separately from TrainingRequest.
type TrainingAssignment struct {
	ID              string           `json:"id"`
	PilotID         string           `json:"pilotId"`
	PilotName       string           `json:"pilotName,omitempty"`
	TopicID         string           `json:"topicId"`
	TopicName       string           `json:"topicName,omitempty"`
	ScheduledDate   string           `json:"scheduledDate"`
	ScheduledTime   string           `json:"scheduledTime,omitempty"`
	Status          AssignmentStatus `json:"status"`
	AssignedTrainer string           `json:"assignedTrainer,omitempty"`
	Rating          *int             `json:"rating,omitempty"`
	Comments        string           `json:"comments,omitempty"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// CreateAssignmentRequest is the body of POST /training-assignments
type CreateAssignmentRequest struct {
	PilotID         string `json:"pilotId" binding:"required"`
	PilotName       string `json:"pilotName"`
	TopicID         string `json:"topicId" binding:"required"`
	TopicName       string `json:"topicName"`
	ScheduledDate   string `json:"scheduledDate" binding:"required,datetime=2006-01-02"`
	ScheduledTime   string `json:"scheduledTime" binding:"omitempty,datetime=15:04"`
	AssignedTrainer string `json:"assignedTrainer"`
}

// UpdateAssignmentRequest is the body of PATCH /training-assignments/:id
type UpdateAssignmentRequest struct {
	ScheduledDate   *string           `json:"scheduledDate" binding:"omitempty,datetime=2006-01-02"`
	ScheduledTime   *string           `json:"scheduledTime" binding:"omitempty,datetime=15:04"`
	Status          *AssignmentStatus `json:"status" binding:"omitempty,oneof=scheduled in-progress completed cancelled"`
	AssignedTrainer *string           `json:"assignedTrainer"`
	Rating          *int              `json:"rating" binding:"omitempty,min=1,max=5"`
	Comments        *string           `json:"comments" binding:"omitempty,max=2000"`
}
