package models

import (
	"time"
)

// Course is a training course offered to students
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Instructor  string    `json:"instructor"`
	Description string    `json:"description,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Level       string    `json:"level,omitempty"`
	Students    int       `json:"students"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateCourseRequest is the body of POST /courses
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Instructor  string `json:"instructor" binding:"required"`
	Description string `json:"description" binding:"max=5000"`
	Duration    string `json:"duration"`
	Level       string `json:"level"`
}

// UpdateCourseRequest is the body of PATCH /courses/:id
type UpdateCourseRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1"`
	Instructor  *string `json:"instructor" binding:"omitempty,min=1"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Duration    *string `json:"duration"`
	Level       *string `json:"level"`
	Status      *string `json:"status" binding:"omitempty,oneof=active archived"`
}

// ValidStudentStatuses defines allowed student statuses
var ValidStudentStatuses = map[string]bool{
	"active":    true,
	"graduated": true,
	"inactive":  true,
}

// Student is a pilot enrolled in training
type Student struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"externalId"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Rank       string    `json:"rank,omitempty"`
	CourseID   string    `json:"courseId,omitempty"`
	Status     string    `json:"status"`
	Progress   int       `json:"progress"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CreateStudentRequest is the body of POST /students
type CreateStudentRequest struct {
	ExternalID string `json:"externalId" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"omitempty,email"`
	Rank       string `json:"rank"`
	CourseID   string `json:"courseId"`
}

// UpdateStudentRequest is the body of PATCH /students/:id
type UpdateStudentRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Rank     *string `json:"rank"`
	Status   *string `json:"status" binding:"omitempty,oneof=active graduated inactive"`
	Progress *int    `json:"progress" binding:"omitempty,min=0,max=100"`
}

// TrainingTopic is a subject a training request can be made for
type TrainingTopic struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category,omitempty"`
	DurationMinutes int       `json:"durationMinutes"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CreateTopicRequest is the body of POST /training-topics
type CreateTopicRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description" binding:"max=5000"`
	Category        string `json:"category"`
	DurationMinutes int    `json:"durationMinutes" binding:"min=0"`
}

// UpdateTopicRequest is the body of PATCH /training-topics/:id
type UpdateTopicRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1"`
	Description     *string `json:"description" binding:"omitempty,max=5000"`
	Category        *string `json:"category"`
	DurationMinutes *int    `json:"durationMinutes" binding:"omitempty,min=0"`
}
