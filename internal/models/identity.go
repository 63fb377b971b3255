package models

// Profile is a pilot profile as returned by the airline-operations API
type Profile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Rank           string `json:"rank,omitempty"`
	PilotID        string `json:"pilotId,omitempty"`
	HomeAirport    string `json:"homeAirport,omitempty"`
	CurrentAirport string `json:"currentAirport,omitempty"`
}

// IdentitySource records how a user was verified
type IdentitySource string

const (
	SourceAirline  IdentitySource = "airline"
	SourceFallback IdentitySource = "bootstrap"
)

// VerifiedUser is the local view of a verified credential
type VerifiedUser struct {
	Profile
	Role        Role           `json:"role"`
	Permissions []string       `json:"permissions"`
	StaffID     string         `json:"staffId,omitempty"`
	Source      IdentitySource `json:"source"`
}

// VerifyRequest is the body of POST /auth/verify
type VerifyRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}

// NotificationField is a labelled value appended to a notification
type NotificationField struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// NotificationRequest is the body of POST /notifications
type NotificationRequest struct {
	Title   string              `json:"title" binding:"required"`
	Message string              `json:"message" binding:"required,max=1800"`
	Fields  []NotificationField `json:"fields" binding:"omitempty,max=10,dive"`
}

// DashboardStats holds collection counts for the dashboard
type DashboardStats struct {
	Staff            int `json:"staff"`
	Trainers         int `json:"trainers"`
	Examiners        int `json:"examiners"`
	Students         int `json:"students"`
	Courses          int `json:"courses"`
	Quizzes          int `json:"quizzes"`
	PendingTrainings int `json:"pendingTrainingRequests"`
}
