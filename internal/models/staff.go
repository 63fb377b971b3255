package models

import (
	"time"
)

// Role is a staff member's role in the training organisation
type Role string

const (
	RoleTrainer  Role = "Trainer"
	RoleExaminer Role = "Examiner"
	RoleAdmin    Role = "Admin"

	// RoleStaff is reported for verified users without a staff record
	RoleStaff Role = "Staff"
)

// Permission names granted through roles
const (
	PermViewDashboard     = "view_dashboard"
	PermViewTraining      = "view_training_requests"
	PermPickupTraining    = "pickup_training_requests"
	PermAssignTraining    = "assign_training_requests"
	PermManageStudents    = "manage_students"
	PermManageCourses     = "manage_courses"
	PermManageQuizzes     = "manage_quizzes"
	PermManageTestTokens  = "manage_test_tokens"
	PermGradeTests        = "grade_tests"
	PermManageStaff       = "manage_staff"
	PermReviewInactivity  = "review_inactivation_requests"
	PermSendNotifications = "send_notifications"
)

// rolePermissions is the static role to permission table. Staff records
// never carry permissions that differ from this table.
var rolePermissions = map[Role][]string{
	RoleTrainer: {
		PermViewDashboard,
		PermViewTraining,
		PermPickupTraining,
		PermManageStudents,
		PermManageQuizzes,
	},
	RoleExaminer: {
		PermViewDashboard,
		PermViewTraining,
		PermManageTestTokens,
		PermGradeTests,
	},
	RoleAdmin: {
		PermViewDashboard,
		PermViewTraining,
		PermPickupTraining,
		PermAssignTraining,
		PermManageStudents,
		PermManageCourses,
		PermManageQuizzes,
		PermManageTestTokens,
		PermGradeTests,
		PermManageStaff,
		PermReviewInactivity,
		PermSendNotifications,
	},
}

// ValidRoles defines the assignable staff roles
var ValidRoles = map[Role]bool{
	RoleTrainer:  true,
	RoleExaminer: true,
	RoleAdmin:    true,
}

// PermissionsFor returns a copy of the permission list for role. Unknown
// roles, including RoleStaff, have no permissions.
func PermissionsFor(role Role) []string {
	perms := rolePermissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// RolePermissionTable returns a copy of the whole table
func RolePermissionTable() map[Role][]string {
	table := make(map[Role][]string, len(rolePermissions))
	for role := range rolePermissions {
		table[role] = PermissionsFor(role)
	}
	return table
}

// StaffMember is a role-tagged member of the training staff
type StaffMember struct {
	ID             string    `json:"id"`
	CredentialHash string    `json:"-"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Role           Role      `json:"role"`
	Status         string    `json:"status"`
	Permissions    []string  `json:"permissions"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CreateStaffRequest is the body of POST /staff
type CreateStaffRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"omitempty,email"`
	Role   Role   `json:"role" binding:"required,oneof=Trainer Examiner Admin"`
	Status string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// UpdateStaffRequest is the body of PATCH /staff/:id; nil fields are left unchanged
type UpdateStaffRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=1"`
	Email  *string `json:"email" binding:"omitempty,email"`
	Role   *Role   `json:"role" binding:"omitempty,oneof=Trainer Examiner Admin"`
	Status *string `json:"status" binding:"omitempty,oneof=active inactive"`
}
