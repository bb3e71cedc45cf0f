package models

import "time"

// Project status constants
const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on_hold"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

// Priority constants shared by projects, tasks, ideas and tickets
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// IsValidProjectStatus checks a status value against the known set
func IsValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// IsValidPriority checks a priority value against the known set
func IsValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Project represents an RPA delivery project. Milestones and financials are
// owned by the project and removed with it.
type Project struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	Budget        *float64  `json:"budget,omitempty"`
	BudgetedHours float64   `json:"budgeted_hours"`
	SaleRateUF    float64   `json:"sale_rate_uf"`
	StartDate     *string   `json:"start_date,omitempty"`
	EndDate       *string   `json:"end_date,omitempty"`
	AssignedTo    *int      `json:"assigned_to,omitempty"`
	CreatedBy     int       `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProjectAssignment splits one project across multiple users by allocation
// percentage. When none exist, the project's legacy assigned_to user counts
// as a single 100% assignment.
type ProjectAssignment struct {
	ID                   int     `json:"id"`
	ProjectID            int     `json:"project_id"`
	UserID               int     `json:"user_id"`
	AllocationPercentage float64 `json:"allocation_percentage"`
}

// CreateProjectRequest is the request body for creating a project
type CreateProjectRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Status        string   `json:"status"`
	Priority      string   `json:"priority"`
	Budget        *float64 `json:"budget"`
	BudgetedHours float64  `json:"budgeted_hours"`
	SaleRateUF    float64  `json:"sale_rate_uf"`
	StartDate     *string  `json:"start_date"`
	EndDate       *string  `json:"end_date"`
	AssignedTo    *int     `json:"assigned_to"`
}

// UpdateProjectRequest is the request body for updating a project.
// Nil fields are left untouched.
type UpdateProjectRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Status        *string  `json:"status"`
	Priority      *string  `json:"priority"`
	Budget        *float64 `json:"budget"`
	BudgetedHours *float64 `json:"budgeted_hours"`
	SaleRateUF    *float64 `json:"sale_rate_uf"`
	StartDate     *string  `json:"start_date"`
	EndDate       *string  `json:"end_date"`
	AssignedTo    *int     `json:"assigned_to"`
}

// ProjectFilter carries the optional list filters
type ProjectFilter struct {
	Status     string
	Priority   string
	AssignedTo int
	Search     string
}

// SetAssignmentsRequest replaces the allocation split of a project
type SetAssignmentsRequest struct {
	Assignments []AssignmentInput `json:"assignments"`
}

// AssignmentInput is one user/allocation pair
type AssignmentInput struct {
	UserID               int     `json:"user_id"`
	AllocationPercentage float64 `json:"allocation_percentage"`
}
