package models

import "time"

// Milestone status constants
const (
	MilestoneStatusPending    = "pending"
	MilestoneStatusInProgress = "in_progress"
	MilestoneStatusCompleted  = "completed"
)

// Milestone responsibility constants. Delays attributed to the client feed
// the ROI delay-hours calculation; internal delays do not.
const (
	ResponsibilityInternal = "internal"
	ResponsibilityClient   = "client"
)

// IsValidMilestoneStatus checks a status value against the known set
func IsValidMilestoneStatus(s string) bool {
	switch s {
	case MilestoneStatusPending, MilestoneStatusInProgress, MilestoneStatusCompleted:
		return true
	}
	return false
}

// IsValidResponsibility checks a responsibility value against the known set
func IsValidResponsibility(r string) bool {
	return r == ResponsibilityInternal || r == ResponsibilityClient
}

// Milestone is a PMO schedule checkpoint owned by its project
type Milestone struct {
	ID              int       `json:"id"`
	ProjectID       int       `json:"project_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	MilestoneDate   string    `json:"milestone_date"`
	Status          string    `json:"status"`
	Responsibility  string    `json:"responsibility"`
	DelayDays       int       `json:"delay_days"`
	FinancialImpact float64   `json:"financial_impact"`
	CreatedBy       int       `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MilestoneInput is one descriptor in a batch create request
type MilestoneInput struct {
	ProjectID       int     `json:"project_id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	MilestoneDate   string  `json:"milestone_date"`
	Status          string  `json:"status"`
	Responsibility  string  `json:"responsibility"`
	DelayDays       int     `json:"delay_days"`
	FinancialImpact float64 `json:"financial_impact"`
}

// UpdateMilestoneRequest is the request body for updating a milestone
type UpdateMilestoneRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	MilestoneDate   *string  `json:"milestone_date"`
	Status          *string  `json:"status"`
	Responsibility  *string  `json:"responsibility"`
	DelayDays       *int     `json:"delay_days"`
	FinancialImpact *float64 `json:"financial_impact"`
}

// BatchCreateMilestonesRequest carries the descriptors for a batch create
type BatchCreateMilestonesRequest struct {
	Milestones []MilestoneInput `json:"milestones"`
}

// BatchDeleteMilestonesRequest carries the ids for a batch delete
type BatchDeleteMilestonesRequest struct {
	IDs []int `json:"ids"`
}

// BatchRowError reports why one row of a batch failed
type BatchRowError struct {
	Index int    `json:"index"`
	ID    int    `json:"id,omitempty"`
	Error string `json:"error"`
}

// BatchCreateResult is the partial-success outcome of a batch create
type BatchCreateResult struct {
	Created []Milestone     `json:"created"`
	Errors  []BatchRowError `json:"errors,omitempty"`
}

// BatchDeleteResult is the all-or-nothing outcome of a batch delete
type BatchDeleteResult struct {
	DeletedIDs []int `json:"deleted_ids"`
	Count      int   `json:"count"`
}

// PMOMetrics are per-project delivery health indicators
type PMOMetrics struct {
	ID                      int       `json:"id"`
	ProjectID               int       `json:"project_id"`
	PlannedHours            float64   `json:"planned_hours"`
	ActualHours             float64   `json:"actual_hours"`
	CompletionPercentage    float64   `json:"completion_percentage"`
	ScheduleVarianceDays    int       `json:"schedule_variance_days"`
	CostVariancePercentage  float64   `json:"cost_variance_percentage"`
	ScopeVariancePercentage float64   `json:"scope_variance_percentage"`
	RiskLevel               string    `json:"risk_level"`
	TeamVelocity            float64   `json:"team_velocity"`
	BugsFound               int       `json:"bugs_found"`
	BugsResolved            int       `json:"bugs_resolved"`
	ClientSatisfactionScore *float64  `json:"client_satisfaction_score,omitempty"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// UpsertPMOMetricsRequest is the request body for writing project metrics
type UpsertPMOMetricsRequest struct {
	PlannedHours            float64  `json:"planned_hours"`
	ActualHours             float64  `json:"actual_hours"`
	CompletionPercentage    float64  `json:"completion_percentage"`
	ScheduleVarianceDays    int      `json:"schedule_variance_days"`
	CostVariancePercentage  float64  `json:"cost_variance_percentage"`
	ScopeVariancePercentage float64  `json:"scope_variance_percentage"`
	RiskLevel               string   `json:"risk_level"`
	TeamVelocity            float64  `json:"team_velocity"`
	BugsFound               int      `json:"bugs_found"`
	BugsResolved            int      `json:"bugs_resolved"`
	ClientSatisfactionScore *float64 `json:"client_satisfaction_score"`
}

// ProjectHealth is one row of the PMO dashboard summary
type ProjectHealth struct {
	ProjectID            int     `json:"project_id"`
	ProjectName          string  `json:"project_name"`
	Status               string  `json:"status"`
	Priority             string  `json:"priority"`
	CompletionPercentage float64 `json:"completion_percentage"`
	RiskLevel            string  `json:"risk_level"`
	MilestonesTotal      int     `json:"milestones_total"`
	MilestonesCompleted  int     `json:"milestones_completed"`
	ClientDelayDays      int     `json:"client_delay_days"`
	ActualROI            float64 `json:"actual_roi"`
}
