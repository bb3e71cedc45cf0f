package models

import "time"

// Idea status constants
const (
	IdeaStatusDraft       = "draft"
	IdeaStatusUnderReview = "under_review"
	IdeaStatusApproved    = "approved"
	IdeaStatusRejected    = "rejected"
	IdeaStatusImplemented = "implemented"
)

// IsValidIdeaStatus checks a status value against the known set
func IsValidIdeaStatus(s string) bool {
	switch s {
	case IdeaStatusDraft, IdeaStatusUnderReview, IdeaStatusApproved, IdeaStatusRejected, IdeaStatusImplemented:
		return true
	}
	return false
}

// Idea is an automation improvement proposal
type Idea struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	Votes       int       `json:"votes"`
	CreatedBy   int       `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateIdeaRequest is the request body for creating an idea
type CreateIdeaRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// UpdateIdeaRequest is the request body for updating an idea
type UpdateIdeaRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
}
