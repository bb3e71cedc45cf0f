package models

import "time"

// TimeEntry is a logged block of work. HourlyRate is snapshotted from the
// user's active cost rate at creation time so historical cost calculations
// stay stable when rates change later.
type TimeEntry struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	ProjectID   int       `json:"project_id"`
	TaskID      *int      `json:"task_id,omitempty"`
	Hours       float64   `json:"hours"`
	Description string    `json:"description,omitempty"`
	EntryDate   string    `json:"entry_date"`
	HourlyRate  float64   `json:"hourly_rate"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateTimeEntryRequest is the request body for logging time
type CreateTimeEntryRequest struct {
	ProjectID   int     `json:"project_id"`
	TaskID      *int    `json:"task_id"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
	EntryDate   string  `json:"entry_date"`
}

// UpdateTimeEntryRequest is the request body for correcting an entry.
// The rate snapshot is never recomputed on update.
type UpdateTimeEntryRequest struct {
	Hours       *float64 `json:"hours"`
	Description *string  `json:"description"`
	EntryDate   *string  `json:"entry_date"`
}

// ProjectTimeSummary aggregates logged hours and cost for one project
type ProjectTimeSummary struct {
	ProjectID  int     `json:"project_id"`
	TotalHours float64 `json:"total_hours"`
	TotalCost  float64 `json:"total_cost"`
	Entries    int     `json:"entries"`
}
