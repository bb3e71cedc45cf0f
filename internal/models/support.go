package models

import "time"

// Support ticket status constants
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

// IsValidTicketStatus checks a status value against the known set
func IsValidTicketStatus(s string) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// SupportTicket is an operational incident raised against a deployed process
type SupportTicket struct {
	ID           int        `json:"id"`
	TicketNumber string     `json:"ticket_number"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	ClientName   string     `json:"client_name,omitempty"`
	ReportedBy   int        `json:"reported_by"`
	AssignedTo   *int       `json:"assigned_to,omitempty"`
	Resolution   string     `json:"resolution,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SupportResponse is one message on a ticket thread
type SupportResponse struct {
	ID        int       `json:"id"`
	TicketID  int       `json:"ticket_id"`
	UserID    int       `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTicketRequest is the request body for opening a ticket
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	ClientName  string `json:"client_name"`
	AssignedTo  *int   `json:"assigned_to"`
}

// UpdateTicketRequest is the request body for updating a ticket
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssignedTo  *int    `json:"assigned_to"`
	Resolution  *string `json:"resolution"`
}

// AddResponseRequest is the request body for replying on a ticket
type AddResponseRequest struct {
	Message string `json:"message"`
}
