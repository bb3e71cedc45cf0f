package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/database"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

// SupportService handles support tickets and their response threads
type SupportService struct {
	db *database.DB
}

// NewSupportService creates a new support service
func NewSupportService(db *database.DB) *SupportService {
	return &SupportService{db: db}
}

const ticketColumns = `id, ticket_number, title, COALESCE(description, ''), status, priority,
	COALESCE(client_name, ''), reported_by, assigned_to, COALESCE(resolution, ''), resolved_at,
	created_at, updated_at`

func scanTicket(row interface{ Scan(...any) error }) (*models.SupportTicket, error) {
	var t models.SupportTicket
	err := row.Scan(&t.ID, &t.TicketNumber, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.ClientName, &t.ReportedBy, &t.AssignedTo, &t.Resolution, &t.ResolvedAt,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create opens a new ticket with a generated ticket number
func (s *SupportService) Create(ctx context.Context, req *models.CreateTicketRequest, reportedBy int) (*models.SupportTicket, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.Validation("Ticket title is required")
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if !models.IsValidPriority(req.Priority) {
		return nil, apperrors.Validation("Unknown priority: " + req.Priority)
	}

	// Ticket numbers are TKT-YYYYMM-NNNN, NNNN counting within the month.
	// The count and insert run in one transaction; the single-writer store
	// keeps the sequence free of duplicates.
	var ticketID int64
	err := s.db.Transaction(func(tx *sql.Tx) error {
		prefix := "TKT-" + time.Now().Format("200601")
		var n int
		if err := tx.QueryRow(
			"SELECT COUNT(*) FROM support_tickets WHERE ticket_number LIKE ?", prefix+"%").Scan(&n); err != nil {
			return err
		}
		number := fmt.Sprintf("%s-%04d", prefix, n+1)

		res, err := tx.Exec(`
			INSERT INTO support_tickets (ticket_number, title, description, priority, client_name, reported_by, assigned_to)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, number, req.Title, req.Description, req.Priority, req.ClientName, reportedBy, req.AssignedTo)
		if err != nil {
			return err
		}
		ticketID, _ = res.LastInsertId()
		return nil
	})
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	GetMetrics().RecordTicketOpened()
	return s.GetByID(ctx, int(ticketID))
}

// GetByID returns a ticket by id, or a NOT_FOUND error
func (s *SupportService) GetByID(ctx context.Context, id int) (*models.SupportTicket, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+ticketColumns+" FROM support_tickets WHERE id = ?", id)
	t, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Ticket not found")
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	return t, nil
}

// List returns tickets matching the optional filters, newest first
func (s *SupportService) List(ctx context.Context, status, priority string, assignedTo int) ([]models.SupportTicket, error) {
	f := database.NewFilter().
		WhereIf(status != "", "status = ?", status).
		WhereIf(priority != "", "priority = ?", priority).
		WhereIf(assignedTo != 0, "assigned_to = ?", assignedTo)

	query := "SELECT " + ticketColumns + " FROM support_tickets" + f.Clause() + " ORDER BY created_at DESC"
	rows, err := s.db.QueryContext(ctx, query, f.Args()...)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	defer rows.Close()

	var tickets []models.SupportTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, apperrors.FromStore(err)
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

// Update patches the mutable ticket fields. Moving to resolved stamps
// resolved_at; moving away clears it.
func (s *SupportService) Update(ctx context.Context, id int, req *models.UpdateTicketRequest) (*models.SupportTicket, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
		if t.Title == "" {
			return nil, apperrors.Validation("Ticket title cannot be empty")
		}
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Priority != nil {
		if !models.IsValidPriority(*req.Priority) {
			return nil, apperrors.Validation("Unknown priority: " + *req.Priority)
		}
		t.Priority = *req.Priority
	}
	if req.AssignedTo != nil {
		t.AssignedTo = req.AssignedTo
	}
	if req.Resolution != nil {
		t.Resolution = *req.Resolution
	}
	if req.Status != nil {
		if !models.IsValidTicketStatus(*req.Status) {
			return nil, apperrors.Validation("Unknown ticket status: " + *req.Status)
		}
		if *req.Status == models.TicketStatusResolved && t.Status != models.TicketStatusResolved {
			if strings.TrimSpace(t.Resolution) == "" {
				return nil, apperrors.Validation("A resolution is required to resolve a ticket")
			}
			now := time.Now()
			t.ResolvedAt = &now
		}
		if *req.Status != models.TicketStatusResolved && *req.Status != models.TicketStatusClosed {
			t.ResolvedAt = nil
		}
		t.Status = *req.Status
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE support_tickets SET title = ?, description = ?, status = ?, priority = ?,
			assigned_to = ?, resolution = ?, resolved_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, t.Title, t.Description, t.Status, t.Priority, t.AssignedTo, t.Resolution, t.ResolvedAt, id)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	return s.GetByID(ctx, id)
}

// AddResponse appends a message to a ticket's thread
func (s *SupportService) AddResponse(ctx context.Context, ticketID, userID int, req *models.AddResponseRequest) (*models.SupportResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, apperrors.Validation("Response message is required")
	}
	if _, err := s.GetByID(ctx, ticketID); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO support_responses (ticket_id, user_id, message) VALUES (?, ?, ?)
	`, ticketID, userID, req.Message)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	id, _ := res.LastInsertId()
	var r models.SupportResponse
	err = s.db.QueryRowContext(ctx, `
		SELECT id, ticket_id, user_id, message, created_at FROM support_responses WHERE id = ?
	`, id).Scan(&r.ID, &r.TicketID, &r.UserID, &r.Message, &r.CreatedAt)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	return &r, nil
}

// ListResponses returns a ticket's thread in chronological order
func (s *SupportService) ListResponses(ctx context.Context, ticketID int) ([]models.SupportResponse, error) {
	if _, err := s.GetByID(ctx, ticketID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ticket_id, user_id, message, created_at
		FROM support_responses WHERE ticket_id = ? ORDER BY created_at, id
	`, ticketID)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	defer rows.Close()

	var responses []models.SupportResponse
	for rows.Next() {
		var r models.SupportResponse
		if err := rows.Scan(&r.ID, &r.TicketID, &r.UserID, &r.Message, &r.CreatedAt); err != nil {
			return nil, apperrors.FromStore(err)
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}
