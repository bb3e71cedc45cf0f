package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/database"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

// IdeaService handles improvement ideas and voting
type IdeaService struct {
	db *database.DB
}

// NewIdeaService creates a new idea service
func NewIdeaService(db *database.DB) *IdeaService {
	return &IdeaService{db: db}
}

const ideaColumns = `i.id, i.title, COALESCE(i.description, ''), i.status, i.priority,
	(SELECT COUNT(*) FROM idea_votes v WHERE v.idea_id = i.id), i.created_by, i.created_at, i.updated_at`

func scanIdea(row interface{ Scan(...any) error }) (*models.Idea, error) {
	var i models.Idea
	err := row.Scan(&i.ID, &i.Title, &i.Description, &i.Status, &i.Priority, &i.Votes,
		&i.CreatedBy, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Create adds a new idea in draft status
func (s *IdeaService) Create(ctx context.Context, req *models.CreateIdeaRequest, createdBy int) (*models.Idea, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.Validation("Idea title is required")
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if !models.IsValidPriority(req.Priority) {
		return nil, apperrors.Validation("Unknown priority: " + req.Priority)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ideas (title, description, priority, created_by) VALUES (?, ?, ?, ?)
	`, req.Title, req.Description, req.Priority, createdBy)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	id, _ := res.LastInsertId()
	return s.GetByID(ctx, int(id))
}

// GetByID returns an idea with its vote count, or a NOT_FOUND error
func (s *IdeaService) GetByID(ctx context.Context, id int) (*models.Idea, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+ideaColumns+" FROM ideas i WHERE i.id = ?", id)
	idea, err := scanIdea(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Idea not found")
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	return idea, nil
}

// List returns all ideas, most voted first
func (s *IdeaService) List(ctx context.Context, status string) ([]models.Idea, error) {
	f := database.NewFilter().WhereIf(status != "", "i.status = ?", status)
	query := "SELECT " + ideaColumns + " FROM ideas i" + f.Clause() +
		" ORDER BY (SELECT COUNT(*) FROM idea_votes v WHERE v.idea_id = i.id) DESC, i.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, f.Args()...)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	defer rows.Close()

	var ideas []models.Idea
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, apperrors.FromStore(err)
		}
		ideas = append(ideas, *idea)
	}
	return ideas, rows.Err()
}

// Update patches the mutable idea fields
func (s *IdeaService) Update(ctx context.Context, id int, req *models.UpdateIdeaRequest) (*models.Idea, error) {
	idea, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		idea.Title = strings.TrimSpace(*req.Title)
		if idea.Title == "" {
			return nil, apperrors.Validation("Idea title cannot be empty")
		}
	}
	if req.Description != nil {
		idea.Description = *req.Description
	}
	if req.Status != nil {
		if !models.IsValidIdeaStatus(*req.Status) {
			return nil, apperrors.Validation("Unknown idea status: " + *req.Status)
		}
		idea.Status = *req.Status
	}
	if req.Priority != nil {
		if !models.IsValidPriority(*req.Priority) {
			return nil, apperrors.Validation("Unknown priority: " + *req.Priority)
		}
		idea.Priority = *req.Priority
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE ideas SET title = ?, description = ?, status = ?, priority = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, idea.Title, idea.Description, idea.Status, idea.Priority, id)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	return s.GetByID(ctx, id)
}

// Vote records one vote per user per idea. Voting twice is a conflict.
func (s *IdeaService) Vote(ctx context.Context, ideaID, userID int) (*models.Idea, error) {
	if _, err := s.GetByID(ctx, ideaID); err != nil {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO idea_votes (idea_id, user_id) VALUES (?, ?)", ideaID, userID)
	if err != nil {
		if database.IsConstraint(err) {
			return nil, apperrors.Conflict("You have already voted for this idea")
		}
		return nil, apperrors.FromStore(err)
	}

	return s.GetByID(ctx, ideaID)
}

// Unvote removes a user's vote
func (s *IdeaService) Unvote(ctx context.Context, ideaID, userID int) (*models.Idea, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM idea_votes WHERE idea_id = ? AND user_id = ?", ideaID, userID)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperrors.NotFound("No vote to remove")
	}

	return s.GetByID(ctx, ideaID)
}

// Delete removes an idea and its votes
func (s *IdeaService) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM ideas WHERE id = ?", id)
	if err != nil {
		return apperrors.FromStore(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("Idea not found")
	}
	return nil
}
