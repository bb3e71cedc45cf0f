package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/database"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

// TimeEntryService handles logged work time. Each entry snapshots the
// author's hourly cost rate at creation so later rate changes never rewrite
// historical project costs.
type TimeEntryService struct {
	db           *database.DB
	financialSvc *FinancialService
}

// NewTimeEntryService creates a new time entry service
func NewTimeEntryService(db *database.DB, financialSvc *FinancialService) *TimeEntryService {
	return &TimeEntryService{db: db, financialSvc: financialSvc}
}

const timeEntryColumns = `id, user_id, project_id, task_id, hours, COALESCE(description, ''),
	entry_date, hourly_rate, created_at, updated_at`

func scanTimeEntry(row interface{ Scan(...any) error }) (*models.TimeEntry, error) {
	var e models.TimeEntry
	err := row.Scan(&e.ID, &e.UserID, &e.ProjectID, &e.TaskID, &e.Hours, &e.Description,
		&e.EntryDate, &e.HourlyRate, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create logs time for a user on a project
func (s *TimeEntryService) Create(ctx context.Context, req *models.CreateTimeEntryRequest, userID int) (*models.TimeEntry, error) {
	if req.Hours <= 0 || req.Hours > 24 {
		return nil, apperrors.Validation("Hours must be between 0 and 24")
	}
	if req.EntryDate == "" {
		req.EntryDate = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", req.EntryDate); err != nil {
		return nil, apperrors.Validation("Entry date must be YYYY-MM-DD")
	}

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects WHERE id = ?", req.ProjectID).Scan(&exists)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	if exists == 0 {
		return nil, apperrors.NotFound("Project not found")
	}

	rate, err := s.financialSvc.GetHourlyRate(ctx, userID)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO time_entries (user_id, project_id, task_id, hours, description, entry_date, hourly_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, userID, req.ProjectID, req.TaskID, req.Hours, req.Description, req.EntryDate, rate)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	// Keep the task's rollup in step with its logged time
	if req.TaskID != nil {
		if err := s.refreshTaskHours(ctx, *req.TaskID); err != nil {
			return nil, err
		}
	}

	GetMetrics().RecordTimeEntry(req.Hours)

	id, _ := res.LastInsertId()
	return s.GetByID(ctx, int(id))
}

// GetByID returns a time entry by id, or a NOT_FOUND error
func (s *TimeEntryService) GetByID(ctx context.Context, id int) (*models.TimeEntry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+timeEntryColumns+" FROM time_entries WHERE id = ?", id)
	e, err := scanTimeEntry(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Time entry not found")
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	return e, nil
}

// List returns time entries matching the optional filters, newest first
func (s *TimeEntryService) List(ctx context.Context, userID, projectID int, from, to string) ([]models.TimeEntry, error) {
	f := database.NewFilter().
		WhereIf(userID != 0, "user_id = ?", userID).
		WhereIf(projectID != 0, "project_id = ?", projectID).
		WhereIf(from != "", "entry_date >= ?", from).
		WhereIf(to != "", "entry_date <= ?", to)

	query := "SELECT " + timeEntryColumns + " FROM time_entries" + f.Clause() + " ORDER BY entry_date DESC, id DESC"
	rows, err := s.db.QueryContext(ctx, query, f.Args()...)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	defer rows.Close()

	var entries []models.TimeEntry
	for rows.Next() {
		e, err := scanTimeEntry(rows)
		if err != nil {
			return nil, apperrors.FromStore(err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Update corrects an entry's hours, description or date. Only the author may
// edit, and the rate snapshot is preserved.
func (s *TimeEntryService) Update(ctx context.Context, id, userID int, req *models.UpdateTimeEntryRequest) (*models.TimeEntry, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.UserID != userID {
		return nil, apperrors.PermissionDenied("You can only edit your own time entries")
	}

	if req.Hours != nil {
		if *req.Hours <= 0 || *req.Hours > 24 {
			return nil, apperrors.Validation("Hours must be between 0 and 24")
		}
		e.Hours = *req.Hours
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.EntryDate != nil {
		if _, err := time.Parse("2006-01-02", *req.EntryDate); err != nil {
			return nil, apperrors.Validation("Entry date must be YYYY-MM-DD")
		}
		e.EntryDate = *req.EntryDate
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE time_entries SET hours = ?, description = ?, entry_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, e.Hours, e.Description, e.EntryDate, id)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	if e.TaskID != nil {
		if err := s.refreshTaskHours(ctx, *e.TaskID); err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, id)
}

// Delete removes an entry. Only the author may delete.
func (s *TimeEntryService) Delete(ctx context.Context, id, userID int) error {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e.UserID != userID {
		return apperrors.PermissionDenied("You can only delete your own time entries")
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM time_entries WHERE id = ?", id); err != nil {
		return apperrors.FromStore(err)
	}
	if e.TaskID != nil {
		if err := s.refreshTaskHours(ctx, *e.TaskID); err != nil {
			return err
		}
	}
	return nil
}

func (s *TimeEntryService) refreshTaskHours(ctx context.Context, taskID int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET actual_hours = (
			SELECT COALESCE(SUM(hours), 0) FROM time_entries WHERE task_id = ?
		), updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, taskID, taskID)
	if err != nil {
		return apperrors.FromStore(err)
	}
	return nil
}

// ProjectSummary aggregates hours and snapshot cost for one project
func (s *TimeEntryService) ProjectSummary(ctx context.Context, projectID int) (*models.ProjectTimeSummary, error) {
	var sum models.ProjectTimeSummary
	sum.ProjectID = projectID
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(hours), 0), COALESCE(SUM(hours * hourly_rate), 0), COUNT(*)
		FROM time_entries WHERE project_id = ?
	`, projectID).Scan(&sum.TotalHours, &sum.TotalCost, &sum.Entries)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	return &sum, nil
}
