package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/database"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

// PMOService handles milestones, project delivery metrics and the PMO
// dashboard.
type PMOService struct {
	db *database.DB
}

// NewPMOService creates a new PMO service
func NewPMOService(db *database.DB) *PMOService {
	return &PMOService{db: db}
}

const milestoneColumns = `id, project_id, name, COALESCE(description, ''), milestone_date, status,
	responsibility, delay_days, financial_impact, created_by, created_at, updated_at`

func scanMilestone(row interface{ Scan(...any) error }) (*models.Milestone, error) {
	var m models.Milestone
	err := row.Scan(&m.ID, &m.ProjectID, &m.Name, &m.Description, &m.MilestoneDate, &m.Status,
		&m.Responsibility, &m.DelayDays, &m.FinancialImpact, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func validateMilestoneInput(in *models.MilestoneInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("milestone name is required")
	}
	if in.MilestoneDate == "" {
		return fmt.Errorf("milestone date is required")
	}
	if _, err := time.Parse("2006-01-02", in.MilestoneDate); err != nil {
		return fmt.Errorf("milestone date must be YYYY-MM-DD")
	}
	if in.Status == "" {
		in.Status = models.MilestoneStatusPending
	}
	if !models.IsValidMilestoneStatus(in.Status) {
		return fmt.Errorf("unknown milestone status: %s", in.Status)
	}
	if in.Responsibility == "" {
		in.Responsibility = models.ResponsibilityInternal
	}
	if !models.IsValidResponsibility(in.Responsibility) {
		return fmt.Errorf("unknown responsibility: %s", in.Responsibility)
	}
	if in.DelayDays < 0 {
		return fmt.Errorf("delay days cannot be negative")
	}
	return nil
}

// CreateMilestone adds a single milestone
func (s *PMOService) CreateMilestone(ctx context.Context, in *models.MilestoneInput, createdBy int) (*models.Milestone, error) {
	if err := validateMilestoneInput(in); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects WHERE id = ?", in.ProjectID).Scan(&exists); err != nil {
		return nil, apperrors.FromStore(err)
	}
	if exists == 0 {
		return nil, apperrors.NotFound("Project not found")
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pmo_milestones (project_id, name, description, milestone_date, status,
			responsibility, delay_days, financial_impact, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, in.ProjectID, in.Name, in.Description, in.MilestoneDate, in.Status,
		in.Responsibility, in.DelayDays, in.FinancialImpact, createdBy)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	id, _ := res.LastInsertId()
	return s.GetMilestone(ctx, int(id))
}

// GetMilestone returns a milestone by id, or a NOT_FOUND error
func (s *PMOService) GetMilestone(ctx context.Context, id int) (*models.Milestone, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+milestoneColumns+" FROM pmo_milestones WHERE id = ?", id)
	m, err := scanMilestone(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Milestone not found")
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	return m, nil
}

// ListMilestones returns the milestones of a project in date order
func (s *PMOService) ListMilestones(ctx context.Context, projectID int) ([]models.Milestone, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+milestoneColumns+" FROM pmo_milestones WHERE project_id = ? ORDER BY milestone_date, id", projectID)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	defer rows.Close()

	var milestones []models.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, apperrors.FromStore(err)
		}
		milestones = append(milestones, *m)
	}
	return milestones, rows.Err()
}

// UpdateMilestone patches the mutable milestone fields
func (s *PMOService) UpdateMilestone(ctx context.Context, id int, req *models.UpdateMilestoneRequest) (*models.Milestone, error) {
	m, err := s.GetMilestone(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		m.Name = strings.TrimSpace(*req.Name)
		if m.Name == "" {
			return nil, apperrors.Validation("Milestone name cannot be empty")
		}
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.MilestoneDate != nil {
		if _, err := time.Parse("2006-01-02", *req.MilestoneDate); err != nil {
			return nil, apperrors.Validation("Milestone date must be YYYY-MM-DD")
		}
		m.MilestoneDate = *req.MilestoneDate
	}
	if req.Status != nil {
		if !models.IsValidMilestoneStatus(*req.Status) {
			return nil, apperrors.Validation("Unknown milestone status: " + *req.Status)
		}
		m.Status = *req.Status
	}
	if req.Responsibility != nil {
		if !models.IsValidResponsibility(*req.Responsibility) {
			return nil, apperrors.Validation("Unknown responsibility: " + *req.Responsibility)
		}
		m.Responsibility = *req.Responsibility
	}
	if req.DelayDays != nil {
		if *req.DelayDays < 0 {
			return nil, apperrors.Validation("Delay days cannot be negative")
		}
		m.DelayDays = *req.DelayDays
	}
	if req.FinancialImpact != nil {
		m.FinancialImpact = *req.FinancialImpact
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE pmo_milestones SET name = ?, description = ?, milestone_date = ?, status = ?,
			responsibility = ?, delay_days = ?, financial_impact = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, m.Name, m.Description, m.MilestoneDate, m.Status, m.Responsibility, m.DelayDays, m.FinancialImpact, id)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	return s.GetMilestone(ctx, id)
}

// DeleteMilestone removes a single milestone
func (s *PMOService) DeleteMilestone(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM pmo_milestones WHERE id = ?", id)
	if err != nil {
		return apperrors.FromStore(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("Milestone not found")
	}
	return nil
}

// BatchCreateMilestones inserts a batch of milestones with per-row
// validation. Valid rows commit even when others fail; the result reports
// both sides.
func (s *PMOService) BatchCreateMilestones(ctx context.Context, req *models.BatchCreateMilestonesRequest, createdBy int) (*models.BatchCreateResult, error) {
	if len(req.Milestones) == 0 {
		return nil, apperrors.Validation("At least one milestone is required")
	}
	if len(req.Milestones) > 100 {
		return nil, apperrors.Validation("A batch may contain at most 100 milestones")
	}

	result := &models.BatchCreateResult{}
	for i := range req.Milestones {
		in := &req.Milestones[i]
		if err := validateMilestoneInput(in); err != nil {
			result.Errors = append(result.Errors, models.BatchRowError{Index: i, Error: err.Error()})
			continue
		}

		m, err := s.CreateMilestone(ctx, in, createdBy)
		if err != nil {
			result.Errors = append(result.Errors, models.BatchRowError{Index: i, Error: err.Error()})
			continue
		}
		result.Created = append(result.Created, *m)
	}

	log.Printf("📋 Batch milestone create: %d created, %d failed", len(result.Created), len(result.Errors))
	return result, nil
}

// BatchDeleteMilestones removes a set of milestones atomically. The ids are
// re-verified inside an exclusive transaction; if any is already gone the
// whole batch aborts and nothing is deleted.
func (s *PMOService) BatchDeleteMilestones(ctx context.Context, req *models.BatchDeleteMilestonesRequest) (*models.BatchDeleteResult, error) {
	if len(req.IDs) == 0 {
		return nil, apperrors.Validation("At least one milestone id is required")
	}
	seen := make(map[int]bool, len(req.IDs))
	for _, id := range req.IDs {
		if id <= 0 {
			return nil, apperrors.Validation("Milestone ids must be positive")
		}
		if seen[id] {
			return nil, apperrors.Validation("Duplicate milestone id in batch")
		}
		seen[id] = true
	}

	placeholders := strings.Repeat("?,", len(req.IDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(req.IDs))
	for i, id := range req.IDs {
		args[i] = id
	}

	var missing []int
	err := s.db.ExclusiveTransaction(ctx, func(conn *sql.Conn) error {
		// Recheck existence while holding the exclusive lock. A milestone
		// deleted by a concurrent request between the client's read and this
		// call shows up here, not as a silent partial delete.
		rows, err := conn.QueryContext(ctx,
			"SELECT id FROM pmo_milestones WHERE id IN ("+placeholders+")", args...)
		if err != nil {
			return err
		}
		found := make(map[int]bool, len(req.IDs))
		for rows.Next() {
			var id int
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			found[id] = true
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, id := range req.IDs {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing milestones: %v", missing)
		}

		_, err = conn.ExecContext(ctx,
			"DELETE FROM pmo_milestones WHERE id IN ("+placeholders+")", args...)
		return err
	})
	if err != nil {
		if len(missing) > 0 {
			GetMetrics().RecordBatchDeletion("aborted")
			details := make([]models.BatchRowError, 0, len(missing))
			for _, id := range missing {
				details = append(details, models.BatchRowError{ID: id, Error: "milestone no longer exists"})
			}
			return nil, apperrors.ConcurrentModification(
				"One or more milestones were deleted by another request; no changes were made").WithDetails(details)
		}
		GetMetrics().RecordBatchDeletion("error")
		return nil, apperrors.FromStore(err)
	}

	GetMetrics().RecordBatchDeletion("success")
	log.Printf("🗑️ Batch milestone delete: %d removed", len(req.IDs))
	return &models.BatchDeleteResult{DeletedIDs: req.IDs, Count: len(req.IDs)}, nil
}

// UpsertMetrics writes the delivery metrics row of a project
func (s *PMOService) UpsertMetrics(ctx context.Context, projectID int, req *models.UpsertPMOMetricsRequest) (*models.PMOMetrics, error) {
	if req.RiskLevel == "" {
		req.RiskLevel = "low"
	}
	switch req.RiskLevel {
	case "low", "medium", "high", "critical":
	default:
		return nil, apperrors.Validation("Unknown risk level: " + req.RiskLevel)
	}
	if req.CompletionPercentage < 0 || req.CompletionPercentage > 100 {
		return nil, apperrors.Validation("Completion percentage must be between 0 and 100")
	}
	if req.ClientSatisfactionScore != nil && (*req.ClientSatisfactionScore < 1 || *req.ClientSatisfactionScore > 10) {
		return nil, apperrors.Validation("Client satisfaction score must be between 1 and 10")
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects WHERE id = ?", projectID).Scan(&exists); err != nil {
		return nil, apperrors.FromStore(err)
	}
	if exists == 0 {
		return nil, apperrors.NotFound("Project not found")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_pmo_metrics (project_id, planned_hours, actual_hours, completion_percentage,
			schedule_variance_days, cost_variance_percentage, scope_variance_percentage, risk_level,
			team_velocity, bugs_found, bugs_resolved, client_satisfaction_score, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(project_id) DO UPDATE SET
			planned_hours = excluded.planned_hours,
			actual_hours = excluded.actual_hours,
			completion_percentage = excluded.completion_percentage,
			schedule_variance_days = excluded.schedule_variance_days,
			cost_variance_percentage = excluded.cost_variance_percentage,
			scope_variance_percentage = excluded.scope_variance_percentage,
			risk_level = excluded.risk_level,
			team_velocity = excluded.team_velocity,
			bugs_found = excluded.bugs_found,
			bugs_resolved = excluded.bugs_resolved,
			client_satisfaction_score = excluded.client_satisfaction_score,
			updated_at = CURRENT_TIMESTAMP
	`, projectID, req.PlannedHours, req.ActualHours, req.CompletionPercentage,
		req.ScheduleVarianceDays, req.CostVariancePercentage, req.ScopeVariancePercentage,
		req.RiskLevel, req.TeamVelocity, req.BugsFound, req.BugsResolved, req.ClientSatisfactionScore)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	return s.GetMetricsByProject(ctx, projectID)
}

// GetMetricsByProject returns the delivery metrics row of a project
func (s *PMOService) GetMetricsByProject(ctx context.Context, projectID int) (*models.PMOMetrics, error) {
	var m models.PMOMetrics
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, planned_hours, actual_hours, completion_percentage,
			schedule_variance_days, cost_variance_percentage, scope_variance_percentage,
			risk_level, team_velocity, bugs_found, bugs_resolved, client_satisfaction_score, updated_at
		FROM project_pmo_metrics WHERE project_id = ?
	`, projectID).Scan(&m.ID, &m.ProjectID, &m.PlannedHours, &m.ActualHours, &m.CompletionPercentage,
		&m.ScheduleVarianceDays, &m.CostVariancePercentage, &m.ScopeVariancePercentage,
		&m.RiskLevel, &m.TeamVelocity, &m.BugsFound, &m.BugsResolved, &m.ClientSatisfactionScore, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("No metrics recorded for this project")
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	return &m, nil
}

// DashboardSummary aggregates per-project health for the PMO dashboard:
// completion, risk, milestone progress, client delay and last computed ROI.
func (s *PMOService) DashboardSummary(ctx context.Context) ([]models.ProjectHealth, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.status, p.priority,
			COALESCE(m.completion_percentage, 0),
			COALESCE(m.risk_level, 'low'),
			(SELECT COUNT(*) FROM pmo_milestones pm WHERE pm.project_id = p.id),
			(SELECT COUNT(*) FROM pmo_milestones pm WHERE pm.project_id = p.id AND pm.status = 'completed'),
			(SELECT COALESCE(SUM(pm.delay_days), 0) FROM pmo_milestones pm
				WHERE pm.project_id = p.id AND pm.responsibility = 'client'),
			COALESCE(f.actual_roi, 0)
		FROM projects p
		LEFT JOIN project_pmo_metrics m ON m.project_id = p.id
		LEFT JOIN project_financials f ON f.project_id = p.id
		WHERE p.status NOT IN ('cancelled')
		ORDER BY p.priority = 'critical' DESC, p.priority = 'high' DESC, p.name
	`)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	defer rows.Close()

	var summary []models.ProjectHealth
	for rows.Next() {
		var h models.ProjectHealth
		if err := rows.Scan(&h.ProjectID, &h.ProjectName, &h.Status, &h.Priority,
			&h.CompletionPercentage, &h.RiskLevel, &h.MilestonesTotal, &h.MilestonesCompleted,
			&h.ClientDelayDays, &h.ActualROI); err != nil {
			return nil, apperrors.FromStore(err)
		}
		summary = append(summary, h)
	}
	return summary, rows.Err()
}
