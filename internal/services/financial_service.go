package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/database"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

// Hours a client-responsibility delay day converts to
const delayHoursPerDay = 8.0

// FinancialService handles user cost rates and the project ROI computation
type FinancialService struct {
	db          *database.DB
	settingsSvc *SettingsService
}

// NewFinancialService creates a new financial service
func NewFinancialService(db *database.DB, settingsSvc *SettingsService) *FinancialService {
	return &FinancialService{db: db, settingsSvc: settingsSvc}
}

// CreateCostRate records a new cost rate for a user, deactivating the
// previous one in the same transaction. Old rates are closed with an
// effective_to date, never deleted.
func (s *FinancialService) CreateCostRate(ctx context.Context, req *models.CreateCostRateRequest) (*models.UserCostRate, error) {
	if req.MonthlyCost <= 0 {
		return nil, apperrors.Validation("Monthly cost must be positive")
	}
	if req.EffectiveFrom == "" {
		req.EffectiveFrom = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", req.EffectiveFrom); err != nil {
		return nil, apperrors.Validation("Effective date must be YYYY-MM-DD")
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE id = ?", req.UserID).Scan(&exists); err != nil {
		return nil, apperrors.FromStore(err)
	}
	if exists == 0 {
		return nil, apperrors.NotFound("User not found")
	}

	monthlyHours, err := s.settingsSvc.GetFloat(ctx, models.SettingKeyMonthlyHours, 176)
	if err != nil {
		return nil, err
	}
	if monthlyHours <= 0 {
		monthlyHours = 176
	}
	hourlyRate := req.MonthlyCost / monthlyHours

	var rateID int64
	err = s.db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			UPDATE user_cost_rates SET is_active = 0, effective_to = ?
			WHERE user_id = ? AND is_active = 1
		`, req.EffectiveFrom, req.UserID); err != nil {
			return err
		}
		res, err := tx.Exec(`
			INSERT INTO user_cost_rates (user_id, monthly_cost, hourly_rate, effective_from)
			VALUES (?, ?, ?, ?)
		`, req.UserID, req.MonthlyCost, hourlyRate, req.EffectiveFrom)
		if err != nil {
			return err
		}
		rateID, _ = res.LastInsertId()
		return nil
	})
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	return s.getCostRate(ctx, int(rateID))
}

func (s *FinancialService) getCostRate(ctx context.Context, id int) (*models.UserCostRate, error) {
	var r models.UserCostRate
	var active int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, monthly_cost, hourly_rate, effective_from, effective_to, is_active, created_at
		FROM user_cost_rates WHERE id = ?
	`, id).Scan(&r.ID, &r.UserID, &r.MonthlyCost, &r.HourlyRate, &r.EffectiveFrom, &r.EffectiveTo, &active, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Cost rate not found")
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	r.IsActive = active == 1
	return &r, nil
}

// GetActiveRate returns a user's active cost rate, or nil when none is set
func (s *FinancialService) GetActiveRate(ctx context.Context, userID int) (*models.UserCostRate, error) {
	var id int
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM user_cost_rates WHERE user_id = ? AND is_active = 1 ORDER BY effective_from DESC LIMIT 1",
		userID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	return s.getCostRate(ctx, id)
}

// ListRates returns a user's cost rate history, newest first
func (s *FinancialService) ListRates(ctx context.Context, userID int) ([]models.UserCostRate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, monthly_cost, hourly_rate, effective_from, effective_to, is_active, created_at
		FROM user_cost_rates WHERE user_id = ? ORDER BY effective_from DESC, id DESC
	`, userID)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	defer rows.Close()

	var rates []models.UserCostRate
	for rows.Next() {
		var r models.UserCostRate
		var active int
		if err := rows.Scan(&r.ID, &r.UserID, &r.MonthlyCost, &r.HourlyRate, &r.EffectiveFrom,
			&r.EffectiveTo, &active, &r.CreatedAt); err != nil {
			return nil, apperrors.FromStore(err)
		}
		r.IsActive = active == 1
		rates = append(rates, r)
	}
	return rates, rows.Err()
}

// GetHourlyRate returns a user's current hourly cost, falling back to the
// default monthly cost when no rate is set.
func (s *FinancialService) GetHourlyRate(ctx context.Context, userID int) (float64, error) {
	rate, err := s.GetActiveRate(ctx, userID)
	if err != nil {
		return 0, err
	}
	if rate != nil {
		return rate.HourlyRate, nil
	}

	defaultCost, err := s.settingsSvc.GetFloat(ctx, models.SettingKeyDefaultMonthlyCost, 0)
	if err != nil {
		return 0, err
	}
	monthlyHours, err := s.settingsSvc.GetFloat(ctx, models.SettingKeyMonthlyHours, 176)
	if err != nil {
		return 0, err
	}
	if monthlyHours <= 0 {
		monthlyHours = 176
	}
	return defaultCost / monthlyHours, nil
}

// safeROI computes profit/cost as a percentage. A zero cost basis yields 0,
// not a division error or infinity.
func safeROI(profit, cost float64) float64 {
	if cost == 0 {
		return 0
	}
	return profit / cost * 100
}

// ComputeProjectROI runs the full ROI calculation for a project and persists
// the result as the project_financials snapshot. Snapshot persistence is
// best-effort: a failed write flags the response instead of failing it.
func (s *FinancialService) ComputeProjectROI(ctx context.Context, projectID int) (*models.ROIResult, error) {
	var (
		budgetedHours, saleRateUF float64
		assignedTo                *int
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT budgeted_hours, sale_rate_uf, assigned_to FROM projects WHERE id = ?", projectID).
		Scan(&budgetedHours, &saleRateUF, &assignedTo)
	if err == sql.ErrNoRows {
		GetMetrics().RecordROIComputation("not_found")
		return nil, apperrors.NotFound("Project not found")
	}
	if err != nil {
		GetMetrics().RecordROIComputation("error")
		return nil, apperrors.FromStore(err)
	}

	monthlyHours, err := s.settingsSvc.GetFloat(ctx, models.SettingKeyMonthlyHours, 176)
	if err != nil {
		return nil, err
	}
	if monthlyHours <= 0 {
		monthlyHours = 176
	}
	ufRate, err := s.settingsSvc.GetFloat(ctx, models.SettingKeyUFRate, 0)
	if err != nil {
		return nil, err
	}
	defaultMonthlyCost, err := s.settingsSvc.GetFloat(ctx, models.SettingKeyDefaultMonthlyCost, 0)
	if err != nil {
		return nil, err
	}

	breakdown, blended, err := s.costBreakdown(ctx, projectID, assignedTo, monthlyHours, defaultMonthlyCost)
	if err != nil {
		GetMetrics().RecordROIComputation("error")
		return nil, err
	}

	// Client-responsibility delays extend the hours the team has to fund;
	// internal delays are the team's own problem and do not move the cost.
	var clientDelayDays int
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(delay_days), 0) FROM pmo_milestones
		WHERE project_id = ? AND responsibility = 'client'
	`, projectID).Scan(&clientDelayDays)
	if err != nil {
		GetMetrics().RecordROIComputation("error")
		return nil, apperrors.FromStore(err)
	}

	clientDelayHours := float64(clientDelayDays) * delayHoursPerDay
	realHours := budgetedHours + clientDelayHours

	salePrice := budgetedHours * saleRateUF * ufRate
	plannedCost := budgetedHours * blended
	realCost := realHours * blended
	plannedProfit := salePrice - plannedCost
	realProfit := salePrice - realCost
	delayImpact := clientDelayHours * blended
	lostProfit := plannedProfit - realProfit

	result := &models.ROIResult{
		ProjectID:         projectID,
		BudgetedHours:     budgetedHours,
		ClientDelayHours:  clientDelayHours,
		RealHours:         realHours,
		BlendedHourlyCost: blended,
		SalePrice:         salePrice,
		PlannedCost:       plannedCost,
		RealCost:          realCost,
		PlannedProfit:     plannedProfit,
		RealProfit:        realProfit,
		PlannedROI:        safeROI(plannedProfit, plannedCost),
		RealROI:           safeROI(realProfit, realCost),
		DelayImpact:       delayImpact,
		LostProfit:        lostProfit,
		UFRate:            ufRate,
		CostBreakdown:     breakdown,
		ComputedAt:        time.Now().UTC(),
	}
	result.Alerts = buildAlerts(result)

	if err := s.persistSnapshot(ctx, result); err != nil {
		// The computation is authoritative; a stale snapshot only degrades
		// list views, so warn instead of failing the request.
		log.Printf("⚠️ Failed to persist financial snapshot for project %d: %v", projectID, err)
		result.CacheWarning = true
	}

	GetMetrics().RecordROIComputation("success")
	return result, nil
}

// costBreakdown resolves the project's team and sums their allocation-adjusted
// hourly costs into the blended team rate. A user at 50% contributes half
// their hourly cost; allocations are not required to total 100. With no
// assignment rows, the legacy assigned_to user counts as a single 100%
// assignment.
func (s *FinancialService) costBreakdown(ctx context.Context, projectID int, assignedTo *int, monthlyHours, defaultMonthlyCost float64) ([]models.UserCostBreakdown, float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.user_id, u.full_name, a.allocation_percentage
		FROM project_assignments a
		JOIN users u ON u.id = a.user_id
		WHERE a.project_id = ?
	`, projectID)
	if err != nil {
		return nil, 0, apperrors.FromStore(err)
	}

	type member struct {
		userID     int
		fullName   string
		allocation float64
	}
	var team []member
	for rows.Next() {
		var m member
		if err := rows.Scan(&m.userID, &m.fullName, &m.allocation); err != nil {
			rows.Close()
			return nil, 0, apperrors.FromStore(err)
		}
		team = append(team, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.FromStore(err)
	}

	if len(team) == 0 && assignedTo != nil {
		var name string
		if err := s.db.QueryRowContext(ctx, "SELECT full_name FROM users WHERE id = ?", *assignedTo).Scan(&name); err == nil {
			team = append(team, member{userID: *assignedTo, fullName: name, allocation: 100})
		}
	}

	var breakdown []models.UserCostBreakdown
	var blended float64
	for _, m := range team {
		rate, err := s.GetActiveRate(ctx, m.userID)
		if err != nil {
			return nil, 0, err
		}

		entry := models.UserCostBreakdown{
			UserID:               m.userID,
			FullName:             m.fullName,
			AllocationPercentage: m.allocation,
		}
		if rate != nil {
			entry.MonthlyCost = rate.MonthlyCost
			entry.HourlyCost = rate.HourlyRate
		} else {
			entry.MonthlyCost = defaultMonthlyCost
			entry.HourlyCost = defaultMonthlyCost / monthlyHours
			entry.UsedDefaultRate = true
		}
		entry.AdjustedHourlyCost = entry.HourlyCost * m.allocation / 100

		breakdown = append(breakdown, entry)
		blended += entry.AdjustedHourlyCost
	}

	return breakdown, blended, nil
}

func buildAlerts(r *models.ROIResult) []models.ROIAlert {
	var alerts []models.ROIAlert

	switch {
	case r.RealROI < 0:
		alerts = append(alerts, models.ROIAlert{
			Severity: models.AlertCritical,
			Message:  fmt.Sprintf("Project is losing money: real ROI is %.2f%%", r.RealROI),
		})
	case r.RealROI < 15:
		alerts = append(alerts, models.ROIAlert{
			Severity: models.AlertWarning,
			Message:  fmt.Sprintf("Real ROI is low at %.2f%%", r.RealROI),
		})
	default:
		alerts = append(alerts, models.ROIAlert{
			Severity: models.AlertSuccess,
			Message:  fmt.Sprintf("Real ROI is healthy at %.2f%%", r.RealROI),
		})
	}

	if r.ClientDelayHours > 0 {
		alerts = append(alerts, models.ROIAlert{
			Severity: models.AlertInfo,
			Message: fmt.Sprintf("Client delays add %.0f hours, costing %.0f in extra effort",
				r.ClientDelayHours, r.DelayImpact),
		})
	}
	if r.UFRate == 0 {
		alerts = append(alerts, models.ROIAlert{
			Severity: models.AlertWarning,
			Message:  "UF rate is not configured; sale price is zero",
		})
	}

	return alerts
}

func (s *FinancialService) persistSnapshot(ctx context.Context, r *models.ROIResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_financials (project_id, sale_price, planned_cost, actual_cost,
			planned_profit, actual_profit, planned_roi, actual_roi, budgeted_hours, actual_hours,
			delay_impact, lost_profit, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			sale_price = excluded.sale_price,
			planned_cost = excluded.planned_cost,
			actual_cost = excluded.actual_cost,
			planned_profit = excluded.planned_profit,
			actual_profit = excluded.actual_profit,
			planned_roi = excluded.planned_roi,
			actual_roi = excluded.actual_roi,
			budgeted_hours = excluded.budgeted_hours,
			actual_hours = excluded.actual_hours,
			delay_impact = excluded.delay_impact,
			lost_profit = excluded.lost_profit,
			computed_at = excluded.computed_at
	`, r.ProjectID, r.SalePrice, r.PlannedCost, r.RealCost, r.PlannedProfit, r.RealProfit,
		r.PlannedROI, r.RealROI, r.BudgetedHours, r.RealHours, r.DelayImpact, r.LostProfit, r.ComputedAt)
	return err
}

// GetSnapshot returns the last persisted financials of a project without
// recomputing.
func (s *FinancialService) GetSnapshot(ctx context.Context, projectID int) (*models.ProjectFinancials, error) {
	var f models.ProjectFinancials
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, sale_price, planned_cost, actual_cost, planned_profit, actual_profit,
			planned_roi, actual_roi, budgeted_hours, actual_hours, delay_impact, lost_profit, computed_at
		FROM project_financials WHERE project_id = ?
	`, projectID).Scan(&f.ID, &f.ProjectID, &f.SalePrice, &f.PlannedCost, &f.ActualCost,
		&f.PlannedProfit, &f.ActualProfit, &f.PlannedROI, &f.ActualROI, &f.BudgetedHours,
		&f.ActualHours, &f.DelayImpact, &f.LostProfit, &f.ComputedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("No financial snapshot exists for this project; compute ROI first")
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	return &f, nil
}

// ListSnapshots returns every project's last persisted financials
func (s *FinancialService) ListSnapshots(ctx context.Context) ([]models.ProjectFinancials, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, sale_price, planned_cost, actual_cost, planned_profit, actual_profit,
			planned_roi, actual_roi, budgeted_hours, actual_hours, delay_impact, lost_profit, computed_at
		FROM project_financials ORDER BY computed_at DESC
	`)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	defer rows.Close()

	var snapshots []models.ProjectFinancials
	for rows.Next() {
		var f models.ProjectFinancials
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.SalePrice, &f.PlannedCost, &f.ActualCost,
			&f.PlannedProfit, &f.ActualProfit, &f.PlannedROI, &f.ActualROI, &f.BudgetedHours,
			&f.ActualHours, &f.DelayImpact, &f.LostProfit, &f.ComputedAt); err != nil {
			return nil, apperrors.FromStore(err)
		}
		snapshots = append(snapshots, f)
	}
	return snapshots, rows.Err()
}
