package services

import (
	"context"
	"math"
	"testing"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestComputeProjectROIPlannedNumbers(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "dev@test.com", models.RoleRPADeveloper)
	project := createTestProject(t, db, user.ID, 100, 1.2)

	settingsSvc := NewSettingsService(db)
	financialSvc := NewFinancialService(db, settingsSvc)
	projectSvc := NewProjectService(db)

	if _, err := financialSvc.CreateCostRate(context.Background(), &models.CreateCostRateRequest{
		UserID:        user.ID,
		MonthlyCost:   880000, // 5000/hour at 176 monthly hours
		EffectiveFrom: "2026-01-01",
	}); err != nil {
		t.Fatalf("CreateCostRate failed: %v", err)
	}

	if _, err := projectSvc.SetAssignments(context.Background(), project.ID, &models.SetAssignmentsRequest{
		Assignments: []models.AssignmentInput{{UserID: user.ID, AllocationPercentage: 100}},
	}); err != nil {
		t.Fatalf("SetAssignments failed: %v", err)
	}

	result, err := financialSvc.ComputeProjectROI(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("ComputeProjectROI failed: %v", err)
	}

	// 100h x 1.2 UF/h x 37250.85 CLP/UF
	if !almostEqual(result.SalePrice, 4470102) {
		t.Errorf("sale price = %f, want 4470102", result.SalePrice)
	}
	// 100h x 5000 CLP/h
	if !almostEqual(result.PlannedCost, 500000) {
		t.Errorf("planned cost = %f, want 500000", result.PlannedCost)
	}
	if !almostEqual(result.PlannedProfit, 3970102) {
		t.Errorf("planned profit = %f, want 3970102", result.PlannedProfit)
	}
	if !almostEqual(result.PlannedROI, 794.0204) {
		t.Errorf("planned ROI = %f, want 794.02", result.PlannedROI)
	}

	// No delays: real equals planned
	if result.RealCost != result.PlannedCost {
		t.Errorf("real cost = %f, want %f", result.RealCost, result.PlannedCost)
	}
	if result.CacheWarning {
		t.Error("cache warning set on a healthy snapshot write")
	}
}

func TestComputeProjectROIPartialAllocation(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "dev@test.com", models.RoleRPADeveloper)
	project := createTestProject(t, db, user.ID, 100, 1.2)

	settingsSvc := NewSettingsService(db)
	financialSvc := NewFinancialService(db, settingsSvc)
	projectSvc := NewProjectService(db)

	financialSvc.CreateCostRate(context.Background(), &models.CreateCostRateRequest{
		UserID: user.ID, MonthlyCost: 880000, EffectiveFrom: "2026-01-01",
	})

	// Half the user's time on this project funds half their hourly cost
	projectSvc.SetAssignments(context.Background(), project.ID, &models.SetAssignmentsRequest{
		Assignments: []models.AssignmentInput{{UserID: user.ID, AllocationPercentage: 50}},
	})

	result, err := financialSvc.ComputeProjectROI(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("ComputeProjectROI failed: %v", err)
	}
	if !almostEqual(result.BlendedHourlyCost, 2500) {
		t.Errorf("blended hourly cost = %f, want 2500 (5000/h at 50%%)", result.BlendedHourlyCost)
	}
	if !almostEqual(result.PlannedCost, 250000) {
		t.Errorf("planned cost = %f, want 250000", result.PlannedCost)
	}
}

func TestComputeProjectROISumsAdjustedCosts(t *testing.T) {
	db := testDB(t)
	lead := createTestUser(t, db, "lead@test.com", models.RoleTeamLead)
	dev := createTestUser(t, db, "dev@test.com", models.RoleRPADeveloper)
	project := createTestProject(t, db, lead.ID, 100, 1.2)

	settingsSvc := NewSettingsService(db)
	financialSvc := NewFinancialService(db, settingsSvc)
	projectSvc := NewProjectService(db)

	// 5000/h and 10000/h at 176 monthly hours
	financialSvc.CreateCostRate(context.Background(), &models.CreateCostRateRequest{
		UserID: lead.ID, MonthlyCost: 880000, EffectiveFrom: "2026-01-01",
	})
	financialSvc.CreateCostRate(context.Background(), &models.CreateCostRateRequest{
		UserID: dev.ID, MonthlyCost: 1760000, EffectiveFrom: "2026-01-01",
	})

	projectSvc.SetAssignments(context.Background(), project.ID, &models.SetAssignmentsRequest{
		Assignments: []models.AssignmentInput{
			{UserID: lead.ID, AllocationPercentage: 60},
			{UserID: dev.ID, AllocationPercentage: 40},
		},
	})

	result, err := financialSvc.ComputeProjectROI(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("ComputeProjectROI failed: %v", err)
	}

	// 5000x0.6 + 10000x0.4
	if !almostEqual(result.BlendedHourlyCost, 7000) {
		t.Errorf("blended hourly cost = %f, want 7000", result.BlendedHourlyCost)
	}
	var adjustedSum float64
	for _, entry := range result.CostBreakdown {
		adjustedSum += entry.AdjustedHourlyCost
	}
	if !almostEqual(result.BlendedHourlyCost, adjustedSum) {
		t.Errorf("blended cost %f differs from the breakdown sum %f", result.BlendedHourlyCost, adjustedSum)
	}
}

func TestComputeProjectROIClientDelays(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "dev@test.com", models.RoleRPADeveloper)
	project := createTestProject(t, db, user.ID, 100, 1.2)

	settingsSvc := NewSettingsService(db)
	financialSvc := NewFinancialService(db, settingsSvc)
	projectSvc := NewProjectService(db)
	pmoSvc := NewPMOService(db)

	financialSvc.CreateCostRate(context.Background(), &models.CreateCostRateRequest{
		UserID: user.ID, MonthlyCost: 880000, EffectiveFrom: "2026-01-01",
	})
	projectSvc.SetAssignments(context.Background(), project.ID, &models.SetAssignmentsRequest{
		Assignments: []models.AssignmentInput{{UserID: user.ID, AllocationPercentage: 100}},
	})

	// 5 client delay days and 3 internal ones; only the client days count
	pmoSvc.CreateMilestone(context.Background(), &models.MilestoneInput{
		ProjectID: project.ID, Name: "UAT", MilestoneDate: "2026-09-01",
		Responsibility: models.ResponsibilityClient, DelayDays: 5,
	}, user.ID)
	pmoSvc.CreateMilestone(context.Background(), &models.MilestoneInput{
		ProjectID: project.ID, Name: "Dev", MilestoneDate: "2026-09-05",
		Responsibility: models.ResponsibilityInternal, DelayDays: 3,
	}, user.ID)

	result, err := financialSvc.ComputeProjectROI(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("ComputeProjectROI failed: %v", err)
	}

	if result.ClientDelayHours != 40 {
		t.Errorf("client delay hours = %f, want 40 (5 days x 8)", result.ClientDelayHours)
	}
	if result.RealHours != 140 {
		t.Errorf("real hours = %f, want 140", result.RealHours)
	}
	if !almostEqual(result.RealCost, 700000) {
		t.Errorf("real cost = %f, want 700000", result.RealCost)
	}
	if !almostEqual(result.DelayImpact, 200000) {
		t.Errorf("delay impact = %f, want 200000", result.DelayImpact)
	}
	if result.RealCost < result.PlannedCost {
		t.Error("real cost must never undercut planned cost when delays exist")
	}
	if result.RealROI >= result.PlannedROI {
		t.Error("delays must lower the real ROI below the planned ROI")
	}
}

func TestComputeProjectROIZeroCostBasis(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "dev@test.com", models.RoleRPADeveloper)
	project := createTestProject(t, db, user.ID, 0, 0)

	settingsSvc := NewSettingsService(db)
	financialSvc := NewFinancialService(db, settingsSvc)

	result, err := financialSvc.ComputeProjectROI(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("ComputeProjectROI failed: %v", err)
	}

	// Zero budgeted hours means zero cost; ROI must be 0, not NaN or Inf
	if result.PlannedROI != 0 {
		t.Errorf("planned ROI = %f, want 0", result.PlannedROI)
	}
	if result.RealROI != 0 {
		t.Errorf("real ROI = %f, want 0", result.RealROI)
	}
}

func TestComputeProjectROIDefaultRateFallback(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "dev@test.com", models.RoleRPADeveloper)
	project := createTestProject(t, db, user.ID, 100, 1.2)

	settingsSvc := NewSettingsService(db)
	financialSvc := NewFinancialService(db, settingsSvc)
	projectSvc := NewProjectService(db)

	// No cost rate for the user: the seeded default monthly cost applies
	projectSvc.SetAssignments(context.Background(), project.ID, &models.SetAssignmentsRequest{
		Assignments: []models.AssignmentInput{{UserID: user.ID, AllocationPercentage: 100}},
	})

	result, err := financialSvc.ComputeProjectROI(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("ComputeProjectROI failed: %v", err)
	}
	if len(result.CostBreakdown) != 1 {
		t.Fatalf("breakdown entries = %d, want 1", len(result.CostBreakdown))
	}
	if !result.CostBreakdown[0].UsedDefaultRate {
		t.Error("expected the default-rate flag on a user without a cost rate")
	}
	// 2,500,000 / 176
	if !almostEqual(result.BlendedHourlyCost, 14204.545) {
		t.Errorf("blended hourly cost = %f, want 14204.55", result.BlendedHourlyCost)
	}
}

func TestComputeProjectROIPersistsSnapshot(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "dev@test.com", models.RoleRPADeveloper)
	project := createTestProject(t, db, user.ID, 100, 1.2)

	settingsSvc := NewSettingsService(db)
	financialSvc := NewFinancialService(db, settingsSvc)

	result, err := financialSvc.ComputeProjectROI(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("ComputeProjectROI failed: %v", err)
	}

	snapshot, err := financialSvc.GetSnapshot(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if !almostEqual(snapshot.SalePrice, result.SalePrice) {
		t.Errorf("snapshot sale price = %f, want %f", snapshot.SalePrice, result.SalePrice)
	}

	// Recompute overwrites rather than duplicating
	if _, err := financialSvc.ComputeProjectROI(context.Background(), project.ID); err != nil {
		t.Fatalf("second ComputeProjectROI failed: %v", err)
	}
	var n int
	db.QueryRow("SELECT COUNT(*) FROM project_financials WHERE project_id = ?", project.ID).Scan(&n)
	if n != 1 {
		t.Errorf("snapshot rows = %d, want 1", n)
	}
}

func TestCreateCostRateDeactivatesPrevious(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "dev@test.com", models.RoleRPADeveloper)

	settingsSvc := NewSettingsService(db)
	financialSvc := NewFinancialService(db, settingsSvc)

	first, err := financialSvc.CreateCostRate(context.Background(), &models.CreateCostRateRequest{
		UserID: user.ID, MonthlyCost: 880000, EffectiveFrom: "2026-01-01",
	})
	if err != nil {
		t.Fatalf("first CreateCostRate failed: %v", err)
	}
	if first.EffectiveFrom != "2026-01-01" {
		t.Errorf("effective_from = %q, want the YYYY-MM-DD string back unchanged", first.EffectiveFrom)
	}

	second, err := financialSvc.CreateCostRate(context.Background(), &models.CreateCostRateRequest{
		UserID: user.ID, MonthlyCost: 968000, EffectiveFrom: "2026-06-01",
	})
	if err != nil {
		t.Fatalf("second CreateCostRate failed: %v", err)
	}

	active, err := financialSvc.GetActiveRate(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetActiveRate failed: %v", err)
	}
	if active.ID != second.ID {
		t.Errorf("active rate id = %d, want %d", active.ID, second.ID)
	}

	rates, err := financialSvc.ListRates(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListRates failed: %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("rate history = %d rows, want 2 (old rates are kept)", len(rates))
	}
	for _, r := range rates {
		if r.ID == first.ID && r.IsActive {
			t.Error("superseded rate still active")
		}
	}
}

func TestSafeROI(t *testing.T) {
	if got := safeROI(100, 0); got != 0 {
		t.Errorf("safeROI(100, 0) = %f, want 0", got)
	}
	if got := safeROI(50, 100); got != 50 {
		t.Errorf("safeROI(50, 100) = %f, want 50", got)
	}
	if got := safeROI(-50, 100); got != -50 {
		t.Errorf("safeROI(-50, 100) = %f, want -50", got)
	}
}

func TestBuildAlertsSeverities(t *testing.T) {
	critical := buildAlerts(&models.ROIResult{RealROI: -10, UFRate: 37250.85})
	if len(critical) == 0 || critical[0].Severity != models.AlertCritical {
		t.Errorf("negative ROI should raise a critical alert, got %+v", critical)
	}

	warning := buildAlerts(&models.ROIResult{RealROI: 10, UFRate: 37250.85})
	if len(warning) == 0 || warning[0].Severity != models.AlertWarning {
		t.Errorf("low ROI should raise a warning, got %+v", warning)
	}

	healthy := buildAlerts(&models.ROIResult{RealROI: 200, UFRate: 37250.85})
	if len(healthy) == 0 || healthy[0].Severity != models.AlertSuccess {
		t.Errorf("healthy ROI should raise a success alert, got %+v", healthy)
	}
}
