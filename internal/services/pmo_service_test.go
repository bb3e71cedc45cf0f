package services

import (
	"context"
	"errors"
	"testing"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

func createTestMilestone(t *testing.T, svc *PMOService, projectID, createdBy int, name string) *models.Milestone {
	t.Helper()

	m, err := svc.CreateMilestone(context.Background(), &models.MilestoneInput{
		ProjectID:     projectID,
		Name:          name,
		MilestoneDate: "2026-09-01",
	}, createdBy)
	if err != nil {
		t.Fatalf("failed to create milestone: %v", err)
	}
	return m
}

func TestCreateMilestoneDefaults(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "pmo@test.com", models.RoleTeamLead)
	project := createTestProject(t, db, user.ID, 100, 1.2)
	svc := NewPMOService(db)

	m := createTestMilestone(t, svc, project.ID, user.ID, "Kickoff")
	if m.Status != models.MilestoneStatusPending {
		t.Errorf("status = %s, want pending", m.Status)
	}
	if m.Responsibility != models.ResponsibilityInternal {
		t.Errorf("responsibility = %s, want internal", m.Responsibility)
	}
}

func TestMilestoneDateRoundTrips(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "pmo@test.com", models.RoleTeamLead)
	project := createTestProject(t, db, user.ID, 100, 1.2)
	svc := NewPMOService(db)

	m, err := svc.CreateMilestone(context.Background(), &models.MilestoneInput{
		ProjectID:     project.ID,
		Name:          "UAT",
		MilestoneDate: "2026-10-15",
	}, user.ID)
	if err != nil {
		t.Fatalf("CreateMilestone failed: %v", err)
	}
	if m.MilestoneDate != "2026-10-15" {
		t.Errorf("created date = %q, want the YYYY-MM-DD string back unchanged", m.MilestoneDate)
	}

	// A partial update must not rewrite the stored date format
	status := models.MilestoneStatusCompleted
	updated, err := svc.UpdateMilestone(context.Background(), m.ID, &models.UpdateMilestoneRequest{Status: &status})
	if err != nil {
		t.Fatalf("UpdateMilestone failed: %v", err)
	}
	if updated.MilestoneDate != "2026-10-15" {
		t.Errorf("date after partial update = %q, want 2026-10-15", updated.MilestoneDate)
	}

	var stored string
	db.QueryRow("SELECT milestone_date FROM pmo_milestones WHERE id = ?", m.ID).Scan(&stored)
	if stored != "2026-10-15" {
		t.Errorf("stored date = %q, want 2026-10-15", stored)
	}
}

func TestCreateMilestoneRejectsBadDate(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "pmo@test.com", models.RoleTeamLead)
	project := createTestProject(t, db, user.ID, 100, 1.2)
	svc := NewPMOService(db)

	_, err := svc.CreateMilestone(context.Background(), &models.MilestoneInput{
		ProjectID:     project.ID,
		Name:          "Bad",
		MilestoneDate: "01/09/2026",
	}, user.ID)

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBatchCreatePartialSuccess(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "pmo@test.com", models.RoleTeamLead)
	project := createTestProject(t, db, user.ID, 100, 1.2)
	svc := NewPMOService(db)

	result, err := svc.BatchCreateMilestones(context.Background(), &models.BatchCreateMilestonesRequest{
		Milestones: []models.MilestoneInput{
			{ProjectID: project.ID, Name: "Valid A", MilestoneDate: "2026-09-01"},
			{ProjectID: project.ID, Name: "", MilestoneDate: "2026-09-02"},
			{ProjectID: project.ID, Name: "Valid B", MilestoneDate: "2026-09-03"},
		},
	}, user.ID)
	if err != nil {
		t.Fatalf("BatchCreateMilestones failed: %v", err)
	}

	if len(result.Created) != 2 {
		t.Errorf("created = %d, want 2", len(result.Created))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(result.Errors))
	}
	if result.Errors[0].Index != 1 {
		t.Errorf("error index = %d, want 1", result.Errors[0].Index)
	}

	// The invalid row must not block the valid ones from persisting
	milestones, err := svc.ListMilestones(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("ListMilestones failed: %v", err)
	}
	if len(milestones) != 2 {
		t.Errorf("persisted milestones = %d, want 2", len(milestones))
	}
}

func TestBatchDeleteRemovesAll(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "pmo@test.com", models.RoleTeamLead)
	project := createTestProject(t, db, user.ID, 100, 1.2)
	svc := NewPMOService(db)

	a := createTestMilestone(t, svc, project.ID, user.ID, "A")
	b := createTestMilestone(t, svc, project.ID, user.ID, "B")
	c := createTestMilestone(t, svc, project.ID, user.ID, "C")

	result, err := svc.BatchDeleteMilestones(context.Background(), &models.BatchDeleteMilestonesRequest{
		IDs: []int{a.ID, b.ID, c.ID},
	})
	if err != nil {
		t.Fatalf("BatchDeleteMilestones failed: %v", err)
	}
	if result.Count != 3 {
		t.Errorf("count = %d, want 3", result.Count)
	}

	milestones, _ := svc.ListMilestones(context.Background(), project.ID)
	if len(milestones) != 0 {
		t.Errorf("remaining milestones = %d, want 0", len(milestones))
	}
}

func TestBatchDeleteAbortsWhenAnyMissing(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "pmo@test.com", models.RoleTeamLead)
	project := createTestProject(t, db, user.ID, 100, 1.2)
	svc := NewPMOService(db)

	a := createTestMilestone(t, svc, project.ID, user.ID, "A")
	b := createTestMilestone(t, svc, project.ID, user.ID, "B")
	c := createTestMilestone(t, svc, project.ID, user.ID, "C")

	// Another request deletes the middle milestone first
	if err := svc.DeleteMilestone(context.Background(), b.ID); err != nil {
		t.Fatalf("DeleteMilestone failed: %v", err)
	}

	_, err := svc.BatchDeleteMilestones(context.Background(), &models.BatchDeleteMilestonesRequest{
		IDs: []int{a.ID, b.ID, c.ID},
	})

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code != apperrors.CodeConcurrentModification {
		t.Errorf("code = %s, want CONCURRENT_MODIFICATION", appErr.Code)
	}

	// Nothing else was deleted: the batch is all-or-nothing
	milestones, _ := svc.ListMilestones(context.Background(), project.ID)
	if len(milestones) != 2 {
		t.Errorf("remaining milestones = %d, want 2 (a and c untouched)", len(milestones))
	}
}

func TestBatchDeleteRejectsDuplicates(t *testing.T) {
	db := testDB(t)
	svc := NewPMOService(db)

	_, err := svc.BatchDeleteMilestones(context.Background(), &models.BatchDeleteMilestonesRequest{
		IDs: []int{5, 5},
	})

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpsertMetricsCreatesAndUpdates(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "pmo@test.com", models.RoleTeamLead)
	project := createTestProject(t, db, user.ID, 100, 1.2)
	svc := NewPMOService(db)

	m, err := svc.UpsertMetrics(context.Background(), project.ID, &models.UpsertPMOMetricsRequest{
		PlannedHours:         100,
		ActualHours:          40,
		CompletionPercentage: 40,
		RiskLevel:            "medium",
	})
	if err != nil {
		t.Fatalf("UpsertMetrics failed: %v", err)
	}
	if m.CompletionPercentage != 40 {
		t.Errorf("completion = %f, want 40", m.CompletionPercentage)
	}

	m, err = svc.UpsertMetrics(context.Background(), project.ID, &models.UpsertPMOMetricsRequest{
		PlannedHours:         100,
		ActualHours:          80,
		CompletionPercentage: 75,
		RiskLevel:            "high",
	})
	if err != nil {
		t.Fatalf("second UpsertMetrics failed: %v", err)
	}
	if m.CompletionPercentage != 75 || m.RiskLevel != "high" {
		t.Errorf("metrics not updated: %+v", m)
	}

	var n int
	db.QueryRow("SELECT COUNT(*) FROM project_pmo_metrics WHERE project_id = ?", project.ID).Scan(&n)
	if n != 1 {
		t.Errorf("metrics rows = %d, want 1", n)
	}
}

func TestDashboardSummaryCountsClientDelays(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "pmo@test.com", models.RoleTeamLead)
	project := createTestProject(t, db, user.ID, 100, 1.2)
	svc := NewPMOService(db)

	_, err := svc.CreateMilestone(context.Background(), &models.MilestoneInput{
		ProjectID:      project.ID,
		Name:           "Client UAT",
		MilestoneDate:  "2026-09-01",
		Responsibility: models.ResponsibilityClient,
		DelayDays:      5,
	}, user.ID)
	if err != nil {
		t.Fatalf("CreateMilestone failed: %v", err)
	}
	_, err = svc.CreateMilestone(context.Background(), &models.MilestoneInput{
		ProjectID:      project.ID,
		Name:           "Internal Dev",
		MilestoneDate:  "2026-09-10",
		Responsibility: models.ResponsibilityInternal,
		DelayDays:      3,
	}, user.ID)
	if err != nil {
		t.Fatalf("CreateMilestone failed: %v", err)
	}

	summary, err := svc.DashboardSummary(context.Background())
	if err != nil {
		t.Fatalf("DashboardSummary failed: %v", err)
	}
	if len(summary) != 1 {
		t.Fatalf("summary rows = %d, want 1", len(summary))
	}
	if summary[0].ClientDelayDays != 5 {
		t.Errorf("client delay days = %d, want 5 (internal delays excluded)", summary[0].ClientDelayDays)
	}
	if summary[0].MilestonesTotal != 2 {
		t.Errorf("milestones total = %d, want 2", summary[0].MilestonesTotal)
	}
}
