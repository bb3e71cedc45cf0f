package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

func buildSheet(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		for j, val := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			f.SetCellValue("Sheet1", cell, val)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to build test sheet: %v", err)
	}
	return buf
}

func TestImportMilestonesFromSheet(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "pmo@test.com", models.RoleTeamLead)
	project := createTestProject(t, db, user.ID, 100, 1.2)

	pmoSvc := NewPMOService(db)
	excelSvc := NewExcelService(pmoSvc)

	buf := buildSheet(t, [][]any{
		{"Milestone", "Fecha", "Estado", "Responsable", "Delay", "Impacto"},
		{"Kickoff", "2026-09-01", "completed", "internal", 0, 0},
		{"UAT", "15/10/2026", "in progress", "cliente", 5, 150000},
		{"", "2026-11-01", "", "", 0, 0},
	})

	result, err := excelSvc.ImportMilestones(context.Background(), buf, project.ID, user.ID)
	if err != nil {
		t.Fatalf("ImportMilestones failed: %v", err)
	}

	if result.Rows != 3 {
		t.Errorf("rows = %d, want 3", result.Rows)
	}
	if len(result.Created) != 2 {
		t.Fatalf("created = %d, want 2 (blank name row skipped)", len(result.Created))
	}
	if len(result.Errors) != 1 {
		t.Errorf("errors = %d, want 1", len(result.Errors))
	}

	uat := result.Created[1]
	if uat.MilestoneDate != "2026-10-15" {
		t.Errorf("DD/MM/YYYY date not normalized: %s", uat.MilestoneDate)
	}
	if uat.Status != models.MilestoneStatusInProgress {
		t.Errorf("status = %s, want in_progress", uat.Status)
	}
	if uat.Responsibility != models.ResponsibilityClient {
		t.Errorf("responsibility = %s, want client", uat.Responsibility)
	}
	if uat.DelayDays != 5 {
		t.Errorf("delay days = %d, want 5", uat.DelayDays)
	}
	if uat.FinancialImpact != 150000 {
		t.Errorf("financial impact = %f, want 150000", uat.FinancialImpact)
	}
}

func TestImportMilestonesRejectsMissingColumns(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "pmo@test.com", models.RoleTeamLead)
	project := createTestProject(t, db, user.ID, 100, 1.2)

	pmoSvc := NewPMOService(db)
	excelSvc := NewExcelService(pmoSvc)

	buf := buildSheet(t, [][]any{
		{"Something", "Else"},
		{"x", "y"},
	})

	if _, err := excelSvc.ImportMilestones(context.Background(), buf, project.ID, user.ID); err == nil {
		t.Error("sheet without milestone columns accepted")
	}
}

func TestImportMilestonesRejectsGarbage(t *testing.T) {
	db := testDB(t)
	pmoSvc := NewPMOService(db)
	excelSvc := NewExcelService(pmoSvc)

	garbage := bytes.NewBufferString("this is not a spreadsheet")
	if _, err := excelSvc.ImportMilestones(context.Background(), garbage, 1, 1); err == nil {
		t.Error("non-xlsx payload accepted")
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"2026-09-01": "2026-09-01",
		"01/09/2026": "2026-09-01",
		"5/9/2026":   "2026-09-05",
		"":           "",
	}
	for in, want := range cases {
		if got := normalizeDate(in); got != want {
			t.Errorf("normalizeDate(%q) = %q, want %q", in, got, want)
		}
	}
}
