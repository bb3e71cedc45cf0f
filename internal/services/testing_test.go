package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/database"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *database.DB, email, role string) *models.User {
	t.Helper()

	svc := NewUserService(db)
	user, err := svc.Create(context.Background(), &models.CreateUserRequest{
		Email:    email,
		FullName: "Test User",
		Password: "Password1",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestProject(t *testing.T, db *database.DB, createdBy int, budgetedHours, saleRateUF float64) *models.Project {
	t.Helper()

	svc := NewProjectService(db)
	project, err := svc.Create(context.Background(), &models.CreateProjectRequest{
		Name:          "Test Project",
		Status:        models.ProjectStatusActive,
		Priority:      models.PriorityMedium,
		BudgetedHours: budgetedHours,
		SaleRateUF:    saleRateUF,
	}, createdBy)
	if err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return project
}
