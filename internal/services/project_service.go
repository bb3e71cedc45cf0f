package services

import (
	"context"
	"database/sql"
	"log"
	"strings"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/database"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

// ProjectService handles projects and their allocation splits
type ProjectService struct {
	db *database.DB
}

// NewProjectService creates a new project service
func NewProjectService(db *database.DB) *ProjectService {
	return &ProjectService{db: db}
}

const projectColumns = `id, name, COALESCE(description, ''), status, priority, budget,
	budgeted_hours, sale_rate_uf, start_date, end_date, assigned_to, created_by, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.Priority, &p.Budget,
		&p.BudgetedHours, &p.SaleRateUF, &p.StartDate, &p.EndDate, &p.AssignedTo,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create adds a new project and its default kanban board
func (s *ProjectService) Create(ctx context.Context, req *models.CreateProjectRequest, createdBy int) (*models.Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.Validation("Project name is required")
	}
	if req.Status == "" {
		req.Status = models.ProjectStatusPlanning
	}
	if !models.IsValidProjectStatus(req.Status) {
		return nil, apperrors.Validation("Unknown project status: " + req.Status)
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if !models.IsValidPriority(req.Priority) {
		return nil, apperrors.Validation("Unknown priority: " + req.Priority)
	}
	if req.BudgetedHours < 0 {
		return nil, apperrors.Validation("Budgeted hours cannot be negative")
	}
	if req.SaleRateUF < 0 {
		return nil, apperrors.Validation("Sale rate cannot be negative")
	}

	var projectID int64
	err := s.db.Transaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			INSERT INTO projects (name, description, status, priority, budget, budgeted_hours,
				sale_rate_uf, start_date, end_date, assigned_to, created_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, req.Name, req.Description, req.Status, req.Priority, req.Budget, req.BudgetedHours,
			req.SaleRateUF, req.StartDate, req.EndDate, req.AssignedTo, createdBy)
		if err != nil {
			return err
		}
		projectID, _ = res.LastInsertId()

		// Every project gets a board with the standard columns
		boardRes, err := tx.Exec(`
			INSERT INTO task_boards (project_id, name) VALUES (?, ?)
		`, projectID, req.Name+" Board")
		if err != nil {
			return err
		}
		boardID, _ := boardRes.LastInsertId()
		for i, col := range defaultColumns {
			if _, err := tx.Exec(`
				INSERT INTO task_columns (board_id, name, position, color) VALUES (?, ?, ?, ?)
			`, boardID, col.name, i, col.color); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	log.Printf("📁 Project created: %s (%d)", req.Name, projectID)
	return s.GetByID(ctx, int(projectID))
}

var defaultColumns = []struct {
	name  string
	color string
}{
	{"To Do", "#6B7280"},
	{"In Progress", "#3B82F6"},
	{"Review", "#F59E0B"},
	{"Done", "#10B981"},
}

// GetByID returns a project by id, or a NOT_FOUND error
func (s *ProjectService) GetByID(ctx context.Context, id int) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Project not found")
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	return p, nil
}

// List returns projects matching the optional filters
func (s *ProjectService) List(ctx context.Context, filter *models.ProjectFilter) ([]models.Project, error) {
	f := database.NewFilter().
		WhereIf(filter.Status != "", "status = ?", filter.Status).
		WhereIf(filter.Priority != "", "priority = ?", filter.Priority).
		WhereIf(filter.AssignedTo != 0, "assigned_to = ?", filter.AssignedTo).
		WhereIf(filter.Search != "", "(name LIKE ? OR description LIKE ?)",
			"%"+filter.Search+"%", "%"+filter.Search+"%")

	query := "SELECT " + projectColumns + " FROM projects" + f.Clause() + " ORDER BY updated_at DESC"
	rows, err := s.db.QueryContext(ctx, query, f.Args()...)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, apperrors.FromStore(err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// Update patches the mutable project fields
func (s *ProjectService) Update(ctx context.Context, id int, req *models.UpdateProjectRequest) (*models.Project, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
		if p.Name == "" {
			return nil, apperrors.Validation("Project name cannot be empty")
		}
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Status != nil {
		if !models.IsValidProjectStatus(*req.Status) {
			return nil, apperrors.Validation("Unknown project status: " + *req.Status)
		}
		p.Status = *req.Status
	}
	if req.Priority != nil {
		if !models.IsValidPriority(*req.Priority) {
			return nil, apperrors.Validation("Unknown priority: " + *req.Priority)
		}
		p.Priority = *req.Priority
	}
	if req.Budget != nil {
		p.Budget = req.Budget
	}
	if req.BudgetedHours != nil {
		if *req.BudgetedHours < 0 {
			return nil, apperrors.Validation("Budgeted hours cannot be negative")
		}
		p.BudgetedHours = *req.BudgetedHours
	}
	if req.SaleRateUF != nil {
		if *req.SaleRateUF < 0 {
			return nil, apperrors.Validation("Sale rate cannot be negative")
		}
		p.SaleRateUF = *req.SaleRateUF
	}
	if req.StartDate != nil {
		p.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		p.EndDate = req.EndDate
	}
	if req.AssignedTo != nil {
		p.AssignedTo = req.AssignedTo
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE projects SET name = ?, description = ?, status = ?, priority = ?, budget = ?,
			budgeted_hours = ?, sale_rate_uf = ?, start_date = ?, end_date = ?, assigned_to = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, p.Name, p.Description, p.Status, p.Priority, p.Budget, p.BudgetedHours, p.SaleRateUF,
		p.StartDate, p.EndDate, p.AssignedTo, id)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	return s.GetByID(ctx, id)
}

// Delete removes a project. Milestones, boards, time entries and financial
// snapshots go with it via foreign key cascades.
func (s *ProjectService) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return apperrors.FromStore(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("Project not found")
	}
	log.Printf("🗑️ Project deleted: %d", id)
	return nil
}

// GetAssignments returns the allocation split of a project
func (s *ProjectService) GetAssignments(ctx context.Context, projectID int) ([]models.ProjectAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, user_id, allocation_percentage
		FROM project_assignments WHERE project_id = ? ORDER BY allocation_percentage DESC
	`, projectID)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	defer rows.Close()

	var assignments []models.ProjectAssignment
	for rows.Next() {
		var a models.ProjectAssignment
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.UserID, &a.AllocationPercentage); err != nil {
			return nil, apperrors.FromStore(err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// SetAssignments replaces the allocation split of a project in one
// transaction. Allocations must each be in (0, 100].
func (s *ProjectService) SetAssignments(ctx context.Context, projectID int, req *models.SetAssignmentsRequest) ([]models.ProjectAssignment, error) {
	if _, err := s.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	for _, a := range req.Assignments {
		if a.AllocationPercentage <= 0 || a.AllocationPercentage > 100 {
			return nil, apperrors.Validation("Allocation percentage must be between 0 and 100")
		}
		if seen[a.UserID] {
			return nil, apperrors.Validation("Duplicate user in assignments")
		}
		seen[a.UserID] = true
	}

	err := s.db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM project_assignments WHERE project_id = ?", projectID); err != nil {
			return err
		}
		for _, a := range req.Assignments {
			if _, err := tx.Exec(`
				INSERT INTO project_assignments (project_id, user_id, allocation_percentage)
				VALUES (?, ?, ?)
			`, projectID, a.UserID, a.AllocationPercentage); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	return s.GetAssignments(ctx, projectID)
}
