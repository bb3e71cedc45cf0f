package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/database"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

// TaskService handles kanban boards, columns and tasks
type TaskService struct {
	db *database.DB
}

// NewTaskService creates a new task service
func NewTaskService(db *database.DB) *TaskService {
	return &TaskService{db: db}
}

const taskColumnsSQL = `id, board_id, column_id, title, COALESCE(description, ''), priority,
	assigned_to, estimated_hours, actual_hours, position, due_date, created_by, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.BoardID, &t.ColumnID, &t.Title, &t.Description, &t.Priority,
		&t.AssignedTo, &t.EstimatedHours, &t.ActualHours, &t.Position, &t.DueDate,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetBoardByProject returns the board of a project, or a NOT_FOUND error
func (s *TaskService) GetBoardByProject(ctx context.Context, projectID int) (*models.TaskBoard, error) {
	var b models.TaskBoard
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, name, COALESCE(description, ''), created_at
		FROM task_boards WHERE project_id = ? ORDER BY id LIMIT 1
	`, projectID).Scan(&b.ID, &b.ProjectID, &b.Name, &b.Description, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("No board exists for this project")
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	return &b, nil
}

// GetColumns returns the columns of a board in display order
func (s *TaskService) GetColumns(ctx context.Context, boardID int) ([]models.TaskColumn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, board_id, name, position, COALESCE(color, '')
		FROM task_columns WHERE board_id = ? ORDER BY position
	`, boardID)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	defer rows.Close()

	var cols []models.TaskColumn
	for rows.Next() {
		var c models.TaskColumn
		if err := rows.Scan(&c.ID, &c.BoardID, &c.Name, &c.Position, &c.Color); err != nil {
			return nil, apperrors.FromStore(err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// CreateTask adds a task at the end of its column
func (s *TaskService) CreateTask(ctx context.Context, req *models.CreateTaskRequest, createdBy int) (*models.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.Validation("Task title is required")
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if !models.IsValidPriority(req.Priority) {
		return nil, apperrors.Validation("Unknown priority: " + req.Priority)
	}

	// Column must belong to the board
	var boardID int
	err := s.db.QueryRowContext(ctx, "SELECT board_id FROM task_columns WHERE id = ?", req.ColumnID).Scan(&boardID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Column not found")
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	if boardID != req.BoardID {
		return nil, apperrors.InvalidInput("Column does not belong to the given board")
	}

	var taskID int64
	err = s.db.Transaction(func(tx *sql.Tx) error {
		var maxPos sql.NullInt64
		if err := tx.QueryRow("SELECT MAX(position) FROM tasks WHERE column_id = ?", req.ColumnID).Scan(&maxPos); err != nil {
			return err
		}
		res, err := tx.Exec(`
			INSERT INTO tasks (board_id, column_id, title, description, priority, assigned_to,
				estimated_hours, position, due_date, created_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, req.BoardID, req.ColumnID, req.Title, req.Description, req.Priority, req.AssignedTo,
			req.EstimatedHours, maxPos.Int64+1, req.DueDate, createdBy)
		if err != nil {
			return err
		}
		taskID, _ = res.LastInsertId()
		return nil
	})
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	return s.GetTask(ctx, int(taskID))
}

// GetTask returns a task by id, or a NOT_FOUND error
func (s *TaskService) GetTask(ctx context.Context, id int) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+taskColumnsSQL+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Task not found")
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	return t, nil
}

// ListTasks returns the tasks of a board in column/position order
func (s *TaskService) ListTasks(ctx context.Context, boardID int) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+taskColumnsSQL+" FROM tasks WHERE board_id = ? ORDER BY column_id, position", boardID)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, apperrors.FromStore(err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTask patches the mutable task fields
func (s *TaskService) UpdateTask(ctx context.Context, id int, req *models.UpdateTaskRequest) (*models.Task, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
		if t.Title == "" {
			return nil, apperrors.Validation("Task title cannot be empty")
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
	if req.EstimatedHours != nil {
		t.EstimatedHours = req.EstimatedHours
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, priority = ?, assigned_to = ?,
			estimated_hours = ?, due_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, t.Title, t.Description, t.Priority, t.AssignedTo, t.EstimatedHours, t.DueDate, id)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	return s.GetTask(ctx, id)
}

// MoveTask relocates a task to a column at a position, shifting neighbors in
// one transaction so positions stay dense.
func (s *TaskService) MoveTask(ctx context.Context, id int, req *models.MoveTaskRequest) (*models.Task, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	var boardID int
	err = s.db.QueryRowContext(ctx, "SELECT board_id FROM task_columns WHERE id = ?", req.ColumnID).Scan(&boardID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Column not found")
	}
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	if boardID != t.BoardID {
		return nil, apperrors.InvalidInput("Cannot move a task to a different board")
	}
	if req.Position < 0 {
		req.Position = 0
	}

	err = s.db.Transaction(func(tx *sql.Tx) error {
		// Close the gap in the source column
		if _, err := tx.Exec(`
			UPDATE tasks SET position = position - 1
			WHERE column_id = ? AND position > ?
		`, t.ColumnID, t.Position); err != nil {
			return err
		}
		// Open a slot in the target column
		if _, err := tx.Exec(`
			UPDATE tasks SET position = position + 1
			WHERE column_id = ? AND position >= ? AND id != ?
		`, req.ColumnID, req.Position, id); err != nil {
			return err
		}
		_, err := tx.Exec(`
			UPDATE tasks SET column_id = ?, position = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, req.ColumnID, req.Position, id)
		return err
	})
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	return s.GetTask(ctx, id)
}

// DeleteTask removes a task and closes its position gap
func (s *TaskService) DeleteTask(ctx context.Context, id int) error {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM tasks WHERE id = ?", id); err != nil {
			return err
		}
		_, err := tx.Exec(`
			UPDATE tasks SET position = position - 1
			WHERE column_id = ? AND position > ?
		`, t.ColumnID, t.Position)
		return err
	})
	if err != nil {
		return apperrors.FromStore(err)
	}
	return nil
}
