package models

import "time"

// TaskBoard is a kanban board scoped to a project
type TaskBoard struct {
	ID          int       `json:"id"`
	ProjectID   int       `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskColumn is an ordered column on a board
type TaskColumn struct {
	ID       int    `json:"id"`
	BoardID  int    `json:"board_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Color    string `json:"color,omitempty"`
}

// Task is a kanban card
type Task struct {
	ID             int       `json:"id"`
	BoardID        int       `json:"board_id"`
	ColumnID       int       `json:"column_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Priority       string    `json:"priority"`
	AssignedTo     *int      `json:"assigned_to,omitempty"`
	EstimatedHours *float64  `json:"estimated_hours,omitempty"`
	ActualHours    float64   `json:"actual_hours"`
	Position       int       `json:"position"`
	DueDate        *string   `json:"due_date,omitempty"`
	CreatedBy      int       `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateBoardRequest is the request body for creating a board
type CreateBoardRequest struct {
	ProjectID   int    `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateTaskRequest is the request body for creating a task
type CreateTaskRequest struct {
	BoardID        int      `json:"board_id"`
	ColumnID       int      `json:"column_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Priority       string   `json:"priority"`
	AssignedTo     *int     `json:"assigned_to"`
	EstimatedHours *float64 `json:"estimated_hours"`
	DueDate        *string  `json:"due_date"`
}

// UpdateTaskRequest is the request body for updating a task
type UpdateTaskRequest struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	Priority       *string  `json:"priority"`
	AssignedTo     *int     `json:"assigned_to"`
	EstimatedHours *float64 `json:"estimated_hours"`
	DueDate        *string  `json:"due_date"`
}

// MoveTaskRequest moves a task to a column at a position
type MoveTaskRequest struct {
	ColumnID int `json:"column_id"`
	Position int `json:"position"`
}
