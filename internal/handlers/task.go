package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/middleware"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/services"
)

// TaskHandler serves kanban board and task endpoints
type TaskHandler struct {
	taskSvc *services.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskSvc *services.TaskService) *TaskHandler {
	return &TaskHandler{taskSvc: taskSvc}
}

// GetBoard handles GET /api/projects/:id/board and returns the board, its
// columns and its tasks in one payload.
func (h *TaskHandler) GetBoard(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid project id")
	}

	board, err := h.taskSvc.GetBoardByProject(c.Context(), projectID)
	if err != nil {
		return err
	}
	columns, err := h.taskSvc.GetColumns(c.Context(), board.ID)
	if err != nil {
		return err
	}
	tasks, err := h.taskSvc.ListTasks(c.Context(), board.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"board":   board,
		"columns": columns,
		"tasks":   tasks,
	})
}

// CreateTask handles POST /api/tasks
func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	var req models.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	task, err := h.taskSvc.CreateTask(c.Context(), &req, middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// GetTask handles GET /api/tasks/:id
func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid task id")
	}

	task, err := h.taskSvc.GetTask(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(task)
}

// UpdateTask handles PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid task id")
	}

	var req models.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	task, err := h.taskSvc.UpdateTask(c.Context(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(task)
}

// MoveTask handles POST /api/tasks/:id/move
func (h *TaskHandler) MoveTask(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid task id")
	}

	var req models.MoveTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	task, err := h.taskSvc.MoveTask(c.Context(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(task)
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid task id")
	}

	if err := h.taskSvc.DeleteTask(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Task deleted"})
}
