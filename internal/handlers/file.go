package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/middleware"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/services"
)

// FileHandler serves file upload, download and association endpoints
type FileHandler struct {
	fileSvc *services.FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileSvc *services.FileService) *FileHandler {
	return &FileHandler{fileSvc: fileSvc}
}

// Upload handles POST /api/files with a multipart form. An optional
// entity_type/entity_id pair associates the file in the same request.
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.Validation("A file upload is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return apperrors.InvalidInput("Failed to read the uploaded file")
	}
	defer f.Close()

	upload, err := h.fileSvc.Save(c.Context(), fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), fileHeader.Size, f, middleware.UserID(c))
	if err != nil {
		return err
	}

	if entityType := c.FormValue("entity_type"); entityType != "" {
		entityID, convErr := strconv.Atoi(c.FormValue("entity_id"))
		if convErr != nil || entityID <= 0 {
			return apperrors.Validation("A valid entity_id is required to associate the file")
		}
		if err := h.fileSvc.Associate(c.Context(), upload.ID, entityType, entityID); err != nil {
			return err
		}
	}

	return c.Status(fiber.StatusCreated).JSON(upload)
}

// Download handles GET /api/files/:id and streams the stored payload under
// its original name.
func (h *FileHandler) Download(c *fiber.Ctx) error {
	upload, err := h.fileSvc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Download(h.fileSvc.Path(upload), upload.OriginalName)
}

// Associate handles POST /api/files/:id/associations
func (h *FileHandler) Associate(c *fiber.Ctx) error {
	var req struct {
		EntityType string `json:"entity_type"`
		EntityID   int    `json:"entity_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	if err := h.fileSvc.Associate(c.Context(), c.Params("id"), req.EntityType, req.EntityID); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "File linked"})
}

// ListByEntity handles GET /api/files/by-entity/:type/:id
func (h *FileHandler) ListByEntity(c *fiber.Ctx) error {
	entityID, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid entity id")
	}

	files, err := h.fileSvc.ListByEntity(c.Context(), c.Params("type"), entityID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"files": files})
}

// Delete handles DELETE /api/files/:id
func (h *FileHandler) Delete(c *fiber.Ctx) error {
	if err := h.fileSvc.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "File deleted"})
}
