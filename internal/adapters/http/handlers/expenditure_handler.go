package handlers

import (
	"errors"

	"samiti-duespay/internal/core/domain"
	"samiti-duespay/internal/core/services"
	"samiti-duespay/internal/pkg/pagination"
	"samiti-duespay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ExpenditureHandler handles committee spending endpoints (admin)
type ExpenditureHandler struct {
	expenditureService *services.ExpenditureService
}

// NewExpenditureHandler creates a new expenditure handler
func NewExpenditureHandler(expenditureService *services.ExpenditureService) *ExpenditureHandler {
	return &ExpenditureHandler{expenditureService: expenditureService}
}

// Create records a new expenditure
// @Summary Record expenditure
// @Description Record a committee spending entry
// @Tags Expenditures
// @Accept json
// @Produce json
// @Param body body services.ExpenditureInput true "Expenditure data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/expenditures [post]
func (h *ExpenditureHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.ExpenditureInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	expenditure, err := h.expenditureService.Create(c.Context(), &input, userID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Title, positive amount and spent_on (YYYY-MM-DD) are required")
		}
		return response.InternalServerError(c, "Failed to record expenditure")
	}

	return response.Created(c, "Expenditure recorded successfully", fiber.Map{
		"expenditure": expenditure,
	})
}

// List lists expenditures with pagination
// @Summary List expenditures
// @Description List committee spending entries, newest first
// @Tags Expenditures
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /admin/expenditures [get]
func (h *ExpenditureHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	expenditures, total, err := h.expenditureService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list expenditures")
	}

	return response.Success(c, "Expenditures retrieved successfully",
		pagination.NewResponse(expenditures, params, total))
}

// Get fetches one expenditure
// @Summary Get expenditure
// @Description Get an expenditure by ID
// @Tags Expenditures
// @Accept json
// @Produce json
// @Param id path int true "Expenditure ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/expenditures/{id} [get]
func (h *ExpenditureHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid expenditure ID")
	}

	expenditure, err := h.expenditureService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrExpenditureNotFound) {
			return response.NotFound(c, "Expenditure not found")
		}
		return response.InternalServerError(c, "Failed to get expenditure")
	}

	return response.Success(c, "Expenditure retrieved successfully", fiber.Map{
		"expenditure": expenditure,
	})
}

// Update edits an expenditure
// @Summary Update expenditure
// @Description Update a committee spending entry
// @Tags Expenditures
// @Accept json
// @Produce json
// @Param id path int true "Expenditure ID"
// @Param body body services.ExpenditureInput true "Expenditure data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/expenditures/{id} [put]
func (h *ExpenditureHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid expenditure ID")
	}

	var input services.ExpenditureInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	expenditure, err := h.expenditureService.Update(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrExpenditureNotFound):
			return response.NotFound(c, "Expenditure not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Title, positive amount and spent_on (YYYY-MM-DD) are required")
		default:
			return response.InternalServerError(c, "Failed to update expenditure")
		}
	}

	return response.Success(c, "Expenditure updated successfully", fiber.Map{
		"expenditure": expenditure,
	})
}

// Delete removes an expenditure (soft delete)
// @Summary Delete expenditure
// @Description Soft-delete a committee spending entry
// @Tags Expenditures
// @Accept json
// @Produce json
// @Param id path int true "Expenditure ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/expenditures/{id} [delete]
func (h *ExpenditureHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid expenditure ID")
	}

	if err := h.expenditureService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrExpenditureNotFound) {
			return response.NotFound(c, "Expenditure not found")
		}
		return response.InternalServerError(c, "Failed to delete expenditure")
	}

	return response.Success(c, "Expenditure deleted successfully", nil)
}
