package handlers

import (
	"errors"

	"samiti-duespay/internal/adapters/persistence/repositories"
	"samiti-duespay/internal/core/billing"
	"samiti-duespay/internal/core/domain"
	"samiti-duespay/internal/core/services"
	"samiti-duespay/internal/pkg/pagination"
	"samiti-duespay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles member management endpoints (admin)
type MemberHandler struct {
	memberService *services.MemberService
	billRepo      repositories.BillRepository
	paymentRepo   repositories.PaymentRepository
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(
	memberService *services.MemberService,
	billRepo repositories.BillRepository,
	paymentRepo repositories.PaymentRepository,
) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		billRepo:      billRepo,
		paymentRepo:   paymentRepo,
	}
}

// Create handles member registration
// @Summary Register member
// @Description Register a member and accrue dues from the joined date
// @Tags Members
// @Accept json
// @Produce json
// @Param body body services.RegisterMemberInput true "Member data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/members [post]
func (h *MemberHandler) Create(c *fiber.Ctx) error {
	var input services.RegisterMemberInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.Register(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Name and joined_date (YYYY-MM-DD) are required")
		case errors.Is(err, billing.ErrNoTierMatched):
			return response.BadRequest(c, "Joined date is before the fee schedule begins")
		default:
			return response.InternalServerError(c, "Failed to register member")
		}
	}

	return response.Created(c, "Member registered successfully", fiber.Map{
		"member": member.ToResponse(),
	})
}

// List handles member listing
// @Summary List members
// @Description List members with optional status filter and name search
// @Tags Members
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Param search query string false "Search by name or phone"
// @Success 200 {object} response.Response
// @Router /admin/members [get]
func (h *MemberHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	input := &services.ListInput{
		Offset: params.Offset,
		Limit:  params.Limit,
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	members, total, err := h.memberService.List(c.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Invalid status filter")
		}
		return response.InternalServerError(c, "Failed to list members")
	}

	items := make([]interface{}, 0, len(members))
	for _, m := range members {
		items = append(items, m.ToResponse())
	}

	return response.Success(c, "Members retrieved successfully",
		pagination.NewResponse(items, params, total))
}

// Get handles fetching a single member
// @Summary Get member
// @Description Get a member by ID
// @Tags Members
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/members/{id} [get]
func (h *MemberHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.memberService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to get member")
	}

	return response.Success(c, "Member retrieved successfully", fiber.Map{
		"member": member.ToResponse(),
	})
}

// Update handles member profile update
// @Summary Update member
// @Description Update a member's profile fields (not balances)
// @Tags Members
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Param body body services.UpdateMemberInput true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/members/{id} [put]
func (h *MemberHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	var input services.UpdateMemberInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.Update(c.Context(), uint(id), &input)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to update member")
	}

	return response.Success(c, "Member updated successfully", fiber.Map{
		"member": member.ToResponse(),
	})
}

// MarkDeceased handles the deceased status override
// @Summary Mark member deceased
// @Description Set the terminal deceased status on a member
// @Tags Members
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/members/{id}/deceased [post]
func (h *MemberHandler) MarkDeceased(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.memberService.MarkDeceased(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, services.ErrMemberAlreadyDeceased):
			return response.Conflict(c, "Member already marked deceased")
		default:
			return response.InternalServerError(c, "Failed to mark member deceased")
		}
	}

	return response.Success(c, "Member marked deceased", fiber.Map{
		"member": member.ToResponse(),
	})
}

// Delete handles member deletion
// @Summary Delete member
// @Description Delete a member with their bills, payments and portal account
// @Tags Members
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/members/{id} [delete]
func (h *MemberHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	if err := h.memberService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to delete member")
	}

	return response.Success(c, "Member deleted successfully", nil)
}

// ListBills handles a member's bill history
// @Summary List member bills
// @Description List all bills for a member, newest first
// @Tags Members
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Router /admin/members/{id}/bills [get]
func (h *MemberHandler) ListBills(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	params := pagination.GetParams(c)
	bills, total, err := h.billRepo.ListByMember(c.Context(), uint(id), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list bills")
	}

	return response.Success(c, "Bills retrieved successfully",
		pagination.NewResponse(bills, params, total))
}

// ListPayments handles a member's payment history
// @Summary List member payments
// @Description List all payments for a member, newest first
// @Tags Members
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Router /admin/members/{id}/payments [get]
func (h *MemberHandler) ListPayments(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	params := pagination.GetParams(c)
	payments, total, err := h.paymentRepo.ListByMember(c.Context(), uint(id), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list payments")
	}

	return response.Success(c, "Payments retrieved successfully",
		pagination.NewResponse(payments, params, total))
}
