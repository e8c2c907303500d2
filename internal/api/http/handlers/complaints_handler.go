package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
	"github.com/spec-kit/grievance-service/internal/validation"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// ComplaintsHandler exposes complaint endpoints for students and administrators.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
	validator  *validation.Validator
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints *service.ComplaintService, v *validation.Validator) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints, validator: v}
}

// Create handles POST /complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CreateComplaintRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}

	complaint, err := h.complaints.Create(c.UserContext(), caller, service.ComplaintCreateInput{
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Complaint submitted successfully",
		"data":    dto.NewComplaintResponse(complaint),
	})
}

// ListMine handles GET /complaints/my.
func (h *ComplaintsHandler) ListMine(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	complaints, err := h.complaints.ListMine(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintList(complaints)})
}

// Get handles GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	complaint, err := h.complaints.Get(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// ListAll handles GET /complaints with optional status and category filters.
func (h *ComplaintsHandler) ListAll(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var filter domain.ComplaintFilter
	if status := c.Query("status"); status != "" {
		s := domain.ComplaintStatus(status)
		filter.Status = &s
	}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}

	complaints, err := h.complaints.ListAll(c.UserContext(), caller, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintList(complaints)})
}

// Update handles PUT /complaints/:id. Only status, assignedTo and remarks may
// appear in the body; any other key is rejected rather than ignored.
func (h *ComplaintsHandler) Update(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req dto.UpdateComplaintRequest
	if err := parseBody(c, nil, &req); err != nil {
		return err
	}
	var raw map[string]any
	if err := c.App().Config().JSONDecoder(c.Body(), &raw); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if unknown := unknownKeys(raw, dto.UpdatableComplaintFields); len(unknown) > 0 {
		return apperrors.NewValidationError("field is not updatable", map[string]any{"fields": unknown})
	}

	complaint, err := h.complaints.Update(c.UserContext(), caller, c.Params("id"), service.ComplaintUpdateInput{
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
		Remarks:    req.Remarks,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Complaint updated successfully",
		"data":    dto.NewComplaintResponse(complaint),
	})
}

// Delete handles DELETE /complaints/:id.
func (h *ComplaintsHandler) Delete(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	if err := h.complaints.Delete(c.UserContext(), caller, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Complaint deleted successfully"})
}

func unknownKeys(raw map[string]any, allowed map[string]struct{}) []string {
	var unknown []string
	for key := range raw {
		if _, ok := allowed[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}
