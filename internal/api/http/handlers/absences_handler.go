package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/opskit/absence-service/internal/api/dto"
	"github.com/opskit/absence-service/internal/auth"
	"github.com/opskit/absence-service/internal/domain"
	"github.com/opskit/absence-service/internal/service"
	apperrors "github.com/opskit/absence-service/pkg/util/errorutil"
)

// AbsencesHandler manages absence request endpoints.
type AbsencesHandler struct {
	service *service.AbsenceService
}

// NewAbsencesHandler constructs handler.
func NewAbsencesHandler(absenceService *service.AbsenceService) *AbsencesHandler {
	return &AbsencesHandler{service: absenceService}
}

// Create POST /absences.
func (h *AbsencesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateAbsenceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	input := service.AbsenceCreateInput{
		SubjectID: req.SubjectID,
		Kind:      req.Kind,
		Period: domain.Period{
			Start:         req.PeriodStart,
			End:           req.PeriodEnd,
			DurationHours: req.DurationHours,
		},
		Comment:          req.Comment,
		RequestedStatus:  req.Status,
		SchedulingImpact: req.SchedulingImpact,
	}
	request, err := h.service.Create(c.UserContext(), principal.Account.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAbsenceResponse(request)})
}

// UpdateStatus PATCH /absences/:id/status.
func (h *AbsencesHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateAbsenceStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	request, err := h.service.UpdateStatus(c.UserContext(), principal.Account.ID, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAbsenceResponse(request)})
}

// Get GET /absences/:id.
func (h *AbsencesHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	request, err := h.service.Get(c.UserContext(), principal.Account.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAbsenceResponse(request)})
}

// List GET /absences.
func (h *AbsencesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	requests, err := h.service.List(c.UserContext(), principal.Account.ID, parseAbsenceQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": absenceResponses(requests)})
}

// ListForEmployee GET /employees/:id/absences.
func (h *AbsencesHandler) ListForEmployee(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	requests, err := h.service.ListForEmployee(c.UserContext(), principal.Account.ID, c.Params("id"), parseAbsenceQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": absenceResponses(requests)})
}

// History GET /absences/:id/history.
func (h *AbsencesHandler) History(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	entries, err := h.service.History(c.UserContext(), principal.Account.ID, c.Params("id"), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewAuditEntryResponse(entry))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Delete DELETE /absences/:id.
func (h *AbsencesHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.UserContext(), principal.Account.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseAbsenceQuery(c *fiber.Ctx) service.AbsenceListFilter {
	filter := service.AbsenceListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.AbsenceStatus(strings.TrimSpace(part)))
		}
	}
	if kindStr := c.Query("kind"); kindStr != "" {
		for _, part := range strings.Split(kindStr, ",") {
			filter.Kinds = append(filter.Kinds, domain.AbsenceKind(strings.TrimSpace(part)))
		}
	}
	if from := parseTime(c.Query("from")); from != nil {
		filter.PeriodFrom = from
	}
	if to := parseTime(c.Query("to")); to != nil {
		filter.PeriodTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func absenceResponses(requests []domain.AbsenceRequest) []dto.AbsenceResponse {
	items := make([]dto.AbsenceResponse, 0, len(requests))
	for i := range requests {
		items = append(items, dto.NewAbsenceResponse(&requests[i]))
	}
	return items
}
