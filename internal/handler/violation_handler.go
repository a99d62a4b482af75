package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codetrack-go-api/internal/dto"
	"github.com/noah-isme/codetrack-go-api/internal/models"
	"github.com/noah-isme/codetrack-go-api/internal/service"
	"github.com/noah-isme/codetrack-go-api/internal/utils"
)

// ViolationHandler wires proctoring session and violation routes.
type ViolationHandler struct {
	service service.AntiCheatService
	logger  zerolog.Logger
}

// NewViolationHandler constructs the handler.
func NewViolationHandler(service service.AntiCheatService, logger zerolog.Logger) *ViolationHandler {
	return &ViolationHandler{
		service: service,
		logger:  logger.With().Str("component", "violation_handler").Logger(),
	}
}

// Register attaches proctoring endpoints to the router group.
func (h *ViolationHandler) Register(router fiber.Router) {
	router.Post("/sessions", h.startSession)
	router.Post("/sessions/:id/violations", h.recordViolation)
	router.Get("/sessions/:id/violations", h.sessionViolations)
	router.Get("/tests/:id/violations", h.testStats)
}

func (h *ViolationHandler) startSession(c *fiber.Ctx) error {
	var payload dto.SessionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.StartSession(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "test session started", session)
}

func (h *ViolationHandler) recordViolation(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ViolationReportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	outcome, err := h.service.RecordViolation(c.Context(), id, models.ViolationType(payload.ViolationType), payload.Details)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "violation recorded", outcome)
}

func (h *ViolationHandler) sessionViolations(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	summary, err := h.service.SessionViolations(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session violations retrieved", summary)
}

func (h *ViolationHandler) testStats(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := h.service.TestViolationStats(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "test violation stats retrieved", stats)
}

func (h *ViolationHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "test session not found")
	case errors.Is(err, service.ErrUnknownViolationType):
		return utils.SendError(c, fiber.StatusBadRequest, "unknown violation type")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
