package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codetrack-go-api/internal/dto"
	"github.com/noah-isme/codetrack-go-api/internal/service"
	"github.com/noah-isme/codetrack-go-api/internal/utils"
)

// SyncHandler exposes the submission reconciliation triggers.
type SyncHandler struct {
	service service.ReconcileService
	logger  zerolog.Logger
}

// NewSyncHandler constructs the handler.
func NewSyncHandler(service service.ReconcileService, logger zerolog.Logger) *SyncHandler {
	return &SyncHandler{
		service: service,
		logger:  logger.With().Str("component", "sync_handler").Logger(),
	}
}

// Register attaches sweep trigger endpoints to the router group.
func (h *SyncHandler) Register(router fiber.Router) {
	router.Post("/submissions/check-all", h.checkAll)
	router.Post("/assignments/:id/check", h.checkAssignment)
	router.Post("/platforms/:platform/users/check", h.syncLinkedUsers)
}

func (h *SyncHandler) checkAll(c *fiber.Ctx) error {
	count, err := h.service.CheckAllPending(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("full reconciliation sweep failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "sweep failed")
	}

	return utils.SendSuccess(c, "sweep completed", dto.SweepResult{Count: count})
}

func (h *SyncHandler) syncLinkedUsers(c *fiber.Ctx) error {
	platformName := c.Params("platform")

	count, err := h.service.SyncLinkedUsers(c.Context(), platformName)
	if err != nil {
		if errors.Is(err, service.ErrUnknownPlatform) {
			return utils.SendError(c, fiber.StatusBadRequest, "platform does not support linked-user sync")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("platform", platformName).Msg("linked user sync failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "sweep failed")
	}

	return utils.SendSuccess(c, "sweep completed", dto.SweepResult{Count: count})
}

func (h *SyncHandler) checkAssignment(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var userID *uint
	if raw := c.Query("user_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid user_id")
		}
		value := uint(parsed)
		userID = &value
	}

	count, err := h.service.CheckAssignment(c.Context(), id, userID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("assignment_id", id).Msg("assignment reconciliation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "sweep failed")
	}

	return utils.SendSuccess(c, "sweep completed", dto.SweepResult{Count: count})
}
