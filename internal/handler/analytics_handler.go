package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edulens/edulens-api/internal/service"
	"github.com/edulens/edulens-api/internal/utils"
)

// AnalyticsHandler exposes teacher-level evaluation aggregates.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/:id/analytics", h.teacherAnalytics)
}

func (h *AnalyticsHandler) teacherAnalytics(c *fiber.Ctx) error {
	teacherID := strings.TrimSpace(c.Params("id"))
	if teacherID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "teacher id is required")
	}

	response, err := h.service.GetTeacherAnalytics(c.Context(), teacherID)
	if err != nil {
		h.logger.Error().Err(err).Str("teacher_id", teacherID).Msg("failed to load teacher analytics")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load analytics")
	}

	return utils.SendSuccess(c, "analytics retrieved", response)
}
