package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edulens/edulens-api/internal/dto"
	"github.com/edulens/edulens-api/internal/models"
	"github.com/edulens/edulens-api/internal/service"
	"github.com/edulens/edulens-api/internal/utils"
)

// LectureHandler exposes lecture registration, attachment and evaluation
// endpoints.
type LectureHandler struct {
	service   service.LectureService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewLectureHandler constructs the handler.
func NewLectureHandler(service service.LectureService, validator *validator.Validate, logger zerolog.Logger) *LectureHandler {
	return &LectureHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "lecture_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *LectureHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Post("/:id/materials", h.attachMaterial)
	router.Post("/:id/slides", h.attachSlides)
	router.Post("/:id/evaluate", h.evaluate)
	router.Get("/:id/evaluation", h.getEvaluation)
}

func (h *LectureHandler) create(c *fiber.Ctx) error {
	var payload dto.CreateLectureRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Create(c.Context(), payload)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create lecture")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create lecture")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "lecture created", response)
}

func (h *LectureHandler) get(c *fiber.Ctx) error {
	id, err := lectureIDFromPath(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid lecture id")
	}

	response, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lecture retrieved", response)
}

func (h *LectureHandler) attachMaterial(c *fiber.Ctx) error {
	return h.attach(c, models.LectureFileKindMaterial)
}

func (h *LectureHandler) attachSlides(c *fiber.Ctx) error {
	return h.attach(c, models.LectureFileKindSlides)
}

func (h *LectureHandler) attach(c *fiber.Ctx, kind string) error {
	id, err := lectureIDFromPath(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid lecture id")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read file")
	}

	response, err := h.service.AttachFile(c.Context(), id, kind, fileHeader.Filename, data)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attachment stored", response)
}

func (h *LectureHandler) evaluate(c *fiber.Ctx) error {
	id, err := lectureIDFromPath(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid lecture id")
	}

	response, err := h.service.Evaluate(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lecture evaluated", response)
}

func (h *LectureHandler) getEvaluation(c *fiber.Ctx) error {
	id, err := lectureIDFromPath(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid lecture id")
	}

	response, err := h.service.GetEvaluation(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluation retrieved", response)
}

func (h *LectureHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrLectureNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "lecture not found")
	case errors.Is(err, service.ErrEvaluationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "no evaluation found for lecture")
	case errors.Is(err, service.ErrAttachmentTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrInvalidAttachmentKind):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("lecture request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func lectureIDFromPath(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(parsed), nil
}
