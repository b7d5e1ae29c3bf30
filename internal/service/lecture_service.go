package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edulens/edulens-api/internal/dto"
	"github.com/edulens/edulens-api/internal/evaluation"
	"github.com/edulens/edulens-api/internal/extract"
	"github.com/edulens/edulens-api/internal/models"
	"github.com/edulens/edulens-api/internal/observability"
	"github.com/edulens/edulens-api/internal/repository"
)

var (
	// ErrLectureNotFound indicates the lecture does not exist.
	ErrLectureNotFound = errors.New("lecture not found")
	// ErrEvaluationNotFound indicates the lecture has never been evaluated.
	ErrEvaluationNotFound = errors.New("no evaluation found for lecture")
	// ErrAttachmentTooLarge indicates the upload exceeded the configured limit.
	ErrAttachmentTooLarge = errors.New("attachment exceeds maximum allowed size")
	// ErrInvalidAttachmentKind indicates an unknown attachment kind.
	ErrInvalidAttachmentKind = errors.New("attachment kind must be slides or material")
)

// FileStorage abstracts attachment destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// LectureEvaluator abstracts the scoring pipeline so handlers and tests do
// not depend on the engine directly.
type LectureEvaluator interface {
	Evaluate(ctx context.Context, in evaluation.Input) evaluation.Composite
}

// LectureService manages lectures, their attachments and their evaluations.
type LectureService interface {
	Create(ctx context.Context, req dto.CreateLectureRequest) (dto.LectureResponse, error)
	Get(ctx context.Context, id uint) (dto.LectureResponse, error)
	AttachFile(ctx context.Context, lectureID uint, kind, filename string, data []byte) (dto.LectureFileResponse, error)
	Evaluate(ctx context.Context, lectureID uint) (dto.EvaluationResponse, error)
	GetEvaluation(ctx context.Context, lectureID uint) (dto.EvaluationResponse, error)
}

type lectureService struct {
	repo      repository.LectureRepository
	evaluator LectureEvaluator
	extractor extract.Extractor
	storage   FileStorage
	cache     *redis.Client
	cacheTTL  time.Duration
	maxSize   int64
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewLectureService constructs a lecture service. Storage and cache may be
// nil; attachments are then kept inline only and reports are never cached.
func NewLectureService(repo repository.LectureRepository, evaluator LectureEvaluator, extractor extract.Extractor, storage FileStorage, cache *redis.Client, cacheTTL time.Duration, maxSizeMB int, logger zerolog.Logger) LectureService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &lectureService{
		repo:      repo,
		evaluator: evaluator,
		extractor: extractor,
		storage:   storage,
		cache:     cache,
		cacheTTL:  cacheTTL,
		maxSize:   int64(maxSizeMB) * 1024 * 1024,
		logger:    logger.With().Str("component", "lecture_service").Logger(),
		tracer:    otel.Tracer("github.com/edulens/edulens-api/internal/service/lecture"),
		now:       time.Now,
	}
}

func (s *lectureService) Create(ctx context.Context, req dto.CreateLectureRequest) (dto.LectureResponse, error) {
	lecture := models.Lecture{
		Title:           strings.TrimSpace(req.Title),
		TeacherID:       req.TeacherID,
		CourseCode:      req.CourseCode,
		Transcript:      req.Transcript,
		DurationMinutes: req.DurationMinutes,
		Topics:          req.Topics,
		Objectives:      req.Objectives,
		SourceMaterials: req.SourceMaterials,
		SlidesContent:   req.SlidesContent,
		Date:            s.now().UTC(),
	}
	if req.Date != "" {
		if parsed, err := time.Parse("2006-01-02", req.Date); err == nil {
			lecture.Date = parsed
		}
	}

	if err := s.repo.Create(ctx, &lecture); err != nil {
		return dto.LectureResponse{}, fmt.Errorf("create lecture: %w", err)
	}

	s.logger.Info().Uint("lecture_id", lecture.ID).Str("teacher_id", lecture.TeacherID).Msg("lecture registered")
	return dto.NewLectureResponse(lecture, len(strings.Fields(lecture.Transcript))), nil
}

func (s *lectureService) Get(ctx context.Context, id uint) (dto.LectureResponse, error) {
	lecture, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LectureResponse{}, ErrLectureNotFound
		}
		return dto.LectureResponse{}, err
	}
	return dto.NewLectureResponse(lecture, len(strings.Fields(lecture.Transcript))), nil
}

// AttachFile stores an uploaded document, extracts whatever text it can and
// appends that text to the lecture's evaluable content.
func (s *lectureService) AttachFile(ctx context.Context, lectureID uint, kind, filename string, data []byte) (dto.LectureFileResponse, error) {
	ctx, span := s.tracer.Start(ctx, "lecture.attach_file")
	defer span.End()
	span.SetAttributes(
		attribute.String("attachment.kind", kind),
		attribute.Int("attachment.size", len(data)),
	)

	if kind != models.LectureFileKindSlides && kind != models.LectureFileKindMaterial {
		return dto.LectureFileResponse{}, ErrInvalidAttachmentKind
	}
	if int64(len(data)) > s.maxSize {
		return dto.LectureFileResponse{}, ErrAttachmentTooLarge
	}

	lecture, err := s.repo.GetByID(ctx, lectureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LectureFileResponse{}, ErrLectureNotFound
		}
		return dto.LectureFileResponse{}, err
	}

	text, mime, warning := s.extractor.Extract(data, filename)

	file := models.LectureFile{
		LectureID: lecture.ID,
		Kind:      kind,
		FileName:  filename,
		MimeType:  mime,
		SizeBytes: int64(len(data)),
		Warning:   warning,
	}

	if s.storage != nil {
		url, uploadErr := s.storage.Upload(ctx, fmt.Sprintf("lectures/%d/%s/%s", lecture.ID, kind, filename), bytes.NewReader(data))
		if uploadErr != nil {
			s.logger.Warn().Err(uploadErr).Uint("lecture_id", lecture.ID).Msg("attachment blob upload failed, keeping extracted text only")
		} else {
			file.URL = url
		}
	}

	if err := s.repo.AddFile(ctx, &file); err != nil {
		return dto.LectureFileResponse{}, fmt.Errorf("store attachment: %w", err)
	}

	if text != "" {
		switch kind {
		case models.LectureFileKindSlides:
			lecture.SlidesContent = appendContent(lecture.SlidesContent, text)
		case models.LectureFileKindMaterial:
			lecture.SourceMaterials = appendContent(lecture.SourceMaterials, text)
		}
		if err := s.repo.Update(ctx, &lecture); err != nil {
			return dto.LectureFileResponse{}, fmt.Errorf("update lecture content: %w", err)
		}
	}

	observability.AttachmentUploads().WithLabelValues(kind).Inc()
	if warning != "" {
		observability.AttachmentExtractWarnings().Inc()
	}

	s.invalidateCache(ctx, lecture.ID)
	return dto.NewLectureFileResponse(file), nil
}

// Evaluate runs the scoring pipeline and persists the outcome. Evaluating
// again replaces the report served to readers but keeps history.
func (s *lectureService) Evaluate(ctx context.Context, lectureID uint) (dto.EvaluationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "lecture.evaluate")
	defer span.End()
	span.SetAttributes(attribute.Int("lecture.id", int(lectureID)))

	lecture, err := s.repo.GetByID(ctx, lectureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrLectureNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	started := s.now()
	composite := s.evaluator.Evaluate(ctx, evaluation.Input{
		Transcript:      lecture.Transcript,
		Topics:          evaluation.ParseTopics(lecture.Topics),
		DurationMinutes: lecture.DurationMinutes,
		SourceMaterials: lecture.SourceMaterials,
		SlidesContent:   lecture.SlidesContent,
	})
	elapsed := s.now().Sub(started)

	method := composite.Analysis.EvaluationMethod
	observability.Evaluations().WithLabelValues(composite.Grade, method).Inc()
	observability.EvaluationLatency().WithLabelValues(method).Observe(elapsed.Seconds())
	observability.EvaluationScores().WithLabelValues(method).Observe(composite.TotalScore)

	record, err := evaluationRecord(lecture.ID, composite)
	if err != nil {
		return dto.EvaluationResponse{}, fmt.Errorf("encode evaluation: %w", err)
	}
	if err := s.repo.SaveEvaluation(ctx, record); err != nil {
		return dto.EvaluationResponse{}, fmt.Errorf("save evaluation: %w", err)
	}

	s.invalidateCache(ctx, lecture.ID)

	s.logger.Info().
		Uint("lecture_id", lecture.ID).
		Float64("total_score", composite.TotalScore).
		Str("grade", composite.Grade).
		Dur("elapsed", elapsed).
		Msg("lecture evaluation stored")

	return dto.NewEvaluationResponse(*record, true), nil
}

// GetEvaluation returns the most recent stored report, cache first.
func (s *lectureService) GetEvaluation(ctx context.Context, lectureID uint) (dto.EvaluationResponse, error) {
	cacheKey := evaluationCacheKey(lectureID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.EvaluationResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("lecture_id", lectureID).Msg("evaluation cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read evaluation cache")
		}
	}

	record, err := s.repo.LatestEvaluation(ctx, lectureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrEvaluationNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	response := dto.NewEvaluationResponse(record, true)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store evaluation cache")
			}
		}
	}

	return response, nil
}

func (s *lectureService) invalidateCache(ctx context.Context, lectureID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, evaluationCacheKey(lectureID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("lecture_id", lectureID).Msg("failed to invalidate evaluation cache")
	}
}

func evaluationCacheKey(lectureID uint) string {
	return fmt.Sprintf("evaluation:lecture:%d", lectureID)
}

// evaluationRecord flattens a composite into its persisted form.
func evaluationRecord(lectureID uint, composite evaluation.Composite) (*models.LectureEvaluation, error) {
	components := datatypes.JSONMap{}
	for name, points := range composite.Components {
		components[name] = points
	}

	analysisPayload, err := json.Marshal(composite.Analysis)
	if err != nil {
		return nil, err
	}
	analysis := datatypes.JSONMap{}
	if err := json.Unmarshal(analysisPayload, &analysis); err != nil {
		return nil, err
	}
	analysis["word_count"] = composite.WordCount

	recommendations, err := json.Marshal(composite.Recommendations)
	if err != nil {
		return nil, err
	}

	return &models.LectureEvaluation{
		LectureID:       lectureID,
		TotalScore:      composite.TotalScore,
		Grade:           composite.Grade,
		Method:          composite.Analysis.EvaluationMethod,
		Components:      components,
		Analysis:        analysis,
		Recommendations: datatypes.JSON(recommendations),
	}, nil
}

func appendContent(existing, addition string) string {
	if strings.TrimSpace(existing) == "" {
		return addition
	}
	return existing + "\n\n" + addition
}
