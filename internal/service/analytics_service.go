package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/edulens/edulens-api/internal/dto"
	"github.com/edulens/edulens-api/internal/models"
	"github.com/edulens/edulens-api/internal/repository"
)

const recentScoresWindow = 5

// AnalyticsService aggregates evaluation history per teacher.
type AnalyticsService interface {
	GetTeacherAnalytics(ctx context.Context, teacherID string) (dto.TeacherAnalyticsResponse, error)
}

type analyticsService struct {
	repo   repository.LectureRepository
	logger zerolog.Logger
}

// NewAnalyticsService constructs the analytics aggregator.
func NewAnalyticsService(repo repository.LectureRepository, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		logger: logger.With().Str("component", "analytics_service").Logger(),
	}
}

func (s *analyticsService) GetTeacherAnalytics(ctx context.Context, teacherID string) (dto.TeacherAnalyticsResponse, error) {
	evaluations, err := s.repo.ListEvaluationsByTeacher(ctx, teacherID)
	if err != nil {
		return dto.TeacherAnalyticsResponse{}, err
	}

	response := dto.TeacherAnalyticsResponse{
		TeacherID:         teacherID,
		GradeDistribution: map[string]int{},
		ComponentAverages: map[string]float64{},
		Trend:             "no_data",
	}
	if len(evaluations) == 0 {
		return response, nil
	}

	response.LectureCount = len(evaluations)

	var total float64
	componentTotals := map[string]float64{}
	componentCounts := map[string]int{}

	for _, evaluation := range evaluations {
		total += evaluation.TotalScore
		if evaluation.TotalScore > response.BestScore {
			response.BestScore = evaluation.TotalScore
		}
		response.GradeDistribution[evaluation.Grade]++

		for name, value := range evaluation.Components {
			if points, ok := value.(float64); ok {
				componentTotals[name] += points
				componentCounts[name]++
			}
		}
	}
	response.AverageScore = total / float64(len(evaluations))

	for name, sum := range componentTotals {
		response.ComponentAverages[name] = sum / float64(componentCounts[name])
	}

	// Evaluations arrive newest first.
	limit := recentScoresWindow
	if len(evaluations) < limit {
		limit = len(evaluations)
	}
	for _, evaluation := range evaluations[:limit] {
		response.RecentScores = append(response.RecentScores, evaluation.TotalScore)
	}

	response.Trend = scoreTrend(evaluations)
	return response, nil
}

// scoreTrend compares the newer half of the history against the older half.
func scoreTrend(evaluations []models.LectureEvaluation) string {
	if len(evaluations) < 2 {
		return "stable"
	}

	mid := len(evaluations) / 2
	newer := average(evaluations[:mid])
	older := average(evaluations[mid:])

	switch {
	case newer-older > 2:
		return "improving"
	case older-newer > 2:
		return "declining"
	default:
		return "stable"
	}
}

func average(evaluations []models.LectureEvaluation) float64 {
	if len(evaluations) == 0 {
		return 0
	}
	var total float64
	for _, evaluation := range evaluations {
		total += evaluation.TotalScore
	}
	return total / float64(len(evaluations))
}
