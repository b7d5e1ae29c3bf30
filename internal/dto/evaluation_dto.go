package dto

import (
	"encoding/json"
	"time"

	"github.com/edulens/edulens-api/internal/models"
)

// EvaluationResponse represents a completed lecture evaluation.
type EvaluationResponse struct {
	ID              uint                   `json:"id"`
	LectureID       uint                   `json:"lecture_id"`
	TotalScore      float64                `json:"total_score"`
	Grade           string                 `json:"grade"`
	Method          string                 `json:"method"`
	Components      map[string]interface{} `json:"components"`
	Analysis        map[string]interface{} `json:"analysis_details,omitempty"`
	Recommendations []string               `json:"recommendations"`
	CreatedAt       time.Time              `json:"created_at"`
}

// NewEvaluationResponse builds a response DTO from a model. includeAnalysis
// controls whether the full per-component breakdown is inlined.
func NewEvaluationResponse(evaluation models.LectureEvaluation, includeAnalysis bool) EvaluationResponse {
	response := EvaluationResponse{
		ID:         evaluation.ID,
		LectureID:  evaluation.LectureID,
		TotalScore: evaluation.TotalScore,
		Grade:      evaluation.Grade,
		Method:     evaluation.Method,
		CreatedAt:  evaluation.CreatedAt,
	}

	if evaluation.Components != nil {
		response.Components = map[string]interface{}(evaluation.Components)
	}
	if includeAnalysis && evaluation.Analysis != nil {
		response.Analysis = map[string]interface{}(evaluation.Analysis)
	}
	if len(evaluation.Recommendations) > 0 {
		var recs []string
		if err := json.Unmarshal(evaluation.Recommendations, &recs); err == nil {
			response.Recommendations = recs
		}
	}

	return response
}

// TeacherAnalyticsResponse aggregates a teacher's evaluation history.
type TeacherAnalyticsResponse struct {
	TeacherID         string             `json:"teacher_id"`
	LectureCount      int                `json:"lecture_count"`
	AverageScore      float64            `json:"average_score"`
	BestScore         float64            `json:"best_score"`
	GradeDistribution map[string]int     `json:"grade_distribution"`
	RecentScores      []float64          `json:"recent_scores"`
	Trend             string             `json:"trend"`
	ComponentAverages map[string]float64 `json:"component_averages"`
}
