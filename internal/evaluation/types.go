package evaluation

import (
	"strings"
	"time"
)

// Input carries the artefacts evaluated for a single lecture. Empty source
// materials or slides degrade scoring quality but are never an error.
type Input struct {
	Transcript      string   `json:"-"`
	Topics          []string `json:"topics"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	SourceMaterials string   `json:"-"`
	SlidesContent   string   `json:"-"`
}

// ParseTopics splits a comma-separated topics field, trimming whitespace and
// dropping empty entries.
func ParseTopics(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	topics := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			topics = append(topics, trimmed)
		}
	}
	return topics
}

// Claim judgments.
const (
	JudgmentCorrect     = "Correct"
	JudgmentIncorrect   = "Incorrect"
	JudgmentUnsupported = "Unsupported"
)

// Digression severities.
const (
	SeverityLow    = "Low"
	SeverityMedium = "Medium"
	SeverityHigh   = "High"
)

// Scoring methods recorded on results so every number is auditable back to
// the tier that produced it.
const (
	MethodAgent             = "agent"
	MethodOpenAIDirect      = "openai_direct"
	MethodKeywordFallback   = "keyword_fallback"
	MethodDensityFallback   = "density_fallback"
	MethodRealisticDummy    = "realistic_dummy"
	MethodFallbackHeuristic = "fallback_heuristic"
	MethodOpenAIEnhanced    = "openai_enhanced"
	MethodTopicFallback     = "fallback"
	MethodNoTopics          = "no_topics"
	MethodComprehensive     = "comprehensive_analysis"
	MethodFallbackAnalysis  = "fallback_analysis"
)

// Topic coverage statuses.
const (
	CoverageWellCovered      = "well_covered"
	CoveragePartiallyCovered = "partially_covered"
	CoverageMentioned        = "mentioned"
	CoverageNotCovered       = "not_covered"
)

// ClaimJudgment is one factual assertion extracted from the transcript and
// its verdict against the source materials.
type ClaimJudgment struct {
	Claim       string `json:"claim"`
	Judgment    string `json:"judgment"`
	Evidence    string `json:"evidence,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

// Digression is a transcript segment judged off-topic relative to the source
// materials.
type Digression struct {
	Snippet  string `json:"snippet"`
	Reason   string `json:"reason"`
	Severity string `json:"severity"`
}

// CorrectnessBreakdown itemises how the correctness ratio was produced.
type CorrectnessBreakdown struct {
	CorrectCount      int     `json:"correct_count"`
	IncorrectCount    int     `json:"incorrect_count"`
	UnsupportedCount  int     `json:"unsupported_count"`
	TotalClaims       int     `json:"total_claims"`
	Ratio             float64 `json:"ratio"`
	DigressionPenalty float64 `json:"digression_penalty"`
	MaterialBonus     float64 `json:"material_bonus"`
}

// CorrectnessResult scores factual accuracy on a native 40-point scale.
type CorrectnessResult struct {
	Score       float64              `json:"score"`
	Method      string               `json:"method"`
	Claims      []ClaimJudgment      `json:"claims,omitempty"`
	Digressions []Digression         `json:"digressions,omitempty"`
	Breakdown   CorrectnessBreakdown `json:"scoring_breakdown"`
	Note        string               `json:"note,omitempty"`
}

// QuestionDistribution buckets student questions by type.
type QuestionDistribution struct {
	Conceptual    int `json:"conceptual"`
	Clarification int `json:"clarification"`
	Procedural    int `json:"procedural"`
}

// EngagementMetrics is the expanded interactivity report. These values are
// derived deterministically from the scalar engagement score and raw
// transcript statistics, not observed from real dialogue turns.
type EngagementMetrics struct {
	StudentTalkRatio           float64              `json:"student_talk_ratio"`
	TotalStudentTurns          int                  `json:"total_student_turns"`
	AverageTurnLength          float64              `json:"average_turn_length"`
	TurnsPer10Min              float64              `json:"turns_per_10min"`
	QuestionDistribution       QuestionDistribution `json:"question_distribution"`
	ElaborationIndex           float64              `json:"elaboration_index"`
	DialogueDepth              float64              `json:"dialogue_depth"`
	ContentCoverage            float64              `json:"content_coverage"`
	OffTopicRatio              float64              `json:"off_topic_ratio"`
	EngagementDiversity        float64              `json:"engagement_diversity"`
	TurnDistributionInequality float64              `json:"turn_distribution_inequality"`
}

// EngagementResult scores student interactivity on a native 35-point scale.
type EngagementResult struct {
	Score             float64           `json:"score"`
	Method            string            `json:"method"`
	BaseScore         float64           `json:"base_score"`
	SlidesBonus       float64           `json:"slides_bonus"`
	QuestionCues      int               `json:"question_indicators"`
	EngagementCues    int               `json:"engagement_indicators"`
	ExplicitQuestions int               `json:"explicit_questions"`
	PauseCues         int               `json:"pause_indicators"`
	Metrics           EngagementMetrics `json:"metrics"`
	Strengths         []string          `json:"strengths,omitempty"`
	Improvements      []string          `json:"improvements,omitempty"`
}

// TopicAssessment reports coverage of one expected topic.
type TopicAssessment struct {
	Topic          string  `json:"topic"`
	CoverageStatus string  `json:"coverage_status"`
	CoverageScore  float64 `json:"coverage_score"`
	DepthScore     float64 `json:"depth_score"`
	Explanation    string  `json:"explanation,omitempty"`
	Suggestions    string  `json:"suggestions,omitempty"`
}

// TopicOverall averages per-topic scores.
type TopicOverall struct {
	CoverageScore float64 `json:"coverage_score"`
	DepthScore    float64 `json:"depth_score"`
}

// TopicCoverageResult scores topic coverage on a native 10-point scale.
type TopicCoverageResult struct {
	Score    float64           `json:"score"`
	Method   string            `json:"method"`
	PerTopic []TopicAssessment `json:"per_topic,omitempty"`
	Overall  TopicOverall      `json:"overall"`
	Note     string            `json:"note,omitempty"`
}

// ReconstructionInfo describes what the transcript reconstructor did.
type ReconstructionInfo struct {
	Method          string `json:"method"`
	OriginalLength  int    `json:"original_length"`
	AugmentedLength int    `json:"augmented_length"`
	QuestionsAdded  int    `json:"questions_added"`
}

// AnalysisDetails bundles the per-component results behind a composite score.
type AnalysisDetails struct {
	Correctness      CorrectnessResult   `json:"correctness"`
	Engagement       EngagementResult    `json:"engagement"`
	TopicCoverage    TopicCoverageResult `json:"topic_coverage"`
	Reconstruction   ReconstructionInfo  `json:"reconstruction"`
	EvaluationMethod string              `json:"evaluation_method"`
	Timestamp        time.Time           `json:"timestamp"`
}

// Composite is the full outcome of one evaluation. The engine always returns
// a well-formed Composite, never an error.
type Composite struct {
	TotalScore      float64            `json:"total_score"`
	Components      map[string]float64 `json:"components"`
	Grade           string             `json:"grade"`
	Recommendations []string           `json:"recommendations"`
	WordCount       int                `json:"word_count"`
	Analysis        AnalysisDetails    `json:"analysis_details"`
}

// Component names used as keys in Composite.Components.
const (
	ComponentCorrectness   = "Correctness"
	ComponentEngagement    = "Engagement"
	ComponentTopicCoverage = "Topic Coverage"
)

// CombineContent concatenates transcript, source materials and slides into a
// single searchable document for topic analysis.
func CombineContent(in Input) string {
	var builder strings.Builder
	builder.WriteString(in.Transcript)
	if in.SourceMaterials != "" {
		builder.WriteString("\n\n--- SOURCE MATERIALS ---\n")
		builder.WriteString(in.SourceMaterials)
	}
	if in.SlidesContent != "" {
		builder.WriteString("\n\n--- SLIDES CONTENT ---\n")
		builder.WriteString(in.SlidesContent)
	}
	return builder.String()
}
