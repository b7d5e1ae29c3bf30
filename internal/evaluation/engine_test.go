package evaluation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var sampleInput = Input{
	Transcript: "Today we cover recursion. What do you think happens when a function calls itself? " +
		"Think about the call stack. Any questions? A base case stops the recursion. " +
		"Let's discuss an example together and share your thoughts.",
	Topics:          []string{"recursion", "call stack"},
	DurationMinutes: 50,
	SourceMaterials: "Recursion is a technique where a function calls itself. Every recursive function needs a base case. The call stack tracks each invocation.",
	SlidesContent:   "Recursion overview. Exercise: trace the calls. Quiz at the end.",
}

func newTestEngine(cfg Config) *Engine {
	engine := NewEngine(nil, nil, nil, cfg, zerolog.Nop())
	engine.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	return engine
}

func TestEngineEvaluateWithoutAI(t *testing.T) {
	engine := newTestEngine(DefaultConfig())
	composite := engine.Evaluate(context.Background(), sampleInput)

	require.Equal(t, MethodComprehensive, composite.Analysis.EvaluationMethod)
	require.Equal(t, MethodKeywordFallback, composite.Analysis.Correctness.Method)
	require.Equal(t, MethodRealisticDummy, composite.Analysis.Engagement.Method)
	require.Equal(t, MethodTopicFallback, composite.Analysis.TopicCoverage.Method)
	require.Equal(t, "reconstruction_disabled", composite.Analysis.Reconstruction.Method)

	require.Greater(t, composite.TotalScore, 0.0)
	require.LessOrEqual(t, composite.TotalScore, 100.0)
	require.NotEmpty(t, composite.Grade)
	require.NotEmpty(t, composite.Recommendations)
	require.Equal(t, len(strings.Fields(sampleInput.Transcript)), composite.WordCount)
}

func TestEngineReproducibility(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	first := engine.Evaluate(context.Background(), sampleInput)
	second := engine.Evaluate(context.Background(), sampleInput)
	require.Equal(t, first, second)
}

func TestEngineTotalEqualsComponentSum(t *testing.T) {
	engine := newTestEngine(DefaultConfig())
	composite := engine.Evaluate(context.Background(), sampleInput)

	sum := composite.Components[ComponentCorrectness] +
		composite.Components[ComponentEngagement] +
		composite.Components[ComponentTopicCoverage]
	require.InDelta(t, sum, composite.TotalScore, 0.01)
}

func TestEngineWeightNormalization(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = Weights{Correctness: 1, Engagement: 1, TopicCoverage: 1}
	engine := newTestEngine(cfg)

	composite := engine.Evaluate(context.Background(), sampleInput)

	// Equal weights of any magnitude give each component a third of the
	// target total.
	equalMagnitude := newTestEngine(DefaultConfig()).Evaluate(context.Background(), sampleInput)
	require.InDelta(t, equalMagnitude.TotalScore, composite.TotalScore, 0.01)

	// A perfect component would contribute exactly its share.
	perfect := Input{
		Transcript:      "alpha beta gamma",
		SourceMaterials: "alpha beta gamma",
	}
	perfectComposite := engine.Evaluate(context.Background(), perfect)
	require.InDelta(t, 100.0/3.0, perfectComposite.Components[ComponentCorrectness], 0.01)
}

func TestEngineCustomTargetTotal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetTotal = 10
	engine := newTestEngine(cfg)

	composite := engine.Evaluate(context.Background(), sampleInput)
	require.LessOrEqual(t, composite.TotalScore, 10.0)
	require.Greater(t, composite.TotalScore, 0.0)
}

func TestEngineSkewedWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = Weights{Correctness: 80, Engagement: 10, TopicCoverage: 10}
	engine := newTestEngine(cfg)

	perfect := Input{
		Transcript:      "alpha beta gamma",
		SourceMaterials: "alpha beta gamma",
	}
	composite := engine.Evaluate(context.Background(), perfect)
	require.InDelta(t, 80.0, composite.Components[ComponentCorrectness], 0.01)
}

func TestGradeBoundaries(t *testing.T) {
	cases := []struct {
		total float64
		grade string
	}{
		{100, "A"}, {85, "A"}, {84.99, "B"}, {75, "B"},
		{74.99, "C"}, {65, "C"}, {64.99, "D"}, {55, "D"},
		{54.99, "F"}, {0, "F"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.grade, gradeFor(tc.total), "total %.2f", tc.total)
	}
}

func TestEngineEmptyTranscript(t *testing.T) {
	engine := newTestEngine(DefaultConfig())
	composite := engine.Evaluate(context.Background(), Input{})

	require.GreaterOrEqual(t, composite.TotalScore, 0.0)
	require.LessOrEqual(t, composite.TotalScore, 100.0)
	require.Equal(t, "F", composite.Grade)
	require.Zero(t, composite.WordCount)
}

func TestEngineSurvivesEvaluatorPanics(t *testing.T) {
	// Evaluators run in their own goroutines, so a panic inside one must be
	// contained by that evaluator rather than relied on to reach the engine.
	engine := NewEngine(panickingCompleter{}, nil, nil, DefaultConfig(), zerolog.Nop())
	engine.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }

	composite := engine.Evaluate(context.Background(), sampleInput)

	require.Equal(t, MethodComprehensive, composite.Analysis.EvaluationMethod)
	require.Equal(t, MethodDensityFallback, composite.Analysis.Correctness.Method)
	require.Equal(t, MethodTopicFallback, composite.Analysis.TopicCoverage.Method)
	require.GreaterOrEqual(t, composite.TotalScore, 0.0)
	require.LessOrEqual(t, composite.TotalScore, 100.0)
	require.NotEmpty(t, composite.Grade)
}

func TestEngineHandlesLengthChangingLowercaseTranscript(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	composite := engine.Evaluate(context.Background(), Input{
		Transcript: strings.Repeat("Ⱥ ", 200) + "derivative",
		Topics:     []string{"derivative"},
	})

	require.Equal(t, MethodComprehensive, composite.Analysis.EvaluationMethod)
	require.Greater(t, composite.Components[ComponentTopicCoverage], 0.0)
}

func TestEngineFallbackAnalysis(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	transcript := strings.Repeat("word ", 1000) + strings.Repeat("question? ", 4)
	composite := engine.fallbackAnalysis(Input{Transcript: transcript})

	require.Equal(t, MethodFallbackAnalysis, composite.Analysis.EvaluationMethod)
	// 1004 words caps correctness at its 30 point ceiling, 4 question marks
	// give 10 engagement points, topic coverage is a flat 20.
	require.InDelta(t, 30.0, composite.Components[ComponentCorrectness], 1e-9)
	require.InDelta(t, 10.0, composite.Components[ComponentEngagement], 1e-9)
	require.InDelta(t, 20.0, composite.Components[ComponentTopicCoverage], 1e-9)
	require.InDelta(t, 60.0, composite.TotalScore, 1e-9)
	require.Equal(t, "D", composite.Grade)
}

func TestBuildRecommendationsSurfacesFactualConcerns(t *testing.T) {
	correctness := CorrectnessResult{
		Method: MethodAgent,
		Claims: []ClaimJudgment{
			{Claim: "the sun orbits the earth", Judgment: JudgmentIncorrect, Explanation: "heliocentric model"},
			{Claim: strings.Repeat("x", 150), Judgment: JudgmentIncorrect, Explanation: "too long"},
			{Claim: "a third wrong claim", Judgment: JudgmentIncorrect, Explanation: "dropped"},
		},
		Breakdown: CorrectnessBreakdown{UnsupportedCount: 4},
	}

	recs := buildRecommendations(90, correctness, EngagementResult{Metrics: EngagementMetrics{StudentTalkRatio: 12, TurnsPer10Min: 3, QuestionDistribution: QuestionDistribution{Conceptual: 2, Clarification: 2}}}, TopicCoverageResult{})

	joined := strings.Join(recs, "\n")
	require.Contains(t, joined, "Factual concern: 'the sun orbits the earth'")
	require.Contains(t, joined, strings.Repeat("x", 100)+"...")
	require.NotContains(t, joined, "a third wrong claim")
	require.Contains(t, joined, "4 claims need supporting evidence")
	require.Contains(t, joined, "Excellent lecture overall")
}

func TestBuildRecommendationsMissingTopics(t *testing.T) {
	topics := TopicCoverageResult{
		PerTopic: []TopicAssessment{
			{Topic: "alpha", CoverageStatus: CoverageNotCovered},
			{Topic: "beta", CoverageStatus: CoverageNotCovered},
			{Topic: "gamma", CoverageStatus: CoverageNotCovered},
			{Topic: "delta", CoverageStatus: CoverageNotCovered},
		},
	}

	recs := buildRecommendations(50, CorrectnessResult{}, EngagementResult{}, topics)
	joined := strings.Join(recs, "\n")
	require.Contains(t, joined, "Address missing topics: alpha, beta, gamma")
	require.NotContains(t, joined, "delta")
	require.Contains(t, joined, "needs improvement")
}
