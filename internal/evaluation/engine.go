package evaluation

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edulens/edulens-api/pkg/ai"
)

// Native scales of the three component evaluators.
const (
	nativeCorrectnessMax = 40.0
	nativeEngagementMax  = 35.0
	nativeTopicMax       = 10.0
)

// Weights control how the three components share the composite total. They
// are relative: each component receives weight_i / sum(weights) of the
// target total, so equal weights give equal thirds regardless of magnitude.
type Weights struct {
	Correctness   float64 `mapstructure:"correctness"`
	Engagement    float64 `mapstructure:"engagement"`
	TopicCoverage float64 `mapstructure:"topic_coverage"`
}

// DefaultWeights weight the three components equally.
func DefaultWeights() Weights {
	return Weights{Correctness: 30, Engagement: 30, TopicCoverage: 30}
}

func (w Weights) sum() float64 {
	return w.Correctness + w.Engagement + w.TopicCoverage
}

// Config tunes the evaluation engine.
type Config struct {
	Weights                Weights
	TargetTotal            float64
	Timeout                time.Duration
	EngagementAgentEnabled bool
}

// DefaultConfig returns the production defaults: equal weights normalised to
// a 100-point total and a 60 second overall budget.
func DefaultConfig() Config {
	return Config{
		Weights:     DefaultWeights(),
		TargetTotal: 100,
		Timeout:     60 * time.Second,
	}
}

// Engine orchestrates the component evaluators into a composite lecture
// quality score. Evaluate never returns an error and never panics across its
// boundary; total failure degrades to a transcript-statistics analysis.
type Engine struct {
	correctness   *CorrectnessEvaluator
	engagement    *EngagementEvaluator
	topics        *TopicEvaluator
	reconstructor Reconstructor
	cfg           Config
	logger        zerolog.Logger
	now           func() time.Time
}

// NewEngine wires an engine from its collaborators. Both completer and agent
// may be nil, in which case every component runs its deterministic tiers.
func NewEngine(completer ai.Completer, agent EngagementAgent, reconstructor Reconstructor, cfg Config, logger zerolog.Logger) *Engine {
	if reconstructor == nil {
		reconstructor = NoopReconstructor{}
	}
	if cfg.Weights.sum() <= 0 {
		cfg.Weights = DefaultWeights()
	}
	if cfg.TargetTotal <= 0 {
		cfg.TargetTotal = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	engineLogger := logger.With().Str("component", "evaluation_engine").Logger()
	return &Engine{
		correctness:   NewCorrectnessEvaluator(completer, logger),
		engagement:    NewEngagementEvaluator(agent, cfg.EngagementAgentEnabled, logger),
		topics:        NewTopicEvaluator(completer, logger),
		reconstructor: reconstructor,
		cfg:           cfg,
		logger:        engineLogger,
		now:           time.Now,
	}
}

// Evaluate scores one lecture. The three component evaluators run
// concurrently under a shared deadline; their native scores are normalised to
// weighted shares of the target total.
func (e *Engine) Evaluate(ctx context.Context, in Input) (composite Composite) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("evaluation panicked, using fallback analysis")
			composite = e.fallbackAnalysis(in)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	transcript, reconstruction := e.reconstructor.Reconstruct(in.Transcript)
	in.Transcript = transcript

	var (
		correctness CorrectnessResult
		engagement  EngagementResult
		topics      TopicCoverageResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		correctness = e.correctness.Evaluate(gctx, in)
		return nil
	})
	g.Go(func() error {
		engagement = e.engagement.Evaluate(gctx, in)
		return nil
	})
	g.Go(func() error {
		topics = e.topics.Evaluate(gctx, in)
		return nil
	})
	_ = g.Wait()

	weightSum := e.cfg.Weights.sum()
	shares := map[string]float64{
		ComponentCorrectness:   e.cfg.Weights.Correctness / weightSum * e.cfg.TargetTotal,
		ComponentEngagement:    e.cfg.Weights.Engagement / weightSum * e.cfg.TargetTotal,
		ComponentTopicCoverage: e.cfg.Weights.TopicCoverage / weightSum * e.cfg.TargetTotal,
	}

	components := map[string]float64{
		ComponentCorrectness:   round2(correctness.Score / nativeCorrectnessMax * shares[ComponentCorrectness]),
		ComponentEngagement:    round2(engagement.Score / nativeEngagementMax * shares[ComponentEngagement]),
		ComponentTopicCoverage: round2(topics.Score / nativeTopicMax * shares[ComponentTopicCoverage]),
	}

	total := round2(components[ComponentCorrectness] +
		components[ComponentEngagement] +
		components[ComponentTopicCoverage])
	total = math.Min(total, e.cfg.TargetTotal)

	composite = Composite{
		TotalScore:      total,
		Components:      components,
		Grade:           gradeFor(total),
		Recommendations: buildRecommendations(total, correctness, engagement, topics),
		WordCount:       len(strings.Fields(in.Transcript)),
		Analysis: AnalysisDetails{
			Correctness:      correctness,
			Engagement:       engagement,
			TopicCoverage:    topics,
			Reconstruction:   reconstruction,
			EvaluationMethod: MethodComprehensive,
			Timestamp:        e.now().UTC(),
		},
	}

	e.logger.Info().
		Float64("total_score", composite.TotalScore).
		Str("grade", composite.Grade).
		Str("correctness_method", correctness.Method).
		Str("engagement_method", engagement.Method).
		Str("topic_method", topics.Method).
		Msg("lecture evaluated")

	return composite
}

// fallbackAnalysis scores from transcript statistics alone. It runs only when
// the normal pipeline fails outright, so it must not call anything that can
// itself fail.
func (e *Engine) fallbackAnalysis(in Input) Composite {
	wordCount := len(strings.Fields(in.Transcript))
	questionMarks := strings.Count(in.Transcript, "?")

	components := map[string]float64{
		ComponentCorrectness:   math.Min(float64(wordCount)/200.0, 30.0),
		ComponentEngagement:    math.Min(float64(questionMarks)*2.5, 20.0),
		ComponentTopicCoverage: 20.0,
	}
	total := round2(components[ComponentCorrectness] +
		components[ComponentEngagement] +
		components[ComponentTopicCoverage])

	return Composite{
		TotalScore: total,
		Components: components,
		Grade:      gradeFor(total),
		Recommendations: []string{
			"Evaluation completed with limited analysis - retry for a full assessment",
		},
		WordCount: wordCount,
		Analysis: AnalysisDetails{
			EvaluationMethod: MethodFallbackAnalysis,
			Timestamp:        e.now().UTC(),
		},
	}
}
