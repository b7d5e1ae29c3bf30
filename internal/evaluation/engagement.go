package evaluation

import (
	"context"
	"math"
	"strings"

	"github.com/rs/zerolog"
)

// Indicator phrases counted by the engagement heuristic.
var (
	questionCues = []string{"question", "ask", "think", "discuss", "what do you", "anyone", "raise your hand"}
	interactCues = []string{"participate", "share", "opinion", "thoughts", "experience", "example"}
	pausePhrases = []string{"pause", "wait", "think about", "take a moment"}
	slideCues    = []string{"exercise", "activity", "group work", "discussion", "poll", "quiz", "breakout"}
)

const (
	engagementBaseMax = 30.0
	engagementMax     = 35.0
	slidesBonusMax    = 5.0
)

// EngagementAgent is a pluggable LLM-backed engagement analyser. The heuristic
// path is authoritative today; the agent path is kept behind a configuration
// flag so it can be enabled without changing the evaluator contract.
type EngagementAgent interface {
	Analyze(ctx context.Context, transcript, slidesContent string) (EngagementResult, error)
}

// EngagementEvaluator estimates student interactivity from transcript-only
// signals. The heuristic path is pure: identical inputs yield bit-identical
// scores and metrics.
type EngagementEvaluator struct {
	agent        EngagementAgent
	agentEnabled bool
	logger       zerolog.Logger
}

// NewEngagementEvaluator builds the evaluator. The agent may be nil.
func NewEngagementEvaluator(agent EngagementAgent, agentEnabled bool, logger zerolog.Logger) *EngagementEvaluator {
	return &EngagementEvaluator{
		agent:        agent,
		agentEnabled: agentEnabled,
		logger:       logger.With().Str("component", "engagement_evaluator").Logger(),
	}
}

// Evaluate produces an engagement score on the native 35-point scale. It
// never panics across its boundary: unexpected failures degrade to a score
// derived from explicit question marks alone.
func (e *EngagementEvaluator) Evaluate(ctx context.Context, in Input) (result EngagementResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("engagement evaluation panicked")
			result = e.questionMarkFallback(in)
		}
	}()

	if e.agentEnabled && e.agent != nil {
		agentResult, err := e.agent.Analyze(ctx, in.Transcript, in.SlidesContent)
		if err == nil {
			return agentResult
		}
		e.logger.Warn().Err(err).Msg("engagement agent failed, using heuristic")
		return e.Heuristic(in)
	}

	return e.heuristic(in, MethodRealisticDummy)
}

// Heuristic exposes the deterministic path directly, tagged as the fallback
// tier. Evaluate routes here when an enabled agent fails, so the method tag
// distinguishes agent failure from agent-off-by-policy.
func (e *EngagementEvaluator) Heuristic(in Input) EngagementResult {
	return e.heuristic(in, MethodFallbackHeuristic)
}

// questionMarkFallback is the last line of defense when the heuristic itself
// fails: score explicit question marks at the usual per-question weight and
// nothing else. It must not share code with the full heuristic.
func (e *EngagementEvaluator) questionMarkFallback(in Input) EngagementResult {
	questions := strings.Count(in.Transcript, "?")
	score := math.Min(float64(questions)*3, engagementMax)
	return EngagementResult{
		Method:            MethodFallbackHeuristic,
		ExplicitQuestions: questions,
		BaseScore:         score,
		Score:             score,
	}
}

func (e *EngagementEvaluator) heuristic(in Input, method string) EngagementResult {
	lower := strings.ToLower(in.Transcript)

	result := EngagementResult{
		Method:            method,
		QuestionCues:      countOccurrences(lower, questionCues),
		EngagementCues:    countOccurrences(lower, interactCues),
		ExplicitQuestions: strings.Count(in.Transcript, "?"),
		PauseCues:         countOccurrences(lower, pausePhrases),
	}

	base := float64(result.QuestionCues)*2 +
		float64(result.EngagementCues)*1.5 +
		float64(result.ExplicitQuestions)*3 +
		float64(result.PauseCues)*2
	result.BaseScore = math.Min(base, engagementBaseMax)

	if in.SlidesContent != "" {
		hits := countOccurrences(strings.ToLower(in.SlidesContent), slideCues)
		result.SlidesBonus = math.Min(float64(hits)*2, slidesBonusMax)
	}

	result.Score = math.Min(result.BaseScore+result.SlidesBonus, engagementMax)

	e.synthesizeMetrics(&result, in)
	return result
}

// synthesizeMetrics expands the scalar score into an internally consistent
// metrics report. Every value is a monotonic function of the score and raw
// transcript statistics; there is no randomness. These are derived metrics,
// not observed ones.
func (e *EngagementEvaluator) synthesizeMetrics(result *EngagementResult, in Input) {
	score := result.Score
	wordCount := len(strings.Fields(in.Transcript))

	// Talk ratio between 3% and 15%, scaled by score.
	talkRatio := clamp(2.0+(score/engagementMax)*13.0, 3.0, 15.0)

	// Assume roughly 120 spoken words per minute.
	estimatedMinutes := float64(wordCount) / 120.0

	indicatorTotal := result.QuestionCues + result.EngagementCues + result.ExplicitQuestions
	turns := int(float64(indicatorTotal) * 0.8)
	if turns < 2 {
		turns = 2
	}

	avgTurnLength := 8.0 + (talkRatio/15.0)*12.0

	turnsPer10 := 0.0
	if estimatedMinutes > 0 {
		turnsPer10 = float64(turns) / estimatedMinutes * 10.0
	}

	totalQuestions := turns
	if totalQuestions < 3 {
		totalQuestions = 3
	}

	// Question-type mix banded by score: richer engagement shifts the mix
	// toward conceptual questions.
	var conceptualPct, clarificationPct float64
	switch {
	case score >= 25:
		conceptualPct = 0.4 + (score-25)/engagementMax*0.3
		clarificationPct = 0.2 + (engagementMax-score)/engagementMax*0.2
	case score >= 15:
		conceptualPct = 0.25 + (score-15)/20.0*0.25
		clarificationPct = 0.35 + (25-score)/20.0*0.15
	default:
		conceptualPct = 0.15 + score/15.0*0.15
		clarificationPct = 0.4 + (15-score)/15.0*0.2
	}

	conceptual := int(float64(totalQuestions) * conceptualPct)
	if conceptual < 1 {
		conceptual = 1
	}
	clarification := int(float64(totalQuestions) * clarificationPct)
	if clarification < 1 {
		clarification = 1
	}
	procedural := totalQuestions - conceptual - clarification
	if procedural < 1 {
		procedural = 1
	}

	result.Metrics = EngagementMetrics{
		StudentTalkRatio:  round1(talkRatio),
		TotalStudentTurns: turns,
		AverageTurnLength: round1(avgTurnLength),
		TurnsPer10Min:     round1(turnsPer10),
		QuestionDistribution: QuestionDistribution{
			Conceptual:    conceptual,
			Clarification: clarification,
			Procedural:    procedural,
		},
		ElaborationIndex:           round2(1.0 + (score/engagementMax)*2.5),
		DialogueDepth:              round2(1.5 + (score/engagementMax)*2.5),
		ContentCoverage:            round1(60.0 + (score/engagementMax)*30.0),
		OffTopicRatio:              round1(math.Max(2.0, 20.0-(score/engagementMax)*15.0)),
		EngagementDiversity:        round3(0.3 + (score/engagementMax)*0.4),
		TurnDistributionInequality: round3(math.Max(0.2, 0.7-(score/engagementMax)*0.4)),
	}

	result.Strengths = engagementStrengths(score, result.Metrics)
	result.Improvements = engagementImprovements(score, result.Metrics)
}

func engagementStrengths(score float64, metrics EngagementMetrics) []string {
	var strengths []string

	switch {
	case metrics.StudentTalkRatio >= 10:
		strengths = append(strengths, "Good level of student participation and interaction")
	case metrics.StudentTalkRatio >= 6:
		strengths = append(strengths, "Moderate student engagement with room for growth")
	}

	switch {
	case metrics.QuestionDistribution.Conceptual >= 3:
		strengths = append(strengths, "Students asking thoughtful, concept-oriented questions")
	case metrics.QuestionDistribution.Conceptual >= 2:
		strengths = append(strengths, "Some evidence of deeper student thinking")
	}

	switch {
	case score >= 25:
		strengths = append(strengths, "Strong overall classroom engagement dynamics")
	case score >= 20:
		strengths = append(strengths, "Positive learning environment with active participation")
	}

	if len(strengths) > 3 {
		strengths = strengths[:3]
	}
	return strengths
}

func engagementImprovements(score float64, metrics EngagementMetrics) []string {
	var improvements []string

	if metrics.StudentTalkRatio < 8 {
		improvements = append(improvements, "Increase opportunities for student questions and discussion")
	}
	if metrics.OffTopicRatio > 15 {
		improvements = append(improvements, "Guide discussions to stay more focused on lecture topics")
	}

	switch {
	case score < 20:
		improvements = append(improvements,
			"Incorporate more interactive teaching techniques",
			"Consider adding polls, breakout discussions, or Q&A sessions")
	case score < 25:
		improvements = append(improvements, "Build on current engagement with more structured interaction")
	}

	if len(improvements) > 3 {
		improvements = improvements[:3]
	}
	return improvements
}

func countOccurrences(haystack string, needles []string) int {
	total := 0
	for _, needle := range needles {
		total += strings.Count(haystack, needle)
	}
	return total
}

func clamp(value, low, high float64) float64 {
	return math.Min(math.Max(value, low), high)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
