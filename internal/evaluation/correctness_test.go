package evaluation

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	response string
	err      error
	calls    int
}

func (s *stubCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func materialBonus(materials string) float64 {
	return math.Min(float64(len(strings.Fields(materials)))/1000.0, 0.1)
}

func TestCorrectnessAgentScoring(t *testing.T) {
	completer := &stubCompleter{response: `{
		"summary": {"overall_judgment": "mostly_correct", "notes": "solid"},
		"claims": [
			{"claim": "water boils at 100C at sea level", "judgment": "Correct", "evidence": "boiling point section", "explanation": "matches source"},
			{"claim": "the mantle is liquid rock", "judgment": "Correct"},
			{"claim": "sound travels faster in air than water", "judgment": "Incorrect", "explanation": "source states the opposite"},
			{"claim": "the experiment was repeated twice", "judgment": "Unsupported"}
		],
		"digressions": [
			{"snippet": "anyway, about the football game", "why_digression": "unrelated to physics", "severity": "High"}
		]
	}`}

	evaluator := NewCorrectnessEvaluator(completer, zerolog.Nop())
	in := Input{
		Transcript:      "Water boils at 100C at sea level.",
		SourceMaterials: "Water boils at one hundred degrees Celsius at sea level pressure.",
	}
	result := evaluator.Evaluate(context.Background(), in)

	require.Equal(t, MethodAgent, result.Method)
	require.Len(t, result.Claims, 4)
	require.Equal(t, 2, result.Breakdown.CorrectCount)
	require.Equal(t, 1, result.Breakdown.IncorrectCount)
	require.Equal(t, 1, result.Breakdown.UnsupportedCount)
	require.Len(t, result.Digressions, 1)

	// weighted = 2*1.0 + 1*0.7 + 1*0.2 over 4 claims, minus one High digression.
	ratio := (2*1.0+0.7+0.2)/4.0 - 0.05
	expected := math.Min(ratio+materialBonus(in.SourceMaterials), 1.0) * 40.0
	require.InDelta(t, expected, result.Score, 1e-9)
}

func TestCorrectnessAgentFloor(t *testing.T) {
	claims := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		claims = append(claims, `{"claim": "wrong statement", "judgment": "Incorrect"}`)
	}
	completer := &stubCompleter{response: `{
		"claims": [` + strings.Join(claims, ",") + `],
		"digressions": [
			{"snippet": "a", "why_digression": "x", "severity": "High"},
			{"snippet": "b", "why_digression": "y", "severity": "High"},
			{"snippet": "c", "why_digression": "z", "severity": "Medium"}
		]
	}`}

	evaluator := NewCorrectnessEvaluator(completer, zerolog.Nop())
	in := Input{Transcript: "bad lecture", SourceMaterials: "the source"}
	result := evaluator.Evaluate(context.Background(), in)

	// ratio 0.2 minus 0.13 penalty drops below the 0.1 floor.
	require.InDelta(t, math.Max(0.1, 0.2-0.13), result.Breakdown.Ratio-result.Breakdown.MaterialBonus, 1e-9)
	require.GreaterOrEqual(t, result.Breakdown.Ratio, 0.1)
}

func TestCorrectnessEmptyClaimsGetsBenefitOfDoubt(t *testing.T) {
	completer := &stubCompleter{response: `{"summary": {"overall_judgment": "mixed", "notes": ""}, "claims": []}`}

	evaluator := NewCorrectnessEvaluator(completer, zerolog.Nop())
	in := Input{Transcript: "short remark", SourceMaterials: "reference text"}
	result := evaluator.Evaluate(context.Background(), in)

	require.Equal(t, MethodAgent, result.Method)
	expected := math.Min(0.7+materialBonus(in.SourceMaterials), 1.0) * 40.0
	require.InDelta(t, expected, result.Score, 1e-9)
}

func TestCorrectnessFailingCompleterFallsBackToKeywords(t *testing.T) {
	completer := &stubCompleter{err: errors.New("rate limited")}

	evaluator := NewCorrectnessEvaluator(completer, zerolog.Nop())
	in := Input{
		Transcript:      "alpha beta gamma",
		SourceMaterials: "alpha beta delta",
	}
	result := evaluator.Evaluate(context.Background(), in)

	require.Equal(t, MethodKeywordFallback, result.Method)
	// Both tiers call the completer before giving up.
	require.Equal(t, 2, completer.calls)

	// Jaccard: 2 shared words over a union of 4, plus the material bonus.
	expected := math.Min(0.5+materialBonus(in.SourceMaterials), 1.0) * 40.0
	require.InDelta(t, expected, result.Score, 1e-9)
}

func TestCorrectnessMalformedCompletionFallsBack(t *testing.T) {
	completer := &stubCompleter{response: "I cannot judge this lecture."}

	evaluator := NewCorrectnessEvaluator(completer, zerolog.Nop())
	result := evaluator.Evaluate(context.Background(), Input{
		Transcript:      "alpha beta",
		SourceMaterials: "alpha beta",
	})

	require.Equal(t, MethodKeywordFallback, result.Method)
}

func TestCorrectnessNoMaterialsIsNeutral(t *testing.T) {
	evaluator := NewCorrectnessEvaluator(nil, zerolog.Nop())
	result := evaluator.Evaluate(context.Background(), Input{Transcript: "a lecture with no references"})

	require.Equal(t, MethodKeywordFallback, result.Method)
	require.Equal(t, "No source materials for comparison", result.Note)
	require.InDelta(t, 0.6*40.0, result.Score, 1e-9)
}

func TestCorrectnessNilCompleterSkipsAITiers(t *testing.T) {
	evaluator := NewCorrectnessEvaluator(nil, zerolog.Nop())
	result := evaluator.Evaluate(context.Background(), Input{
		Transcript:      "alpha beta gamma",
		SourceMaterials: "alpha beta gamma",
	})

	require.Equal(t, MethodKeywordFallback, result.Method)
	// Identical word sets: Jaccard 1.0 capped at 1.0 after the bonus.
	require.InDelta(t, 40.0, result.Score, 1e-9)
}

func TestCorrectnessScoreBounds(t *testing.T) {
	evaluator := NewCorrectnessEvaluator(nil, zerolog.Nop())

	inputs := []Input{
		{},
		{Transcript: "x"},
		{Transcript: strings.Repeat("word ", 5000), SourceMaterials: strings.Repeat("word ", 5000)},
		{Transcript: "completely different", SourceMaterials: "nothing shared here at all"},
	}
	for _, in := range inputs {
		result := evaluator.Evaluate(context.Background(), in)
		require.GreaterOrEqual(t, result.Score, 0.0)
		require.LessOrEqual(t, result.Score, 40.0)
	}
}
