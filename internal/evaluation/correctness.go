package evaluation

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edulens/edulens-api/pkg/ai"
)

// Claim weights for the claim-audit tier. Unsupported claims are penalised
// less than incorrect ones.
const (
	agentWeightCorrect     = 1.0
	agentWeightUnsupported = 0.7
	agentWeightIncorrect   = 0.2

	directWeightCorrect     = 1.0
	directWeightUnsupported = 0.5
	directWeightIncorrect   = 0.0

	// Ratio assigned when a completion yields zero claims. Benefit of the
	// doubt, not a failure.
	emptyClaimsRatio = 0.7

	correctnessMax = 40.0
)

const claimAuditInstructions = `You compare a lecture transcript against an authoritative source text.
Your job:
1) Clean the transcript if needed (remove ums, ahs, false starts).
2) Extract all relevant factual claims from the transcript as concise sentences. Do not consider sarcasm or humor.
3) For each claim, judge: Correct, Incorrect, or Unsupported, based solely on the source text.
   - Correct: supported by the source text.
   - Incorrect: contradicted by the source text.
   - Unsupported: not verifiable from the source text.
4) Identify digressions: portions of the transcript that veer substantially from the source topic, each with severity Low, Medium or High.
5) Return a strict JSON object with the schema below. Do not include extra commentary outside JSON.

Output JSON schema:
{
  "summary": {"overall_judgment": "mostly_correct | mixed | mostly_incorrect", "notes": "short summary of findings"},
  "claims": [{"claim": "string", "judgment": "Correct | Incorrect | Unsupported", "evidence": "quote or section from source text (if applicable)", "explanation": "brief reasoning"}],
  "digressions": [{"snippet": "transcript excerpt", "why_digression": "reason it's off-topic", "severity": "Low | Medium | High"}]
}`

var claimSchema = ai.MustSchema("claim_audit.json", `{
	"type": "object",
	"required": ["claims"],
	"properties": {
		"claims": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["claim", "judgment"],
				"properties": {
					"claim": {"type": "string"},
					"judgment": {"type": "string"},
					"evidence": {"type": "string"},
					"explanation": {"type": "string"}
				}
			}
		},
		"digressions": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"snippet": {"type": "string"},
					"why_digression": {"type": "string"},
					"severity": {"type": "string"}
				}
			}
		}
	}
}`)

type claimPayload struct {
	Summary struct {
		OverallJudgment string `json:"overall_judgment"`
		Notes           string `json:"notes"`
	} `json:"summary"`
	Claims []struct {
		Claim       string `json:"claim"`
		Judgment    string `json:"judgment"`
		Evidence    string `json:"evidence"`
		Explanation string `json:"explanation"`
	} `json:"claims"`
	Digressions []struct {
		Snippet  string `json:"snippet"`
		Reason   string `json:"why_digression"`
		Severity string `json:"severity"`
	} `json:"digressions"`
}

// CorrectnessEvaluator judges transcript claims against supplied source
// materials. Evaluate never returns an error: every failure routes to a
// cheaper tier and the chosen tier is recorded on the result.
type CorrectnessEvaluator struct {
	completer ai.Completer
	logger    zerolog.Logger
}

// NewCorrectnessEvaluator builds the evaluator. A nil completer limits it to
// the deterministic tiers.
func NewCorrectnessEvaluator(completer ai.Completer, logger zerolog.Logger) *CorrectnessEvaluator {
	return &CorrectnessEvaluator{
		completer: completer,
		logger:    logger.With().Str("component", "correctness_evaluator").Logger(),
	}
}

// Evaluate produces a correctness score on the native 40-point scale.
func (e *CorrectnessEvaluator) Evaluate(ctx context.Context, in Input) (result CorrectnessResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("correctness evaluation panicked")
			result = e.densityFallback(in, fmt.Sprintf("%v", r))
		}
	}()

	hasMaterials := strings.TrimSpace(in.SourceMaterials) != ""

	if e.completer != nil && hasMaterials {
		if res, err := e.auditClaims(ctx, in); err == nil {
			return res
		} else {
			e.logger.Warn().Err(err).Msg("claim audit failed, trying direct check")
		}

		if res, err := e.directCheck(ctx, in); err == nil {
			return res
		} else {
			e.logger.Warn().Err(err).Msg("direct check failed, using keyword fallback")
		}
	}

	return e.keywordFallback(in)
}

// auditClaims is the preferred tier: a system-instructed claim extraction and
// judgment pass with forgiving scoring weights.
func (e *CorrectnessEvaluator) auditClaims(ctx context.Context, in Input) (CorrectnessResult, error) {
	prompt := fmt.Sprintf("TRANSCRIPT:\n%s\n\nSOURCE MATERIALS:\n%s\n\nPlease analyze the transcript against the source materials and provide your assessment in the required JSON format.", in.Transcript, in.SourceMaterials)

	raw, err := e.completer.Complete(ctx, claimAuditInstructions, prompt)
	if err != nil {
		return CorrectnessResult{}, err
	}

	var payload claimPayload
	if err := ai.ExtractValidatedJSON(raw, claimSchema, &payload); err != nil {
		return CorrectnessResult{}, err
	}

	result := resultFromPayload(payload, MethodAgent)

	if result.Breakdown.TotalClaims == 0 {
		result.Breakdown.Ratio = emptyClaimsRatio
	} else {
		weighted := float64(result.Breakdown.CorrectCount)*agentWeightCorrect +
			float64(result.Breakdown.UnsupportedCount)*agentWeightUnsupported +
			float64(result.Breakdown.IncorrectCount)*agentWeightIncorrect
		ratio := weighted / float64(result.Breakdown.TotalClaims)

		penalty := 0.0
		for _, digression := range result.Digressions {
			switch digression.Severity {
			case SeverityHigh:
				penalty += 0.05
			case SeverityMedium:
				penalty += 0.03
			default:
				penalty += 0.01
			}
		}
		result.Breakdown.DigressionPenalty = penalty
		result.Breakdown.Ratio = math.Max(0.1, ratio-penalty)
	}

	e.finalize(&result, in)
	return result, nil
}

// directCheck is the single-shot fallback tier with stricter scoring.
func (e *CorrectnessEvaluator) directCheck(ctx context.Context, in Input) (CorrectnessResult, error) {
	prompt := fmt.Sprintf(`You are an expert fact-checker. Compare this lecture transcript against the provided source materials.

TRANSCRIPT:
%s

SOURCE MATERIALS:
%s

Extract the key factual claims and judge each as Correct (supported by the source text), Incorrect (contradicted by the source text) or Unsupported (not verifiable from the source text). Also list digressions with severity Low, Medium or High.

Return only a valid JSON object with this schema:
{"summary": {"overall_judgment": "mostly_correct | mixed | mostly_incorrect", "notes": "string"}, "claims": [{"claim": "string", "judgment": "Correct | Incorrect | Unsupported", "evidence": "string", "explanation": "string"}], "digressions": [{"snippet": "string", "why_digression": "string", "severity": "Low | Medium | High"}]}`, in.Transcript, in.SourceMaterials)

	raw, err := e.completer.Complete(ctx, "", prompt)
	if err != nil {
		return CorrectnessResult{}, err
	}

	var payload claimPayload
	if err := ai.ExtractValidatedJSON(raw, claimSchema, &payload); err != nil {
		return CorrectnessResult{}, err
	}

	result := resultFromPayload(payload, MethodOpenAIDirect)

	if result.Breakdown.TotalClaims == 0 {
		result.Breakdown.Ratio = emptyClaimsRatio
	} else {
		weighted := float64(result.Breakdown.CorrectCount)*directWeightCorrect +
			float64(result.Breakdown.UnsupportedCount)*directWeightUnsupported +
			float64(result.Breakdown.IncorrectCount)*directWeightIncorrect
		ratio := weighted / float64(result.Breakdown.TotalClaims)

		penalty := float64(len(result.Digressions)) * 0.05
		result.Breakdown.DigressionPenalty = penalty
		result.Breakdown.Ratio = math.Max(0.0, ratio-penalty)
	}

	e.finalize(&result, in)
	return result, nil
}

// keywordFallback scores by Jaccard similarity of lower-cased word sets. With
// no materials at all it returns a neutral ratio instead of failing.
func (e *CorrectnessEvaluator) keywordFallback(in Input) CorrectnessResult {
	result := CorrectnessResult{Method: MethodKeywordFallback}

	if strings.TrimSpace(in.SourceMaterials) == "" {
		result.Note = "No source materials for comparison"
		result.Breakdown.Ratio = 0.6
		result.Score = result.Breakdown.Ratio * correctnessMax
		return result
	}

	transcriptWords := wordSet(in.Transcript)
	sourceWords := wordSet(in.SourceMaterials)

	intersection := 0
	for word := range transcriptWords {
		if _, ok := sourceWords[word]; ok {
			intersection++
		}
	}
	union := len(transcriptWords) + len(sourceWords) - intersection

	if union == 0 {
		result.Breakdown.Ratio = 0.5
	} else {
		result.Breakdown.Ratio = float64(intersection) / float64(union)
	}

	e.finalize(&result, in)
	return result
}

// densityFallback is the last line of defense, used only when a tier panics:
// assume roughly ten words per minute of substantive content.
func (e *CorrectnessEvaluator) densityFallback(in Input, note string) CorrectnessResult {
	result := CorrectnessResult{Method: MethodDensityFallback, Note: note}

	wordCount := len(strings.Fields(in.Transcript))
	if in.DurationMinutes > 0 {
		result.Breakdown.Ratio = math.Min(float64(wordCount)/float64(in.DurationMinutes*10), 1.0)
	} else {
		result.Breakdown.Ratio = 0.5
	}

	e.finalize(&result, in)
	return result
}

// finalize applies the material bonus, caps the ratio and scales to the
// native 40-point range.
func (e *CorrectnessEvaluator) finalize(result *CorrectnessResult, in Input) {
	if strings.TrimSpace(in.SourceMaterials) != "" {
		bonus := math.Min(float64(len(strings.Fields(in.SourceMaterials)))/1000.0, 0.1)
		result.Breakdown.MaterialBonus = bonus
		result.Breakdown.Ratio = math.Min(result.Breakdown.Ratio+bonus, 1.0)
	}

	result.Score = result.Breakdown.Ratio * correctnessMax
}

func resultFromPayload(payload claimPayload, method string) CorrectnessResult {
	result := CorrectnessResult{Method: method}

	for _, claim := range payload.Claims {
		judgment := ClaimJudgment{
			Claim:       claim.Claim,
			Judgment:    claim.Judgment,
			Evidence:    claim.Evidence,
			Explanation: claim.Explanation,
		}
		result.Claims = append(result.Claims, judgment)

		switch claim.Judgment {
		case JudgmentCorrect:
			result.Breakdown.CorrectCount++
		case JudgmentIncorrect:
			result.Breakdown.IncorrectCount++
		default:
			result.Breakdown.UnsupportedCount++
		}
	}
	result.Breakdown.TotalClaims = len(payload.Claims)

	for _, digression := range payload.Digressions {
		result.Digressions = append(result.Digressions, Digression{
			Snippet:  digression.Snippet,
			Reason:   digression.Reason,
			Severity: digression.Severity,
		})
	}

	return result
}

func wordSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}
