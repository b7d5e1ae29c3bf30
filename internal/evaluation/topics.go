package evaluation

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edulens/edulens-api/pkg/ai"
)

const (
	topicCoverageMax    = 10.0
	topicCoverageWeight = 7.0
	topicDepthWeight    = 3.0
	topicNeutralScore   = 5.0
)

var topicSchema = ai.MustSchema("topic_analysis.json", `{
	"type": "object",
	"required": ["overall_analysis", "topic_analysis"],
	"properties": {
		"overall_analysis": {
			"type": "object",
			"required": ["coverage_score", "depth_score"],
			"properties": {
				"coverage_score": {"type": "number"},
				"depth_score": {"type": "number"},
				"summary": {"type": "string"}
			}
		},
		"topic_analysis": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["topic"],
				"properties": {
					"topic": {"type": "string"},
					"coverage_status": {"type": "string"},
					"coverage_score": {"type": "number"},
					"depth_score": {"type": "number"},
					"explanation": {"type": "string"},
					"suggestions": {"type": "string"}
				}
			}
		}
	}
}`)

type topicPayload struct {
	OverallAnalysis struct {
		CoverageScore float64 `json:"coverage_score"`
		DepthScore    float64 `json:"depth_score"`
		Summary       string  `json:"summary"`
	} `json:"overall_analysis"`
	TopicAnalysis []struct {
		Topic          string  `json:"topic"`
		CoverageStatus string  `json:"coverage_status"`
		CoverageScore  float64 `json:"coverage_score"`
		DepthScore     float64 `json:"depth_score"`
		Explanation    string  `json:"explanation"`
		Suggestions    string  `json:"suggestions"`
	} `json:"topic_analysis"`
}

// TopicEvaluator judges whether the expected topics were actually taught. It
// prefers an AI analysis of the combined content and degrades to string
// matching against the same content.
type TopicEvaluator struct {
	completer ai.Completer
	logger    zerolog.Logger
}

// NewTopicEvaluator builds the evaluator. A nil completer limits it to the
// string-matching tier.
func NewTopicEvaluator(completer ai.Completer, logger zerolog.Logger) *TopicEvaluator {
	return &TopicEvaluator{
		completer: completer,
		logger:    logger.With().Str("component", "topic_evaluator").Logger(),
	}
}

// Evaluate produces a topic coverage score on the native 10-point scale. A
// lecture with no expected topics scores a neutral midpoint rather than zero.
// Evaluate never panics across its boundary: unexpected failures degrade to
// the neutral midpoint with the failure recorded on the result.
func (e *TopicEvaluator) Evaluate(ctx context.Context, in Input) (result TopicCoverageResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("topic evaluation panicked")
			result = TopicCoverageResult{
				Score:  topicNeutralScore,
				Method: MethodTopicFallback,
				Note:   fmt.Sprintf("%v", r),
			}
		}
	}()

	if len(in.Topics) == 0 {
		return TopicCoverageResult{
			Score:  topicNeutralScore,
			Method: MethodNoTopics,
			Note:   "No topics specified for evaluation",
		}
	}

	content := CombineContent(in)

	if e.completer != nil {
		if result, err := e.aiAnalysis(ctx, in.Topics, content); err == nil {
			return result
		} else {
			e.logger.Warn().Err(err).Msg("AI topic analysis failed, using string matching")
		}
	}

	return e.stringMatchFallback(in.Topics, content)
}

func (e *TopicEvaluator) aiAnalysis(ctx context.Context, topics []string, content string) (TopicCoverageResult, error) {
	prompt := fmt.Sprintf(`You are an expert educational content analyst. Analyze how well this lecture content covers the specified topics.

EXPECTED TOPICS: %s

LECTURE CONTENT:
%s

Analyze the content and return a JSON assessment with this exact schema:
{
  "overall_analysis": {
    "coverage_score": 0.0,
    "depth_score": 0.0,
    "summary": "Brief overall assessment"
  },
  "topic_analysis": [
    {
      "topic": "topic name",
      "coverage_status": "well_covered | partially_covered | mentioned | not_covered",
      "coverage_score": 0.0,
      "depth_score": 0.0,
      "explanation": "detailed analysis of how well this topic is covered",
      "suggestions": "recommendations for improvement"
    }
  ]
}

Scoring Guidelines:
- coverage_score: 0.0-1.0 based on how much of the topic is addressed
- depth_score: 0.0-1.0 based on how thoroughly the topic is explained
- overall scores should be averages of individual topic scores

Return only valid JSON.`, strings.Join(topics, ", "), content)

	raw, err := e.completer.Complete(ctx, "", prompt)
	if err != nil {
		return TopicCoverageResult{}, err
	}

	var payload topicPayload
	if err := ai.ExtractValidatedJSON(raw, topicSchema, &payload); err != nil {
		return TopicCoverageResult{}, err
	}

	result := TopicCoverageResult{
		Method: MethodOpenAIEnhanced,
		Overall: TopicOverall{
			CoverageScore: payload.OverallAnalysis.CoverageScore,
			DepthScore:    payload.OverallAnalysis.DepthScore,
		},
		Note: payload.OverallAnalysis.Summary,
	}

	for _, topic := range payload.TopicAnalysis {
		result.PerTopic = append(result.PerTopic, TopicAssessment{
			Topic:          topic.Topic,
			CoverageStatus: topic.CoverageStatus,
			CoverageScore:  topic.CoverageScore,
			DepthScore:     topic.DepthScore,
			Explanation:    topic.Explanation,
			Suggestions:    topic.Suggestions,
		})
	}

	result.Score = math.Min(
		result.Overall.CoverageScore*topicCoverageWeight+result.Overall.DepthScore*topicDepthWeight,
		topicCoverageMax,
	)
	return result, nil
}

// stringMatchFallback checks each topic against the combined content. A topic
// matches on an exact lower-cased substring, or for multi-word topics when at
// least half its words appear. Depth comes from mention counts and the context
// windows around them.
func (e *TopicEvaluator) stringMatchFallback(topics []string, content string) TopicCoverageResult {
	result := TopicCoverageResult{Method: MethodTopicFallback}
	contentLower := strings.ToLower(content)

	for _, topic := range topics {
		topicLower := strings.ToLower(topic)

		matched := strings.Contains(contentLower, topicLower)
		if !matched {
			words := strings.Fields(topicLower)
			if len(words) > 1 {
				hits := 0
				for _, word := range words {
					if strings.Contains(contentLower, word) {
						hits++
					}
				}
				matched = float64(hits) >= float64(len(words))*0.5
			}
		}

		assessment := TopicAssessment{Topic: topic}
		if matched {
			depth := topicDepth(contentLower, topicLower)
			assessment.CoverageScore = 0.8
			assessment.DepthScore = depth
			if depth > 0.6 {
				assessment.CoverageStatus = CoverageWellCovered
			} else {
				assessment.CoverageStatus = CoveragePartiallyCovered
			}
		} else {
			assessment.CoverageStatus = CoverageNotCovered
		}
		result.PerTopic = append(result.PerTopic, assessment)
	}

	var coverageSum, depthSum float64
	for _, assessment := range result.PerTopic {
		coverageSum += assessment.CoverageScore
		depthSum += assessment.DepthScore
	}
	count := float64(len(result.PerTopic))
	result.Overall = TopicOverall{
		CoverageScore: coverageSum / count,
		DepthScore:    depthSum / count,
	}

	result.Score = math.Min(
		result.Overall.CoverageScore*topicCoverageWeight+result.Overall.DepthScore*topicDepthWeight,
		topicCoverageMax,
	)
	return result
}

// topicDepth estimates how thoroughly a topic is discussed from its exact
// mention count and the 25-words-each-side windows around each mention,
// normalised to 0..1. All offsets are taken against the lower-cased content:
// lowering can change the byte length of some characters, so positions found
// in it are not valid indexes into the original string.
func topicDepth(contentLower, topicLower string) float64 {
	occurrences := strings.Count(contentLower, topicLower)
	if occurrences == 0 {
		return 0
	}

	words := strings.Fields(contentLower)
	var contextTotal int
	var contexts int

	start := 0
	for {
		pos := strings.Index(contentLower[start:], topicLower)
		if pos == -1 {
			break
		}
		pos += start

		wordPos := len(strings.Fields(contentLower[:pos]))
		lo := wordPos - 25
		if lo < 0 {
			lo = 0
		}
		hi := wordPos + 25
		if hi > len(words) {
			hi = len(words)
		}
		contextTotal += hi - lo
		contexts++

		start = pos + len(topicLower)
	}

	avgContext := float64(contextTotal) / float64(contexts)
	raw := math.Min(float64(occurrences)*0.3+avgContext*0.02, 5.0)
	return raw / 5.0
}
