package evaluation

import (
	"fmt"
	"strings"
)

// gradeFor maps a composite total to a letter grade.
func gradeFor(total float64) string {
	switch {
	case total >= 85:
		return "A"
	case total >= 75:
		return "B"
	case total >= 65:
		return "C"
	case total >= 55:
		return "D"
	default:
		return "F"
	}
}

// buildRecommendations turns component findings into actionable guidance for
// the lecturer, most significant findings first.
func buildRecommendations(total float64, correctness CorrectnessResult, engagement EngagementResult, topics TopicCoverageResult) []string {
	var recs []string

	recs = append(recs, correctnessRecommendations(correctness)...)
	recs = append(recs, engagementRecommendations(engagement)...)
	recs = append(recs, topicRecommendations(topics)...)

	switch {
	case total >= 85:
		recs = append(recs, "Excellent lecture overall - maintain this standard")
	case total >= 70:
		recs = append(recs, "Good lecture with specific areas to refine")
	default:
		recs = append(recs, "Lecture needs improvement across several dimensions")
	}

	return recs
}

func correctnessRecommendations(result CorrectnessResult) []string {
	var recs []string

	incorrect := 0
	for _, claim := range result.Claims {
		if claim.Judgment != JudgmentIncorrect {
			continue
		}
		if incorrect < 2 {
			recs = append(recs, fmt.Sprintf("Factual concern: '%s' - %s", truncate(claim.Claim, 100), claim.Explanation))
		}
		incorrect++
	}

	if result.Breakdown.UnsupportedCount > 2 {
		recs = append(recs, fmt.Sprintf("%d claims need supporting evidence - cite sources for factual statements", result.Breakdown.UnsupportedCount))
	}

	if result.Method == MethodKeywordFallback && result.Breakdown.Ratio < 0.3 {
		recs = append(recs, "Low alignment with source materials - incorporate more reference content")
	}

	return recs
}

func engagementRecommendations(result EngagementResult) []string {
	var recs []string
	metrics := result.Metrics

	switch {
	case metrics.StudentTalkRatio < 10:
		recs = append(recs, "Increase student talk time - aim for at least 10% student participation")
	case metrics.StudentTalkRatio > 25:
		recs = append(recs, "High student talk ratio - ensure discussions stay on track")
	}

	if metrics.TurnsPer10Min < 2 {
		recs = append(recs, "Add more interaction points - invite questions every few minutes")
	}

	if metrics.QuestionDistribution.Conceptual+metrics.QuestionDistribution.Clarification+metrics.QuestionDistribution.Procedural < 3 {
		recs = append(recs, "Encourage more student questions throughout the lecture")
	}

	return recs
}

func topicRecommendations(result TopicCoverageResult) []string {
	var recs []string

	var missing []string
	var shallow []string
	for _, topic := range result.PerTopic {
		switch {
		case topic.CoverageStatus == CoverageNotCovered:
			missing = append(missing, topic.Topic)
		case topic.DepthScore > 0 && topic.DepthScore <= 0.3:
			shallow = append(shallow, topic.Topic)
		}
	}

	if len(missing) > 0 {
		if len(missing) > 3 {
			missing = missing[:3]
		}
		recs = append(recs, "Address missing topics: "+strings.Join(missing, ", "))
	}

	if len(shallow) > 0 {
		if len(shallow) > 2 {
			shallow = shallow[:2]
		}
		recs = append(recs, "Cover these topics in more depth: "+strings.Join(shallow, ", "))
	}

	return recs
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
