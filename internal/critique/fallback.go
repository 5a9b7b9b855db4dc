package critique

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Stats summarizes the outcomes of one study day.
type Stats struct {
	Total          int `json:"totalQuestions"`
	Correct        int `json:"correctAnswers"`
	Accuracy       int `json:"accuracy"`
	AverageSeconds int `json:"averageTime"`
	WithReasoning  int `json:"thinkingRecords"`
}

// DayStats computes day statistics. Accuracy is a whole percent and
// AverageSeconds is the rounded mean response time.
func DayStats(outcomes []Outcome) Stats {
	var s Stats
	var total time.Duration
	for _, o := range outcomes {
		s.Total++
		if o.Correct {
			s.Correct++
		}
		if strings.TrimSpace(o.Reasoning) != "" {
			s.WithReasoning++
		}
		total += o.ResponseTime
	}
	if s.Total == 0 {
		return s
	}
	s.Accuracy = int(math.Round(float64(s.Correct) / float64(s.Total) * 100))
	s.AverageSeconds = int(math.Round(total.Seconds() / float64(s.Total)))
	return s
}

func answerFallback(correct bool) Critique {
	if correct {
		return Critique{
			AccuracyScore: 85,
			StrengthPoints: []string{
				"You identified the key point of the question.",
				"Your conclusion follows from the legal basis you considered.",
				"Your reasoning stays consistent through to the answer.",
			},
			ImprovementPoints: []string{
				"Recall the specific statute or precedent behind the rule.",
				"Check whether another reading of the question changes the answer.",
			},
			CorrectApproach: "Find the keywords, recall the governing rule, apply it to the facts, then conclude.",
			MistakeAnalysis: "The answer is right. Making the reasoning more systematic will carry over to harder questions.",
			PreventionTips: []string{
				"Mark the conditions the question sets before answering.",
				"Ask why the rule applies until you reach its legal basis.",
				"Look for exceptions that would reverse the conclusion.",
			},
			SimilarQuestions: "Use this reasoning as a baseline for the same topic and watch for exceptions and special cases.",
			Source:           SourceFallback,
		}
	}
	return Critique{
		AccuracyScore: 45,
		StrengthPoints: []string{
			"You read the question through and tried to understand it.",
			"You gave your own reason for the answer.",
		},
		ImprovementPoints: []string{
			"Make sure you know exactly what each keyword means.",
			"Review the rules that govern this topic.",
			"Work through the conditions step by step before concluding.",
		},
		CorrectApproach: "Pin down the conditions stated in the question, recall the rule that governs them, then apply it.",
		MistakeAnalysis: "The direction was reasonable, but the underlying rule and the details of the question were not checked closely enough.",
		PreventionTips: []string{
			"Confirm the meaning of every keyword before answering.",
			"Treat unfamiliar terms as unknown instead of guessing.",
			"Use elimination to raise your confidence.",
			"Prefer accuracy over speed.",
		},
		SimilarQuestions: "Questions in this area depend on exact definitions. Review the basics before moving to applied questions.",
		Source:           SourceFallback,
	}
}

func errorFallback() Critique {
	return Critique{
		AccuracyScore:     50,
		StrengthPoints:    []string{"You are keeping a record of your reasoning."},
		ImprovementPoints: []string{"Analysis is temporarily unavailable."},
		CorrectApproach:   "Keep recording your reasoning and look for patterns.",
		MistakeAnalysis:   "This answer could not be analyzed now, but your record has been saved.",
		PreventionTips:    []string{"Keep a steady study log."},
		SimilarQuestions:  "Pay attention to your reasoning patterns on similar questions.",
		Source:            SourceError,
	}
}

func dailyFallback(s Stats, src Source) DailyCritique {
	out := DailyCritique{
		OverallScore:        s.Accuracy,
		PerformanceSummary:  fmt.Sprintf("You answered %d questions with %d correct (%d%%).", s.Total, s.Correct, s.Accuracy),
		MistakeAnalysis:     "Review the explanations of the questions you missed.",
		StudyEfficiency:     fmt.Sprintf("Average response time was %ds per question.", s.AverageSeconds),
		MotivationalMessage: "Every session adds up. Keep going.",
		Source:              src,
	}

	switch {
	case s.Total == 0:
		out.PerformanceSummary = "No answers were recorded on this day."
		out.TomorrowFocus = "Start with a short session of due reviews."
		return out
	case s.Accuracy >= 80:
		out.StrengthAreas = []string{"High accuracy across the day."}
		out.TomorrowFocus = "Move on to harder topics and keep reviews on schedule."
	case s.Accuracy >= 60:
		out.StrengthAreas = []string{"Solid accuracy on most questions."}
		out.WeaknessAreas = []string{"Several misses remain to review."}
		out.TomorrowFocus = "Review today's misses before starting new questions."
	default:
		out.WeaknessAreas = []string{"Accuracy is below the passing range."}
		out.TomorrowFocus = "Go back to the weakness list and study the explanations."
	}

	if s.WithReasoning < s.Total {
		out.ThinkingPatterns = append(out.ThinkingPatterns,
			fmt.Sprintf("Reasoning was recorded for %d of %d answers.", s.WithReasoning, s.Total))
		out.ImprovementSuggestions = append(out.ImprovementSuggestions,
			"Write down your reasoning for every answer so it can be reviewed.")
	}
	if s.AverageSeconds < 10 {
		out.ImprovementSuggestions = append(out.ImprovementSuggestions,
			"Slow down and read each condition before answering.")
	}
	return out
}
