package critique

import (
	"bytes"
	"text/template"

	"github.com/abhisek/kioku/internal/llm"
)

func stringList(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": desc,
	}
}

func text(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func score(desc string) map[string]any {
	return map[string]any{"type": "integer", "minimum": 0, "maximum": 100, "description": desc}
}

// CritiqueSchema defines the JSON schema for single-answer critiques.
var CritiqueSchema = &llm.Schema{
	Name:        "answer-critique",
	Description: "Feedback on the reasoning behind one exam answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"accuracy_score":     score("How sound the recorded reasoning is, 0-100"),
			"strength_points":    stringList("What the learner did well"),
			"improvement_points": stringList("What the learner should improve"),
			"correct_approach":   text("The reasoning steps that lead to the right answer"),
			"mistake_analysis":   text("Why the learner went wrong, or what could still go wrong"),
			"prevention_tips":    stringList("Habits that avoid this kind of mistake"),
			"similar_questions":  text("How to approach similar questions"),
		},
		"required": []any{
			"accuracy_score", "strength_points", "improvement_points",
			"correct_approach", "mistake_analysis", "prevention_tips", "similar_questions",
		},
		"additionalProperties": false,
	},
}

// DailySchema defines the JSON schema for daily critiques.
var DailySchema = &llm.Schema{
	Name:        "daily-report",
	Description: "Feedback on one day of exam practice",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overall_score":           score("Overall quality of the day's study, 0-100"),
			"performance_summary":     text("Two or three sentences summarizing the day"),
			"thinking_patterns":       stringList("Recurring patterns in the recorded reasoning"),
			"strength_areas":          stringList("Topics or habits that went well"),
			"weakness_areas":          stringList("Topics or habits that need work"),
			"mistake_analysis":        text("Common causes behind the day's mistakes"),
			"improvement_suggestions": stringList("Concrete suggestions for the next sessions"),
			"tomorrow_focus":          text("What to focus on tomorrow"),
			"study_efficiency":        text("Assessment of pace and time use"),
			"motivational_message":    text("A short encouraging message"),
		},
		"required": []any{
			"overall_score", "performance_summary", "thinking_patterns", "strength_areas",
			"weakness_areas", "mistake_analysis", "improvement_suggestions",
			"tomorrow_focus", "study_efficiency", "motivational_message",
		},
		"additionalProperties": false,
	},
}

const answerSystemPrompt = `You are a study coach for a real-estate licensing exam. A learner answered a true/false question and wrote down how they reasoned about it. Analyze the reasoning and give feedback that helps them learn.

Instructions:
- Judge the reasoning, not only the final answer. A correct answer reached by a guess deserves a low accuracy_score.
- Keep each list to at most four short items.
- Refer to the explanation when describing the correct approach.`

const dailySystemPrompt = `You are a study coach for a real-estate licensing exam. Review one day of practice answers, including the learner's recorded reasoning and response times, and write a daily report.

Instructions:
- Base the report on the answers provided. Do not invent questions.
- Keep each list to at most four short items.
- Keep the motivational message to one sentence.`

var answerTemplate = template.Must(template.New("answer").Parse(`Year: {{.Item.Year}}
Question: {{.Item.Question}}
Correct answer: {{.Item.Result}}
Explanation: {{.Item.Explanation}}

Learner's reasoning: {{if .Reasoning}}{{.Reasoning}}{{else}}(none recorded){{end}}
Learner's answer: {{.Choice}}
Result: {{if .Correct}}correct{{else}}incorrect{{end}}`))

type dailyInput struct {
	Day      string
	Stats    Stats
	Outcomes []Outcome
}

var dailyTemplate = template.Must(template.New("daily").Parse(`Day: {{.Day}}
Questions answered: {{.Stats.Total}}
Correct: {{.Stats.Correct}} ({{.Stats.Accuracy}}%)
Average response time: {{.Stats.AverageSeconds}}s
Answers with recorded reasoning: {{.Stats.WithReasoning}}

Answers:
{{range .Outcomes}}- #{{.ItemID}} {{if .Correct}}correct{{else}}incorrect{{end}} ({{.ResponseTime}}): {{.Question}}
{{if .Reasoning}}  reasoning: {{.Reasoning}}
{{end}}{{end}}`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
