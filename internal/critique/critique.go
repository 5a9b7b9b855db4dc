// Package critique produces feedback on a learner's recorded reasoning, for a
// single answer or for a whole day of answers. An LLM provider is optional:
// without one, or when a request fails, the analyzer returns a deterministic
// local critique so callers never have to handle an error.
package critique

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/kioku/internal/catalog"
	"github.com/abhisek/kioku/internal/llm"
)

// Source records where a critique came from.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
	SourceError    Source = "error"
)

// Critique is the feedback for one answered item.
type Critique struct {
	AccuracyScore     int      `json:"accuracy_score"`
	StrengthPoints    []string `json:"strength_points"`
	ImprovementPoints []string `json:"improvement_points"`
	CorrectApproach   string   `json:"correct_approach"`
	MistakeAnalysis   string   `json:"mistake_analysis"`
	PreventionTips    []string `json:"prevention_tips"`
	SimilarQuestions  string   `json:"similar_questions"`
	Source            Source   `json:"source"`
}

// DailyCritique is the aggregate feedback for one study day.
type DailyCritique struct {
	OverallScore           int       `json:"overall_score"`
	PerformanceSummary     string    `json:"performance_summary"`
	ThinkingPatterns       []string  `json:"thinking_patterns"`
	StrengthAreas          []string  `json:"strength_areas"`
	WeaknessAreas          []string  `json:"weakness_areas"`
	MistakeAnalysis        string    `json:"mistake_analysis"`
	ImprovementSuggestions []string  `json:"improvement_suggestions"`
	TomorrowFocus          string    `json:"tomorrow_focus"`
	StudyEfficiency        string    `json:"study_efficiency"`
	MotivationalMessage    string    `json:"motivational_message"`
	Stats                  Stats     `json:"sessionStats"`
	AnalyzedAt             time.Time `json:"analyzedAt"`
	Source                 Source    `json:"source"`
}

// Request is the input for a single-answer critique.
type Request struct {
	Item      catalog.Item
	Reasoning string
	Choice    string
	Correct   bool
}

// Outcome is one answered item of a study day.
type Outcome struct {
	ItemID       int
	Question     string
	Correct      bool
	Choice       string
	Reasoning    string
	ResponseTime time.Duration
}

// Config tunes LLM requests made by the Analyzer.
type Config struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1000,
		Temperature: 0.3,
		Timeout:     30 * time.Second,
	}
}

// Analyzer produces critiques, using an LLM provider when one is configured.
type Analyzer struct {
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// NewAnalyzer creates an Analyzer. A nil provider selects the local fallback
// for every request.
func NewAnalyzer(provider llm.Provider, cfg Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{provider: provider, cfg: cfg, logger: logger, now: time.Now}
}

// Enabled reports whether an LLM provider is configured.
func (a *Analyzer) Enabled() bool {
	return a.provider != nil
}

// Analyze critiques one answer. It always returns a critique.
func (a *Analyzer) Analyze(ctx context.Context, req Request) Critique {
	if a.provider == nil {
		return answerFallback(req.Correct)
	}

	msg, err := render(answerTemplate, req)
	if err == nil {
		var out Critique
		err = a.generate(llm.WithPurpose(ctx, llm.PurposeCritique), answerSystemPrompt, msg, CritiqueSchema, &out)
		if err == nil {
			out.AccuracyScore = clampScore(out.AccuracyScore)
			out.Source = SourceLLM
			return out
		}
	}

	a.logger.Warn("answer critique failed, using fallback", "item", req.Item.Number, "err", err)
	return errorFallback()
}

// AnalyzeDay critiques the outcomes recorded on day (YYYY-MM-DD). It always
// returns a critique; Stats is filled from outcomes.
func (a *Analyzer) AnalyzeDay(ctx context.Context, day string, outcomes []Outcome) DailyCritique {
	stats := DayStats(outcomes)

	var out DailyCritique
	switch {
	case a.provider == nil || stats.Total == 0:
		out = dailyFallback(stats, SourceFallback)
	default:
		msg, err := render(dailyTemplate, dailyInput{Day: day, Stats: stats, Outcomes: outcomes})
		if err == nil {
			err = a.generate(llm.WithPurpose(ctx, llm.PurposeDailyReport), dailySystemPrompt, msg, DailySchema, &out)
		}
		if err != nil {
			a.logger.Warn("daily critique failed, using fallback", "day", day, "err", err)
			out = dailyFallback(stats, SourceError)
		} else {
			out.OverallScore = clampScore(out.OverallScore)
			out.Source = SourceLLM
		}
	}

	out.Stats = stats
	out.AnalyzedAt = a.now()
	return out
}

func (a *Analyzer) generate(ctx context.Context, system, user string, schema *llm.Schema, dst any) error {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	resp, err := a.provider.Generate(ctx, llm.Request{
		System:      system,
		Prompt:      user,
		Schema:      schema,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return fmt.Errorf("LLM critique failed: %w", err)
	}
	if err := json.Unmarshal(resp.Content, dst); err != nil {
		return fmt.Errorf("failed to parse critique response: %w", err)
	}
	return nil
}

func clampScore(s int) int {
	return min(max(s, 0), 100)
}
