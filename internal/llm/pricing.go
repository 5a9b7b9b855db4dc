package llm

import (
	"regexp"
	"strings"
)

// Price is the USD cost per million tokens.
type Price struct {
	Input  float64
	Output float64
}

// Cost returns the USD cost of a request.
func (p Price) Cost(in, out int) float64 {
	return (float64(in)*p.Input + float64(out)*p.Output) / 1e6
}

// prices covers the models kioku defaults to or aliases.
var prices = map[string]Price{
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4-5": {3, 15},
	"claude-sonnet-4":   {3, 15},
	"claude-3-5-haiku":  {0.8, 4},
	"claude-opus-4-1":   {15, 75},

	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},
	"o4-mini":      {1.1, 4.4},

	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
}

// dated matches a release suffix such as "-20251001" or "-2024-08-06".
var dated = regexp.MustCompile(`-(\d{8}|\d{4}-\d{2}-\d{2}|latest)$`)

// LookupCost returns the price of model, or nil when it is unknown. Vendor
// prefixes used by OpenRouter ("openai/gpt-4o") and release suffixes are
// ignored, and "claude-haiku-4.5" also matches "claude-haiku-4-5".
func LookupCost(model string) *Price {
	if i := strings.LastIndexByte(model, '/'); i >= 0 {
		model = model[i+1:]
	}
	base := dated.ReplaceAllString(model, "")
	for _, name := range []string{model, base, strings.ReplaceAll(base, ".", "-")} {
		if p, ok := prices[name]; ok {
			return &p
		}
	}
	return nil
}
