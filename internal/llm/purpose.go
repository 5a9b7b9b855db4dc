package llm

import "context"

// Purpose tags a request in the event log.
type Purpose string

const (
	PurposeCritique    Purpose = "critique"
	PurposeDailyReport Purpose = "daily-report"
)

type purposeKey struct{}

// WithPurpose returns ctx tagged with p.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the tag set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok {
		return p
	}
	return "unknown"
}
