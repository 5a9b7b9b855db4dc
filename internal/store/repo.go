package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by KV.Load when no entry exists for the key.
var ErrNotFound = errors.New("store: entry not found")

// Entry keys shared by the domain packages.
const (
	KeyReviewSchedule  = "reviewSchedule"
	KeyQuestionStats   = "questionStats"
	KeySessionProgress = "sessionProgress"
	KeyStatistics      = "statistics"
	KeyWeaknesses      = "weaknesses"
	KeyMemos           = "memos"
	KeyDailyReports    = "dailyReports"
)

// AllKeys lists every entry key written by kioku.
var AllKeys = []string{
	KeyReviewSchedule,
	KeyQuestionStats,
	KeySessionProgress,
	KeyStatistics,
	KeyWeaknesses,
	KeyMemos,
	KeyDailyReports,
}

// KV is the key-value entry store holding serialized learner state.
type KV interface {
	// Load returns the value stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save stores value under key, replacing any previous value.
	Save(ctx context.Context, key string, value []byte) error

	// Delete removes the entry for key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp < To
}

// AnswerEventData captures a single answered item.
type AnswerEventData struct {
	SessionID      string
	Mode           string
	ItemID         int
	Correct        bool
	Choice         string
	Reasoning      string
	ResponseTimeMs int64
}

// AnswerEventRecord is a stored answer event.
type AnswerEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	AnswerEventData
}

// SessionEventData records session lifecycle events (start/end).
type SessionEventData struct {
	SessionID       string
	Mode            string
	Action          string // "start" or "end"
	QuestionsServed int
	CorrectAnswers  int
	DurationSecs    int
}

// SessionEventRecord is a stored session event.
type SessionEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates LLM usage for one purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates LLM usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	QueryAnswerEvents(ctx context.Context, opts QueryOpts) ([]AnswerEventRecord, error)

	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)
	// GetLLMEvent returns the event with the given ID, or nil if none exists.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)
	// LLMUsageByPurpose returns token totals grouped by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)
	// LLMUsageByModel returns token totals grouped by model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}

// Backup is a point-in-time copy of every KV entry.
type Backup struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Entries   map[string][]byte
}

// BackupRepo manages learner state backups.
type BackupRepo interface {
	// Save stores a new backup.
	Save(ctx context.Context, b *Backup) error

	// Latest returns the most recent backup, or nil if none exist.
	Latest(ctx context.Context) (*Backup, error)

	// Prune deletes all but the N most recent backups.
	Prune(ctx context.Context, keep int) error
}
