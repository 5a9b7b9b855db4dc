package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "kioku.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"kv_entries", "answer_events", "session_events", "llm_request_events", "backups", "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestKVRoundTrip(t *testing.T) {
	s := openTestStore(t)
	kv := s.KV()
	ctx := context.Background()

	if _, err := kv.Load(ctx, KeyStatistics); !errors.Is(err, ErrNotFound) {
		t.Fatalf("load missing = %v, want ErrNotFound", err)
	}

	if err := kv.Save(ctx, KeyStatistics, []byte(`{"totalQuestions":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := kv.Save(ctx, KeyStatistics, []byte(`{"totalQuestions":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := kv.Load(ctx, KeyStatistics)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"totalQuestions":2}` {
		t.Errorf("value = %s, want overwritten value", got)
	}

	if err := kv.Delete(ctx, KeyStatistics); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := kv.Load(ctx, KeyStatistics); !errors.Is(err, ErrNotFound) {
		t.Errorf("load after delete = %v, want ErrNotFound", err)
	}
	if err := kv.Delete(ctx, KeyStatistics); err != nil {
		t.Errorf("delete missing key: %v", err)
	}
}

func TestMemoryKVCopiesValues(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	buf := []byte(`[1]`)
	if err := kv.Save(ctx, KeyMemos, buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	buf[1] = '2'

	got, _ := kv.Load(ctx, KeyMemos)
	if string(got) != `[1]` {
		t.Errorf("value = %s, want [1]", got)
	}
	if kv.Len() != 1 {
		t.Errorf("len = %d, want 1", kv.Len())
	}
}

func TestBackupSaveAndLatest(t *testing.T) {
	s := openTestStore(t)
	repo := s.BackupRepo()
	ctx := context.Background()

	b, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest (empty): %v", err)
	}
	if b != nil {
		t.Fatal("expected nil backup when none exist")
	}

	saved := &Backup{
		Sequence:  42,
		Timestamp: time.Now(),
		Entries: map[string][]byte{
			KeyWeaknesses: []byte(`[3,5]`),
		},
	}
	if err := repo.Save(ctx, saved); err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == 0 {
		t.Error("Save did not assign an ID")
	}

	b, err = repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if b == nil {
		t.Fatal("expected non-nil backup")
	}
	if b.Sequence != 42 {
		t.Errorf("sequence = %d, want 42", b.Sequence)
	}
	if b.ID != saved.ID {
		t.Errorf("id = %d, want %d", b.ID, saved.ID)
	}
	if string(b.Entries[KeyWeaknesses]) != `[3,5]` {
		t.Errorf("weaknesses = %s, want [3,5]", b.Entries[KeyWeaknesses])
	}
}

func TestBackupRejectsInvalidJSON(t *testing.T) {
	s := openTestStore(t)
	err := s.BackupRepo().Save(context.Background(), &Backup{
		Entries: map[string][]byte{KeyMemos: []byte("{")},
	})
	if err == nil {
		t.Fatal("expected error for invalid entry")
	}
}

func TestBackupPrune(t *testing.T) {
	s := openTestStore(t)
	repo := s.BackupRepo()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		err := repo.Save(ctx, &Backup{
			Sequence: int64(i + 1),
			Entries:  map[string][]byte{},
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	if err := repo.Prune(ctx, 5); err != nil {
		t.Fatalf("prune: %v", err)
	}

	var count int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM backups").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 5 {
		t.Errorf("remaining backups = %d, want 5", count)
	}

	b, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if b.Sequence != 7 {
		t.Errorf("latest sequence = %d, want 7", b.Sequence)
	}
}

func TestBackupPruneWithFewerThanKeep(t *testing.T) {
	s := openTestStore(t)
	repo := s.BackupRepo()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := repo.Save(ctx, &Backup{Sequence: int64(i + 1)}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	if err := repo.Prune(ctx, 5); err != nil {
		t.Fatalf("prune: %v", err)
	}

	var count int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM backups").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("remaining backups = %d, want 2", count)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSequenceCounter(s.DB())
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if want := int64(i + 1); seq != want {
			t.Errorf("seq[%d] = %d, want %d", i, seq, want)
		}
	}
}

func TestEventsShareSequence(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s1", Mode: "all", Action: "start"}); err != nil {
		t.Fatalf("append session start: %v", err)
	}
	if err := repo.AppendAnswerEvent(ctx, AnswerEventData{SessionID: "s1", Mode: "all", ItemID: 7, Correct: true, Choice: "2", ResponseTimeMs: 1500}); err != nil {
		t.Fatalf("append answer: %v", err)
	}
	if err := repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s1", Mode: "all", Action: "end", QuestionsServed: 1, CorrectAnswers: 1}); err != nil {
		t.Fatalf("append session end: %v", err)
	}

	answers, err := repo.QueryAnswerEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query answers: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("answers = %d, want 1", len(answers))
	}
	a := answers[0]
	if a.Sequence != 2 {
		t.Errorf("answer sequence = %d, want 2", a.Sequence)
	}
	if a.ItemID != 7 || !a.Correct || a.Choice != "2" || a.ResponseTimeMs != 1500 {
		t.Errorf("answer = %+v", a.AnswerEventData)
	}

	sessions, err := repo.QuerySessionEvents(ctx, QueryOpts{After: 1})
	if err != nil {
		t.Fatalf("query sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Action != "end" {
		t.Fatalf("sessions after 1 = %+v, want only end", sessions)
	}
	if sessions[0].CorrectAnswers != 1 {
		t.Errorf("correct answers = %d, want 1", sessions[0].CorrectAnswers)
	}
}

func TestQueryAnswerEventsTimeRange(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.AppendAnswerEvent(ctx, AnswerEventData{SessionID: "s", Mode: "all", ItemID: i + 1}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	now := time.Now()
	got, err := repo.QueryAnswerEvents(ctx, QueryOpts{From: now.Add(-time.Hour), To: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("in range = %d, want 3", len(got))
	}

	got, err = repo.QueryAnswerEvents(ctx, QueryOpts{From: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("query future: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("future range = %d, want 0", len(got))
	}

	got, err = repo.QueryAnswerEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query limit: %v", err)
	}
	if len(got) != 2 || got[0].ItemID != 1 {
		t.Errorf("limited = %+v, want first two in order", got)
	}
}

func TestLLMEventLookup(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	missing, err := repo.GetLLMEvent(ctx, 99)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing event")
	}

	err = repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider:     "mock",
		Model:        "mock-model",
		Purpose:      "critique",
		InputTokens:  10,
		OutputTokens: 20,
		LatencyMs:    5,
		Success:      true,
		RequestBody:  "prompt",
		ResponseBody: "{}",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}

	ev, err := repo.GetLLMEvent(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ev == nil || ev.Purpose != "critique" || !ev.Success || ev.OutputTokens != 20 {
		t.Errorf("event = %+v", ev)
	}
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, e := range []LLMRequestEventData{
		{Provider: "mock", Model: "m1", Purpose: "critique", InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: true},
		{Provider: "mock", Model: "m1", Purpose: "critique", InputTokens: 30, OutputTokens: 15, LatencyMs: 300, Success: true},
		{Provider: "mock", Model: "m2", Purpose: "daily-report", InputTokens: 50, OutputTokens: 40, LatencyMs: 50, Success: false},
	} {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("purposes = %d, want 2", len(byPurpose))
	}
	c := byPurpose[0]
	if c.Purpose != "critique" || c.Calls != 2 || c.InputTokens != 40 || c.OutputTokens != 20 || c.AvgLatencyMs != 200 {
		t.Errorf("critique usage = %+v", c)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[1].Model != "m2" || byModel[1].Calls != 1 || byModel[1].InputTokens != 50 {
		t.Errorf("model usage = %+v", byModel)
	}
}
