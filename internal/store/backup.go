package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// backupRepo implements BackupRepo on the backups table.
type backupRepo struct {
	db *sql.DB
}

func (r *backupRepo) Save(ctx context.Context, b *Backup) error {
	data, err := encodeEntries(b.Entries)
	if err != nil {
		return fmt.Errorf("marshal backup data: %w", err)
	}

	ts := b.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query, args := sqlite().
		Insert("backups").
		Columns("sequence", "timestamp", "data").
		Values(b.Sequence, ts.UnixMilli(), data).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save backup: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		b.ID = int(id)
	}
	b.Timestamp = ts
	return nil
}

func (r *backupRepo) Latest(ctx context.Context) (*Backup, error) {
	query, args := sqlite().
		Select("id", "sequence", "timestamp", "data").
		From(entsql.Table("backups")).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Query()

	var (
		b    Backup
		ts   int64
		data string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.Sequence, &ts, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest backup: %w", err)
	}

	b.Timestamp = time.UnixMilli(ts)
	if b.Entries, err = decodeEntries(data); err != nil {
		return nil, fmt.Errorf("unmarshal backup data: %w", err)
	}
	return &b, nil
}

func (r *backupRepo) Prune(ctx context.Context, keep int) error {
	// Find the ID threshold: the newest backup beyond the ones we keep.
	query, args := sqlite().
		Select("id").
		From(entsql.Table("backups")).
		OrderBy(entsql.Desc("id")).
		Offset(keep).
		Limit(1).
		Query()

	var threshold int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&threshold); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil // fewer than keep backups exist
		}
		return fmt.Errorf("query backups for prune: %w", err)
	}

	query, args = sqlite().
		Delete("backups").
		Where(entsql.LTE("id", threshold)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune backups: %w", err)
	}
	return nil
}

// encodeEntries stores entry values inline; they are JSON documents already.
func encodeEntries(entries map[string][]byte) (string, error) {
	raw := make(map[string]json.RawMessage, len(entries))
	for k, v := range entries {
		if !json.Valid(v) {
			return "", fmt.Errorf("entry %s is not valid JSON", k)
		}
		raw[k] = json.RawMessage(v)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeEntries(data string) (map[string][]byte, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(raw))
	for k, v := range raw {
		out[k] = []byte(v)
	}
	return out, nil
}
