// Package docstore is a small document store over SQLite: one table
// per collection, each row holding an opaque JSON document plus a
// revision counter. It is the single persistence collaborator of the
// quest and journey engines.
package docstore

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/campusquest/api/internal/campus"
)

// Collections known to the store. Table names are interpolated into
// SQL, so only these fixed names are accepted.
const (
	Quests   = "quests"
	Users    = "users"
	Sessions = "sessions"
)

var collections = map[string]bool{
	Quests:   true,
	Users:    true,
	Sessions: true,
}

type Store struct {
	db *sql.DB
}

// New prepares the collection tables and returns a ready store. The
// DDL is idempotent; migrations create the same schema in production.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	for coll := range collections {
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id   TEXT PRIMARY KEY,
			rev  INTEGER NOT NULL DEFAULT 1,
			data JSONB NOT NULL
		)`, coll)
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return nil, fmt.Errorf("creating table %s: %w", coll, err)
		}
	}
	return &Store{db: db}, nil
}

func table(coll string) (string, error) {
	if !collections[coll] {
		return "", fmt.Errorf("unknown collection %q", coll)
	}
	return coll, nil
}

// Get decodes the document with the given id into dest.
func (s *Store) Get(ctx context.Context, coll, id string, dest any) error {
	t, err := table(coll)
	if err != nil {
		return err
	}
	var data string
	err = s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT json(data) FROM %s WHERE id = ?`, t), id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return campus.ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// Set writes the document, replacing any existing one and bumping rev.
func (s *Store) Set(ctx context.Context, coll, id string, doc any) error {
	t, err := table(coll)
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, data) VALUES (?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, rev = %s.rev + 1`,
		t, t), id, string(data))
	return err
}

// Update merges the given top-level fields into the document inside a
// transaction. Missing document is ErrNotFound.
func (s *Store) Update(ctx context.Context, coll, id string, fields map[string]any) error {
	return s.modify(ctx, coll, id, func(data []byte) ([]byte, error) {
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		for k, v := range fields {
			doc[k] = v
		}
		return json.Marshal(doc)
	})
}

// Delete removes the document. Missing document is ErrNotFound.
func (s *Store) Delete(ctx context.Context, coll, id string) error {
	t, err := table(coll)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t), id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return campus.ErrNotFound
	}
	return nil
}

// ArrayUnion adds value to the named array field with set semantics:
// a value already present is not appended again.
func (s *Store) ArrayUnion(ctx context.Context, coll, id, field string, value string) error {
	return s.modify(ctx, coll, id, func(data []byte) ([]byte, error) {
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		arr := stringSlice(doc[field])
		for _, v := range arr {
			if v == value {
				return json.Marshal(doc)
			}
		}
		doc[field] = append(arr, value)
		return json.Marshal(doc)
	})
}

// ArrayRemove removes all occurrences of value from the named array
// field. Removing an absent value is a no-op.
func (s *Store) ArrayRemove(ctx context.Context, coll, id, field string, value string) error {
	return s.modify(ctx, coll, id, func(data []byte) ([]byte, error) {
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		arr := stringSlice(doc[field])
		kept := arr[:0]
		for _, v := range arr {
			if v != value {
				kept = append(kept, v)
			}
		}
		doc[field] = kept
		return json.Marshal(doc)
	})
}

// Swap is an optimistic-concurrency read-modify-write: it loads the
// document, applies fn, and writes the result back only if the
// revision has not moved in between. A lost race is ErrConflict.
func (s *Store) Swap(ctx context.Context, coll, id string, fn func(data []byte) ([]byte, error)) error {
	t, err := table(coll)
	if err != nil {
		return err
	}

	var rev int64
	var data string
	err = s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT rev, json(data) FROM %s WHERE id = ?`, t), id,
	).Scan(&rev, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return campus.ErrNotFound
	}
	if err != nil {
		return err
	}

	next, err := fn([]byte(data))
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s SET data = jsonb(?), rev = rev + 1 WHERE id = ? AND rev = ?`, t),
		string(next), id, rev)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return campus.ErrConflict
	}
	return nil
}

// modify wraps a read-modify-write in a transaction. Used for the
// array mutations, which must be atomic but never conflict-fail.
func (s *Store) modify(ctx context.Context, coll, id string, fn func(data []byte) ([]byte, error)) error {
	t, err := table(coll)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT json(data) FROM %s WHERE id = ?`, t), id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return campus.ErrNotFound
	}
	if err != nil {
		return err
	}

	next, err := fn([]byte(data))
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s SET data = jsonb(?), rev = rev + 1 WHERE id = ?`, t),
		string(next), id)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Query streams every document in the collection to each, ordered by
// id. SQLite can't hold concurrent cursors over one connection, so
// rows are materialized before each is invoked.
func (s *Store) Query(ctx context.Context, coll string, each func(data []byte) error) error {
	t, err := table(coll)
	if err != nil {
		return err
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT json(data) FROM %s ORDER BY id`, t))
	if err != nil {
		return err
	}
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return err
		}
		docs = append(docs, data)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, d := range docs {
		if err := each([]byte(d)); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context, coll string) (int, error) {
	t, err := table(coll)
	if err != nil {
		return 0, err
	}
	var n int
	err = s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s`, t)).Scan(&n)
	return n, err
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// NewID returns a random 16-byte hex id, the store's native key format.
func NewID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// NowUTC formats the current time the way documents store timestamps.
func NowUTC() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}
