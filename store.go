package kvlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// validTableName rejects table names that cannot be spliced into SQL
// safely. Key and value parameters are always placeholder-bound; the
// table name is the one identifier that cannot be.
var validTableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store binds mapping semantics to one two-column table inside a DB.
//
// All methods are safe for concurrent use, including across Stores
// bound to the same table: point mutations are single statements and
// rely on SQLite's native isolation, compound operations (Pop, Update)
// run inside explicit transactions.
type Store struct {
	db        *DB
	table     string
	codec     Codec
	ordered   bool
	normalize bool
}

// Option configures a Store at construction.
type Option func(*Store)

// WithTable sets the backing table name. Default "kv".
func WithTable(name string) Option {
	return func(s *Store) { s.table = name }
}

// WithCodec sets the value codec. Default MsgpackCodec.
func WithCodec(c Codec) Option {
	return func(s *Store) { s.codec = c }
}

// WithOrdered makes every multi-row read return rows in ascending
// lexicographic key order. When unset, row order is whatever the
// engine produces (unspecified).
func WithOrdered() Option {
	return func(s *Store) { s.ordered = true }
}

// WithNormalizedKeys applies Unicode NFC normalization to every key on
// the way in, so visually identical keys address the same row.
func WithNormalizedKeys() Option {
	return func(s *Store) { s.normalize = true }
}

// NewStore binds a Store to a table in db, creating the table if it
// does not exist. Creation is idempotent; any number of Stores may bind
// the same table, from this handle or another one.
func NewStore(db *DB, opts ...Option) (*Store, error) {
	s := &Store{
		db:    db,
		table: "kv",
		codec: MsgpackCodec{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if !validTableName.MatchString(s.table) {
		return nil, fmt.Errorf("invalid table name: %q", s.table)
	}

	_, err := db.db.Exec(fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value BLOB NOT NULL)",
		s.table))
	if err != nil {
		return nil, fmt.Errorf("create table %s: %w", s.table, err)
	}

	return s, nil
}

// Contains reports whether a row with that exact key exists.
func (s *Store) Contains(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT 1 FROM %s WHERE key = ? LIMIT 1", s.table),
		s.normKey(key)).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("contains: %w", err)
}

// Len returns the number of rows in the table.
func (s *Store) Len(ctx context.Context) (int, error) {
	var count int
	err := s.db.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("len: %w", err)
	}
	return count, nil
}

// Get reads the rows addressed by e.
//
// For a bare Key the result is the decoded value, and an absent key is
// a *KeyNotFoundError. For a set predicate the result is a []any of the
// decoded values for every match - possibly empty, never an error for
// zero matches. Row order follows the Store's ordered mode.
func (s *Store) Get(ctx context.Context, e Expr) (any, error) {
	e = s.expr(e)
	where, params, single, err := compileExpr(e)
	if err != nil {
		return nil, err
	}

	values, err := s.selectValues(ctx, s.db.db, where, params)
	if err != nil {
		return nil, err
	}

	if single {
		if len(values) == 0 {
			return nil, &KeyNotFoundError{Key: string(e.(Key))}
		}
		return values[0], nil
	}
	return values, nil
}

// GetDefault is Get, except an absent single key yields def instead of
// a KeyNotFoundError. For set predicates it is exactly Get, since no
// failure is possible there.
func (s *Store) GetDefault(ctx context.Context, e Expr, def any) (any, error) {
	v, err := s.Get(ctx, e)
	if IsKeyNotFound(err) {
		return def, nil
	}
	return v, err
}

// Set writes value to the rows addressed by e.
//
// For a bare Key this is an upsert: insert the row, or replace the
// existing row's value, in one atomic statement. For a set predicate it
// is a bulk update: every currently matching row gets the new value,
// and rows not already present are not created. Assigning through a
// predicate that matches nothing is silently a no-op.
func (s *Store) Set(ctx context.Context, e Expr, value any) error {
	e = s.expr(e)
	data, err := s.codec.Encode(value)
	if err != nil {
		return err
	}

	if k, ok := e.(Key); ok {
		_, err := s.db.db.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, s.table), string(k), data)
		if err != nil {
			return fmt.Errorf("set %q: %w", string(k), err)
		}
		return nil
	}

	where, params, _, err := compileExpr(e)
	if err != nil {
		return err
	}
	args := append([]any{data}, params...)
	_, err = s.db.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET value = ? WHERE %s", s.table, where), args...)
	if err != nil {
		return fmt.Errorf("bulk set: %w", err)
	}
	return nil
}

// Update upserts every entry of m in one transaction. Keys are written
// in sorted order so two concurrent Updates cannot deadlock on row
// order.
func (s *Store) Update(ctx context.Context, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt := fmt.Sprintf(`
		INSERT INTO %s (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, s.table)
	for _, k := range keys {
		data, err := s.codec.Encode(m[k])
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, stmt, s.normKey(k), data); err != nil {
			return fmt.Errorf("update %q: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update: commit: %w", err)
	}
	return nil
}

// Delete removes every row addressed by e. Deleting an absent key is a
// no-op, not an error.
func (s *Store) Delete(ctx context.Context, e Expr) error {
	where, params, _, err := compileExpr(s.expr(e))
	if err != nil {
		return err
	}
	_, err = s.db.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s", s.table, where), params...)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Pop atomically reads and removes the rows addressed by e, returning
// what Get would have returned for them. The read and the delete run in
// one transaction: a concurrent writer can never observe the value
// deleted but not returned, or returned and then reverted. The store
// relies on repeatable reads within one transaction as its isolation
// floor; SQLite's serialized writers provide that and more.
//
// A bare Key on an absent row yields a *KeyNotFoundError; a set
// predicate with zero matches yields an empty []any.
func (s *Store) Pop(ctx context.Context, e Expr) (any, error) {
	return s.pop(ctx, e, nil, false)
}

// PopDefault is Pop, except an absent single key yields def without
// mutating the table.
func (s *Store) PopDefault(ctx context.Context, e Expr, def any) (any, error) {
	return s.pop(ctx, e, def, true)
}

func (s *Store) pop(ctx context.Context, e Expr, def any, haveDefault bool) (any, error) {
	e = s.expr(e)
	where, params, single, err := compileExpr(e)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("pop: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	values, err := s.selectValues(ctx, tx, where, params)
	if err != nil {
		return nil, err
	}

	if single && len(values) == 0 {
		// Nothing to delete; the rollback above discards the read.
		if haveDefault {
			return def, nil
		}
		return nil, &KeyNotFoundError{Key: string(e.(Key))}
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s", s.table, where), params...); err != nil {
		return nil, fmt.Errorf("pop: delete: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("pop: commit: %w", err)
	}

	if single {
		return values[0], nil
	}
	return values, nil
}

// Clear removes every row, unconditionally.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", s.table))
	if err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// selectValues runs a value read with the given WHERE fragment against
// q (the pool, or a transaction for compound operations) and decodes
// every match. Ordered mode sorts by key before decoding.
func (s *Store) selectValues(ctx context.Context, q querier, where string, params []any) ([]any, error) {
	query := fmt.Sprintf("SELECT key, value FROM %s WHERE %s%s", s.table, where, s.orderBy())
	rows, err := q.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query values: %w", err)
	}
	defer rows.Close()

	values := []any{}
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		v, err := s.codec.Decode(raw)
		if err != nil {
			return nil, &CorruptValueError{Key: key, Err: err}
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate values: %w", err)
	}
	return values, nil
}

// orderBy returns the ordering clause for multi-row reads.
// COLLATE BINARY pins lexicographic byte order across SQLite versions.
func (s *Store) orderBy() string {
	if s.ordered {
		return " ORDER BY key COLLATE BINARY ASC"
	}
	return ""
}
