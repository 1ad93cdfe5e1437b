package kvlite

import (
	"context"
	"fmt"
	"iter"
)

// Item is one decoded row yielded during iteration.
type Item struct {
	Key   string
	Value any
}

// All returns a lazy sequence over every row as a decoded (key, value)
// pair. The query runs when the sequence is ranged, so each call
// observes the then-current table contents; the sequence is finite and
// restartable. In ordered mode rows arrive in ascending key order.
//
// Errors (storage failures, corrupt values) are yielded in place of a
// final item; iteration stops after the first error.
func (s *Store) All(ctx context.Context) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		query := fmt.Sprintf("SELECT key, value FROM %s%s", s.table, s.orderBy())
		rows, err := s.db.db.QueryContext(ctx, query)
		if err != nil {
			yield(Item{}, fmt.Errorf("iterate: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var key string
			var raw []byte
			if err := rows.Scan(&key, &raw); err != nil {
				yield(Item{}, fmt.Errorf("iterate: scan: %w", err))
				return
			}
			v, err := s.codec.Decode(raw)
			if err != nil {
				yield(Item{}, &CorruptValueError{Key: key, Err: err})
				return
			}
			if !yield(Item{Key: key, Value: v}, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Item{}, fmt.Errorf("iterate: %w", err))
		}
	}
}

// Items is an alias of All.
func (s *Store) Items(ctx context.Context) iter.Seq2[Item, error] {
	return s.All(ctx)
}

// Keys returns a lazy sequence over every key, with the same laziness,
// ordering and error behavior as All.
func (s *Store) Keys(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		query := fmt.Sprintf("SELECT key FROM %s%s", s.table, s.orderBy())
		rows, err := s.db.db.QueryContext(ctx, query)
		if err != nil {
			yield("", fmt.Errorf("keys: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var key string
			if err := rows.Scan(&key); err != nil {
				yield("", fmt.Errorf("keys: scan: %w", err))
				return
			}
			if !yield(key, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield("", fmt.Errorf("keys: %w", err))
		}
	}
}

// Values returns a lazy sequence over every decoded value, with the
// same laziness, ordering and error behavior as All.
func (s *Store) Values(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for item, err := range s.All(ctx) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(item.Value, nil) {
				return
			}
		}
	}
}
