// Package store defines the document store used by every content type:
// named collections of independent documents addressed by id.
package store

import (
	"context"
	"fmt"
	"regexp"

	"github.com/lysyi3m/radio-site/app/apperr"
)

// ErrNotFound is returned by Get when the document does not exist.
var ErrNotFound = apperr.ErrNotFound

// Snapshot is one stored document.
type Snapshot interface {
	ID() string
	DataTo(v any) error
}

type Direction int

const (
	Asc Direction = iota
	Desc
)

// Filter is an equality match on a top-level field.
type Filter struct {
	Field string
	Value any
}

type Query struct {
	Where   []Filter
	OrderBy string
	Dir     Direction
	Limit   int
}

// TxFunc receives the current document (nil when it does not exist) and
// returns the document to write, or nil to leave it untouched.
type TxFunc func(cur Snapshot) (next any, err error)

type Store interface {
	Get(ctx context.Context, collection, id string) (Snapshot, error)
	Create(ctx context.Context, collection string, v any) (string, error)
	Set(ctx context.Context, collection, id string, v any) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]Snapshot, error)
	Count(ctx context.Context, collection string) (int, error)
	// Transact runs a single-document read-modify-write atomically.
	// fn must not call back into the store.
	Transact(ctx context.Context, collection, id string, fn TxFunc) error
	Close() error
}

var fieldName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidateQuery rejects field names that are not plain identifiers.
func ValidateQuery(q Query) error {
	for _, f := range q.Where {
		if !fieldName.MatchString(f.Field) {
			return fmt.Errorf("invalid filter field %q", f.Field)
		}
	}
	if q.OrderBy != "" && !fieldName.MatchString(q.OrderBy) {
		return fmt.Errorf("invalid order field %q", q.OrderBy)
	}
	if q.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}
	return nil
}

// All decodes every snapshot into a new T and hands it to setID so the
// caller can copy the document id onto the value.
func All[T any](snaps []Snapshot, setID func(*T, string)) ([]T, error) {
	out := make([]T, 0, len(snaps))
	for _, snap := range snaps {
		var v T
		if err := snap.DataTo(&v); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", snap.ID(), err)
		}
		if setID != nil {
			setID(&v, snap.ID())
		}
		out = append(out, v)
	}
	return out, nil
}
