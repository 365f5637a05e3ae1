// Package content implements create, update, delete and listing for every
// editable content type of the site on top of the document store.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/radio-site/app/apperr"
	"github.com/lysyi3m/radio-site/app/metrics"
	"github.com/lysyi3m/radio-site/app/revalidate"
	"github.com/lysyi3m/radio-site/app/store"
	"github.com/lysyi3m/radio-site/app/validation"
)

// Document is implemented by pointers to the content types.
type Document[T any] interface {
	*T
	DocID() string
	SetDocID(id string)
}

// Kind describes how one content type is stored and which pages render it.
type Kind[T any] struct {
	Collection string
	// Paths are revalidated after every successful write.
	Paths []string
	// Order is the default listing order.
	Order store.Query
	// Prepare runs after validation and before the write. prev is nil when
	// the document is being created.
	Prepare func(ctx context.Context, s store.Store, v *T, prev *T, now time.Time) error
}

// Repository is the CRUD surface for one content type.
type Repository[T any, P Document[T]] struct {
	store store.Store
	reval revalidate.Revalidator
	kind  Kind[T]
	now   func() time.Time
}

func NewRepository[T any, P Document[T]](s store.Store, r revalidate.Revalidator, kind Kind[T]) *Repository[T, P] {
	if r == nil {
		r = revalidate.Nop{}
	}
	return &Repository[T, P]{
		store: s,
		reval: r,
		kind:  kind,
		now:   time.Now,
	}
}

func (r *Repository[T, P]) Collection() string {
	return r.kind.Collection
}

// Upsert validates v and creates it when it has no id, or overwrites the
// existing document otherwise. The id of the stored document is returned
// and also set on v.
func (r *Repository[T, P]) Upsert(ctx context.Context, v P) (string, error) {
	if v == nil {
		return "", fmt.Errorf("%w: nil document", apperr.ErrInvalidArgument)
	}
	if err := validation.Struct(v); err != nil {
		metrics.ContentWrites.WithLabelValues(r.kind.Collection, "upsert", "invalid").Inc()
		return "", err
	}

	// whole seconds keep stored timestamps lexically ordered
	now := r.now().UTC().Truncate(time.Second)
	id := v.DocID()

	var err error
	if id == "" {
		id, err = r.create(ctx, v, now)
	} else {
		err = r.update(ctx, id, v, now)
	}
	if err != nil {
		metrics.ContentWrites.WithLabelValues(r.kind.Collection, "upsert", "error").Inc()
		return "", err
	}

	metrics.ContentWrites.WithLabelValues(r.kind.Collection, "upsert", "ok").Inc()
	r.reval.Revalidate(r.kind.Paths...)
	return id, nil
}

func (r *Repository[T, P]) create(ctx context.Context, v P, now time.Time) (string, error) {
	if r.kind.Prepare != nil {
		if err := r.kind.Prepare(ctx, r.store, (*T)(v), nil, now); err != nil {
			return "", err
		}
	}

	id, err := r.store.Create(ctx, r.kind.Collection, v)
	if err != nil {
		return "", apperr.Persistence("create", r.kind.Collection, err)
	}
	v.SetDocID(id)
	slog.Debug("Document created", "collection", r.kind.Collection, "id", id)
	return id, nil
}

func (r *Repository[T, P]) update(ctx context.Context, id string, v P, now time.Time) error {
	snap, err := r.store.Get(ctx, r.kind.Collection, id)
	if err != nil {
		return apperr.Persistence("get", r.kind.Collection, err)
	}

	if r.kind.Prepare != nil {
		var prev T
		if err := snap.DataTo(&prev); err != nil {
			return apperr.Persistence("decode", r.kind.Collection, err)
		}
		P(&prev).SetDocID(id)
		if err := r.kind.Prepare(ctx, r.store, (*T)(v), &prev, now); err != nil {
			return err
		}
	}

	if err := r.store.Set(ctx, r.kind.Collection, id, v); err != nil {
		return apperr.Persistence("update", r.kind.Collection, err)
	}
	slog.Debug("Document updated", "collection", r.kind.Collection, "id", id)
	return nil
}

// Insert stores v under id unless a document with that id already exists.
// It reports whether the document was created. Prepare runs with a nil
// prev before the transaction starts.
func (r *Repository[T, P]) Insert(ctx context.Context, id string, v P) (bool, error) {
	if id == "" || v == nil {
		return false, fmt.Errorf("%w: missing id or document", apperr.ErrInvalidArgument)
	}
	if err := validation.Struct(v); err != nil {
		metrics.ContentWrites.WithLabelValues(r.kind.Collection, "insert", "invalid").Inc()
		return false, err
	}

	now := r.now().UTC().Truncate(time.Second)
	if r.kind.Prepare != nil {
		if err := r.kind.Prepare(ctx, r.store, (*T)(v), nil, now); err != nil {
			return false, err
		}
	}

	// the store may run fn more than once; only the last run counts
	created := false
	err := r.store.Transact(ctx, r.kind.Collection, id, func(cur store.Snapshot) (any, error) {
		created = false
		if cur != nil {
			return nil, nil
		}
		created = true
		return v, nil
	})
	if err != nil {
		metrics.ContentWrites.WithLabelValues(r.kind.Collection, "insert", "error").Inc()
		return false, apperr.Persistence("insert", r.kind.Collection, err)
	}

	v.SetDocID(id)
	if !created {
		metrics.ContentWrites.WithLabelValues(r.kind.Collection, "insert", "exists").Inc()
		return false, nil
	}
	metrics.ContentWrites.WithLabelValues(r.kind.Collection, "insert", "ok").Inc()
	r.reval.Revalidate(r.kind.Paths...)
	return true, nil
}

// Modify applies fn to the stored document inside a transaction. fn must
// not touch the store. Errors returned by fn reach the caller unwrapped.
func (r *Repository[T, P]) Modify(ctx context.Context, id string, fn func(v *T) error) (*T, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing id", apperr.ErrInvalidArgument)
	}

	var out T
	var rejected error
	err := r.store.Transact(ctx, r.kind.Collection, id, func(cur store.Snapshot) (any, error) {
		rejected = nil
		if cur == nil {
			return nil, apperr.ErrNotFound
		}
		var v T
		if err := cur.DataTo(&v); err != nil {
			return nil, err
		}
		if err := fn(&v); err != nil {
			rejected = err
			return nil, err
		}
		if err := validation.Struct(&v); err != nil {
			rejected = err
			return nil, err
		}
		out = v
		return &v, nil
	})
	if err != nil {
		metrics.ContentWrites.WithLabelValues(r.kind.Collection, "modify", "error").Inc()
		if rejected != nil && errors.Is(err, rejected) {
			return nil, err
		}
		return nil, apperr.Persistence("modify", r.kind.Collection, err)
	}

	P(&out).SetDocID(id)
	metrics.ContentWrites.WithLabelValues(r.kind.Collection, "modify", "ok").Inc()
	r.reval.Revalidate(r.kind.Paths...)
	return &out, nil
}

// Delete removes the document. An empty id is rejected without touching
// the store.
func (r *Repository[T, P]) Delete(ctx context.Context, id string) error {
	if id == "" {
		metrics.ContentWrites.WithLabelValues(r.kind.Collection, "delete", "invalid").Inc()
		return fmt.Errorf("%w: missing id", apperr.ErrInvalidArgument)
	}

	if err := r.store.Delete(ctx, r.kind.Collection, id); err != nil {
		metrics.ContentWrites.WithLabelValues(r.kind.Collection, "delete", "error").Inc()
		return apperr.Persistence("delete", r.kind.Collection, err)
	}

	metrics.ContentWrites.WithLabelValues(r.kind.Collection, "delete", "ok").Inc()
	r.reval.Revalidate(r.kind.Paths...)
	slog.Debug("Document deleted", "collection", r.kind.Collection, "id", id)
	return nil
}

func (r *Repository[T, P]) Get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing id", apperr.ErrInvalidArgument)
	}

	snap, err := r.store.Get(ctx, r.kind.Collection, id)
	if err != nil {
		return nil, apperr.Persistence("get", r.kind.Collection, err)
	}

	var v T
	if err := snap.DataTo(&v); err != nil {
		return nil, apperr.Persistence("decode", r.kind.Collection, err)
	}
	P(&v).SetDocID(snap.ID())
	return &v, nil
}

// List returns documents in the kind's default order, or in q's order when
// q names one.
func (r *Repository[T, P]) List(ctx context.Context, q store.Query) ([]T, error) {
	if q.OrderBy == "" {
		q.OrderBy = r.kind.Order.OrderBy
		q.Dir = r.kind.Order.Dir
	}
	if q.Limit == 0 {
		q.Limit = r.kind.Order.Limit
	}

	snaps, err := r.store.Query(ctx, r.kind.Collection, q)
	if err != nil {
		return nil, apperr.Persistence("list", r.kind.Collection, err)
	}

	items, err := store.All(snaps, func(v *T, id string) { P(v).SetDocID(id) })
	if err != nil {
		return nil, apperr.Persistence("decode", r.kind.Collection, err)
	}
	return items, nil
}

func (r *Repository[T, P]) Count(ctx context.Context) (int, error) {
	n, err := r.store.Count(ctx, r.kind.Collection)
	if err != nil {
		return 0, apperr.Persistence("count", r.kind.Collection, err)
	}
	return n, nil
}
