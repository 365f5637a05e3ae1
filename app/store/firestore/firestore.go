// Package firestore backs the document store with Google Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lysyi3m/radio-site/app/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	client *firestore.Client
}

// Open connects to the given project. credentialsFile may be empty, in
// which case application default credentials are used.
func Open(ctx context.Context, projectID, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

type snapshot struct {
	doc *firestore.DocumentSnapshot
}

func (s snapshot) ID() string {
	return s.doc.Ref.ID
}

func (s snapshot) DataTo(v any) error {
	return s.doc.DataTo(v)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Snapshot, error) {
	doc, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return snapshot{doc: doc}, nil
}

func (s *Store) Create(ctx context.Context, collection string, v any) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, v)
	if err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}
	return ref.ID, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, v any) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, v); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, q store.Query) ([]store.Snapshot, error) {
	if err := store.ValidateQuery(q); err != nil {
		return nil, err
	}

	query := s.client.Collection(collection).Query
	for _, f := range q.Where {
		query = query.Where(f.Field, "==", f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Dir == store.Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var snaps []store.Snapshot
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query documents: %w", err)
		}
		snaps = append(snaps, snapshot{doc: doc})
	}
	return snaps, nil
}

func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	res, err := s.client.Collection(collection).NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	value, ok := res["all"]
	if !ok {
		return 0, fmt.Errorf("count aggregation returned no value")
	}
	return countValue(value)
}

func (s *Store) Transact(ctx context.Context, collection, id string, fn store.TxFunc) error {
	ref := s.client.Collection(collection).Doc(id)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var cur store.Snapshot
		doc, err := tx.Get(ref)
		switch {
		case isNotFound(err):
		case err != nil:
			return fmt.Errorf("failed to read document: %w", err)
		default:
			cur = snapshot{doc: doc}
		}

		next, err := fn(cur)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		return tx.Set(ref, next)
	})
}
