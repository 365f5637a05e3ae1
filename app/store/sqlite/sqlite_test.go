package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/radio-site/app/store"
)

type doc struct {
	Name  string `json:"name"`
	Rank  int    `json:"rank"`
	Used  bool   `json:"used"`
	Count int    `json:"count"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.Create(ctx, "things", doc{Name: "first", Rank: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	snap, err := s.Get(ctx, "things", id)
	require.NoError(t, err)
	var got doc
	require.NoError(t, snap.DataTo(&got))
	assert.Equal(t, "first", got.Name)
	assert.Equal(t, id, snap.ID())

	require.NoError(t, s.Delete(ctx, "things", id))
	_, err = s.Get(ctx, "things", id)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// deleting an absent document succeeds silently
	assert.NoError(t, s.Delete(ctx, "things", id))
}

func TestSetOverwrites(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Set(ctx, "things", "a", doc{Name: "one", Rank: 1}))
	require.NoError(t, s.Set(ctx, "things", "a", doc{Name: "two"}))

	snap, err := s.Get(ctx, "things", "a")
	require.NoError(t, err)
	var got doc
	require.NoError(t, snap.DataTo(&got))
	assert.Equal(t, doc{Name: "two"}, got)

	count, err := s.Count(ctx, "things")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestQueryFilterOrderLimit(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for i, name := range []string{"c", "a", "b", "d"} {
		require.NoError(t, s.Set(ctx, "things", name, doc{Name: name, Rank: i, Used: i%2 == 0}))
	}
	require.NoError(t, s.Set(ctx, "other", "x", doc{Name: "x"}))

	snaps, err := s.Query(ctx, "things", store.Query{OrderBy: "name"})
	require.NoError(t, err)
	docs, err := store.All[doc](snaps, nil)
	require.NoError(t, err)
	require.Len(t, docs, 4)
	assert.Equal(t, []string{"a", "b", "c", "d"}, []string{docs[0].Name, docs[1].Name, docs[2].Name, docs[3].Name})

	snaps, err = s.Query(ctx, "things", store.Query{OrderBy: "rank", Dir: store.Desc, Limit: 2})
	require.NoError(t, err)
	docs, err = store.All[doc](snaps, nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "d", docs[0].Name)
	assert.Equal(t, "b", docs[1].Name)

	snaps, err = s.Query(ctx, "things", store.Query{Where: []store.Filter{{Field: "used", Value: true}}, OrderBy: "rank"})
	require.NoError(t, err)
	docs, err = store.All[doc](snaps, nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "c", docs[0].Name)
	assert.Equal(t, "b", docs[1].Name)
}

func TestQueryRejectsInvalidField(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Query(context.Background(), "things", store.Query{OrderBy: "name') --"})
	assert.Error(t, err)
}

func TestTransactCreatesAndUpdates(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	err := s.Transact(ctx, "things", "counter", func(cur store.Snapshot) (any, error) {
		assert.Nil(t, cur)
		return doc{Name: "counter", Count: 1}, nil
	})
	require.NoError(t, err)

	err = s.Transact(ctx, "things", "counter", func(cur store.Snapshot) (any, error) {
		require.NotNil(t, cur)
		var d doc
		require.NoError(t, cur.DataTo(&d))
		d.Count++
		return d, nil
	})
	require.NoError(t, err)

	snap, err := s.Get(ctx, "things", "counter")
	require.NoError(t, err)
	var got doc
	require.NoError(t, snap.DataTo(&got))
	assert.Equal(t, 2, got.Count)
}

func TestTransactErrorLeavesDocumentUntouched(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Set(ctx, "things", "a", doc{Name: "a", Count: 1}))

	boom := errors.New("boom")
	err := s.Transact(ctx, "things", "a", func(cur store.Snapshot) (any, error) {
		return doc{Name: "a", Count: 99}, boom
	})
	assert.ErrorIs(t, err, boom)

	snap, err := s.Get(ctx, "things", "a")
	require.NoError(t, err)
	var got doc
	require.NoError(t, snap.DataTo(&got))
	assert.Equal(t, 1, got.Count)
}

func TestTransactSerializesConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Set(ctx, "things", "counter", doc{}))

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Transact(ctx, "things", "counter", func(cur store.Snapshot) (any, error) {
				var d doc
				if err := cur.DataTo(&d); err != nil {
					return nil, err
				}
				d.Count++
				return d, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := s.Get(ctx, "things", "counter")
	require.NoError(t, err)
	var got doc
	require.NoError(t, snap.DataTo(&got))
	assert.Equal(t, workers, got.Count)
}
