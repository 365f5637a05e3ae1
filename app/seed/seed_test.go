package seed

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/radio-site/app/apperr"
	"github.com/lysyi3m/radio-site/app/content"
	"github.com/lysyi3m/radio-site/app/schedule"
	"github.com/lysyi3m/radio-site/app/store"
	"github.com/lysyi3m/radio-site/app/store/sqlite"
	"github.com/lysyi3m/radio-site/app/validation"
)

func newSeeder(t *testing.T) (*Seeder, store.Store) {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewSeeder(content.NewRepositories(s, nil), schedule.NewEditor(s, nil)), s
}

func TestSeedWritesDemoContent(t *testing.T) {
	ctx := context.Background()
	seeder, s := newSeeder(t)

	summary, err := seeder.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, summary[content.CollectionBlogPosts])
	assert.Equal(t, 10, summary[content.CollectionTopSongs])
	assert.Equal(t, 3, summary[content.CollectionWeeklySchedule])

	n, err := s.Count(ctx, content.CollectionBlogPosts)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	monday, err := schedule.NewEditor(s, nil).Day(ctx, "Lunes")
	require.NoError(t, err)
	require.Len(t, monday.Schedule, 2)
	assert.Equal(t, "07:00", monday.Schedule[0].Time)
}

func TestSeedTwiceConflictsWithoutWrites(t *testing.T) {
	ctx := context.Background()
	seeder, s := newSeeder(t)

	_, err := seeder.Run(ctx)
	require.NoError(t, err)

	before := map[string]int{}
	for _, c := range []string{content.CollectionBlogPosts, content.CollectionCampaigns, content.CollectionTopSongs} {
		before[c], err = s.Count(ctx, c)
		require.NoError(t, err)
	}

	_, err = seeder.Run(ctx)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	for c, n := range before {
		after, err := s.Count(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, n, after, c)
	}
}

func TestSeedRejectsInvalidDemoEntry(t *testing.T) {
	seeder, _ := newSeeder(t)
	seeder.data = []byte(`
blogPosts:
  - title: Hi
    author: Ana
    excerpt: Un texto de prueba.
    content: Un contenido de prueba suficientemente largo.
    imageUrl: https://img.example.com/a.jpg
    category: Noticias
`)

	_, err := seeder.Run(context.Background())
	var ve *validation.RequestValidationError
	require.True(t, errors.As(err, &ve))
	fe, ok := ve.Field("title")
	require.True(t, ok)
	assert.Equal(t, "title must be at least 5 characters", fe.Message)
}
