package settings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/radio-site/app/store"
	"github.com/lysyi3m/radio-site/app/store/sqlite"
	"github.com/lysyi3m/radio-site/app/validation"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// slowStore blocks reads until the caller gives up.
type slowStore struct {
	store.Store
}

func (slowStore) Get(ctx context.Context, _, _ string) (store.Snapshot, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type failingStore struct {
	store.Store
}

func (failingStore) Get(context.Context, string, string) (store.Snapshot, error) {
	return nil, errors.New("quota exceeded")
}

type countingStore struct {
	store.Store
	gets atomic.Int32
}

func (c *countingStore) Get(ctx context.Context, collection, id string) (store.Snapshot, error) {
	c.gets.Add(1)
	return c.Store.Get(ctx, collection, id)
}

type recorder struct{ paths []string }

func (r *recorder) Revalidate(paths ...string) { r.paths = append(r.paths, paths...) }

func TestGetMissingDocumentReturnsDefaults(t *testing.T) {
	a := NewAccessor(openStore(t), nil, 0)
	assert.Equal(t, Defaults(), a.Get(context.Background()))
}

func TestGetTimeoutReturnsDefaults(t *testing.T) {
	a := NewAccessor(slowStore{}, nil, 20*time.Millisecond)

	start := time.Now()
	got := a.Get(context.Background())
	assert.Equal(t, Defaults(), got)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGetReadErrorReturnsDefaults(t *testing.T) {
	a := NewAccessor(failingStore{}, nil, 0)
	assert.Equal(t, Defaults(), a.Get(context.Background()))
}

func TestGetMergesStoredFieldsOverDefaults(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	// an old document that predates most fields
	require.NoError(t, s.Set(ctx, Collection, DocumentID, map[string]any{
		"siteName":      "Radio Esperanza",
		"radioProvider": "zeno",
		"showTop10":     false,
	}))

	got := NewAccessor(s, nil, 0).Get(ctx)
	defaults := Defaults()

	assert.Equal(t, "Radio Esperanza", got.SiteName)
	assert.Equal(t, ProviderZeno, got.RadioProvider)
	assert.False(t, got.ShowTop10)
	assert.Equal(t, defaults.StreamURL, got.StreamURL)
	assert.Equal(t, defaults.ContactEmail, got.ContactEmail)
	assert.True(t, got.ShowSchedule)
	assert.True(t, got.EnableRegistration)
}

func TestStoredReportsReadFailures(t *testing.T) {
	_, err := NewAccessor(failingStore{}, nil, 0).Stored(context.Background())
	assert.Error(t, err)

	_, err = NewAccessor(slowStore{}, nil, 20*time.Millisecond).Stored(context.Background())
	assert.Error(t, err)
}

func TestStoredMissingDocumentIsDefaults(t *testing.T) {
	got, err := NewAccessor(openStore(t), nil, 0).Stored(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestSaveValidatesAndRevalidatesEverything(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	a := NewAccessor(openStore(t), rec, 0)

	bad := Defaults()
	bad.RadioProvider = "shoutcast"
	err := a.Save(ctx, &bad)
	var ve *validation.RequestValidationError
	require.True(t, errors.As(err, &ve))
	assert.Empty(t, rec.paths)

	good := Defaults()
	good.SiteName = "Radio Esperanza"
	good.RadioAPIKey = "secret"
	require.NoError(t, a.Save(ctx, &good))
	assert.Equal(t, []string{"/*"}, rec.paths)

	got := a.Get(ctx)
	assert.Equal(t, "Radio Esperanza", got.SiteName)
	assert.Equal(t, "secret", got.RadioAPIKey)
	assert.Empty(t, got.Public().RadioAPIKey)
}

func TestMemoReadsOncePerRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cs := &countingStore{Store: openStore(t)}
	a := NewAccessor(cs, nil, 0)

	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		first := a.Get(c.Request.Context())
		second := a.Get(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"same": first == second})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"same":true}`, w.Body.String())
	}

	assert.Equal(t, int32(2), cs.gets.Load())
}
