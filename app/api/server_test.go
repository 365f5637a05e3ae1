package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lysyi3m/radio-site/app/apperr"
	"github.com/lysyi3m/radio-site/app/auth"
	"github.com/lysyi3m/radio-site/app/content"
	"github.com/lysyi3m/radio-site/app/invites"
	"github.com/lysyi3m/radio-site/app/radio"
	"github.com/lysyi3m/radio-site/app/revalidate"
	"github.com/lysyi3m/radio-site/app/schedule"
	"github.com/lysyi3m/radio-site/app/seed"
	"github.com/lysyi3m/radio-site/app/settings"
	"github.com/lysyi3m/radio-site/app/songlinks"
	"github.com/lysyi3m/radio-site/app/store"
	"github.com/lysyi3m/radio-site/app/store/sqlite"
	"github.com/lysyi3m/radio-site/app/tasks"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testEmail    = "admin@example.com"
	testPassword = "correct-horse"
)

type fakeRadio struct {
	body []byte
	err  error
}

func (f *fakeRadio) NowPlaying(context.Context) ([]byte, error) { return f.body, f.err }
func (f *fakeRadio) History(context.Context) ([]byte, error)    { return f.body, f.err }

type fakeLinks struct {
	links *songlinks.Links
	err   error
}

func (f *fakeLinks) Find(context.Context, songlinks.Query) (*songlinks.Links, error) {
	return f.links, f.err
}

type fakeFetcher struct {
	html string
	err  error
}

func (f *fakeFetcher) FetchHTML(context.Context, string) ([]byte, error) {
	return []byte(f.html), f.err
}

type fakeScheduler struct {
	triggered []tasks.TaskType
}

func (f *fakeScheduler) Start() {}

func (f *fakeScheduler) Stop() {}

func (f *fakeScheduler) EnqueueTask(tasks.TaskInterface) error { return nil }

func (f *fakeScheduler) Trigger(t tasks.TaskType) error {
	f.triggered = append(f.triggered, t)
	return nil
}

// hookedStore can fail settings reads and hold one query on a collection
// open after it has read its rows.
type hookedStore struct {
	store.Store
	failSettings atomic.Int32

	mu      sync.Mutex
	hold    string
	entered chan struct{}
	release chan struct{}
}

func (hs *hookedStore) Get(ctx context.Context, collection, id string) (store.Snapshot, error) {
	if collection == settings.Collection && hs.failSettings.Add(-1) >= 0 {
		return nil, errors.New("unavailable")
	}
	return hs.Store.Get(ctx, collection, id)
}

func (hs *hookedStore) Query(ctx context.Context, collection string, q store.Query) ([]store.Snapshot, error) {
	snaps, err := hs.Store.Query(ctx, collection, q)

	hs.mu.Lock()
	held := hs.hold != "" && hs.hold == collection
	entered, release := hs.entered, hs.release
	if held {
		hs.hold = ""
	}
	hs.mu.Unlock()

	if held {
		close(entered)
		<-release
	}
	return snaps, err
}

// holdQuery makes the next query on collection wait for release once its
// rows are read. entered is closed when it starts waiting.
func (hs *hookedStore) holdQuery(collection string) (entered, release chan struct{}) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.hold = collection
	hs.entered = make(chan struct{})
	hs.release = make(chan struct{})
	return hs.entered, hs.release
}

type testServer struct {
	router    *gin.Engine
	store     *hookedStore
	pages     *revalidate.PageCache
	settings  *settings.Accessor
	repos     *content.Repositories
	auth      *auth.Service
	radio     *fakeRadio
	links     *fakeLinks
	fetcher   *fakeFetcher
	scheduler *fakeScheduler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	hs := &hookedStore{Store: s}

	pages := revalidate.NewPageCache()
	acc := settings.NewAccessor(hs, pages, time.Second)
	repos := content.NewRepositories(hs, pages)
	inv := invites.NewService(repos.InvitationCodes)
	tokens, err := auth.NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)
	authSvc := auth.NewService(hs, inv, tokens, auth.NewLoginLimiter(5, time.Minute),
		auth.WithBcryptCost(bcrypt.MinCost),
		auth.WithRegistrationGate(func(ctx context.Context) bool { return acc.Get(ctx).EnableRegistration }))
	editor := schedule.NewEditor(hs, pages)

	ts := &testServer{
		store:     hs,
		pages:     pages,
		settings:  acc,
		repos:     repos,
		auth:      authSvc,
		radio:     &fakeRadio{body: []byte(`{"now_playing":{"song":{"title":"Oye"}}}`)},
		links:     &fakeLinks{},
		fetcher:   &fakeFetcher{},
		scheduler: &fakeScheduler{},
	}
	ts.router = NewServer(NewHandler(Deps{
		Repos:     repos,
		Schedule:  editor,
		Settings:  acc,
		Invites:   inv,
		Auth:      authSvc,
		Seeder:    seed.NewSeeder(repos, editor),
		Pages:     pages,
		Radio:     ts.radio,
		Links:     ts.links,
		Fetcher:   ts.fetcher,
		Scheduler: ts.scheduler,
		SiteURL:   "https://radio.example.com",
	}))
	return ts
}

func (ts *testServer) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()
	_, err := ts.auth.CreateUser(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	w := ts.do(http.MethodPost, "/api/auth/login", `{"email":"`+testEmail+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

const validPost = `{
	"title": "Nueva programación de otoño",
	"author": "Ana",
	"excerpt": "Llegan programas nuevos a la radio.",
	"content": "Este otoño estrenamos cuatro programas nuevos en la grilla.",
	"imageUrl": "https://img.example.com/otono.jpg",
	"category": "Noticias"
}`

func TestAdminRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/admin/api/blog", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", decode(t, w)["code"])
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.auth.CreateUser(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	w := ts.do(http.MethodPost, "/api/auth/login", `{"email":"`+testEmail+`","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.Equal(t, string(apperr.AuthWrongPassword), body["code"])
	assert.Equal(t, "La contraseña es incorrecta.", body["error"])
}

func TestRegisterClosedWhenDisabled(t *testing.T) {
	ts := newTestServer(t)
	s := settings.Defaults()
	s.EnableRegistration = false
	require.NoError(t, ts.settings.Save(context.Background(), &s))

	w := ts.do(http.MethodPost, "/api/auth/register", `{"email":"new@example.com","password":"long-enough","inviteCode":"ABCDEF12"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, string(apperr.AuthRegistrationOff), decode(t, w)["code"])
}

func TestCurrentUser(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	w := ts.do(http.MethodGet, "/api/auth/me", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, testEmail, user["email"])
}

func TestUpsertRejectsShortTitle(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	body := strings.Replace(validPost, "Nueva programación de otoño", "Hi", 1)
	w := ts.do(http.MethodPost, "/admin/api/blog", body, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title must be at least 5 characters")

	n, err := ts.repos.BlogPosts.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBlogPageCachedUntilWrite(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	w := ts.do(http.MethodGet, "/api/pages/blog", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["posts"])
	_, cached := ts.pages.Get(revalidate.PathBlog)
	assert.True(t, cached)

	w = ts.do(http.MethodPost, "/admin/api/blog", validPost, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	item := decode(t, w)["item"].(map[string]any)
	assert.Equal(t, "nueva-programacion-de-otono", item["slug"])

	_, cached = ts.pages.Get(revalidate.PathBlog)
	assert.False(t, cached)

	w = ts.do(http.MethodGet, "/api/pages/blog", "")
	assert.Len(t, decode(t, w)["posts"], 1)

	w = ts.do(http.MethodGet, "/api/pages/blog/nueva-programacion-de-otono", "")
	require.Equal(t, http.StatusOK, w.Code)
	post := decode(t, w)["post"].(map[string]any)
	assert.Equal(t, "Ana", post["author"])

	w = ts.do(http.MethodGet, "/api/pages/blog/no-existe", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteRemovesDocument(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	w := ts.do(http.MethodPost, "/admin/api/campaigns", `{"title":"Colecta","date":"Marzo","description":"Juntamos alimentos para el barrio.","icon":"heart"}`, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)

	w = ts.do(http.MethodDelete, "/admin/api/campaigns/"+id, "", cookie)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(http.MethodGet, "/admin/api/campaigns", "", cookie)
	assert.Equal(t, float64(0), decode(t, w)["total"])
}

func TestHiddenAndMaintenancePages(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	s := settings.Defaults()
	s.ShowSchedule = false
	require.NoError(t, ts.settings.Save(ctx, &s))

	w := ts.do(http.MethodGet, "/api/pages/schedule", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	s.MaintenanceMode = true
	require.NoError(t, ts.settings.Save(ctx, &s))

	w = ts.do(http.MethodGet, "/api/pages/home", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, true, decode(t, w)["maintenance"])
}

func TestPublicSettingsHideAPIKey(t *testing.T) {
	ts := newTestServer(t)
	s := settings.Defaults()
	s.RadioAPIKey = "secret-key"
	require.NoError(t, ts.settings.Save(context.Background(), &s))

	w := ts.do(http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-key")
}

func TestRadioProxy(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/now-playing", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, string(ts.radio.body), w.Body.String())

	ts.radio.err = &apperr.UpstreamError{Service: "azuracast", StatusCode: http.StatusInternalServerError}
	w = ts.do(http.MethodGet, "/api/history", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, radio.ErrorMessage, decode(t, w)["error"])
}

func TestJoinSubmissionIgnoresReviewFlag(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	w := ts.do(http.MethodPost, "/api/join", `{"id":"mine","name":"Lucía","email":"lucia@example.com","interest":"locución","message":"Me gustaría conducir un programa.","reviewed":true}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)
	assert.NotEqual(t, "mine", id)

	sub, err := ts.repos.JoinSubmissions.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, sub.Reviewed)

	w = ts.do(http.MethodPost, "/admin/api/join/"+id+"/reviewed", `{"value":true}`, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	sub, err = ts.repos.JoinSubmissions.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, sub.Reviewed)
}

func TestScheduleConflict(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	w := ts.do(http.MethodPost, "/admin/api/schedule/Lunes", `{"time":"08:00","title":"Buenos días","host":"Ana"}`, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(http.MethodPut, "/admin/api/schedule/Lunes/0",
		`{"expected":{"time":"09:00","title":"Otro","host":"Luis"},"entry":{"time":"08:30","title":"Buenos días","host":"Ana"}}`, cookie)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(http.MethodPost, "/admin/api/schedule/Funday", `{"time":"08:00","title":"Buenos días","host":"Ana"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSeedTwiceConflicts(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	w := ts.do(http.MethodPost, "/admin/api/seed", "", cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(http.MethodPost, "/admin/api/seed", "", cookie)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSongLinks(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	ts.links.links = &songlinks.Links{YoutubeVideoID: "dQw4w9WgXcQ"}
	w := ts.do(http.MethodPost, "/admin/api/songlinks", `{"title":"Oye","artist":"Gloria"}`, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dQw4w9WgXcQ", decode(t, w)["youtubeVideoId"])

	ts.links.err = errors.New("model unavailable")
	w = ts.do(http.MethodPost, "/admin/api/songlinks", `{"title":"Oye","artist":"Gloria"}`, cookie)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "search failed", decode(t, w)["error"])
}

func TestImportBlogDraft(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	w := ts.do(http.MethodPost, "/admin/api/blog/import", `{"url":"not a url"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.fetcher.err = errors.New("connection refused")
	w = ts.do(http.MethodPost, "/admin/api/blog/import", `{"url":"https://news.example.com/nota"}`, cookie)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestImportRecordingsTriggersTask(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	w := ts.do(http.MethodPost, "/admin/api/recordings/import", "", cookie)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []tasks.TaskType{tasks.TaskTypeImportRecordings}, ts.scheduler.triggered)
}

func TestBlogFeed(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.repos.BlogPosts.Upsert(context.Background(), &content.BlogPost{
		Title:    "Nueva programación de otoño",
		Author:   "Ana",
		Excerpt:  "Llegan programas nuevos a la radio.",
		Content:  "Este otoño estrenamos cuatro programas nuevos en la grilla.",
		ImageURL: "https://img.example.com/otono.jpg",
		Category: "Noticias",
	})
	require.NoError(t, err)

	w := ts.do(http.MethodGet, "/feed.xml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")
	assert.Contains(t, w.Body.String(), "https://radio.example.com/blog/nueva-programacion-de-otono")
}

func TestBlogFeedDoesNotShadowPostPages(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/feed.xml", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/api/pages/blog/feed.xml", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, "not found", decode(t, w)["error"])
}

func TestSaveSettingsKeepsStoredValuesWhenReadFails(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)
	ctx := context.Background()

	s := settings.Defaults()
	s.SiteName = "Mi Radio FM"
	s.RadioProvider = settings.ProviderZeno
	s.RadioAPIKey = "abc123"
	require.NoError(t, ts.settings.Save(ctx, &s))

	ts.store.failSettings.Store(1)
	w := ts.do(http.MethodPut, "/admin/api/settings", `{"whatsappNumber":"555"}`, cookie)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	got, err := ts.settings.Stored(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Mi Radio FM", got.SiteName)
	assert.Equal(t, settings.ProviderZeno, got.RadioProvider)
	assert.Equal(t, "abc123", got.RadioAPIKey)
	assert.Empty(t, got.WhatsappNumber)

	// a healthy read merges the submitted fields over the stored ones
	w = ts.do(http.MethodPut, "/admin/api/settings", `{"whatsappNumber":"555"}`, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got, err = ts.settings.Stored(ctx)
	require.NoError(t, err)
	assert.Equal(t, "555", got.WhatsappNumber)
	assert.Equal(t, "abc123", got.RadioAPIKey)
}

func TestPageRenderedDuringWriteIsNotCached(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	w := ts.do(http.MethodPost, "/admin/api/blog", validPost, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	entered, release := ts.store.holdQuery(content.CollectionBlogPosts)
	done := make(chan *httptest.ResponseRecorder, 1)
	go func() { done <- ts.do(http.MethodGet, "/api/pages/blog", "") }()
	<-entered

	second := strings.Replace(validPost, "Nueva programación de otoño", "Segunda entrada del blog", 1)
	w = ts.do(http.MethodPost, "/admin/api/blog", second, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	close(release)
	stale := <-done
	require.Equal(t, http.StatusOK, stale.Code)
	assert.Len(t, decode(t, stale)["posts"], 1)

	w = ts.do(http.MethodGet, "/api/pages/blog", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["posts"], 2)
	assert.Contains(t, w.Body.String(), "Segunda entrada del blog")
}
