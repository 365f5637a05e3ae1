// Package revalidate caches rendered page models by page path and drops
// them when content behind the page changes.
package revalidate

import (
	"log/slog"
	"sync"

	"github.com/lysyi3m/radio-site/app/metrics"
)

// Page paths known to render stored content.
const (
	PathHome       = "/"
	PathBlog       = "/blog"
	PathSchedule   = "/programacion"
	PathRecordings = "/grabaciones"
	PathSponsors   = "/patrocinadores"
	PathTeam       = "/equipo"
	PathTop10      = "/top-10"
	PathCampaigns  = "/campanas"
	PathJoin       = "/unete"

	// PathAll matches every cached page.
	PathAll = "/*"

	PathAdminBlog        = "/admin/blog"
	PathAdminCampaigns   = "/admin/campaigns"
	PathAdminHero        = "/admin/hero"
	PathAdminTeam        = "/admin/team"
	PathAdminRecordings  = "/admin/recordings"
	PathAdminSponsors    = "/admin/sponsors"
	PathAdminTop10       = "/admin/top10"
	PathAdminInvitations = "/admin/invitations"
	PathAdminSchedule    = "/admin/schedule"
	PathAdminSettings    = "/admin/settings"
	PathAdminSubmissions = "/admin/submissions"
)

// FeedKey is the cache key of the feed published for the page at path.
// It sits in the page's subtree but no page route can produce it.
func FeedKey(path string) string {
	return path + "/#feed"
}

// Revalidator is told which page paths are stale after a write.
type Revalidator interface {
	Revalidate(paths ...string)
}

// PageCache holds rendered page bodies keyed by path. A page stays cached
// until one of its paths is revalidated or the whole cache is purged.
//
// Every revalidation moves the generation forward. A page rendered from
// reads that started under an older generation is not stored, so a write
// racing a render cannot leave a stale page behind.
type PageCache struct {
	mu    sync.RWMutex
	pages map[string][]byte
	gen   uint64
}

var _ Revalidator = (*PageCache)(nil)

func NewPageCache() *PageCache {
	return &PageCache{pages: make(map[string][]byte)}
}

func (pc *PageCache) Get(path string) ([]byte, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	body, ok := pc.pages[path]
	if !ok {
		metrics.PageCacheMisses.Inc()
		return nil, false
	}
	metrics.PageCacheHits.Inc()
	return body, true
}

// Generation is read before rendering a page and handed back to Put.
func (pc *PageCache) Generation() uint64 {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.gen
}

// Put stores body under path unless the cache was revalidated after gen
// was read. It reports whether the body was stored.
func (pc *PageCache) Put(path string, body []byte, gen uint64) bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if gen != pc.gen {
		slog.Debug("Dropped page rendered before revalidation", "path", path)
		return false
	}
	pc.pages[path] = body
	metrics.PageCacheEntries.Set(float64(len(pc.pages)))
	return true
}

// Revalidate drops the cached pages for paths. A path ending in "/*"
// drops every page below it as well.
func (pc *PageCache) Revalidate(paths ...string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.gen++
	for _, path := range paths {
		if prefix, ok := subtree(path); ok {
			for key := range pc.pages {
				if key == prefix || len(key) > len(prefix) && key[:len(prefix)+1] == prefix+"/" {
					delete(pc.pages, key)
				}
			}
		} else {
			delete(pc.pages, path)
		}
		metrics.PageRevalidations.WithLabelValues(path).Inc()
	}
	metrics.PageCacheEntries.Set(float64(len(pc.pages)))
	slog.Debug("Pages revalidated", "paths", paths)
}

// Purge drops every cached page.
func (pc *PageCache) Purge() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.gen++
	pc.pages = make(map[string][]byte)
	metrics.PageCacheEntries.Set(0)
}

func (pc *PageCache) Len() int {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return len(pc.pages)
}

func subtree(path string) (string, bool) {
	if len(path) >= 2 && path[len(path)-2:] == "/*" {
		return path[:len(path)-2], true
	}
	return "", false
}

// Nop discards revalidation signals.
type Nop struct{}

func (Nop) Revalidate(...string) {}
