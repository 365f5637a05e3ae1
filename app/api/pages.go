package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/lysyi3m/radio-site/app/content"
	"github.com/lysyi3m/radio-site/app/revalidate"
	"github.com/lysyi3m/radio-site/app/settings"
	"github.com/lysyi3m/radio-site/app/store"
)

const (
	jsonContentType = "application/json; charset=utf-8"

	maintenanceMessage = "El sitio está en mantenimiento. Vuelve pronto."

	homePostCount      = 3
	homeRecordingCount = 3
	topSongCount       = 10
)

type homePage struct {
	Settings   settings.Settings      `json:"settings"`
	HeroSlides []content.HeroSlide    `json:"heroSlides"`
	Posts      []content.BlogPost     `json:"latestPosts"`
	Campaigns  []content.Campaign     `json:"campaigns"`
	Sponsors   []content.Sponsor      `json:"sponsors"`
	TopSongs   []content.Song         `json:"topSongs,omitempty"`
	Recordings []content.RecordedShow `json:"latestRecordings,omitempty"`
}

// render builds the body of a page from the current settings.
type render func(c *gin.Context, s settings.Settings) ([]byte, error)

// servePage answers from the page cache under key, rendering and storing
// the body on a miss. Pages are unavailable while the site is in
// maintenance, and hidden ones answer 404.
func (h *Handler) servePage(c *gin.Context, key, contentType string, visible func(settings.Settings) bool, fn render) {
	// taken before anything is read so a write during rendering keeps
	// the result out of the cache
	gen := h.pages.Generation()

	s := h.settings.Get(c.Request.Context())
	if s.MaintenanceMode {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":       maintenanceMessage,
			"maintenance": true,
		})
		return
	}
	if visible != nil && !visible(s) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if body, ok := h.pages.Get(key); ok {
		c.Data(http.StatusOK, contentType, body)
		return
	}

	body, err := fn(c, s)
	if err != nil {
		respondError(c, "render_page", err)
		return
	}

	h.pages.Put(key, body, gen)
	c.Data(http.StatusOK, contentType, body)
}

// jsonPage adapts a page model builder to render.
func jsonPage(build func(c *gin.Context, s settings.Settings) (any, error)) render {
	return func(c *gin.Context, s settings.Settings) ([]byte, error) {
		model, err := build(c, s)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(model)
		if err != nil {
			return nil, fmt.Errorf("failed to encode page: %w", err)
		}
		return body, nil
	}
}

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Get(c.Request.Context()).Public())
}

func (h *Handler) GetHomePage(c *gin.Context) {
	h.servePage(c, revalidate.PathHome, jsonContentType, nil, jsonPage(func(c *gin.Context, s settings.Settings) (any, error) {
		ctx := c.Request.Context()
		page := homePage{Settings: s.Public()}

		var err error
		if page.HeroSlides, err = h.repos.HeroSlides.List(ctx, store.Query{}); err != nil {
			return nil, err
		}
		if page.Posts, err = h.repos.BlogPosts.List(ctx, store.Query{Limit: homePostCount}); err != nil {
			return nil, err
		}
		if page.Campaigns, err = h.repos.Campaigns.List(ctx, store.Query{}); err != nil {
			return nil, err
		}
		if page.Sponsors, err = h.repos.Sponsors.List(ctx, store.Query{}); err != nil {
			return nil, err
		}
		if s.ShowTop10 {
			if page.TopSongs, err = h.repos.TopSongs.List(ctx, store.Query{Limit: topSongCount}); err != nil {
				return nil, err
			}
		}
		if s.ShowRecordings {
			if page.Recordings, err = h.repos.RecordedShows.List(ctx, store.Query{Limit: homeRecordingCount}); err != nil {
				return nil, err
			}
		}
		return page, nil
	}))
}

func (h *Handler) GetBlogPage(c *gin.Context) {
	h.servePage(c, revalidate.PathBlog, jsonContentType, nil, jsonPage(func(c *gin.Context, _ settings.Settings) (any, error) {
		posts, err := h.repos.BlogPosts.List(c.Request.Context(), store.Query{})
		if err != nil {
			return nil, err
		}
		return gin.H{"posts": posts}, nil
	}))
}

func (h *Handler) GetBlogPostPage(c *gin.Context) {
	slug := c.Param("slug")
	if !content.ValidSlug(slug) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.servePage(c, revalidate.PathBlog+"/"+slug, jsonContentType, nil, jsonPage(func(c *gin.Context, _ settings.Settings) (any, error) {
		post, err := h.repos.BlogPostBySlug(c.Request.Context(), slug)
		if err != nil {
			return nil, err
		}
		return gin.H{"post": post}, nil
	}))
}

func (h *Handler) GetSchedulePage(c *gin.Context) {
	visible := func(s settings.Settings) bool { return s.ShowSchedule }
	h.servePage(c, revalidate.PathSchedule, jsonContentType, visible, jsonPage(func(c *gin.Context, _ settings.Settings) (any, error) {
		week, err := h.schedule.Week(c.Request.Context())
		if err != nil {
			return nil, err
		}
		return gin.H{"week": week}, nil
	}))
}

func (h *Handler) GetRecordingsPage(c *gin.Context) {
	visible := func(s settings.Settings) bool { return s.ShowRecordings }
	h.servePage(c, revalidate.PathRecordings, jsonContentType, visible, jsonPage(func(c *gin.Context, _ settings.Settings) (any, error) {
		shows, err := h.repos.RecordedShows.List(c.Request.Context(), store.Query{})
		if err != nil {
			return nil, err
		}
		return gin.H{"shows": shows}, nil
	}))
}

func (h *Handler) GetTop10Page(c *gin.Context) {
	visible := func(s settings.Settings) bool { return s.ShowTop10 }
	h.servePage(c, revalidate.PathTop10, jsonContentType, visible, jsonPage(func(c *gin.Context, _ settings.Settings) (any, error) {
		songs, err := h.repos.TopSongs.List(c.Request.Context(), store.Query{Limit: topSongCount})
		if err != nil {
			return nil, err
		}
		return gin.H{"songs": songs}, nil
	}))
}

func (h *Handler) GetSponsorsPage(c *gin.Context) {
	h.servePage(c, revalidate.PathSponsors, jsonContentType, nil, jsonPage(func(c *gin.Context, _ settings.Settings) (any, error) {
		sponsors, err := h.repos.Sponsors.List(c.Request.Context(), store.Query{})
		if err != nil {
			return nil, err
		}

		levels := map[string][]content.Sponsor{"platinum": {}, "gold": {}, "silver": {}}
		for _, sp := range sponsors {
			levels[sp.Level] = append(levels[sp.Level], sp)
		}
		return gin.H{"sponsors": sponsors, "levels": levels}, nil
	}))
}

func (h *Handler) GetTeamPage(c *gin.Context) {
	h.servePage(c, revalidate.PathTeam, jsonContentType, nil, jsonPage(func(c *gin.Context, _ settings.Settings) (any, error) {
		members, err := h.repos.TeamMembers.List(c.Request.Context(), store.Query{})
		if err != nil {
			return nil, err
		}
		return gin.H{"members": members}, nil
	}))
}

func (h *Handler) GetCampaignsPage(c *gin.Context) {
	h.servePage(c, revalidate.PathCampaigns, jsonContentType, nil, jsonPage(func(c *gin.Context, _ settings.Settings) (any, error) {
		campaigns, err := h.repos.Campaigns.List(c.Request.Context(), store.Query{})
		if err != nil {
			return nil, err
		}
		return gin.H{"campaigns": campaigns}, nil
	}))
}
