package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/radio-site/app/cfg"
	"github.com/lysyi3m/radio-site/app/content"
	"github.com/lysyi3m/radio-site/app/feed"
	"github.com/lysyi3m/radio-site/app/radio"
	"github.com/lysyi3m/radio-site/app/revalidate"
	"github.com/lysyi3m/radio-site/app/settings"
	"github.com/lysyi3m/radio-site/app/store"
)

const (
	xmlContentType = "application/xml; charset=utf-8"

	feedItemLimit = 50
)

func NewHandler(d Deps) *Handler {
	return &Handler{
		repos:         d.Repos,
		schedule:      d.Schedule,
		settings:      d.Settings,
		invites:       d.Invites,
		auth:          d.Auth,
		seeder:        d.Seeder,
		pages:         d.Pages,
		radio:         d.Radio,
		links:         d.Links,
		fetcher:       d.Fetcher,
		extractor:     feed.NewContentExtractor(),
		generator:     feed.NewGenerator(),
		scheduler:     d.Scheduler,
		siteURL:       strings.TrimRight(d.SiteURL, "/"),
		secureCookies: d.SecureCookies,
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   cfg.GetVersion(),
		"pages":     h.pages.Len(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) GetNowPlaying(c *gin.Context) {
	body, err := h.radio.NowPlaying(c.Request.Context())
	h.proxyRadio(c, radio.EndpointNowPlaying, body, err)
}

func (h *Handler) GetHistory(c *gin.Context) {
	body, err := h.radio.History(c.Request.Context())
	h.proxyRadio(c, radio.EndpointHistory, body, err)
}

// proxyRadio answers with the provider payload or, on any failure, with
// the fixed radio error message.
func (h *Handler) proxyRadio(c *gin.Context, endpoint string, body []byte, err error) {
	if err != nil {
		slog.Error("Radio proxy error", "endpoint", endpoint, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": radio.ErrorMessage})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, jsonContentType, body)
}

// CreateJoinSubmission stores a volunteer application. Client-set ids and
// review flags are ignored.
func (h *Handler) CreateJoinSubmission(c *gin.Context) {
	var sub content.JoinSubmission
	if !bindJSON(c, &sub) {
		return
	}
	sub.ID = ""

	id, err := h.repos.JoinSubmissions.Upsert(c.Request.Context(), &sub)
	if err != nil {
		respondError(c, "create_join_submission", err)
		return
	}

	slog.Info("Join submission received", "id", id, "interest", sub.Interest)
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// CreateUserSubmission stores a song request or shout-out.
func (h *Handler) CreateUserSubmission(c *gin.Context) {
	var sub content.UserSubmission
	if !bindJSON(c, &sub) {
		return
	}
	sub.ID = ""

	id, err := h.repos.UserSubmissions.Upsert(c.Request.Context(), &sub)
	if err != nil {
		respondError(c, "create_user_submission", err)
		return
	}

	slog.Info("User submission received", "id", id, "type", sub.Type)
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) GetBlogFeed(c *gin.Context) {
	h.servePage(c, revalidate.FeedKey(revalidate.PathBlog), xmlContentType, nil, func(c *gin.Context, s settings.Settings) ([]byte, error) {
		posts, err := h.repos.BlogPosts.List(c.Request.Context(), store.Query{Limit: feedItemLimit})
		if err != nil {
			return nil, err
		}

		rss, err := h.generator.Run(feed.Channel{
			Title:       s.SiteName,
			Link:        h.siteURL + revalidate.PathBlog,
			Description: "Noticias de " + s.SiteName,
			SelfURL:     h.siteURL + "/feed.xml",
			Language:    "es",
		}, feed.BlogItems(h.siteURL, posts))
		if err != nil {
			return nil, err
		}
		return []byte(rss), nil
	})
}

func (h *Handler) GetRecordingsFeed(c *gin.Context) {
	visible := func(s settings.Settings) bool { return s.ShowRecordings }
	h.servePage(c, revalidate.FeedKey(revalidate.PathRecordings), xmlContentType, visible, func(c *gin.Context, s settings.Settings) ([]byte, error) {
		shows, err := h.repos.RecordedShows.List(c.Request.Context(), store.Query{Limit: feedItemLimit})
		if err != nil {
			return nil, err
		}

		ch := feed.Channel{
			Title:       s.SiteName + " - Grabaciones",
			Link:        h.siteURL + revalidate.PathRecordings,
			Description: "Programas grabados de " + s.SiteName,
			SelfURL:     h.siteURL + "/recordings/feed.xml",
			Language:    "es",
			Podcast:     true,
			Author:      s.SiteName,
		}
		if len(shows) > 0 {
			ch.ImageURL = shows[0].ImageURL
		}

		rss, err := h.generator.Run(ch, feed.ShowItems(h.siteURL, shows))
		if err != nil {
			return nil, err
		}
		return []byte(rss), nil
	})
}
