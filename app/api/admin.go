package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/radio-site/app/apperr"
	"github.com/lysyi3m/radio-site/app/content"
	"github.com/lysyi3m/radio-site/app/feed"
	"github.com/lysyi3m/radio-site/app/songlinks"
	"github.com/lysyi3m/radio-site/app/store"
	"github.com/lysyi3m/radio-site/app/tasks"
	"github.com/lysyi3m/radio-site/app/validation"
)

// registerCRUD mounts list, upsert and delete endpoints for one content
// type under name.
func registerCRUD[T any, P content.Document[T]](g *gin.RouterGroup, name string, repo *content.Repository[T, P]) {
	g.GET("/"+name, func(c *gin.Context) {
		items, err := repo.List(c.Request.Context(), store.Query{})
		if err != nil {
			respondError(c, "list_"+repo.Collection(), err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
	})

	g.POST("/"+name, func(c *gin.Context) {
		var v T
		if !bindJSON(c, &v) {
			return
		}
		id, err := repo.Upsert(c.Request.Context(), P(&v))
		if err != nil {
			respondError(c, "upsert_"+repo.Collection(), err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "item": v})
	})

	g.DELETE("/"+name+"/:id", func(c *gin.Context) {
		if err := repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, "delete_"+repo.Collection(), err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

type flagRequest struct {
	Value *bool `json:"value"`
}

func (h *Handler) SetJoinReviewed(c *gin.Context) {
	var req flagRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}

	sub, err := h.repos.JoinSubmissions.Modify(c.Request.Context(), c.Param("id"), func(v *content.JoinSubmission) error {
		v.Reviewed = *req.Value
		return nil
	})
	if err != nil {
		respondError(c, "review_join_submission", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": sub})
}

func (h *Handler) SetSubmissionRead(c *gin.Context) {
	var req flagRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}

	sub, err := h.repos.UserSubmissions.Modify(c.Request.Context(), c.Param("id"), func(v *content.UserSubmission) error {
		v.Read = *req.Value
		return nil
	})
	if err != nil {
		respondError(c, "read_user_submission", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": sub})
}

func (h *Handler) GetWeek(c *gin.Context) {
	week, err := h.schedule.Week(c.Request.Context())
	if err != nil {
		respondError(c, "get_week", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"week": week})
}

type entryChange struct {
	Expected content.Program `json:"expected"`
	Entry    content.Program `json:"entry"`
}

type dayReplacement struct {
	Schedule []content.Program `json:"schedule"`
}

func entryIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be a non-negative integer"})
		return 0, false
	}
	return index, true
}

func (h *Handler) AddScheduleEntry(c *gin.Context) {
	var entry content.Program
	if !bindJSON(c, &entry) {
		return
	}

	day, err := h.schedule.AddEntry(c.Request.Context(), c.Param("day"), entry)
	if err != nil {
		respondError(c, "add_schedule_entry", err)
		return
	}
	c.JSON(http.StatusOK, day)
}

func (h *Handler) UpdateScheduleEntry(c *gin.Context) {
	index, ok := entryIndex(c)
	if !ok {
		return
	}
	var req entryChange
	if !bindJSON(c, &req) {
		return
	}

	day, err := h.schedule.UpdateEntry(c.Request.Context(), c.Param("day"), index, req.Expected, req.Entry)
	if err != nil {
		respondError(c, "update_schedule_entry", err)
		return
	}
	c.JSON(http.StatusOK, day)
}

func (h *Handler) DeleteScheduleEntry(c *gin.Context) {
	index, ok := entryIndex(c)
	if !ok {
		return
	}
	var req entryChange
	if !bindJSON(c, &req) {
		return
	}

	day, err := h.schedule.DeleteEntry(c.Request.Context(), c.Param("day"), index, req.Expected)
	if err != nil {
		respondError(c, "delete_schedule_entry", err)
		return
	}
	c.JSON(http.StatusOK, day)
}

func (h *Handler) ReplaceScheduleDay(c *gin.Context) {
	var req dayReplacement
	if !bindJSON(c, &req) {
		return
	}

	day, err := h.schedule.ReplaceDay(c.Request.Context(), c.Param("day"), req.Schedule)
	if err != nil {
		respondError(c, "replace_schedule_day", err)
		return
	}
	c.JSON(http.StatusOK, day)
}

// GetAdminSettings returns the stored settings including secrets.
func (h *Handler) GetAdminSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Load(c.Request.Context()))
}

// SaveSettings applies the submitted fields over the current settings.
func (h *Handler) SaveSettings(c *gin.Context) {
	s, err := h.settings.Stored(c.Request.Context())
	if err != nil {
		respondError(c, "load_settings", err)
		return
	}
	if !bindJSON(c, &s) {
		return
	}

	if err := h.settings.Save(c.Request.Context(), &s); err != nil {
		respondError(c, "save_settings", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

type generateRequest struct {
	Count int `json:"count"`
}

func (h *Handler) GenerateInvitations(c *gin.Context) {
	req := generateRequest{Count: 1}
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	codes, err := h.invites.Generate(c.Request.Context(), req.Count)
	if err != nil {
		respondError(c, "generate_invitations", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"items": codes})
}

// FindSongLinks asks the AI helper for streaming links. Every failure
// other than bad input is reported as a failed search.
func (h *Handler) FindSongLinks(c *gin.Context) {
	var q songlinks.Query
	if !bindJSON(c, &q) {
		return
	}
	if h.links == nil {
		slog.Warn("Song link search requested but no AI model is configured")
		c.JSON(http.StatusBadGateway, gin.H{"error": "search failed"})
		return
	}

	links, err := h.links.Find(c.Request.Context(), q)
	if err != nil {
		var ve *validation.RequestValidationError
		if errors.As(err, &ve) {
			respondError(c, "find_song_links", err)
			return
		}
		slog.Error("Song link search failed", "title", q.Title, "artist", q.Artist, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, links)
}

func (h *Handler) SeedDemoContent(c *gin.Context) {
	summary, err := h.seeder.Run(c.Request.Context())
	if err != nil {
		respondError(c, "seed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"summary": summary})
}

type importRequest struct {
	URL string `json:"url" validate:"required,http_url"`
}

// ImportBlogDraft turns an article page into an unsaved blog post draft.
func (h *Handler) ImportBlogDraft(c *gin.Context) {
	var req importRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validation.Struct(&req); err != nil {
		respondError(c, "import_blog_draft", err)
		return
	}
	pageURL, err := url.Parse(req.URL)
	if err != nil {
		respondError(c, "import_blog_draft", fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err))
		return
	}

	data, err := h.fetcher.FetchHTML(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, "import_blog_draft", &apperr.UpstreamError{Service: pageURL.Host, Err: err})
		return
	}

	article, err := h.extractor.Run(data, pageURL)
	if err != nil {
		slog.Warn("Content extraction failed", "url", req.URL, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no se pudo extraer el artículo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"draft": feed.DraftFromArticle(article)})
}

func (h *Handler) ImportRecordings(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "background tasks are not running"})
		return
	}
	if err := h.scheduler.Trigger(tasks.TaskTypeImportRecordings); err != nil {
		slog.Error("Failed to enqueue recordings import", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

type revalidateRequest struct {
	Paths []string `json:"paths"`
}

// RevalidatePages drops the given cached pages, or all of them when no
// path is named.
func (h *Handler) RevalidatePages(c *gin.Context) {
	var req revalidateRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	if len(req.Paths) == 0 {
		h.pages.Purge()
	} else {
		h.pages.Revalidate(req.Paths...)
	}
	c.JSON(http.StatusOK, gin.H{"cached": h.pages.Len()})
}
