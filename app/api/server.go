package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lysyi3m/radio-site/app/auth"
	"github.com/lysyi3m/radio-site/app/cfg"
	"github.com/lysyi3m/radio-site/app/settings"
)

// NewServer creates the HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health", "/metrics"},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.Use(settings.Middleware())

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, h *Handler) {
	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/feed.xml", h.GetBlogFeed)
	r.GET("/recordings/feed.xml", h.GetRecordingsFeed)

	public := r.Group("/api")
	{
		public.GET("/settings", h.GetSettings)
		public.GET("/now-playing", h.GetNowPlaying)
		public.GET("/history", h.GetHistory)
		public.POST("/join", h.CreateJoinSubmission)
		public.POST("/submissions", h.CreateUserSubmission)

		pages := public.Group("/pages")
		pages.GET("/home", h.GetHomePage)
		pages.GET("/blog", h.GetBlogPage)
		pages.GET("/blog/:slug", h.GetBlogPostPage)
		pages.GET("/schedule", h.GetSchedulePage)
		pages.GET("/recordings", h.GetRecordingsPage)
		pages.GET("/sponsors", h.GetSponsorsPage)
		pages.GET("/team", h.GetTeamPage)
		pages.GET("/top10", h.GetTop10Page)
		pages.GET("/campaigns", h.GetCampaignsPage)

		session := public.Group("/auth")
		session.POST("/register", h.Register)
		session.POST("/login", h.Login)
		session.POST("/logout", h.Logout)
		session.GET("/me", auth.RequireSession(h.auth), h.CurrentUser)
	}

	admin := r.Group("/admin/api")
	admin.Use(auth.RequireSession(h.auth))
	{
		registerCRUD(admin, "blog", h.repos.BlogPosts)
		registerCRUD(admin, "campaigns", h.repos.Campaigns)
		registerCRUD(admin, "hero", h.repos.HeroSlides)
		registerCRUD(admin, "team", h.repos.TeamMembers)
		registerCRUD(admin, "recordings", h.repos.RecordedShows)
		registerCRUD(admin, "sponsors", h.repos.Sponsors)
		registerCRUD(admin, "top10", h.repos.TopSongs)
		registerCRUD(admin, "invitations", h.repos.InvitationCodes)
		registerCRUD(admin, "join", h.repos.JoinSubmissions)
		registerCRUD(admin, "submissions", h.repos.UserSubmissions)

		admin.POST("/join/:id/reviewed", h.SetJoinReviewed)
		admin.POST("/submissions/:id/read", h.SetSubmissionRead)
		admin.POST("/invitations/generate", h.GenerateInvitations)
		admin.POST("/blog/import", h.ImportBlogDraft)
		admin.POST("/recordings/import", h.ImportRecordings)

		admin.GET("/schedule", h.GetWeek)
		admin.POST("/schedule/:day", h.AddScheduleEntry)
		admin.PUT("/schedule/:day", h.ReplaceScheduleDay)
		admin.PUT("/schedule/:day/:index", h.UpdateScheduleEntry)
		admin.DELETE("/schedule/:day/:index", h.DeleteScheduleEntry)

		admin.GET("/settings", h.GetAdminSettings)
		admin.PUT("/settings", h.SaveSettings)

		admin.POST("/songlinks", h.FindSongLinks)
		admin.POST("/seed", h.SeedDemoContent)
		admin.POST("/revalidate", h.RevalidatePages)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "radio-site",
			"version": cfg.GetVersion(),
			"endpoints": map[string]string{
				"pages":      "/api/pages/<page>",
				"settings":   "/api/settings",
				"nowPlaying": "/api/now-playing",
				"history":    "/api/history",
				"blogFeed":   "/feed.xml",
				"podcast":    "/recordings/feed.xml",
				"admin":      "/admin/api (requires session cookie)",
				"health":     "/health",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}
