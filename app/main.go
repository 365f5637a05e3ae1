package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/radio-site/app/api"
	"github.com/lysyi3m/radio-site/app/auth"
	"github.com/lysyi3m/radio-site/app/cfg"
	"github.com/lysyi3m/radio-site/app/content"
	"github.com/lysyi3m/radio-site/app/feed"
	"github.com/lysyi3m/radio-site/app/invites"
	"github.com/lysyi3m/radio-site/app/radio"
	"github.com/lysyi3m/radio-site/app/revalidate"
	"github.com/lysyi3m/radio-site/app/schedule"
	"github.com/lysyi3m/radio-site/app/seed"
	"github.com/lysyi3m/radio-site/app/settings"
	"github.com/lysyi3m/radio-site/app/songlinks"
	"github.com/lysyi3m/radio-site/app/store/backend"
	"github.com/lysyi3m/radio-site/app/tasks"
)

const limiterIdleTime = time.Hour

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting radio-site server", "version", appCfg.Version, "store", appCfg.StoreBackend)

	ctx := context.Background()
	st, err := backend.Open(ctx, backend.Options{
		Backend:              appCfg.StoreBackend,
		SQLitePath:           appCfg.SQLitePath,
		FirestoreProject:     appCfg.FirestoreProject,
		FirestoreCredentials: appCfg.FirestoreCredentials,
	})
	if err != nil {
		slog.Error("Failed to open document store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	pages := revalidate.NewPageCache()
	siteSettings := settings.NewAccessor(st, pages, appCfg.SettingsTimeout)
	repos := content.NewRepositories(st, pages)
	editor := schedule.NewEditor(st, pages)
	codes := invites.NewService(repos.InvitationCodes)

	tokens, err := auth.NewTokenManager(appCfg.SessionSecret, appCfg.SessionTTL)
	if err != nil {
		slog.Error("Failed to create session token manager", "error", err)
		os.Exit(1)
	}
	limiter := auth.NewLoginLimiter(appCfg.LoginBurst, time.Minute)
	authService := auth.NewService(st, codes, tokens, limiter,
		auth.WithRegistrationGate(func(ctx context.Context) bool {
			return siteSettings.Get(ctx).EnableRegistration
		}))

	var links api.LinkFinder
	if appCfg.AIAPIKey != "" {
		model, err := songlinks.NewGemini(ctx, appCfg.AIAPIKey, appCfg.AIModel)
		if err != nil {
			slog.Error("Failed to create song link finder", "error", err)
			os.Exit(1)
		}
		links = songlinks.NewFinder(model)
	} else {
		slog.Warn("Song link finder disabled (GEMINI_API_KEY not set)")
	}

	fetcher := feed.NewFetcher(nil, appCfg.UserAgent, appCfg.UpstreamTimeout)
	parser := feed.NewParser()
	filterer := feed.NewFilterer()

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(time.Duration(appCfg.SchedulerInterval)*time.Second, appCfg.WorkerCount)
	scheduler.Every(func() tasks.TaskInterface {
		return tasks.NewImportRecordingsTask(siteSettings, fetcher, parser, filterer, repos.RecordedShows)
	})
	scheduler.Every(func() tasks.TaskInterface {
		return tasks.NewCleanupLimiterTask(limiter, limiterIdleTime)
	})
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(api.Deps{
		Repos:         repos,
		Schedule:      editor,
		Settings:      siteSettings,
		Invites:       codes,
		Auth:          authService,
		Seeder:        seed.NewSeeder(repos, editor),
		Pages:         pages,
		Radio:         radio.NewClient(siteSettings, appCfg.UpstreamTimeout, appCfg.UserAgent),
		Links:         links,
		Fetcher:       fetcher,
		Scheduler:     scheduler,
		SiteURL:       appCfg.SiteURL(),
		SecureCookies: appCfg.SecureCookies,
	})
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "site_url", appCfg.SiteURL())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("radio-site server shutdown complete")
}
