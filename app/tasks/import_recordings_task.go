package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/radio-site/app/content"
	"github.com/lysyi3m/radio-site/app/feed"
	"github.com/lysyi3m/radio-site/app/settings"
	"github.com/lysyi3m/radio-site/app/validation"
)

type SettingsSource interface {
	Get(ctx context.Context) settings.Settings
}

type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type ShowInserter interface {
	Insert(ctx context.Context, id string, v *content.RecordedShow) (bool, error)
}

// ImportRecordingsTask copies new episodes of the configured podcast feed
// into the recorded shows. Episodes already imported are left untouched.
type ImportRecordingsTask struct {
	Task
	settings SettingsSource
	fetcher  FeedFetcher
	parser   *feed.Parser
	filterer *feed.Filterer
	shows    ShowInserter
}

func NewImportRecordingsTask(src SettingsSource, fetcher FeedFetcher, parser *feed.Parser, filterer *feed.Filterer, shows ShowInserter) *ImportRecordingsTask {
	return &ImportRecordingsTask{
		Task:     NewTask(TaskTypeImportRecordings),
		settings: src,
		fetcher:  fetcher,
		parser:   parser,
		filterer: filterer,
		shows:    shows,
	}
}

func (t *ImportRecordingsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	cfg := t.settings.Get(ctx)
	if cfg.RecordingsFeedURL == "" {
		slog.Debug("Recordings feed not configured, skipping import")
		return nil
	}

	data, err := t.fetcher.Fetch(ctx, cfg.RecordingsFeedURL)
	if err != nil {
		return fmt.Errorf("failed to fetch recordings feed: %w", err)
	}

	metadata, items, err := t.parser.Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse recordings feed: %w", err)
	}

	items = t.filterer.Run(items, feed.KeywordFilter("title", cfg.RecordingsInclude, cfg.RecordingsExclude))

	filteredCount := 0
	existingCount := 0
	invalidCount := 0
	newCount := 0

	for _, item := range items {
		if item.IsFiltered {
			filteredCount++
			slog.Debug("Episode filtered", "guid", item.GUID, "reason", item.FilterReason)
			continue
		}

		show := feed.ShowFromItem(item, metadata)
		created, err := t.shows.Insert(ctx, feed.ShowID(item), &show)
		if err != nil {
			var ve *validation.RequestValidationError
			if errors.As(err, &ve) {
				invalidCount++
				slog.Warn("Skipping invalid episode", "guid", item.GUID, "error", err)
				continue
			}
			return fmt.Errorf("failed to store episode %s: %w", item.GUID, err)
		}

		if created {
			newCount++
		} else {
			existingCount++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"total", len(items),
		"existing", existingCount,
		"filtered", filteredCount,
		"invalid", invalidCount,
		"new", newCount)

	return nil
}
