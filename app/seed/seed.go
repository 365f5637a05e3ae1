// Package seed fills an empty site with demo content.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/radio-site/app/apperr"
	"github.com/lysyi3m/radio-site/app/content"
	"github.com/lysyi3m/radio-site/app/schedule"
)

//go:embed demo.yaml
var demoYAML []byte

// demoFile mirrors demo.yaml. Entries stay untyped until they are
// converted through the JSON field names of the content types.
type demoFile struct {
	BlogPosts     []map[string]any             `yaml:"blogPosts"`
	Campaigns     []map[string]any             `yaml:"campaigns"`
	HeroSlides    []map[string]any             `yaml:"heroSlides"`
	TeamMembers   []map[string]any             `yaml:"teamMembers"`
	Sponsors      []map[string]any             `yaml:"sponsors"`
	TopSongs      []map[string]any             `yaml:"topSongs"`
	RecordedShows []map[string]any             `yaml:"recordedShows"`
	Schedule      map[string][]content.Program `yaml:"schedule"`
}

// Summary counts the documents written per collection.
type Summary map[string]int

type Seeder struct {
	repos    *content.Repositories
	schedule *schedule.Editor
	data     []byte
	mu       sync.Mutex
}

func NewSeeder(repos *content.Repositories, editor *schedule.Editor) *Seeder {
	return &Seeder{repos: repos, schedule: editor, data: demoYAML}
}

// Run writes the demo content. It refuses with ErrConflict, writing
// nothing, when any blog post already exists.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.repos.BlogPosts.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("%w: site already has %d blog posts", apperr.ErrConflict, n)
	}

	var demo demoFile
	if err := yaml.Unmarshal(s.data, &demo); err != nil {
		return nil, fmt.Errorf("failed to parse demo content: %w", err)
	}

	summary := Summary{}
	steps := []func() error{
		func() error { return upsertAll(ctx, s.repos.BlogPosts, demo.BlogPosts, summary) },
		func() error { return upsertAll(ctx, s.repos.Campaigns, demo.Campaigns, summary) },
		func() error { return upsertAll(ctx, s.repos.HeroSlides, demo.HeroSlides, summary) },
		func() error { return upsertAll(ctx, s.repos.TeamMembers, demo.TeamMembers, summary) },
		func() error { return upsertAll(ctx, s.repos.Sponsors, demo.Sponsors, summary) },
		func() error { return upsertAll(ctx, s.repos.TopSongs, demo.TopSongs, summary) },
		func() error { return upsertAll(ctx, s.repos.RecordedShows, demo.RecordedShows, summary) },
		func() error { return s.seedSchedule(ctx, demo.Schedule, summary) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return summary, err
		}
	}

	slog.Info("Demo content seeded", "summary", summary)
	return summary, nil
}

func upsertAll[T any, P content.Document[T]](ctx context.Context, repo *content.Repository[T, P], raw []map[string]any, summary Summary) error {
	for i, entry := range raw {
		var v T
		if err := convert(entry, &v); err != nil {
			return fmt.Errorf("failed to decode %s entry %d: %w", repo.Collection(), i, err)
		}
		if _, err := repo.Upsert(ctx, P(&v)); err != nil {
			return fmt.Errorf("failed to seed %s entry %d: %w", repo.Collection(), i, err)
		}
		summary[repo.Collection()]++
	}
	return nil
}

func convert(entry map[string]any, v any) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Seeder) seedSchedule(ctx context.Context, week map[string][]content.Program, summary Summary) error {
	for _, day := range schedule.Days {
		entries, ok := week[day]
		if !ok {
			continue
		}
		if _, err := s.schedule.ReplaceDay(ctx, day, entries); err != nil {
			return fmt.Errorf("failed to seed schedule for %s: %w", day, err)
		}
		summary[content.CollectionWeeklySchedule]++
	}
	return nil
}
