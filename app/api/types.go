package api

import (
	"context"

	"github.com/lysyi3m/radio-site/app/auth"
	"github.com/lysyi3m/radio-site/app/content"
	"github.com/lysyi3m/radio-site/app/feed"
	"github.com/lysyi3m/radio-site/app/invites"
	"github.com/lysyi3m/radio-site/app/revalidate"
	"github.com/lysyi3m/radio-site/app/schedule"
	"github.com/lysyi3m/radio-site/app/seed"
	"github.com/lysyi3m/radio-site/app/settings"
	"github.com/lysyi3m/radio-site/app/songlinks"
	"github.com/lysyi3m/radio-site/app/tasks"
)

type RadioProxy interface {
	NowPlaying(ctx context.Context) ([]byte, error)
	History(ctx context.Context) ([]byte, error)
}

type LinkFinder interface {
	Find(ctx context.Context, q songlinks.Query) (*songlinks.Links, error)
}

type PageFetcher interface {
	FetchHTML(ctx context.Context, url string) ([]byte, error)
}

type GeneratorInterface interface {
	Run(ch feed.Channel, items []feed.Item) (string, error)
}

// Deps lists everything the handlers talk to. Links and Scheduler may be
// nil, which turns their endpoints into errors.
type Deps struct {
	Repos         *content.Repositories
	Schedule      *schedule.Editor
	Settings      *settings.Accessor
	Invites       *invites.Service
	Auth          *auth.Service
	Seeder        *seed.Seeder
	Pages         *revalidate.PageCache
	Radio         RadioProxy
	Links         LinkFinder
	Fetcher       PageFetcher
	Scheduler     tasks.TaskSchedulerInterface
	SiteURL       string
	SecureCookies bool
}

type Handler struct {
	repos         *content.Repositories
	schedule      *schedule.Editor
	settings      *settings.Accessor
	invites       *invites.Service
	auth          *auth.Service
	seeder        *seed.Seeder
	pages         *revalidate.PageCache
	radio         RadioProxy
	links         LinkFinder
	fetcher       PageFetcher
	extractor     *feed.ContentExtractor
	generator     GeneratorInterface
	scheduler     tasks.TaskSchedulerInterface
	siteURL       string
	secureCookies bool
}
