// Package settings reads and writes the single site configuration document.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/radio-site/app/apperr"
	"github.com/lysyi3m/radio-site/app/revalidate"
	"github.com/lysyi3m/radio-site/app/store"
	"github.com/lysyi3m/radio-site/app/validation"
)

const (
	Collection = "siteSettings"
	DocumentID = "config"

	DefaultTimeout = 3 * time.Second
)

const (
	ProviderAzuraCast = "azuracast"
	ProviderRadioKing = "radioking"
	ProviderZeno      = "zeno"
)

type Settings struct {
	SiteName           string `json:"siteName" firestore:"siteName" validate:"required,min=2,max=80"`
	RadioProvider      string `json:"radioProvider" firestore:"radioProvider" validate:"required,oneof=azuracast radioking zeno"`
	RadioAPIURL        string `json:"radioApiUrl" firestore:"radioApiUrl" validate:"omitempty,url"`
	RadioStationID     string `json:"radioStationId" firestore:"radioStationId"`
	RadioAPIKey        string `json:"radioApiKey,omitempty" firestore:"radioApiKey"`
	StreamURL          string `json:"streamUrl" firestore:"streamUrl" validate:"omitempty,url"`
	StreamURLBackup    string `json:"streamUrlBackup" firestore:"streamUrlBackup" validate:"omitempty,url"`
	WhatsappNumber     string `json:"whatsappNumber" firestore:"whatsappNumber" validate:"max=20"`
	ContactEmail       string `json:"contactEmail" firestore:"contactEmail" validate:"omitempty,email"`
	InstagramURL       string `json:"instagramUrl" firestore:"instagramUrl" validate:"omitempty,url"`
	FacebookURL        string `json:"facebookUrl" firestore:"facebookUrl" validate:"omitempty,url"`
	YoutubeURL         string `json:"youtubeUrl" firestore:"youtubeUrl" validate:"omitempty,url"`
	TiktokURL          string `json:"tiktokUrl" firestore:"tiktokUrl" validate:"omitempty,url"`
	RecordingsFeedURL  string `json:"recordingsFeedUrl" firestore:"recordingsFeedUrl" validate:"omitempty,url"`
	// Comma-separated keywords matched against imported episode titles.
	RecordingsInclude  string `json:"recordingsInclude" firestore:"recordingsInclude" validate:"max=500"`
	RecordingsExclude  string `json:"recordingsExclude" firestore:"recordingsExclude" validate:"max=500"`
	ShowTop10          bool   `json:"showTop10" firestore:"showTop10"`
	ShowSchedule       bool   `json:"showSchedule" firestore:"showSchedule"`
	ShowRecordings     bool   `json:"showRecordings" firestore:"showRecordings"`
	EnableRegistration bool   `json:"enableRegistration" firestore:"enableRegistration"`
	MaintenanceMode    bool   `json:"maintenanceMode" firestore:"maintenanceMode"`
}

// Defaults is what a site without a stored configuration renders with.
func Defaults() Settings {
	return Settings{
		SiteName:           "Radio Comunitaria",
		RadioProvider:      ProviderAzuraCast,
		RadioAPIURL:        "https://demo.azuracast.com",
		RadioStationID:     "1",
		StreamURL:          "https://demo.azuracast.com/listen/azuratest_radio/radio.mp3",
		ContactEmail:       "contacto@example.com",
		ShowTop10:          true,
		ShowSchedule:       true,
		ShowRecordings:     true,
		EnableRegistration: true,
	}
}

// Public returns a copy safe to hand to anonymous visitors.
func (s Settings) Public() Settings {
	s.RadioAPIKey = ""
	return s
}

type Accessor struct {
	store   store.Store
	reval   revalidate.Revalidator
	timeout time.Duration
}

func NewAccessor(s store.Store, r revalidate.Revalidator, timeout time.Duration) *Accessor {
	if r == nil {
		r = revalidate.Nop{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Accessor{store: s, reval: r, timeout: timeout}
}

// Get returns the site settings with every field populated. Within a
// request carrying a memo the document is read at most once.
func (a *Accessor) Get(ctx context.Context) Settings {
	if m, ok := ctx.Value(memoKey{}).(*memo); ok {
		m.once.Do(func() { m.value = a.Load(ctx) })
		return m.value
	}
	return a.Load(ctx)
}

type loadResult struct {
	snap store.Snapshot
	err  error
}

// Load reads the stored document, giving up after the accessor timeout.
// Any failure yields the defaults; stored fields are merged over them.
func (a *Accessor) Load(ctx context.Context) Settings {
	s, err := a.Stored(ctx)
	if err != nil {
		slog.Error("Failed to read settings, using defaults", "error", err)
		return Defaults()
	}
	return s
}

// Stored reads the document merged over the defaults. A missing document
// yields the defaults; a failed or timed out read is returned as an error.
func (a *Accessor) Stored(ctx context.Context) (Settings, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan loadResult, 1)
	go func() {
		snap, err := a.store.Get(ctx, Collection, DocumentID)
		done <- loadResult{snap: snap, err: err}
	}()

	var res loadResult
	select {
	case res = <-done:
	case <-ctx.Done():
		return Settings{}, apperr.Persistence("get", Collection, fmt.Errorf("read timed out after %s: %w", a.timeout, ctx.Err()))
	}

	if errors.Is(res.err, store.ErrNotFound) {
		return Defaults(), nil
	}
	if res.err != nil {
		return Settings{}, apperr.Persistence("get", Collection, res.err)
	}

	// Decoding over the defaults only replaces fields the document has.
	merged := Defaults()
	if err := res.snap.DataTo(&merged); err != nil {
		return Settings{}, apperr.Persistence("decode", Collection, err)
	}
	return merged, nil
}

// Save validates and stores s, then drops every cached page since any
// page may render settings.
func (a *Accessor) Save(ctx context.Context, s *Settings) error {
	if err := validation.Struct(s); err != nil {
		return err
	}
	if err := a.store.Set(ctx, Collection, DocumentID, s); err != nil {
		return apperr.Persistence("save", Collection, err)
	}
	a.reval.Revalidate(revalidate.PathAll)
	slog.Info("Site settings saved", "provider", s.RadioProvider)
	return nil
}

type memoKey struct{}

type memo struct {
	once  sync.Once
	value Settings
}

// WithMemo returns a context under which Get reads settings at most once.
func WithMemo(ctx context.Context) context.Context {
	return context.WithValue(ctx, memoKey{}, &memo{})
}

// Middleware scopes a settings memo to each request.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithMemo(c.Request.Context()))
		c.Next()
	}
}
