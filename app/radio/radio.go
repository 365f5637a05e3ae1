// Package radio proxies the station's "now playing" and "history" data from
// the configured streaming provider and normalizes it to one shape.
package radio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/lysyi3m/radio-site/app/apperr"
	"github.com/lysyi3m/radio-site/app/metrics"
	"github.com/lysyi3m/radio-site/app/settings"
)

// ErrorMessage is the body text shown whenever the provider cannot be read.
const ErrorMessage = "No se pudo obtener la información de la radio"

const (
	EndpointNowPlaying = "now-playing"
	EndpointHistory    = "history"

	breakerName = "radio-upstream"
	maxBody     = 1 << 20
)

// SettingsSource supplies the provider configuration for each call.
type SettingsSource interface {
	Get(ctx context.Context) settings.Settings
}

type Client struct {
	http      *http.Client
	cb        *gobreaker.CircuitBreaker[[]byte]
	settings  SettingsSource
	userAgent string
}

func NewClient(src SettingsSource, timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Client{
		http:      &http.Client{Timeout: timeout},
		cb:        cb,
		settings:  src,
		userAgent: userAgent,
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// NowPlaying returns the current track as JSON in the common shape.
func (c *Client) NowPlaying(ctx context.Context) ([]byte, error) {
	cfg := c.settings.Get(ctx)
	p, err := providerFor(cfg.RadioProvider)
	if err != nil {
		return nil, err
	}

	body, err := c.fetch(ctx, p.nowPlayingURL(cfg), p.authHeader(cfg))
	if err != nil {
		c.record(EndpointNowPlaying, p.name(), "error")
		return nil, err
	}

	out, err := p.reshapeNowPlaying(body)
	if err != nil {
		c.record(EndpointNowPlaying, p.name(), "error")
		return nil, &apperr.UpstreamError{Service: p.name(), Err: err}
	}
	c.record(EndpointNowPlaying, p.name(), "ok")
	return out, nil
}

// History returns recently played tracks as a JSON array. Providers
// without a history API yield an empty array.
func (c *Client) History(ctx context.Context) ([]byte, error) {
	cfg := c.settings.Get(ctx)
	p, err := providerFor(cfg.RadioProvider)
	if err != nil {
		return nil, err
	}

	url := p.historyURL(cfg)
	if url == "" {
		c.record(EndpointHistory, p.name(), "empty")
		return []byte("[]"), nil
	}

	body, err := c.fetch(ctx, url, p.authHeader(cfg))
	if err != nil {
		c.record(EndpointHistory, p.name(), "error")
		return nil, err
	}

	out, err := p.reshapeHistory(body)
	if err != nil {
		c.record(EndpointHistory, p.name(), "error")
		return nil, &apperr.UpstreamError{Service: p.name(), Err: err}
	}
	c.record(EndpointHistory, p.name(), "ok")
	return out, nil
}

func (c *Client) record(endpoint, provider, outcome string) {
	metrics.RadioProxyRequests.WithLabelValues(endpoint, provider, outcome).Inc()
}

func (c *Client) fetch(ctx context.Context, url, authorization string) ([]byte, error) {
	body, err := c.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, &apperr.UpstreamError{Service: "radio", Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &apperr.UpstreamError{Service: "radio", StatusCode: resp.StatusCode}
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return nil, &apperr.UpstreamError{Service: "radio", Err: err}
		}
		return data, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			slog.Warn("Radio request rejected by circuit breaker", "url", url)
			return nil, &apperr.UpstreamError{Service: "radio", Err: err}
		}
		slog.Error("Radio upstream request failed", "url", url, "error", err)
		return nil, err
	}
	return body, nil
}

// Song and Track mirror the AzuraCast now-playing fields the site renders.
type Song struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
	Art    string `json:"art,omitempty"`
	Text   string `json:"text"`
}

type Track struct {
	Song     Song  `json:"song"`
	PlayedAt int64 `json:"played_at,omitempty"`
	Duration int   `json:"duration,omitempty"`
}

type NowPlaying struct {
	IsOnline    bool   `json:"is_online"`
	NowPlaying  Track  `json:"now_playing"`
	PlayingNext *Track `json:"playing_next,omitempty"`
}

func newSong(title, artist, album, art string) Song {
	text := title
	if artist != "" {
		text = artist + " - " + title
	}
	return Song{Title: title, Artist: artist, Album: album, Art: art, Text: strings.TrimSpace(text)}
}
