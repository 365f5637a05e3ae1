package radio

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/lysyi3m/radio-site/app/apperr"
	"github.com/lysyi3m/radio-site/app/settings"
)

type provider interface {
	name() string
	nowPlayingURL(cfg settings.Settings) string
	// historyURL is empty when the provider has no history API.
	historyURL(cfg settings.Settings) string
	authHeader(cfg settings.Settings) string
	reshapeNowPlaying(body []byte) ([]byte, error)
	reshapeHistory(body []byte) ([]byte, error)
}

func providerFor(name string) (provider, error) {
	switch name {
	case settings.ProviderAzuraCast:
		return azuraCast{}, nil
	case settings.ProviderRadioKing:
		return radioKing{}, nil
	case settings.ProviderZeno:
		return zeno{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown radio provider %q", apperr.ErrInvalidArgument, name)
	}
}

func baseURL(cfg settings.Settings, fallback string) string {
	if cfg.RadioAPIURL != "" {
		return strings.TrimRight(cfg.RadioAPIURL, "/")
	}
	return fallback
}

// azuraCast already speaks the common shape, so bodies pass through.
type azuraCast struct{}

func (azuraCast) name() string { return settings.ProviderAzuraCast }

func (azuraCast) nowPlayingURL(cfg settings.Settings) string {
	return baseURL(cfg, "") + "/api/nowplaying/" + cfg.RadioStationID
}

func (azuraCast) historyURL(cfg settings.Settings) string {
	return baseURL(cfg, "") + "/api/station/" + cfg.RadioStationID + "/history"
}

func (azuraCast) authHeader(cfg settings.Settings) string {
	if cfg.RadioAPIKey == "" {
		return ""
	}
	return "Bearer " + cfg.RadioAPIKey
}

func passthrough(body []byte) ([]byte, error) {
	if !json.Valid(body) {
		return nil, errors.New("response is not valid JSON")
	}
	return body, nil
}

func (azuraCast) reshapeNowPlaying(body []byte) ([]byte, error) { return passthrough(body) }
func (azuraCast) reshapeHistory(body []byte) ([]byte, error)    { return passthrough(body) }

// radioKing exposes a public widget API with its own field names.
type radioKing struct{}

type radioKingTrack struct {
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Album     string `json:"album"`
	Cover     string `json:"cover"`
	Duration  int    `json:"duration"`
	StartedAt string `json:"started_at"`
	NextTrack *struct {
		Title  string `json:"title"`
		Artist string `json:"artist"`
		Album  string `json:"album"`
		Cover  string `json:"cover"`
	} `json:"next_track"`
}

func (radioKing) name() string { return settings.ProviderRadioKing }

func (radioKing) nowPlayingURL(cfg settings.Settings) string {
	return baseURL(cfg, "https://api.radioking.io") + "/widget/radio/" + cfg.RadioStationID + "/track/current"
}

func (radioKing) historyURL(cfg settings.Settings) string {
	return baseURL(cfg, "https://api.radioking.io") + "/widget/radio/" + cfg.RadioStationID + "/track/ckoi?limit=10"
}

func (radioKing) authHeader(settings.Settings) string { return "" }

// RadioKing timestamps come as "2006-01-02T15:04:05+0000".
func parseRadioKingTime(s string) int64 {
	for _, layout := range []string{"2006-01-02T15:04:05-0700", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix()
		}
	}
	return 0
}

func (t radioKingTrack) track() Track {
	return Track{
		Song:     newSong(t.Title, t.Artist, t.Album, t.Cover),
		PlayedAt: parseRadioKingTime(t.StartedAt),
		Duration: t.Duration,
	}
}

func (radioKing) reshapeNowPlaying(body []byte) ([]byte, error) {
	var cur radioKingTrack
	if err := json.Unmarshal(body, &cur); err != nil {
		return nil, fmt.Errorf("failed to decode radioking track: %w", err)
	}

	np := NowPlaying{IsOnline: cur.Title != "", NowPlaying: cur.track()}
	if n := cur.NextTrack; n != nil {
		np.PlayingNext = &Track{Song: newSong(n.Title, n.Artist, n.Album, n.Cover)}
	}
	return json.Marshal(np)
}

func (radioKing) reshapeHistory(body []byte) ([]byte, error) {
	var tracks []radioKingTrack
	if err := json.Unmarshal(body, &tracks); err != nil {
		return nil, fmt.Errorf("failed to decode radioking history: %w", err)
	}

	out := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, t.track())
	}
	return json.Marshal(out)
}

// zeno only publishes the stream title, formatted "Artist - Title".
type zeno struct{}

type zenoMetadata struct {
	StreamTitle string `json:"streamTitle"`
}

func (zeno) name() string { return settings.ProviderZeno }

func (zeno) nowPlayingURL(cfg settings.Settings) string {
	return baseURL(cfg, "https://api.zeno.fm") + "/mounts/metadata/" + cfg.RadioStationID
}

func (zeno) historyURL(settings.Settings) string { return "" }

func (zeno) authHeader(settings.Settings) string { return "" }

func splitStreamTitle(streamTitle string) (artist, title string) {
	streamTitle = strings.TrimSpace(streamTitle)
	if artist, title, ok := strings.Cut(streamTitle, " - "); ok {
		return strings.TrimSpace(artist), strings.TrimSpace(title)
	}
	return "", streamTitle
}

func (zeno) reshapeNowPlaying(body []byte) ([]byte, error) {
	var meta zenoMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode zeno metadata: %w", err)
	}

	artist, title := splitStreamTitle(meta.StreamTitle)
	return json.Marshal(NowPlaying{
		IsOnline:   meta.StreamTitle != "",
		NowPlaying: Track{Song: newSong(title, artist, "", "")},
	})
}

func (zeno) reshapeHistory([]byte) ([]byte, error) {
	return []byte("[]"), nil
}
