// Package songlinks asks a generative model for the streaming links of a
// song so editors do not have to look them up by hand.
package songlinks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"
	"google.golang.org/genai"

	"github.com/lysyi3m/radio-site/app/apperr"
	"github.com/lysyi3m/radio-site/app/metrics"
	"github.com/lysyi3m/radio-site/app/validation"
)

type Query struct {
	Title  string `json:"title" validate:"required,max=200"`
	Artist string `json:"artist" validate:"required,max=200"`
}

type Links struct {
	YoutubeVideoID   string `json:"youtubeVideoId,omitempty" validate:"omitempty,max=20"`
	SpotifyLink      string `json:"spotifyLink,omitempty" validate:"omitempty,http_url"`
	AppleMusicLink   string `json:"appleMusicLink,omitempty" validate:"omitempty,http_url"`
	YoutubeMusicLink string `json:"youtubeMusicLink,omitempty" validate:"omitempty,http_url"`
}

// Model turns a prompt into a JSON document matching the links schema.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Finder struct {
	model Model
}

func NewFinder(m Model) *Finder {
	return &Finder{model: m}
}

const promptTemplate = `Eres un asistente que encuentra enlaces de plataformas de música.
Para la canción "%s" de "%s", devuelve:
- youtubeVideoId: el id del video oficial en YouTube (solo el id, no la URL)
- spotifyLink: la URL de la canción en Spotify
- appleMusicLink: la URL de la canción en Apple Music
- youtubeMusicLink: la URL de la canción en YouTube Music
Omite cualquier campo que no conozcas con certeza.`

// Find looks up links for q. Model failures and malformed answers are
// reported as upstream errors; nothing is cached.
func (f *Finder) Find(ctx context.Context, q Query) (*Links, error) {
	q.Title = strings.TrimSpace(q.Title)
	q.Artist = strings.TrimSpace(q.Artist)
	if err := validation.Struct(&q); err != nil {
		return nil, err
	}
	if f.model == nil {
		return nil, &apperr.UpstreamError{Service: "songlinks", Err: errors.New("no model configured")}
	}

	text, err := f.model.Generate(ctx, fmt.Sprintf(promptTemplate, q.Title, q.Artist))
	if err != nil {
		metrics.SongLinkSearches.WithLabelValues("error").Inc()
		slog.Error("Song link search failed", "title", q.Title, "artist", q.Artist, "error", err)
		return nil, &apperr.UpstreamError{Service: "songlinks", Err: err}
	}

	links, err := parseLinks(text)
	if err != nil {
		metrics.SongLinkSearches.WithLabelValues("malformed").Inc()
		slog.Error("Song link search returned malformed output", "title", q.Title, "error", err)
		return nil, &apperr.UpstreamError{Service: "songlinks", Err: err}
	}

	metrics.SongLinkSearches.WithLabelValues("ok").Inc()
	return links, nil
}

func parseLinks(text string) (*Links, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var links Links
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &links); err != nil {
		return nil, fmt.Errorf("failed to decode model output: %w", err)
	}
	if err := validation.Struct(&links); err != nil {
		return nil, fmt.Errorf("model output rejected: %w", err)
	}
	return &links, nil
}

// Gemini calls the Gemini API through the genai SDK with a JSON response
// schema.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("AI API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

var linksSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"youtubeVideoId":   {Type: genai.TypeString},
		"spotifyLink":      {Type: genai.TypeString},
		"appleMusicLink":   {Type: genai.TypeString},
		"youtubeMusicLink": {Type: genai.TypeString},
	},
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   linksSchema,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return resp.Text(), nil
}
