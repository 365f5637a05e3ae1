package feed

import (
	"bytes"
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       feed.Title,
		Link:        feed.Link,
		Description: feed.Description,
		Language:    feed.Language,
	}

	if feed.Image != nil {
		metadata.ImageURL = feed.Image.URL
	}
	if ext := feed.ITunesExt; ext != nil {
		metadata.Author = strings.TrimSpace(ext.Author)
		if metadata.ImageURL == "" {
			metadata.ImageURL = ext.Image
		}
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		normalized := p.normalizeItem(item)
		if normalized.GUID == "" {
			continue
		}
		normalized.Hash = p.generateHash(normalized)
		items = append(items, normalized)
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:        cmp.Or(item.GUID, item.Link),
		Title:       strings.TrimSpace(item.Title),
		Link:        item.Link,
		Description: strings.TrimSpace(item.Description),
		Content:     item.Content,
	}

	if item.PublishedParsed != nil {
		normalized.PublishedAt = *item.PublishedParsed
	}

	normalized.Authors = p.extractAuthors(item)

	if item.Categories != nil {
		normalized.Categories = item.Categories
	}

	if item.Image != nil {
		normalized.ImageURL = item.Image.URL
	}

	if ext := item.ITunesExt; ext != nil {
		normalized.Duration = p.formatDuration(ext.Duration)
		if normalized.ImageURL == "" {
			normalized.ImageURL = ext.Image
		}
		if len(normalized.Authors) == 0 {
			if author := strings.TrimSpace(ext.Author); author != "" {
				normalized.Authors = []string{author}
			}
		}
	}

	// RSS 2.0 allows only one enclosure per item
	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		enclosure := item.Enclosures[0]
		normalized.EnclosureURL = enclosure.URL
		normalized.EnclosureType = enclosure.Type

		if enclosure.Length != "" {
			if length, err := strconv.ParseInt(enclosure.Length, 10, 64); err == nil {
				normalized.EnclosureLength = length
			}
		}
	}

	return normalized
}

// The hash identifies an episode across imports.
func (p *Parser) generateHash(item Item) string {
	hash := sha256.Sum256([]byte(item.GUID))
	return hex.EncodeToString(hash[:])
}

// formatDuration accepts the iTunes forms "3600", "59:00" and "1:00:00"
// and renders them as "H:MM:SS" or "M:SS".
func (p *Parser) formatDuration(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	total := 0
	for _, part := range strings.Split(raw, ":") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return raw
		}
		total = total*60 + n
	}

	hours, minutes, seconds := total/3600, total%3600/60, total%60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

func (p *Parser) extractAuthors(item *gofeed.Item) []string {
	var authors []string

	if len(item.Authors) > 0 {
		for _, author := range item.Authors {
			if author != nil {
				authorStr := p.formatAuthor(author.Name, author.Email)
				if authorStr != "" {
					authors = append(authors, authorStr)
				}
			}
		}
	} else if item.Author != nil {
		authorStr := p.formatAuthor(item.Author.Name, item.Author.Email)
		if authorStr != "" {
			authors = append(authors, authorStr)
		}
	}

	return authors
}

// Podcast hosts are shown by name, so the name wins over the address.
func (p *Parser) formatAuthor(name, email string) string {
	return cmp.Or(strings.TrimSpace(name), strings.TrimSpace(email))
}
