package feed

import (
	"cmp"
	"strings"
	"unicode/utf8"

	"github.com/lysyi3m/radio-site/app/content"
)

const (
	defaultCategory  = "Noticias"
	maxExcerptLength = 300
	minDescription   = 10
)

// BlogItems renders posts as items linking to siteURL/blog/<slug>.
func BlogItems(siteURL string, posts []content.BlogPost) []Item {
	siteURL = strings.TrimRight(siteURL, "/")
	items := make([]Item, 0, len(posts))
	for _, p := range posts {
		link := siteURL + "/blog/" + p.Slug
		items = append(items, Item{
			GUID:        link,
			Title:       p.Title,
			Link:        link,
			Description: p.Excerpt,
			Content:     p.Content,
			PublishedAt: p.PublishDate,
			Authors:     []string{p.Author},
			Categories:  []string{p.Category},
			ImageURL:    p.ImageURL,
		})
	}
	return items
}

// ShowItems renders recorded shows as podcast episodes. Shows without audio
// are listed without an enclosure.
func ShowItems(siteURL string, shows []content.RecordedShow) []Item {
	siteURL = strings.TrimRight(siteURL, "/")
	items := make([]Item, 0, len(shows))
	for _, s := range shows {
		link := siteURL + "/grabaciones#" + s.ID
		items = append(items, Item{
			GUID:            cmp.Or(s.GUID, link),
			Title:           s.Title,
			Link:            link,
			Description:     s.Description,
			PublishedAt:     s.PublishDate,
			Authors:         []string{s.Host},
			ImageURL:        s.ImageURL,
			Duration:        s.Duration,
			EnclosureURL:    s.AudioURL,
			EnclosureLength: s.AudioLength,
			EnclosureType:   cmp.Or(s.AudioType, audioTypeFor(s.AudioURL)),
		})
	}
	return items
}

func audioTypeFor(url string) string {
	switch {
	case url == "":
		return ""
	case strings.HasSuffix(strings.ToLower(url), ".m4a"):
		return "audio/mp4"
	case strings.HasSuffix(strings.ToLower(url), ".ogg"):
		return "audio/ogg"
	default:
		return "audio/mpeg"
	}
}

// ShowID is the document id of an imported episode.
func ShowID(item Item) string {
	return "rec-" + item.Hash[:24]
}

// ShowFromItem maps a podcast episode onto a recorded show. Missing
// fields fall back to the channel metadata.
func ShowFromItem(item Item, meta *Metadata) content.RecordedShow {
	if meta == nil {
		meta = &Metadata{}
	}

	host := meta.Author
	if len(item.Authors) > 0 {
		host = item.Authors[0]
	}

	description := item.Description
	if utf8.RuneCountInString(description) < minDescription {
		description = "Episodio: " + item.Title
	}

	return content.RecordedShow{
		Title:       item.Title,
		Host:        cmp.Or(host, meta.Title),
		PublishDate: item.PublishedAt,
		Duration:    cmp.Or(item.Duration, "0:00"),
		Description: description,
		ImageURL:    cmp.Or(item.ImageURL, meta.ImageURL),
		ImageHint:   "podcast cover",
		AudioURL:    item.EnclosureURL,
		AudioType:   item.EnclosureType,
		AudioLength: item.EnclosureLength,
		GUID:        item.GUID,
	}
}

// DraftFromArticle prefills a blog post from an extracted article. The
// draft is not stored; editors complete and submit it.
func DraftFromArticle(a *Article) content.BlogPost {
	return content.BlogPost{
		Title:    a.Title,
		Author:   cmp.Or(a.Byline, a.SiteName),
		Excerpt:  truncate(a.Excerpt, maxExcerptLength),
		Content:  a.Content,
		ImageURL: a.ImageURL,
		Category: defaultCategory,
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
