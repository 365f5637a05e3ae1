package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/lysyi3m/radio-site/app/cfg"
)

const itunesNamespace = "http://www.itunes.com/dtds/podcast-1.0.dtd"

type Generator struct {
	now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

func (g *Generator) Run(ch Channel, items []Item) (string, error) {
	if ch.Title == "" || ch.Link == "" {
		return "", fmt.Errorf("channel title and link are required")
	}

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom"`)
	if ch.Podcast {
		buf.WriteString(` xmlns:itunes="` + itunesNamespace + `"`)
	}
	buf.WriteString(">\n  <channel>\n")

	g.writeElement(&buf, "title", ch.Title, 4)
	g.writeElement(&buf, "link", ch.Link, 4)
	g.writeElement(&buf, "description", cmp.Or(ch.Description, ch.Title), 4)

	if ch.SelfURL != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(ch.SelfURL)))
	}

	lastBuildDate := g.now().In(time.Local)
	if len(items) > 0 && !items[0].PublishedAt.IsZero() {
		lastBuildDate = items[0].PublishedAt
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("radio-site/%s", cfg.GetVersion()), 4)
	g.writeElement(&buf, "language", ch.Language, 4)

	if ch.ImageURL != "" {
		buf.WriteString("    <image>\n")
		g.writeElement(&buf, "url", ch.ImageURL, 6)
		g.writeElement(&buf, "title", ch.Title, 6)
		g.writeElement(&buf, "link", ch.Link, 6)
		buf.WriteString("    </image>\n")
	}

	if ch.Podcast {
		g.writeElement(&buf, "itunes:author", ch.Author, 4)
		g.writeImageRef(&buf, ch.ImageURL, 4)
	}

	for _, item := range items {
		g.writeItem(&buf, item, ch.Podcast)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, item Item, podcast bool) {
	buf.WriteString("    <item>\n")

	if item.GUID != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(item.GUID)))
		xml.EscapeText(buf, []byte(item.GUID))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", item.Title, 6)
	g.writeElement(buf, "link", item.Link, 6)
	g.writeElement(buf, "description", cmp.Or(item.Description, "Sin descripción"), 6)

	if item.Content != "" && item.Content != item.Description {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(item.Content)
		buf.WriteString("]]></content:encoded>\n")
	}

	if !item.PublishedAt.IsZero() {
		g.writeElement(buf, "pubDate", item.PublishedAt.Format(time.RFC1123Z), 6)
	}

	if len(item.Authors) > 0 {
		g.writeElement(buf, "author", item.Authors[0], 6)
	}

	for _, category := range item.Categories {
		g.writeElement(buf, "category", category, 6)
	}

	// url, length and type are all mandatory on an enclosure
	if item.EnclosureURL != "" && item.EnclosureType != "" {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"%d\" type=\"%s\" />\n",
			html.EscapeString(item.EnclosureURL),
			item.EnclosureLength,
			html.EscapeString(item.EnclosureType)))
	}

	if podcast {
		g.writeElement(buf, "itunes:duration", item.Duration, 6)
		g.writeImageRef(buf, item.ImageURL, 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeImageRef(buf *bytes.Buffer, href string, indent int) {
	if href == "" {
		return
	}
	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}
	buf.WriteString(fmt.Sprintf("<itunes:image href=\"%s\" />\n", html.EscapeString(href)))
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return (len(s) > 7 && s[:7] == "http://") || (len(s) > 8 && s[:8] == "https://")
}
