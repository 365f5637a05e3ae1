package feed

import (
	"strings"
	"testing"
	"time"
)

func fixedGenerator() *Generator {
	g := NewGenerator()
	g.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	return g
}

func TestGenerateBlogRSS(t *testing.T) {
	generator := fixedGenerator()

	ch := Channel{
		Title:       "Radio Comunitaria",
		Link:        "https://radio.example.com",
		Description: "Noticias de la radio",
		SelfURL:     "https://radio.example.com/feed.xml",
		Language:    "es",
	}

	publishedTime := time.Date(2024, 4, 30, 18, 0, 0, 0, time.UTC)
	items := []Item{
		{
			GUID:        "https://radio.example.com/blog/nuevo-programa",
			Title:       "Nuevo programa & más",
			Link:        "https://radio.example.com/blog/nuevo-programa",
			Description: "Estrenamos programa los sábados.",
			Content:     "<p>Estrenamos programa los sábados por la tarde.</p>",
			PublishedAt: publishedTime,
			Authors:     []string{"Ana"},
			Categories:  []string{"Noticias"},
		},
		{
			GUID:        "item-2",
			Title:       "Sin descripción",
			PublishedAt: publishedTime.Add(-time.Hour),
		},
	}

	rss, err := generator.Run(ch, items)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<rss version="2.0"`,
		`xmlns:content="http://purl.org/rss/1.0/modules/content/"`,
		`xmlns:atom="http://www.w3.org/2005/Atom"`,
		"<title>Radio Comunitaria</title>",
		"<description>Noticias de la radio</description>",
		`<atom:link href="https://radio.example.com/feed.xml" rel="self" type="application/rss+xml" />`,
		"<lastBuildDate>Tue, 30 Apr 2024 18:00:00 +0000</lastBuildDate>",
		"<generator>radio-site/",
		"<language>es</language>",
		`<guid isPermaLink="true">https://radio.example.com/blog/nuevo-programa</guid>`,
		"<title>Nuevo programa &amp; más</title>",
		"<content:encoded><![CDATA[<p>Estrenamos programa los sábados por la tarde.</p>]]></content:encoded>",
		"<pubDate>Tue, 30 Apr 2024 18:00:00 +0000</pubDate>",
		"<author>Ana</author>",
		"<category>Noticias</category>",
		`<guid isPermaLink="false">item-2</guid>`,
		"<description>Sin descripción</description>",
	}
	for _, want := range expected {
		if !strings.Contains(rss, want) {
			t.Errorf("Expected RSS to contain %q", want)
		}
	}

	if strings.Contains(rss, "xmlns:itunes") {
		t.Error("Blog feed should not declare the iTunes namespace")
	}
	if !strings.HasSuffix(rss, "</channel>\n</rss>") {
		t.Error("RSS should end with closing channel and rss tags")
	}
}

func TestGeneratePodcastRSS(t *testing.T) {
	generator := fixedGenerator()

	ch := Channel{
		Title:    "Grabaciones",
		Link:     "https://radio.example.com/grabaciones",
		ImageURL: "https://radio.example.com/cover.jpg",
		Podcast:  true,
		Author:   "Radio Comunitaria",
	}
	items := []Item{
		{
			GUID:            "ep-1",
			Title:           "Voces del sur",
			Description:     "Programa especial de música andina.",
			PublishedAt:     time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC),
			Duration:        "58:00",
			ImageURL:        "https://radio.example.com/ep1.jpg",
			EnclosureURL:    "https://cdn.example.com/ep1.mp3?a=1&b=2",
			EnclosureLength: 1234,
			EnclosureType:   "audio/mpeg",
		},
	}

	rss, err := generator.Run(ch, items)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{
		`xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd"`,
		"<itunes:author>Radio Comunitaria</itunes:author>",
		`<itunes:image href="https://radio.example.com/cover.jpg" />`,
		"<itunes:duration>58:00</itunes:duration>",
		`<itunes:image href="https://radio.example.com/ep1.jpg" />`,
		`<enclosure url="https://cdn.example.com/ep1.mp3?a=1&amp;b=2" length="1234" type="audio/mpeg" />`,
		"<url>https://radio.example.com/cover.jpg</url>",
	}
	for _, want := range expected {
		if !strings.Contains(rss, want) {
			t.Errorf("Expected RSS to contain %q", want)
		}
	}
}

func TestGenerateEmptyFeedUsesCurrentTime(t *testing.T) {
	rss, err := fixedGenerator().Run(Channel{Title: "Radio", Link: "https://radio.example.com"}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC).In(time.Local).Format(time.RFC1123Z)
	if !strings.Contains(rss, "<lastBuildDate>"+want+"</lastBuildDate>") {
		t.Errorf("Expected lastBuildDate %s, got: %s", want, rss)
	}
	if !strings.Contains(rss, "<description>Radio</description>") {
		t.Error("Expected description to fall back to the title")
	}
	if strings.Contains(rss, "<item>") {
		t.Error("Expected no items")
	}
}

func TestGenerateRequiresTitleAndLink(t *testing.T) {
	if _, err := NewGenerator().Run(Channel{Title: "Radio"}, nil); err == nil {
		t.Error("Expected error for channel without link")
	}
}
