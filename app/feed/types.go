package feed

import (
	"time"
)

// Feed output types

type Channel struct {
	Title       string
	Link        string
	Description string
	SelfURL     string
	ImageURL    string
	Language    string
	// Podcast adds the iTunes namespace and per-item durations.
	Podcast bool
	Author  string
}

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	PublishedAt time.Time
	Authors     []string
	Categories  []string
	ImageURL    string
	Duration    string

	Hash            string
	IsFiltered      bool
	FilterReason    string
	EnclosureURL    string
	EnclosureLength int64
	EnclosureType   string
}

// Feed import types

type Metadata struct {
	Title       string
	Link        string
	Description string
	ImageURL    string
	Language    string
	Author      string
}

type Filter struct {
	Field    string
	Includes []string
	Excludes []string
}
