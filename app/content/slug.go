package content

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/lysyi3m/radio-site/app/store"
)

var (
	slugNonAlnum  = regexp.MustCompile(`[^a-z0-9-]+`)
	slugMultiDash = regexp.MustCompile(`-{2,}`)
)

// ValidSlug reports whether s could have been produced by Slugify.
func ValidSlug(s string) bool {
	return s != "" && !slugNonAlnum.MatchString(s) && !slugMultiDash.MatchString(s) &&
		s[0] != '-' && s[len(s)-1] != '-'
}

// Slugify turns a title into a URL path segment, folding accents so that
// "Canción del día" becomes "cancion-del-dia".
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	s := strings.ToLower(folded)
	s = slugNonAlnum.ReplaceAllString(s, "-")
	s = slugMultiDash.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "entrada"
	}
	return s
}

// uniqueSlug returns the first of base, base-2, base-3... that no other
// document in the collection uses. excludeID is the document being saved.
func uniqueSlug(ctx context.Context, s store.Store, collection, base, excludeID string) (string, error) {
	slug := base
	for i := 2; ; i++ {
		snaps, err := s.Query(ctx, collection, store.Query{
			Where: []store.Filter{{Field: "slug", Value: slug}},
			Limit: 2,
		})
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}

		taken := false
		for _, snap := range snaps {
			if snap.ID() != excludeID {
				taken = true
				break
			}
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
