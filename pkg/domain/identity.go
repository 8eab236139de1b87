package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"html"
	"io"
	"strings"
	"time"
)

// ItemID derives a stable identity for a raw item, namespaced by feed name
// to avoid cross-feed collisions. A non-empty GUID wins; feeds without GUIDs
// get a hash of link, normalized title and published date. Two articles
// sharing a link but differing in title must not collide, so the title is
// part of the composite.
func ItemID(feed string, raw RawItem) string {
	if guid := strings.TrimSpace(raw.GUID); guid != "" {
		return feed + "/" + guid
	}

	h := sha256.New()
	_, _ = io.WriteString(h, raw.Link)
	_, _ = io.WriteString(h, "\n")
	_, _ = io.WriteString(h, NormalizeTitle(raw.Title))
	_, _ = io.WriteString(h, "\n")
	if raw.Published != nil {
		_, _ = io.WriteString(h, raw.Published.UTC().Format(time.RFC3339))
	}
	return feed + "/" + hex.EncodeToString(h.Sum(nil))[:16]
}

// NormalizeTitle unescapes HTML entities and collapses whitespace. Feeds
// re-encode text between fetches, and without normalization that would show
// up as spurious new items.
func NormalizeTitle(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}
