package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestItemID_GUID(t *testing.T) {
	raw := RawItem{GUID: "tag:example.com,2024:1", Link: "https://example.com/1", Title: "First"}

	id := ItemID("news", raw)
	assert.Equal(t, "news/tag:example.com,2024:1", id)

	// summary changes must not affect identity
	raw.Summary = "updated summary text"
	assert.Equal(t, id, ItemID("news", raw))

	// whitespace around the guid is not significant
	raw.GUID = "  tag:example.com,2024:1 "
	assert.Equal(t, id, ItemID("news", raw))

	// same guid in another feed is another identity
	assert.NotEqual(t, id, ItemID("other", raw))
}

func TestItemID_Composite(t *testing.T) {
	published := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	raw := RawItem{Link: "https://example.com/post", Title: "A Story", Published: &published}

	id1 := ItemID("news", raw)
	id2 := ItemID("news", raw)
	assert.Equal(t, id1, id2, "identity must be deterministic")

	t.Run("title is part of the key", func(t *testing.T) {
		other := raw
		other.Title = "A Different Story"
		assert.NotEqual(t, id1, ItemID("news", other), "same link, different title must not collide")
	})

	t.Run("summary is not part of the key", func(t *testing.T) {
		other := raw
		other.Summary = "whatever"
		assert.Equal(t, id1, ItemID("news", other))
	})

	t.Run("re-encoded title maps to the same identity", func(t *testing.T) {
		other := raw
		other.Title = "A&#32;  Story"
		assert.Equal(t, id1, ItemID("news", other))
	})

	t.Run("missing published still works", func(t *testing.T) {
		other := raw
		other.Published = nil
		assert.NotEqual(t, id1, ItemID("news", other))
		assert.Equal(t, ItemID("news", other), ItemID("news", other))
	})
}

func TestNormalizeTitle(t *testing.T) {
	tbl := []struct {
		in, out string
	}{
		{"plain title", "plain title"},
		{"  padded\ttitle \n", "padded title"},
		{"ben &amp; jerry", "ben & jerry"},
		{"nbsp&#160;inside", "nbsp inside"},
		{"", ""},
	}

	for _, tt := range tbl {
		assert.Equal(t, tt.out, NormalizeTitle(tt.in), "input %q", tt.in)
	}
}
