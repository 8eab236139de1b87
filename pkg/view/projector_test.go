package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/junefeed/pkg/domain"
)

// storeMock returns a fixed set of items, reshuffled is fine since the
// projector owns ordering
type storeMock struct {
	items []domain.StoredItem
}

func (s *storeMock) Items(feedName string) []domain.StoredItem {
	if feedName == "" {
		return append([]domain.StoredItem{}, s.items...)
	}
	var res []domain.StoredItem
	for _, item := range s.items {
		if item.Feed == feedName {
			res = append(res, item)
		}
	}
	return res
}

func ts(h int) *time.Time {
	t := time.Date(2024, 6, 1, h, 0, 0, 0, time.UTC)
	return &t
}

func TestProjector_UnreadOrdering(t *testing.T) {
	store := &storeMock{items: []domain.StoredItem{
		{ID: "news/t2", Feed: "news", Published: ts(12)},
		{ID: "news/untimed", Feed: "news", FirstSeen: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "news/t1", Feed: "news", Published: ts(15)},
		{ID: "news/t3", Feed: "news", Published: ts(9)},
	}}
	p := NewProjector(store)

	got := p.Unread("")
	require.Len(t, got, 4)

	ids := []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
	assert.Equal(t, []string{"news/t1", "news/t2", "news/t3", "news/untimed"}, ids,
		"newest first, untimed items last")
}

func TestProjector_UnreadFiltersRead(t *testing.T) {
	store := &storeMock{items: []domain.StoredItem{
		{ID: "news/a", Feed: "news", Published: ts(10), Read: true},
		{ID: "news/b", Feed: "news", Published: ts(11)},
		{ID: "blog/c", Feed: "blog", Published: ts(12)},
	}}
	p := NewProjector(store)

	assert.Len(t, p.Unread(""), 2)
	require.Len(t, p.Unread("news"), 1)
	assert.Equal(t, "news/b", p.Unread("news")[0].ID)
	assert.Len(t, p.All("news"), 2, "All includes read items")
}

func TestProjector_TieBreakByIdentity(t *testing.T) {
	same := ts(10)
	store := &storeMock{items: []domain.StoredItem{
		{ID: "news/zzz", Feed: "news", Published: same},
		{ID: "news/aaa", Feed: "news", Published: same},
		{ID: "news/mmm", Feed: "news", Published: same},
	}}
	p := NewProjector(store)

	for i := 0; i < 5; i++ { // reproducible across repeated calls
		got := p.All("news")
		require.Len(t, got, 3)
		assert.Equal(t, "news/aaa", got[0].ID)
		assert.Equal(t, "news/mmm", got[1].ID)
		assert.Equal(t, "news/zzz", got[2].ID)
	}
}

func TestProjector_UntimedOrderedByFirstSeen(t *testing.T) {
	store := &storeMock{items: []domain.StoredItem{
		{ID: "news/old", Feed: "news", FirstSeen: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "news/new", Feed: "news", FirstSeen: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)},
		{ID: "news/dated", Feed: "news", Published: ts(1)},
	}}
	p := NewProjector(store)

	got := p.All("")
	require.Len(t, got, 3)
	assert.Equal(t, "news/dated", got[0].ID, "any dated item precedes all untimed ones")
	assert.Equal(t, "news/new", got[1].ID)
	assert.Equal(t, "news/old", got[2].ID)
}

func TestProjector_EmptyStore(t *testing.T) {
	p := NewProjector(&storeMock{})
	assert.Empty(t, p.Unread(""))
	assert.Empty(t, p.All("anything"))
}
