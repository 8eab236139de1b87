// Package view derives the ordered, filterable item lists the terminal
// layer renders. Pure read-side queries, the store is never mutated here.
package view

import (
	"sort"

	"github.com/samber/lo"

	"github.com/umputun/junefeed/pkg/domain"
)

// Store provides the current item state to project from
type Store interface {
	Items(feedName string) []domain.StoredItem
}

// Projector answers read-side queries over the history store
type Projector struct {
	store Store
}

// NewProjector creates a projector over the given store
func NewProjector(store Store) *Projector {
	return &Projector{store: store}
}

// Unread returns all unread items, for one feed or for all feeds when
// feedName is empty, newest first
func (p *Projector) Unread(feedName string) []domain.StoredItem {
	items := lo.Filter(p.store.Items(feedName), func(item domain.StoredItem, _ int) bool {
		return !item.Read
	})
	sortItems(items)
	return items
}

// All returns the full timeline for one feed (or every feed when feedName
// is empty), newest first
func (p *Projector) All(feedName string) []domain.StoredItem {
	items := p.store.Items(feedName)
	sortItems(items)
	return items
}

// sortItems applies the display order: published descending, items without
// a published date after all dated ones (by first seen, descending), any
// remaining ties broken by identity. The order is total, the terminal
// layer relies on stable positional indices between draws.
func sortItems(items []domain.StoredItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.Published != nil && b.Published == nil:
			return true
		case a.Published == nil && b.Published != nil:
			return false
		case a.Published != nil && b.Published != nil && !a.Published.Equal(*b.Published):
			return a.Published.After(*b.Published)
		case a.Published == nil && b.Published == nil && !a.FirstSeen.Equal(b.FirstSeen):
			return a.FirstSeen.After(b.FirstSeen)
		}
		return a.ID < b.ID
	})
}
