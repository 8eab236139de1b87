package domain

import "time"

// RawItem is one normalized article as handed over by the fetch layer.
// Produced fresh on every fetch and never persisted directly.
type RawItem struct {
	GUID      string
	Link      string
	Title     string
	Summary   string
	Published *time.Time
}

// StoredItem is an article the store has seen at least once. Read and
// FirstSeen survive re-fetches; Title, Link and Summary track the source
// because feeds correct them after publication.
type StoredItem struct {
	ID        string     `json:"id"`
	Feed      string     `json:"feed"`
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Summary   string     `json:"summary"`
	Published *time.Time `json:"published,omitempty"`
	Read      bool       `json:"read"`
	FirstSeen time.Time  `json:"first_seen"`
	LastSeen  time.Time  `json:"last_seen"`
}
