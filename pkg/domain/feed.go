package domain

import "time"

// FeedConfig describes a single configured feed. The config layer owns it;
// the sync engine treats the list as an immutable input for one cycle.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// FeedHistory is the persisted record of everything known about one feed.
// Item keys are item identities, unique within the feed.
type FeedHistory struct {
	Items     map[string]StoredItem `json:"items"`
	LastSync  *time.Time            `json:"last_sync,omitempty"`
	LastError string                `json:"last_error,omitempty"`
}

// NewFeedHistory creates an empty history record
func NewFeedHistory() *FeedHistory {
	return &FeedHistory{Items: map[string]StoredItem{}}
}

// SyncResult reports the outcome of one feed's sync within a cycle.
// Transient, consumed by the UI layer and never persisted.
type SyncResult struct {
	Feed     string
	NewItems []StoredItem
	Error    string
}
