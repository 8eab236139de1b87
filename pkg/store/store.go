// Package store owns the persisted per-feed item history and the read/unread
// lifecycle. All mutations happen on the in-memory state; Save flushes the
// whole state in one bolt transaction, so a crash mid-write never leaves a
// half-written store. This is the only source of truth for read state.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/umputun/junefeed/pkg/domain"
)

// feeds bucket holds one JSON-serialized FeedHistory per feed name.
// unknown fields in older or newer records are ignored on load.
const feedsBucket = "feeds"

// Store is the feed history store. Safe for use from multiple goroutines,
// though the engine serializes merges on its own.
type Store struct {
	db    *bolt.DB
	feeds map[string]*domain.FeedHistory
	mu    sync.Mutex
	now   func() time.Time
}

// Open creates or opens the bolt-backed store at the given file location
func Open(dbFile string) (*Store, error) {
	lgr.Printf("[INFO] feed history store, %s", dbFile)
	if err := os.MkdirAll(filepath.Dir(dbFile), 0o700); err != nil {
		return nil, fmt.Errorf("make store dir: %w", err)
	}

	db, err := bolt.Open(dbFile, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &Store{db: db, feeds: map[string]*domain.FeedHistory{}, now: time.Now}, nil
}

// Load reads all feed histories into memory. Unparsable records are dropped
// with a warning, local store corruption must never block startup. The
// returned error indicates a store-level failure only; the caller's policy
// is to warn and continue with an empty state.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feeds = map[string]*domain.FeedHistory{}
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(feedsBucket))
		if bucket == nil {
			return nil // fresh store
		}
		return bucket.ForEach(func(k, v []byte) error {
			history := domain.NewFeedHistory()
			if e := json.Unmarshal(v, history); e != nil {
				lgr.Printf("[WARN] corrupt history record for %q dropped: %v", string(k), e)
				return nil
			}
			if history.Items == nil {
				history.Items = map[string]domain.StoredItem{}
			}
			s.feeds[string(k)] = history
			return nil
		})
	})
	if err != nil {
		s.feeds = map[string]*domain.FeedHistory{}
		return fmt.Errorf("load feed histories: %w", err)
	}

	lgr.Printf("[DEBUG] loaded %d feed histories", len(s.feeds))
	return nil
}

// Merge reconciles one fetched snapshot with the stored history. New
// identities become unread items; known identities keep Read and FirstSeen
// but track title, link, summary and LastSeen. Items absent from the
// snapshot are left untouched, a shrinking server-side window must not
// erase local history.
func (s *Store) Merge(feedName string, raws []domain.RawItem) domain.SyncResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	history, ok := s.feeds[feedName]
	if !ok {
		history = domain.NewFeedHistory()
		s.feeds[feedName] = history
	}

	result := domain.SyncResult{Feed: feedName}
	for _, raw := range raws {
		id := domain.ItemID(feedName, raw)

		if current, seen := history.Items[id]; seen {
			current.Title = raw.Title
			current.Link = raw.Link
			current.Summary = raw.Summary
			if raw.Published != nil {
				current.Published = raw.Published
			}
			current.LastSeen = now
			history.Items[id] = current
			continue
		}

		item := domain.StoredItem{
			ID:        id,
			Feed:      feedName,
			Title:     raw.Title,
			Link:      raw.Link,
			Summary:   raw.Summary,
			Published: raw.Published,
			FirstSeen: now,
			LastSeen:  now,
		}
		history.Items[id] = item
		result.NewItems = append(result.NewItems, item)
	}

	history.LastSync = &now
	history.LastError = ""
	return result
}

// SetError records a failed fetch on the feed's history without touching
// its items
func (s *Store) SetError(feedName, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.feeds[feedName]
	if !ok {
		history = domain.NewFeedHistory()
		s.feeds[feedName] = history
	}
	history.LastError = msg
}

// MarkRead flips an item to read. Unknown feed or identity is a silent
// no-op, it indicates a benign race with a removal.
func (s *Store) MarkRead(feedName, id string) { s.setRead(feedName, id, true) }

// MarkUnread flips an item back to unread, same no-op semantics as MarkRead
func (s *Store) MarkUnread(feedName, id string) { s.setRead(feedName, id, false) }

func (s *Store) setRead(feedName, id string, read bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.feeds[feedName]
	if !ok {
		return
	}
	item, ok := history.Items[id]
	if !ok {
		return
	}
	item.Read = read
	history.Items[id] = item
}

// RemoveFeed drops the entire history of one feed
func (s *Store) RemoveFeed(feedName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.feeds, feedName)
}

// FeedNames returns the names of all feeds with stored history, sorted
func (s *Store) FeedNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.feeds))
	for name := range s.feeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Items returns copies of stored items for one feed, or for all feeds when
// feedName is empty. Order is unspecified, the view layer sorts.
func (s *Store) Items(feedName string) []domain.StoredItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []domain.StoredItem
	for name, history := range s.feeds {
		if feedName != "" && name != feedName {
			continue
		}
		for _, item := range history.Items {
			items = append(items, item)
		}
	}
	return items
}

// LastError returns the recorded fetch error for a feed, empty when the
// last sync succeeded or the feed is unknown
func (s *Store) LastError(feedName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if history, ok := s.feeds[feedName]; ok {
		return history.LastError
	}
	return ""
}

// Save flushes the complete in-memory state in a single transaction,
// retried with backoff. Callers only invoke it with a fully merged state;
// a failure after retries is the one unrecoverable condition of the
// whole system.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	err := retrier.Do(ctx, func() error {
		return s.db.Update(func(tx *bolt.Tx) error {
			if b := tx.Bucket([]byte(feedsBucket)); b != nil {
				if e := tx.DeleteBucket([]byte(feedsBucket)); e != nil {
					return e
				}
			}
			bucket, e := tx.CreateBucket([]byte(feedsBucket))
			if e != nil {
				return e
			}
			for name, history := range s.feeds {
				data, e := json.Marshal(history)
				if e != nil {
					return e
				}
				if e := bucket.Put([]byte(name), data); e != nil {
					return e
				}
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("save feed histories: %w", err)
	}

	lgr.Printf("[DEBUG] saved %d feed histories", len(s.feeds))
	return nil
}

// Close closes the underlying bolt database
func (s *Store) Close() error {
	return s.db.Close()
}
