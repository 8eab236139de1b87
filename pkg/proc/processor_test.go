package proc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/junefeed/pkg/domain"
)

// fetcherMock serves canned items or errors per URL
type fetcherMock struct {
	items map[string][]domain.RawItem
	errs  map[string]error
	delay time.Duration
	mu    sync.Mutex
	calls []string
}

func (f *fetcherMock) Fetch(ctx context.Context, url string) ([]domain.RawItem, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	return f.items[url], nil
}

// storeMock records mutations in memory, mirroring the real store's contract
type storeMock struct {
	mu       sync.Mutex
	feeds    map[string]map[string]domain.StoredItem
	errors   map[string]string
	saves    int
	saveErr  error
	removals []string
}

func newStoreMock() *storeMock {
	return &storeMock{feeds: map[string]map[string]domain.StoredItem{}, errors: map[string]string{}}
}

func (s *storeMock) Merge(feedName string, raws []domain.RawItem) domain.SyncResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.feeds[feedName] == nil {
		s.feeds[feedName] = map[string]domain.StoredItem{}
	}
	result := domain.SyncResult{Feed: feedName}
	for _, raw := range raws {
		id := domain.ItemID(feedName, raw)
		if _, ok := s.feeds[feedName][id]; ok {
			continue
		}
		item := domain.StoredItem{ID: id, Feed: feedName, Title: raw.Title, Link: raw.Link}
		s.feeds[feedName][id] = item
		result.NewItems = append(result.NewItems, item)
	}
	delete(s.errors, feedName)
	return result
}

func (s *storeMock) SetError(feedName, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[feedName] = msg
}

func (s *storeMock) RemoveFeed(feedName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.feeds, feedName)
	s.removals = append(s.removals, feedName)
}

func (s *storeMock) FeedNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.feeds))
	for name := range s.feeds {
		names = append(names, name)
	}
	return names
}

func (s *storeMock) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return s.saveErr
}

func TestProcessor_Sync(t *testing.T) {
	fetcher := &fetcherMock{items: map[string][]domain.RawItem{
		"https://a.example.com/rss": {{GUID: "a1", Title: "a one"}, {GUID: "a2", Title: "a two"}},
		"https://b.example.com/rss": {{GUID: "b1", Title: "b one"}},
	}}
	store := newStoreMock()
	p := NewProcessor(fetcher, store, time.Second, 2)

	configs := []domain.FeedConfig{
		{Name: "beta", URL: "https://b.example.com/rss"},
		{Name: "alpha", URL: "https://a.example.com/rss"},
	}
	results, err := p.Sync(context.Background(), configs)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// results sorted by feed name regardless of completion order
	assert.Equal(t, "alpha", results[0].Feed)
	assert.Equal(t, "beta", results[1].Feed)
	assert.Len(t, results[0].NewItems, 2)
	assert.Len(t, results[1].NewItems, 1)
	assert.Equal(t, 1, store.saves)
}

func TestProcessor_SyncFailureIsolation(t *testing.T) {
	fetcher := &fetcherMock{
		items: map[string][]domain.RawItem{
			"https://a.example.com/rss": {{GUID: "a1", Title: "a one"}},
			"https://c.example.com/rss": {{GUID: "c1", Title: "c one"}},
		},
		errs: map[string]error{"https://b.example.com/rss": errors.New("connection refused")},
	}
	store := newStoreMock()
	// seed prior history for the feed that will fail
	store.Merge("beta", []domain.RawItem{{GUID: "old", Title: "kept"}})

	p := NewProcessor(fetcher, store, time.Second, 3)
	configs := []domain.FeedConfig{
		{Name: "alpha", URL: "https://a.example.com/rss"},
		{Name: "beta", URL: "https://b.example.com/rss"},
		{Name: "gamma", URL: "https://c.example.com/rss"},
	}

	results, err := p.Sync(context.Background(), configs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Len(t, results[0].NewItems, 1, "alpha unaffected by beta failure")
	assert.Len(t, results[2].NewItems, 1, "gamma unaffected by beta failure")

	assert.Contains(t, results[1].Error, "connection refused")
	assert.Empty(t, results[1].NewItems)
	assert.Len(t, store.feeds["beta"], 1, "failed feed's prior history untouched")
	assert.Equal(t, "connection refused", store.errors["beta"])
}

func TestProcessor_SyncReconcilesRemovedFeeds(t *testing.T) {
	fetcher := &fetcherMock{items: map[string][]domain.RawItem{
		"https://a.example.com/rss": {{GUID: "a1", Title: "a one"}},
	}}
	store := newStoreMock()
	store.Merge("gone", []domain.RawItem{{GUID: "g1", Title: "stale"}})

	p := NewProcessor(fetcher, store, time.Second, 1)
	results, err := p.Sync(context.Background(), []domain.FeedConfig{{Name: "alpha", URL: "https://a.example.com/rss"}})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, []string{"gone"}, store.removals)
	assert.NotContains(t, store.feeds, "gone")
	assert.Contains(t, store.feeds, "alpha")
}

func TestProcessor_SyncCanceled(t *testing.T) {
	fetcher := &fetcherMock{
		items: map[string][]domain.RawItem{"https://a.example.com/rss": {{GUID: "a1", Title: "a one"}}},
		delay: 200 * time.Millisecond,
	}
	store := newStoreMock()
	p := NewProcessor(fetcher, store, time.Second, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := p.Sync(ctx, []domain.FeedConfig{{Name: "alpha", URL: "https://a.example.com/rss"}})
	require.NoError(t, err)
	assert.Empty(t, store.feeds, "no merge applied after cancellation")
	assert.Zero(t, store.saves, "canceled cycle is not saved")
	_ = results
}

func TestProcessor_SyncSaveFailure(t *testing.T) {
	fetcher := &fetcherMock{items: map[string][]domain.RawItem{
		"https://a.example.com/rss": {{GUID: "a1", Title: "a one"}},
	}}
	store := newStoreMock()
	store.saveErr = errors.New("disk full")

	p := NewProcessor(fetcher, store, time.Second, 1)
	results, err := p.Sync(context.Background(), []domain.FeedConfig{{Name: "alpha", URL: "https://a.example.com/rss"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, results, 1, "results still returned so the UI can render them")
}

func TestProcessor_SyncFetchTimeout(t *testing.T) {
	fetcher := &fetcherMock{
		items: map[string][]domain.RawItem{"https://slow.example.com/rss": {{GUID: "s1", Title: "late"}}},
		delay: 500 * time.Millisecond,
	}
	store := newStoreMock()
	p := NewProcessor(fetcher, store, 20*time.Millisecond, 1)

	results, err := p.Sync(context.Background(), []domain.FeedConfig{{Name: "slow", URL: "https://slow.example.com/rss"}})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.NotEmpty(t, results[0].Error, "timeout reported as a per-feed error")
	assert.Empty(t, results[0].NewItems)
	assert.NotContains(t, store.feeds, "slow", "timed out fetch does not mutate the store")
}

func TestProcessor_Defaults(t *testing.T) {
	p := NewProcessor(&fetcherMock{}, newStoreMock(), 0, 0)
	assert.Equal(t, 30*time.Second, p.fetchTimeout)
	assert.Equal(t, 5, p.maxWorkers)
}
