package app

import (
	"context"
	"sync"
)

// QueryKey identifies a cached remote fetch.
type QueryKey string

const (
	QueryConversations  QueryKey = "conversations"
	QueryDocuments      QueryKey = "documents"
	QueryDocumentStatus QueryKey = "documentStatus"
	QueryUser           QueryKey = "user"
)

// Queries tracks staleness per fetch so mutations can invalidate remote
// data and have it refetched on next access instead of eagerly. Settlement
// of each fetch writes into the owning store; Queries itself only keeps the
// bookkeeping.
type Queries struct {
	mu      sync.Mutex
	entries map[QueryKey]*queryEntry
}

type queryEntry struct {
	fetch    func(ctx context.Context) error
	retries  int
	fresh    bool
	inFlight bool
	lastErr  error
}

func NewQueries() *Queries {
	return &Queries{entries: make(map[QueryKey]*queryEntry)}
}

// Register binds a fetch func to a key. retries is the number of additional
// attempts on failure (0 disables retrying).
func (q *Queries) Register(key QueryKey, retries int, fetch func(ctx context.Context) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries[key] = &queryEntry{fetch: fetch, retries: retries}
}

// Invalidate marks the key stale; the next Ensure refetches.
func (q *Queries) Invalidate(key QueryKey) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if e, ok := q.entries[key]; ok {
		e.fresh = false
	}
}

// Ensure fetches iff the key is stale or was never fetched. A fetch already
// in flight is not duplicated. The fetch runs outside the lock.
func (q *Queries) Ensure(ctx context.Context, key QueryKey) error {
	q.mu.Lock()
	e, ok := q.entries[key]
	if !ok {
		q.mu.Unlock()
		return nil
	}
	if e.fresh || e.inFlight {
		err := e.lastErr
		q.mu.Unlock()
		return err
	}
	e.inFlight = true
	fetch := e.fetch
	retries := e.retries
	q.mu.Unlock()

	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if err = fetch(ctx); err == nil {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	q.mu.Lock()
	e.inFlight = false
	e.lastErr = err
	e.fresh = err == nil
	q.mu.Unlock()
	return err
}

// Err reports the last settlement error for the key.
func (q *Queries) Err(key QueryKey) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if e, ok := q.entries[key]; ok {
		return e.lastErr
	}
	return nil
}

// Reset drops all cached state, forcing every query to refetch. Used on
// logout so nothing from the previous identity survives.
func (q *Queries) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		e.fresh = false
		e.lastErr = nil
	}
}
