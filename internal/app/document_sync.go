package app

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// DocumentSync keeps the DocumentStore consistent with the backend and
// drives the status poller. List and delete degrade to the on-disk cache
// when the backend is unreachable instead of failing hard.
type DocumentSync struct {
	gw      Gateway
	store   *DocumentStore
	queries *Queries
	cache   *DocCache
	poller  *StatusPoller
	log     *zap.Logger
}

const documentQueryRetries = 2

// NewDocumentSync wires the sync with an externally constructed poller so
// callers (and tests) control the poll interval.
func NewDocumentSync(gw Gateway, store *DocumentStore, queries *Queries, cache *DocCache, poller *StatusPoller, log *zap.Logger) *DocumentSync {
	s := &DocumentSync{gw: gw, store: store, queries: queries, cache: cache, poller: poller, log: log}
	queries.Register(QueryDocuments, documentQueryRetries, s.refreshDocuments)
	queries.Register(QueryDocumentStatus, documentQueryRetries, s.refreshStatus)
	return s
}

func (s *DocumentSync) RefreshDocuments(ctx context.Context) error {
	return s.queries.Ensure(ctx, QueryDocuments)
}

func (s *DocumentSync) RefreshStatus(ctx context.Context) error {
	return s.queries.Ensure(ctx, QueryDocumentStatus)
}

func (s *DocumentSync) refreshDocuments(ctx context.Context) error {
	docs, err := s.gw.ListDocuments(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		// Degraded mode: serve the last known list instead of erroring.
		cached, cerr := s.cache.Load()
		if cerr != nil {
			s.log.Warn("document cache read failed", zap.Error(cerr))
			cached = []Document{}
		}
		s.log.Warn("document list fetch failed, using cached copy",
			zap.Int("cached", len(cached)), zap.Error(err))
		s.store.SetDocuments(cached)
		return nil
	}
	s.store.SetDocuments(docs)
	if err := s.cache.Save(docs); err != nil {
		s.log.Warn("document cache write failed", zap.Error(err))
	}
	return nil
}

func (s *DocumentSync) refreshStatus(ctx context.Context) error {
	// The generation is captured before the fetch so a response that
	// settles after the poller was stopped (logout mid-poll) is discarded
	// instead of restarting the loop or writing into a reset store.
	gen := s.poller.Generation()
	status, err := s.gw.DocumentStatus(ctx)
	if err != nil {
		return err
	}
	if !s.poller.Observe(status, gen) {
		return nil
	}
	s.store.SetStatus(status)
	return nil
}

// Upload sends one or more files. Rejected locally while the backend is
// processing; on success both the list and status queries are invalidated.
func (s *DocumentSync) Upload(ctx context.Context, paths ...string) error {
	if s.store.RawStatus() == StatusProcessing {
		return ErrProcessingInProgress
	}
	if err := s.gw.UploadDocuments(ctx, paths); err != nil {
		s.log.Warn("upload failed", zap.Int("files", len(paths)), zap.Error(err))
		return err
	}
	s.queries.Invalidate(QueryDocuments)
	s.queries.Invalidate(QueryDocumentStatus)
	return nil
}

// Process asks the backend to start processing. Only the status query is
// invalidated; starting processing does not change the document list.
func (s *DocumentSync) Process(ctx context.Context) error {
	if err := s.gw.ProcessDocuments(ctx); err != nil {
		s.log.Warn("process request failed", zap.Error(err))
		return err
	}
	s.queries.Invalidate(QueryDocumentStatus)
	return nil
}

// Delete removes a document by storage key. Rejected locally while
// processing. A transport failure falls back to removing the entry from
// the cached copy, same degraded contract as the list fetch.
func (s *DocumentSync) Delete(ctx context.Context, key string) error {
	if s.store.RawStatus() == StatusProcessing {
		return ErrProcessingInProgress
	}
	if err := s.gw.DeleteDocument(ctx, key); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		s.log.Warn("delete failed, removing from cached copy", zap.String("key", key), zap.Error(err))
		if cerr := s.cache.Remove(key); cerr != nil {
			s.log.Warn("document cache remove failed", zap.Error(cerr))
		}
	}
	s.store.Remove(key)
	s.queries.Invalidate(QueryDocuments)
	s.queries.Invalidate(QueryDocumentStatus)
	return nil
}

// StopPolling halts the status poll loop, used on logout/teardown.
func (s *DocumentSync) StopPolling() {
	s.poller.Stop()
}
