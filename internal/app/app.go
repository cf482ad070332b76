package app

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Application wires the gateway, the three stores, the query cache, the
// synchronization layer and the status poller. Stores are owned here and
// injected; nothing is package-global.
type Application struct {
	Config Config
	Logger *zap.Logger

	Gateway  Gateway
	Session  *SessionStore
	Chat     *ChatStore
	Docs     *DocumentStore
	Queries  *Queries
	Poller   *StatusPoller
	Auth     *AuthSync
	ChatSync *ChatSync
	DocSync  *DocumentSync

	loading atomic.Bool
}

func NewApplication(cfg Config) (*Application, error) {
	logger, err := NewLogger(cfg.LogFile)
	if err != nil {
		return nil, err
	}

	creds := NewCredentialStore(cfg.DataDir)
	session := NewSessionStore(creds)
	chat := NewChatStore()
	docs := NewDocumentStore()
	queries := NewQueries()

	client := NewClient(cfg.BaseURL, cfg.RequestTimeout(), session.Token)
	app := &Application{
		Config:  cfg,
		Logger:  logger,
		Gateway: client,
		Session: session,
		Chat:    chat,
		Docs:    docs,
		Queries: queries,
	}

	app.Poller = NewStatusPoller(cfg.PollInterval(), app.pollStatus)
	app.Auth = NewAuthSync(client, session, chat, docs, queries, creds, logger)
	app.ChatSync = NewChatSync(client, chat, queries, logger)
	app.DocSync = NewDocumentSync(client, docs, queries, NewDocCache(cfg.DataDir), app.Poller, logger)

	// Any 401 forces a full local teardown, regardless of which call hit it.
	client.SetUnauthorizedHook(func() {
		logger.Info("session rejected by backend, tearing down")
		app.Poller.Stop()
		app.Auth.Logout()
	})

	app.Auth.Restore()
	return app, nil
}

// pollStatus is the poller's tick: invalidate the status query and refetch.
func (a *Application) pollStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.RequestTimeout())
	defer cancel()
	a.Queries.Invalidate(QueryDocumentStatus)
	if err := a.DocSync.RefreshStatus(ctx); err != nil {
		a.Logger.Warn("status poll failed", zap.Error(err))
	}
}

// InitialData is the aggregate outcome of the session-start fetches.
type InitialData struct {
	Authenticated bool
	Err           error
}

// LoadInitialData confirms the identity and then fetches documents and
// conversations with no ordering dependency between them. Nothing is
// fetched before the identity is confirmed. The aggregate error is the
// first non-nil one in fixed priority: documents, conversations, user.
func (a *Application) LoadInitialData(ctx context.Context) InitialData {
	a.loading.Store(true)
	defer a.loading.Store(false)

	user, userErr := a.Auth.CurrentUser(ctx)
	if user == nil {
		return InitialData{Authenticated: false, Err: userErr}
	}

	var wg sync.WaitGroup
	var docErr, convErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		docErr = a.DocSync.RefreshDocuments(ctx)
		if err := a.DocSync.RefreshStatus(ctx); err != nil {
			a.Logger.Warn("initial status fetch failed", zap.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		convErr = a.ChatSync.RefreshConversations(ctx)
	}()
	wg.Wait()

	return InitialData{Authenticated: true, Err: firstErr(docErr, convErr, userErr)}
}

// Loading reports whether an initial data load is in flight.
func (a *Application) Loading() bool {
	return a.loading.Load()
}

// Shutdown stops background work and flushes the log.
func (a *Application) Shutdown() {
	a.Poller.Stop()
	_ = a.Logger.Sync()
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
