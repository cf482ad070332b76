package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestApplication(t *testing.T, gw Gateway) *Application {
	t.Helper()
	dir := t.TempDir()
	creds := NewCredentialStore(dir)
	session := NewSessionStore(creds)
	chat := NewChatStore()
	docs := NewDocumentStore()
	queries := NewQueries()

	app := &Application{
		Config:  DefaultConfig(),
		Logger:  zap.NewNop(),
		Gateway: gw,
		Session: session,
		Chat:    chat,
		Docs:    docs,
		Queries: queries,
	}
	app.Poller = NewStatusPoller(time.Second, app.pollStatus)
	app.Auth = NewAuthSync(gw, session, chat, docs, queries, creds, app.Logger)
	app.ChatSync = NewChatSync(gw, chat, queries, app.Logger)
	app.DocSync = NewDocumentSync(gw, docs, queries, NewDocCache(dir), app.Poller, app.Logger)
	t.Cleanup(app.Poller.Stop)
	return app
}

func TestInitialDataGatedOnConfirmedIdentity(t *testing.T) {
	gw := newFakeGateway()
	app := newTestApplication(t, gw)

	data := app.LoadInitialData(context.Background())
	if data.Authenticated {
		t.Fatalf("expected unauthenticated start")
	}
	// No token means no identity check and, above all, no speculative
	// data fetches.
	if gw.totalCalls() != 0 {
		t.Fatalf("expected zero requests, got %d", gw.totalCalls())
	}
}

func TestInitialDataLoadsDocumentsAndConversations(t *testing.T) {
	gw := newFakeGateway()
	gw.listConversationsFn = func(ctx context.Context) ([]Conversation, error) {
		return twoConversations(), nil
	}
	gw.listDocumentsFn = func(ctx context.Context) ([]Document, error) {
		return []Document{{ID: "k1", Key: "k1", Name: "a.pdf"}}, nil
	}
	app := newTestApplication(t, gw)
	app.Session.Login(&User{ID: "u1"}, "tok")

	data := app.LoadInitialData(context.Background())
	if !data.Authenticated || data.Err != nil {
		t.Fatalf("initial data = %+v", data)
	}
	if len(app.Chat.Conversations()) != 2 {
		t.Fatalf("conversations not loaded")
	}
	if len(app.Docs.Documents()) != 1 {
		t.Fatalf("documents not loaded")
	}
	if gw.callCount("CurrentUser") != 1 {
		t.Fatalf("identity checked %d times, want 1", gw.callCount("CurrentUser"))
	}
}

func TestInitialDataErrorPriorityDocumentsFirst(t *testing.T) {
	gw := newFakeGateway()
	convErr := errors.New("conversations failed")
	gw.listConversationsFn = func(ctx context.Context) ([]Conversation, error) {
		return nil, convErr
	}
	// The document list degrades to cache on ordinary transport errors, so
	// the only error it can surface is an authorization one.
	gw.listDocumentsFn = func(ctx context.Context) ([]Document, error) {
		return nil, ErrUnauthorized
	}
	app := newTestApplication(t, gw)
	app.Session.Login(&User{ID: "u1"}, "tok")

	data := app.LoadInitialData(context.Background())
	if !errors.Is(data.Err, ErrUnauthorized) {
		t.Fatalf("aggregate err = %v, want documents error first", data.Err)
	}
}

func TestInitialDataSurfacesConversationError(t *testing.T) {
	gw := newFakeGateway()
	convErr := errors.New("conversations failed")
	gw.listConversationsFn = func(ctx context.Context) ([]Conversation, error) {
		return nil, convErr
	}
	app := newTestApplication(t, gw)
	app.Session.Login(&User{ID: "u1"}, "tok")

	data := app.LoadInitialData(context.Background())
	if !errors.Is(data.Err, convErr) {
		t.Fatalf("aggregate err = %v, want conversation error", data.Err)
	}
}

func TestFailedIdentityCheckResetsSessionWithoutRetry(t *testing.T) {
	gw := newFakeGateway()
	gw.currentUserFn = func(ctx context.Context) (*User, error) {
		return nil, errors.New("identity service down")
	}
	app := newTestApplication(t, gw)
	app.Session.Login(&User{ID: "u1"}, "tok")

	data := app.LoadInitialData(context.Background())
	if data.Authenticated {
		t.Fatalf("failed identity check must not authenticate")
	}
	if app.Session.IsAuthenticated() {
		t.Fatalf("session not reset after failed identity check")
	}
	if gw.callCount("CurrentUser") != 1 {
		t.Fatalf("identity check retried: %d calls", gw.callCount("CurrentUser"))
	}
	if gw.callCount("ListDocuments") != 0 || gw.callCount("ListConversations") != 0 {
		t.Fatalf("data fetched despite unconfirmed identity")
	}
}

func TestBackendRejectionTearsDownWholeSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	dir := t.TempDir()
	creds := NewCredentialStore(dir)
	if err := creds.Save(Credentials{AccessToken: "stale", User: &User{ID: "u1"}}); err != nil {
		t.Fatalf("seed credentials: %v", err)
	}

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.DataDir = dir
	app, err := NewApplication(cfg)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	defer app.Shutdown()

	if !app.Session.IsAuthenticated() {
		t.Fatalf("persisted credentials not restored")
	}

	data := app.LoadInitialData(context.Background())
	if data.Authenticated {
		t.Fatalf("rejected token must not authenticate")
	}
	if app.Session.IsAuthenticated() {
		t.Fatalf("session survived 401")
	}
	if loaded, _ := creds.Load(); loaded != nil {
		t.Fatalf("credentials survived 401: %+v", loaded)
	}
}
