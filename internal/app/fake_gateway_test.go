package app

import (
	"context"
	"sync"
)

// fakeGateway implements Gateway with overridable funcs and call counting,
// so tests can assert that local preconditions issue zero requests.
type fakeGateway struct {
	mu    sync.Mutex
	calls map[string]int

	listConversationsFn   func(ctx context.Context) ([]Conversation, error)
	createConversationFn  func(ctx context.Context, name string) (*Conversation, error)
	renameConversationFn  func(ctx context.Context, convID, name string) error
	deleteConversationFn  func(ctx context.Context, convID string) error
	conversationHistoryFn func(ctx context.Context, convID string) ([]Message, error)
	sendMessageFn         func(ctx context.Context, convID, question string) (string, error)

	loginFn       func(ctx context.Context, email, password string) (*AuthResult, error)
	registerFn    func(ctx context.Context, username, email, password string) (*AuthResult, error)
	currentUserFn func(ctx context.Context) (*User, error)

	uploadDocumentsFn  func(ctx context.Context, paths []string) error
	listDocumentsFn    func(ctx context.Context) ([]Document, error)
	documentStatusFn   func(ctx context.Context) (DocumentStatus, error)
	processDocumentsFn func(ctx context.Context) error
	deleteDocumentFn   func(ctx context.Context, key string) error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{calls: make(map[string]int)}
}

func (f *fakeGateway) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeGateway) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeGateway) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeGateway) ListConversations(ctx context.Context) ([]Conversation, error) {
	f.record("ListConversations")
	if f.listConversationsFn != nil {
		return f.listConversationsFn(ctx)
	}
	return nil, nil
}

func (f *fakeGateway) CreateConversation(ctx context.Context, name string) (*Conversation, error) {
	f.record("CreateConversation")
	if f.createConversationFn != nil {
		return f.createConversationFn(ctx, name)
	}
	return &Conversation{ConvID: "new", Name: name}, nil
}

func (f *fakeGateway) RenameConversation(ctx context.Context, convID, name string) error {
	f.record("RenameConversation")
	if f.renameConversationFn != nil {
		return f.renameConversationFn(ctx, convID, name)
	}
	return nil
}

func (f *fakeGateway) DeleteConversation(ctx context.Context, convID string) error {
	f.record("DeleteConversation")
	if f.deleteConversationFn != nil {
		return f.deleteConversationFn(ctx, convID)
	}
	return nil
}

func (f *fakeGateway) ConversationHistory(ctx context.Context, convID string) ([]Message, error) {
	f.record("ConversationHistory")
	if f.conversationHistoryFn != nil {
		return f.conversationHistoryFn(ctx, convID)
	}
	return nil, nil
}

func (f *fakeGateway) SendMessage(ctx context.Context, convID, question string) (string, error) {
	f.record("SendMessage")
	if f.sendMessageFn != nil {
		return f.sendMessageFn(ctx, convID, question)
	}
	return "", nil
}

func (f *fakeGateway) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	f.record("Login")
	if f.loginFn != nil {
		return f.loginFn(ctx, email, password)
	}
	return &AuthResult{User: &User{ID: "u1", Email: email}, AccessToken: "token"}, nil
}

func (f *fakeGateway) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	f.record("Register")
	if f.registerFn != nil {
		return f.registerFn(ctx, username, email, password)
	}
	return &AuthResult{User: &User{ID: "u1", Username: username, Email: email}, AccessToken: "token"}, nil
}

func (f *fakeGateway) CurrentUser(ctx context.Context) (*User, error) {
	f.record("CurrentUser")
	if f.currentUserFn != nil {
		return f.currentUserFn(ctx)
	}
	return &User{ID: "u1", Email: "user@example.com"}, nil
}

func (f *fakeGateway) ForgotPassword(ctx context.Context, email string) error {
	f.record("ForgotPassword")
	return nil
}

func (f *fakeGateway) ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error {
	f.record("ConfirmForgotPassword")
	return nil
}

func (f *fakeGateway) UploadDocuments(ctx context.Context, paths []string) error {
	f.record("UploadDocuments")
	if f.uploadDocumentsFn != nil {
		return f.uploadDocumentsFn(ctx, paths)
	}
	return nil
}

func (f *fakeGateway) ListDocuments(ctx context.Context) ([]Document, error) {
	f.record("ListDocuments")
	if f.listDocumentsFn != nil {
		return f.listDocumentsFn(ctx)
	}
	return nil, nil
}

func (f *fakeGateway) DocumentStatus(ctx context.Context) (DocumentStatus, error) {
	f.record("DocumentStatus")
	if f.documentStatusFn != nil {
		return f.documentStatusFn(ctx)
	}
	return StatusNoDocuments, nil
}

func (f *fakeGateway) ProcessDocuments(ctx context.Context) error {
	f.record("ProcessDocuments")
	if f.processDocumentsFn != nil {
		return f.processDocumentsFn(ctx)
	}
	return nil
}

func (f *fakeGateway) DeleteDocument(ctx context.Context, key string) error {
	f.record("DeleteDocument")
	if f.deleteDocumentFn != nil {
		return f.deleteDocumentFn(ctx, key)
	}
	return nil
}
