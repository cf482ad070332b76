package app

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Fixed message texts the client fabricates around a send.
const (
	botFallbackText = "Sorry, I couldn't generate a response."
	botErrorText    = "Sorry, there was an error processing your message. Please try again."
)

// ChatSync keeps the ChatStore consistent with the backend: list refresh,
// optimistic mutations with invalidate-on-settlement, lazy history loading
// and the optimistic send protocol.
type ChatSync struct {
	gw      Gateway
	store   *ChatStore
	queries *Queries
	log     *zap.Logger
}

func NewChatSync(gw Gateway, store *ChatStore, queries *Queries, log *zap.Logger) *ChatSync {
	s := &ChatSync{gw: gw, store: store, queries: queries, log: log}
	queries.Register(QueryConversations, 0, s.refreshConversations)
	return s
}

// RefreshConversations fetches the list unless it is still fresh.
func (s *ChatSync) RefreshConversations(ctx context.Context) error {
	return s.queries.Ensure(ctx, QueryConversations)
}

func (s *ChatSync) refreshConversations(ctx context.Context) error {
	list, err := s.gw.ListConversations(ctx)
	if err != nil {
		return err
	}
	s.store.SetConversations(list)

	// Auto-select the most recently updated conversation when nothing is
	// selected yet, and pull in its history.
	if s.store.CurrentID() == "" && len(list) > 0 {
		sorted := append([]Conversation(nil), list...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].LastActivity().After(sorted[j].LastActivity())
		})
		latest := sorted[0].ConvID
		s.store.Select(latest)
		s.loadHistory(ctx, latest)
	}
	return nil
}

// Create asks the backend for a new conversation and makes it current. The
// id is server-assigned, so there is no optimistic insert; the list query
// is invalidated regardless of outcome to reconcile.
func (s *ChatSync) Create(ctx context.Context, name string) (*Conversation, error) {
	defer s.queries.Invalidate(QueryConversations)
	conv, err := s.gw.CreateConversation(ctx, name)
	if err != nil {
		s.log.Warn("create conversation failed", zap.Error(err))
		return nil, err
	}
	conv.Messages = []Message{}
	s.store.Add(*conv)
	s.store.Select(conv.ConvID)
	return conv, nil
}

// Rename updates the conversation name, patching local state on success.
func (s *ChatSync) Rename(ctx context.Context, convID, name string) error {
	defer s.queries.Invalidate(QueryConversations)
	if err := s.gw.RenameConversation(ctx, convID, name); err != nil {
		s.log.Warn("rename conversation failed", zap.String("conv_id", convID), zap.Error(err))
		return err
	}
	s.store.Rename(convID, name)
	return nil
}

// Delete removes the conversation, clearing the current pointer if it was
// selected.
func (s *ChatSync) Delete(ctx context.Context, convID string) error {
	defer s.queries.Invalidate(QueryConversations)
	if err := s.gw.DeleteConversation(ctx, convID); err != nil {
		s.log.Warn("delete conversation failed", zap.String("conv_id", convID), zap.Error(err))
		return err
	}
	s.store.Remove(convID)
	return nil
}

// Select is a pure local pointer change followed by a best-effort history
// load. An unknown id clears the pointer and is not an error.
func (s *ChatSync) Select(ctx context.Context, convID string) {
	if s.store.Select(convID) {
		s.loadHistory(ctx, convID)
	}
}

// Send runs the optimistic send protocol against the currently selected
// conversation. The user message is visible before the request is issued;
// the bot (or fixed error) message lands on settlement, always in the
// conversation bound here, even if the selection changed in flight. A
// backend failure is converted into the error message, not surfaced.
func (s *ChatSync) Send(ctx context.Context, text string) error {
	convID := s.store.CurrentID()
	if convID == "" {
		return ErrNoConversation
	}

	s.store.AppendMessage(convID, Message{
		ID:        uuid.NewString(),
		Content:   text,
		Sender:    SenderUser,
		Timestamp: time.Now().UTC(),
	})
	s.store.SetTyping(true)
	defer s.store.SetTyping(false)

	answer, err := s.gw.SendMessage(ctx, convID, text)
	content := answer
	if err != nil {
		s.log.Warn("send message failed", zap.String("conv_id", convID), zap.Error(err))
		content = botErrorText
	} else if strings.TrimSpace(content) == "" {
		content = botFallbackText
	}
	s.store.AppendMessage(convID, Message{
		ID:        uuid.NewString(),
		Content:   content,
		Sender:    SenderBot,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// loadHistory merges the fetched history into the given conversation only.
// Failures are logged and swallowed; the local messages stay as they are.
func (s *ChatSync) loadHistory(ctx context.Context, convID string) {
	msgs, err := s.gw.ConversationHistory(ctx, convID)
	if err != nil {
		s.log.Warn("load conversation history failed", zap.String("conv_id", convID), zap.Error(err))
		return
	}
	if msgs != nil {
		s.store.SetMessages(convID, msgs)
	}
}
