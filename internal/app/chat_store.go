package app

import "sync"

// ChatStore holds the conversation list, the current-conversation pointer
// and the typing flag. The pointer and the list are two views over the same
// state: every mutation touches both under one lock, so no reader can see
// one updated and the other stale.
type ChatStore struct {
	mu            sync.RWMutex
	conversations []Conversation
	currentID     string
	typing        bool
}

func NewChatStore() *ChatStore {
	return &ChatStore{}
}

// SetConversations replaces the list. A current pointer that no longer
// matches any list member is cleared.
func (s *ChatStore) SetConversations(conversations []Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = cloneConversations(conversations)
	if s.currentID != "" && s.indexOf(s.currentID) < 0 {
		s.currentID = ""
	}
}

// Add prepends a conversation, matching the server's newest-first ordering.
func (s *ChatStore) Add(conv Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = append([]Conversation{cloneConversation(conv)}, s.conversations...)
}

// Select points the current conversation at the given id. An id not in the
// list clears the pointer; it never fails.
func (s *ChatStore) Select(convID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(convID) < 0 {
		s.currentID = ""
		return false
	}
	s.currentID = convID
	return true
}

// Rename patches the conversation's name in place.
func (s *ChatStore) Rename(convID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(convID); i >= 0 {
		s.conversations[i].Name = name
	}
}

// Remove drops the conversation and clears the pointer if it was current.
func (s *ChatStore) Remove(convID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(convID)
	if i < 0 {
		return
	}
	s.conversations = append(s.conversations[:i:i], s.conversations[i+1:]...)
	if s.currentID == convID {
		s.currentID = ""
	}
}

// AppendMessage appends to the conversation with the given id. The target
// is the id bound by the caller, never "whichever conversation is current",
// so a settling send cannot leak into a conversation switched to mid-flight.
func (s *ChatStore) AppendMessage(convID string, msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(convID); i >= 0 {
		s.conversations[i].Messages = append(s.conversations[i].Messages, msg)
	}
}

// SetMessages replaces the conversation's message history.
func (s *ChatStore) SetMessages(convID string, msgs []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(convID); i >= 0 {
		s.conversations[i].Messages = append([]Message(nil), msgs...)
	}
}

func (s *ChatStore) SetTyping(typing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typing = typing
}

func (s *ChatStore) Typing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typing
}

func (s *ChatStore) Conversations() []Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneConversations(s.conversations)
}

func (s *ChatStore) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

// Current resolves the pointer against the list at read time.
func (s *ChatStore) Current() (Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(s.currentID); i >= 0 {
		return cloneConversation(s.conversations[i]), true
	}
	return Conversation{}, false
}

func (s *ChatStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = nil
	s.currentID = ""
	s.typing = false
}

// indexOf is called with the lock held.
func (s *ChatStore) indexOf(convID string) int {
	if convID == "" {
		return -1
	}
	for i := range s.conversations {
		if s.conversations[i].ConvID == convID {
			return i
		}
	}
	return -1
}

func cloneConversation(c Conversation) Conversation {
	clone := c
	clone.Messages = append([]Message(nil), c.Messages...)
	return clone
}

func cloneConversations(list []Conversation) []Conversation {
	out := make([]Conversation, len(list))
	for i, c := range list {
		out[i] = cloneConversation(c)
	}
	return out
}
