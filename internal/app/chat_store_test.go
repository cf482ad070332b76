package app

import "testing"

func twoConversations() []Conversation {
	return []Conversation{
		{ConvID: "c1", Name: "First"},
		{ConvID: "c2", Name: "Second"},
	}
}

func TestChatStoreSelectUnknownIDClearsPointer(t *testing.T) {
	store := NewChatStore()
	store.SetConversations(twoConversations())
	store.Select("c1")

	if ok := store.Select("missing"); ok {
		t.Fatalf("expected Select to report missing id")
	}
	if got := store.CurrentID(); got != "" {
		t.Fatalf("current id = %q, want empty", got)
	}
}

func TestChatStorePointerStaysConsistentAcrossMutations(t *testing.T) {
	store := NewChatStore()
	store.SetConversations(twoConversations())
	store.Select("c2")

	store.Rename("c2", "Renamed")
	if cur, ok := store.Current(); !ok || cur.Name != "Renamed" {
		t.Fatalf("current after rename = %+v ok=%v, want Renamed", cur, ok)
	}

	store.Remove("c1")
	if cur, ok := store.Current(); !ok || cur.ConvID != "c2" {
		t.Fatalf("current after unrelated remove = %+v ok=%v", cur, ok)
	}

	store.Remove("c2")
	if got := store.CurrentID(); got != "" {
		t.Fatalf("current id after removing current = %q, want empty", got)
	}
	if _, ok := store.Current(); ok {
		t.Fatalf("expected no current conversation")
	}
}

func TestChatStoreSetConversationsDropsDanglingPointer(t *testing.T) {
	store := NewChatStore()
	store.SetConversations(twoConversations())
	store.Select("c1")

	store.SetConversations([]Conversation{{ConvID: "c9"}})
	if got := store.CurrentID(); got != "" {
		t.Fatalf("current id = %q, want empty after replace", got)
	}
}

func TestChatStoreAppendTargetsGivenConversation(t *testing.T) {
	store := NewChatStore()
	store.SetConversations(twoConversations())
	store.Select("c2")

	store.AppendMessage("c1", Message{ID: "m1", Content: "hi", Sender: SenderUser})

	convs := store.Conversations()
	if len(convs[0].Messages) != 1 {
		t.Fatalf("expected message appended to c1, got %d", len(convs[0].Messages))
	}
	if cur, _ := store.Current(); len(cur.Messages) != 0 {
		t.Fatalf("current conversation gained a message it shouldn't have")
	}
}

func TestChatStoreResetClearsEverything(t *testing.T) {
	store := NewChatStore()
	store.SetConversations(twoConversations())
	store.Select("c1")
	store.SetTyping(true)

	store.Reset()
	if len(store.Conversations()) != 0 || store.CurrentID() != "" || store.Typing() {
		t.Fatalf("reset left state behind")
	}
}
