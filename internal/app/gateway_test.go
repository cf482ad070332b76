package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func staticToken(token string) TokenSource {
	return func() string { return token }
}

func TestClientAttachesTokenAsBearerAndCookie(t *testing.T) {
	var gotAuth, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if c, err := r.Cookie("access_token"); err == nil {
			gotCookie = c.Value
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"conversations": []Conversation{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, staticToken("tok123"))
	if _, err := client.ListConversations(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotCookie != "tok123" {
		t.Fatalf("access_token cookie = %q", gotCookie)
	}
}

func TestClientUnauthorizedRunsTeardownHookOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, staticToken("stale"))
	teardowns := 0
	client.SetUnauthorizedHook(func() { teardowns++ })

	_, err := client.ListConversations(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if teardowns != 1 {
		t.Fatalf("teardown hook ran %d times, want 1", teardowns)
	}
}

func TestClientDecodesBackendDetailIntoAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Documents are already being processed"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	err := client.ProcessDocuments(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "Documents are already being processed" {
		t.Fatalf("api error = %+v", apiErr)
	}
}

func TestCreateConversationOmitsBlankName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantBody map[string]string
	}{
		{name: "blank omitted", input: "   ", wantBody: map[string]string{}},
		{name: "trimmed", input: "  My Chat  ", wantBody: map[string]string{"name": "My Chat"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got map[string]string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&got)
				_ = json.NewEncoder(w).Encode(Conversation{ConvID: "c1", Name: "New Chat"})
			}))
			defer srv.Close()

			client := NewClient(srv.URL, time.Second, nil)
			if _, err := client.CreateConversation(context.Background(), tc.input); err != nil {
				t.Fatalf("create: %v", err)
			}
			if len(got) != len(tc.wantBody) {
				t.Fatalf("body = %v, want %v", got, tc.wantBody)
			}
			for k, v := range tc.wantBody {
				if got[k] != v {
					t.Fatalf("body[%s] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestSendMessagePostsConvIDAndQuestion(t *testing.T) {
	var path string
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "R"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	got, err := client.SendMessage(context.Background(), "c1", "what is this?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if got != "R" {
		t.Fatalf("response = %q, want R", got)
	}
	if path != "/chat/send" {
		t.Fatalf("path = %q", path)
	}
	if body["conv_id"] != "c1" || body["question"] != "what is this?" {
		t.Fatalf("body = %v", body)
	}
}

func TestDeleteDocumentEscapesStorageKey(t *testing.T) {
	var rawPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "deleted"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	if err := client.DeleteDocument(context.Background(), "user/some file.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rawPath != "/documents/user%2Fsome%20file.pdf" {
		t.Fatalf("path = %q", rawPath)
	}
}

func TestListDocumentsMapsBackendRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/documents/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"documents": []map[string]any{{
				"key":           "user/a.pdf",
				"filename":      "a.pdf",
				"url":           "https://bucket/a.pdf",
				"size":          1234,
				"last_modified": "2024-03-01T12:00:00Z",
				"type":          "application/pdf",
			}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	docs, err := client.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents", len(docs))
	}
	d := docs[0]
	if d.ID != "user/a.pdf" || d.Key != "user/a.pdf" || d.Name != "a.pdf" || d.Size != 1234 {
		t.Fatalf("mapped document = %+v", d)
	}
	if d.UploadDate.IsZero() {
		t.Fatalf("upload date not parsed")
	}
}

func TestConversationHistoryDecodesMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/conversations/c1/history" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"conv_id": "c1",
			"messages": []map[string]any{
				{"id": "0", "content": "hi", "sender": "user", "timestamp": "2024-03-01T12:00:00Z"},
				{"id": "1", "content": "hello", "sender": "bot", "timestamp": "2024-03-01T12:00:01Z"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	msgs, err := client.ConversationHistory(context.Background(), "c1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Sender != SenderUser || msgs[1].Sender != SenderBot {
		t.Fatalf("messages = %+v", msgs)
	}
}
