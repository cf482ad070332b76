package app

import "time"

// User is the authenticated identity returned by the backend.
type User struct {
	ID       string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
}

// Message sender values as the backend and history endpoint report them.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"` // user|bot
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a named thread of messages. Messages are lazily loaded:
// list responses carry conversations without history, which is fetched and
// merged when a conversation is selected.
type Conversation struct {
	ConvID    string    `json:"conv_id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	Messages  []Message `json:"messages,omitempty"`
}

// LastActivity orders conversations by recency. Absent timestamps sort as
// the zero time.
func (c Conversation) LastActivity() time.Time {
	if !c.UpdatedAt.IsZero() {
		return c.UpdatedAt
	}
	return c.CreatedAt
}

// Document is an uploaded file as the client sees it. Key is the backend
// storage key and doubles as the document id.
type Document struct {
	ID         string    `json:"id"`
	Key        string    `json:"key"`
	Name       string    `json:"name"`
	URL        string    `json:"url,omitempty"`
	Size       int64     `json:"size"`
	Type       string    `json:"type,omitempty"`
	UploadDate time.Time `json:"upload_date,omitempty"`
}

// DocumentStatus is the backend's processing state for the document set.
type DocumentStatus string

const (
	StatusNoDocuments DocumentStatus = "no_documents"
	StatusWaiting     DocumentStatus = "waiting"
	StatusProcessing  DocumentStatus = "processing"
	// StatusProcessed is defined by the backend status contract but no
	// current backend path reports it; the display layer still renders it.
	StatusProcessed DocumentStatus = "processed"
	StatusError     DocumentStatus = "error"
)
