package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Gateway is the REST contract the synchronization layer consumes. The
// backend owns all business logic; every method is a thin request wrapper.
type Gateway interface {
	ListConversations(ctx context.Context) ([]Conversation, error)
	CreateConversation(ctx context.Context, name string) (*Conversation, error)
	RenameConversation(ctx context.Context, convID, name string) error
	DeleteConversation(ctx context.Context, convID string) error
	ConversationHistory(ctx context.Context, convID string) ([]Message, error)
	SendMessage(ctx context.Context, convID, question string) (string, error)

	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	CurrentUser(ctx context.Context) (*User, error)
	ForgotPassword(ctx context.Context, email string) error
	ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error

	UploadDocuments(ctx context.Context, paths []string) error
	ListDocuments(ctx context.Context) ([]Document, error)
	DocumentStatus(ctx context.Context) (DocumentStatus, error)
	ProcessDocuments(ctx context.Context) error
	DeleteDocument(ctx context.Context, key string) error
}

// AuthResult is the backend's answer to login/register.
type AuthResult struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
}

// TokenSource supplies the current access token, empty when logged out.
type TokenSource func() string

// Client talks to the DocChat backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	tokens TokenSource
	// onUnauthorized runs once per 401 response before ErrUnauthorized is
	// returned. It is global teardown, not per-call handling.
	onUnauthorized func()
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// SetUnauthorizedHook registers the session teardown invoked on any 401.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if c.tokens != nil {
		if token := c.tokens(); token != "" {
			// The backend reads the token from a cookie; the bearer header
			// is kept for parity with the proxy setups it sits behind.
			req.Header.Set("Authorization", "Bearer "+token)
			req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}
	if resp.StatusCode >= 300 {
		var detail struct {
			Detail  string `json:"detail"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &detail)
		msg := detail.Detail
		if msg == "" {
			msg = detail.Message
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("invalid response format: %w", err)
		}
	}
	return nil
}

func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	var res struct {
		Conversations []Conversation `json:"conversations"`
	}
	if err := c.do(ctx, http.MethodGet, "/conversations", nil, &res); err != nil {
		return nil, err
	}
	return res.Conversations, nil
}

func (c *Client) CreateConversation(ctx context.Context, name string) (*Conversation, error) {
	// Empty or whitespace-only names are omitted so the backend applies
	// its "New Chat" default.
	body := map[string]string{}
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		body["name"] = trimmed
	}
	var conv Conversation
	if err := c.do(ctx, http.MethodPost, "/conversations", body, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (c *Client) RenameConversation(ctx context.Context, convID, name string) error {
	body := map[string]string{"name": name}
	return c.do(ctx, http.MethodPut, "/conversations/"+url.PathEscape(convID), body, nil)
}

func (c *Client) DeleteConversation(ctx context.Context, convID string) error {
	return c.do(ctx, http.MethodDelete, "/conversations/"+url.PathEscape(convID), nil, nil)
}

func (c *Client) ConversationHistory(ctx context.Context, convID string) ([]Message, error) {
	var res struct {
		ConvID   string    `json:"conv_id"`
		Messages []Message `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/conversations/"+url.PathEscape(convID)+"/history", nil, &res); err != nil {
		return nil, err
	}
	return res.Messages, nil
}

func (c *Client) SendMessage(ctx context.Context, convID, question string) (string, error) {
	body := map[string]string{"conv_id": convID, "question": question}
	var res struct {
		Response string `json:"response"`
	}
	if err := c.do(ctx, http.MethodPost, "/chat/send", body, &res); err != nil {
		return "", err
	}
	return res.Response, nil
}

// SendLegacyMessage posts to the pre-conversation /chat endpoint, kept for
// backends that still serve it.
func (c *Client) SendLegacyMessage(ctx context.Context, sessionID, question string) (string, error) {
	body := map[string]string{"session_id": sessionID, "question": question}
	var res struct {
		Response string `json:"response"`
	}
	if err := c.do(ctx, http.MethodPost, "/chat", body, &res); err != nil {
		return "", err
	}
	return res.Response, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/login", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/register", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/forgot-password", map[string]string{"email": email}, nil)
}

func (c *Client) ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error {
	body := map[string]string{"email": email, "code": code, "new_password": newPassword}
	return c.do(ctx, http.MethodPost, "/confirm-forgot-password", body, nil)
}

func (c *Client) UploadDocuments(ctx context.Context, paths []string) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		part, err := writer.CreateFormFile("files", filepath.Base(path))
		if err != nil {
			f.Close()
			return err
		}
		if _, err := io.Copy(part, f); err != nil {
			f.Close()
			return err
		}
		f.Close()
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upload/", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.send(req, nil)
}

// documentRow is the backend's listing shape; the storage key doubles as
// the client-side document id.
type documentRow struct {
	Key          string `json:"key"`
	Filename     string `json:"filename"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
	Type         string `json:"type"`
}

func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	var res struct {
		Documents []documentRow `json:"documents"`
	}
	if err := c.do(ctx, http.MethodGet, "/documents/", nil, &res); err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(res.Documents))
	for _, row := range res.Documents {
		uploaded, _ := time.Parse(time.RFC3339, row.LastModified)
		docs = append(docs, Document{
			ID:         row.Key,
			Key:        row.Key,
			Name:       row.Filename,
			URL:        row.URL,
			Size:       row.Size,
			Type:       row.Type,
			UploadDate: uploaded,
		})
	}
	return docs, nil
}

func (c *Client) DocumentStatus(ctx context.Context) (DocumentStatus, error) {
	var res struct {
		Status DocumentStatus `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/documents/status", nil, &res); err != nil {
		return "", err
	}
	return res.Status, nil
}

func (c *Client) ProcessDocuments(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/documents/process", nil, nil)
}

func (c *Client) DeleteDocument(ctx context.Context, key string) error {
	return c.do(ctx, http.MethodDelete, "/documents/"+url.PathEscape(key), nil, nil)
}
