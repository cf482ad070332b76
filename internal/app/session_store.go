package app

import "sync"

// SessionStore holds the authenticated identity for this client session.
// The authenticated flag is never stored: it is always derived from the
// presence of a user, so the two can't drift apart.
type SessionStore struct {
	mu    sync.RWMutex
	user  *User
	token string

	creds *CredentialStore
}

func NewSessionStore(creds *CredentialStore) *SessionStore {
	return &SessionStore{creds: creds}
}

func (s *SessionStore) SetUser(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = cloneUser(user)
}

func (s *SessionStore) Login(user *User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = cloneUser(user)
	s.token = token
}

// Logout clears the in-memory identity and the persisted credential file,
// so a stale identity cannot come back on the next start.
func (s *SessionStore) Logout() {
	s.Reset()
}

func (s *SessionStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
	if s.creds != nil {
		_ = s.creds.Clear()
	}
}

// UpdateUser patches fields of the current user; a nil current user stays nil.
func (s *SessionStore) UpdateUser(patch func(*User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	updated := *s.user
	patch(&updated)
	s.user = &updated
}

func (s *SessionStore) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
