package app

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Credentials is the identity persisted across restarts so a login survives
// a reload. Wiped on logout and on any 401.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// CredentialStore persists Credentials as a JSON file under the data dir.
type CredentialStore struct {
	path string
}

func NewCredentialStore(dataDir string) *CredentialStore {
	return &CredentialStore{path: filepath.Join(dataDir, "credentials.json")}
}

// Load returns nil (not an error) when no credentials are stored.
func (s *CredentialStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (s *CredentialStore) Save(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Clear removes the stored credentials. A missing file is not an error.
func (s *CredentialStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
