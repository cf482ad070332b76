package app

import "sync"

// DocumentStore holds the uploaded document list and the last status the
// backend reported. The raw status is preserved as fetched; the empty-list
// override lives in DisplayStatus so stale server state can reconcile once
// documents reappear.
type DocumentStore struct {
	mu        sync.RWMutex
	documents []Document
	status    DocumentStatus
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{status: StatusNoDocuments}
}

func (s *DocumentStore) SetDocuments(documents []Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = append([]Document(nil), documents...)
}

func (s *DocumentStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.documents {
		if s.documents[i].ID == id {
			s.documents = append(s.documents[:i:i], s.documents[i+1:]...)
			return
		}
	}
}

func (s *DocumentStore) SetStatus(status DocumentStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *DocumentStore) Documents() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Document(nil), s.documents...)
}

// RawStatus is the status as last fetched, without the empty-list override.
func (s *DocumentStore) RawStatus() DocumentStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// DisplayStatus forces no_documents while the list is empty, overriding
// whatever the status endpoint last reported.
func (s *DocumentStore) DisplayStatus() DocumentStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.documents) == 0 {
		return StatusNoDocuments
	}
	return s.status
}

func (s *DocumentStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = nil
	s.status = StatusNoDocuments
}
