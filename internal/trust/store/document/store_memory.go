package document

import (
	"context"
	"sort"
	"sync"
	"time"

	"trustplane/internal/trust/models"
	id "trustplane/pkg/domain"
)

// InMemoryDocumentStore keeps verification documents in process memory.
// Stores are pure I/O; supersession and review rules live in the service.
type InMemoryDocumentStore struct {
	mu     sync.RWMutex
	byID   map[id.DocumentID]*models.VerificationDocument
	byUser map[id.UserID][]id.DocumentID
}

func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		byID:   make(map[id.DocumentID]*models.VerificationDocument),
		byUser: make(map[id.UserID][]id.DocumentID),
	}
}

func (s *InMemoryDocumentStore) Create(_ context.Context, doc *models.VerificationDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *doc
	s.byID[doc.ID] = &cp
	s.byUser[doc.UserID] = append(s.byUser[doc.UserID], doc.ID)
	return nil
}

func (s *InMemoryDocumentStore) Get(_ context.Context, docID id.DocumentID) (*models.VerificationDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.byID[docID]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

func (s *InMemoryDocumentStore) UpdateStatus(_ context.Context, docID id.DocumentID, status models.DocumentStatus, reason string, verifiedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.byID[docID]
	if !ok {
		return nil
	}
	doc.Status = status
	doc.RejectionReason = reason
	doc.VerifiedAt = verifiedAt
	return nil
}

func (s *InMemoryDocumentStore) FindLatestByCategory(_ context.Context, userID id.UserID, category models.Category) (*models.VerificationDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Later insertion wins ties so resubmissions within one clock tick still
	// supersede their predecessor.
	var latest *models.VerificationDocument
	for _, docID := range s.byUser[userID] {
		doc := s.byID[docID]
		if doc == nil || doc.Category != category {
			continue
		}
		if latest == nil || !doc.SubmittedAt.Before(latest.SubmittedAt) {
			latest = doc
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

// ListByUser returns every document a user ever submitted, newest first.
func (s *InMemoryDocumentStore) ListByUser(_ context.Context, userID id.UserID) ([]models.VerificationDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]models.VerificationDocument, 0, len(s.byUser[userID]))
	for _, docID := range s.byUser[userID] {
		if doc := s.byID[docID]; doc != nil {
			docs = append(docs, *doc)
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].SubmittedAt.After(docs[j].SubmittedAt)
	})
	return docs, nil
}
