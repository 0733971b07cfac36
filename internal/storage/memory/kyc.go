package memory

import (
	"context"
	"sort"

	"github.com/creatorly/identity-service/internal/models"
	"github.com/creatorly/identity-service/internal/storage"
)

func (m *Storage) CreateKYCDocument(_ context.Context, doc models.KYCDocument) (*models.KYCDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.kycDocs[doc.ID] = doc
	created := doc
	return &created, nil
}

func (m *Storage) GetKYCDocument(_ context.Context, id string) (*models.KYCDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.kycDocs[id]
	if !ok {
		return nil, storage.ErrDocumentNotFound
	}
	return &doc, nil
}

func (m *Storage) ListKYCDocumentsByStatus(_ context.Context, status models.KYCStatus) ([]models.KYCDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := make([]models.KYCDocument, 0)
	for _, doc := range m.kycDocs {
		if doc.Status == status {
			docs = append(docs, doc)
		}
	}
	sortBySubmittedAt(docs)
	return docs, nil
}

func (m *Storage) ListKYCDocumentsByUser(_ context.Context, userID string) ([]models.KYCDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := make([]models.KYCDocument, 0)
	for _, doc := range m.kycDocs {
		if doc.UserID == userID {
			docs = append(docs, doc)
		}
	}
	sortBySubmittedAt(docs)
	return docs, nil
}

func (m *Storage) UpdateKYCReview(_ context.Context, doc models.KYCDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.kycDocs[doc.ID]
	if !ok || existing.Status != models.KYCStatusPending {
		return storage.ErrDocumentNotFound
	}
	existing.Status = doc.Status
	existing.ReviewNote = doc.ReviewNote
	existing.ReviewerID = doc.ReviewerID
	existing.ReviewedAt = doc.ReviewedAt
	m.kycDocs[doc.ID] = existing
	return nil
}

func sortBySubmittedAt(docs []models.KYCDocument) {
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].SubmittedAt.Before(docs[j].SubmittedAt)
	})
}
