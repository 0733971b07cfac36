package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/creatorly/identity-service/internal/models"
	"github.com/creatorly/identity-service/internal/storage"
)

var ErrKYCNotPending = errors.New("kyc document already reviewed")

// KYCService is plain review bookkeeping: submit, list, decide. A document
// is decided exactly once; re-review attempts fail.
type KYCService struct {
	storage storage.Storage
	log     *zap.SugaredLogger
	now     func() time.Time
}

func NewKYCService(store storage.Storage, log *zap.SugaredLogger) *KYCService {
	return &KYCService{storage: store, log: log, now: time.Now}
}

func (s *KYCService) Submit(ctx context.Context, userID string, req models.SubmitKYCRequest) (*models.KYCDocument, error) {
	if _, err := s.storage.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	return s.storage.CreateKYCDocument(ctx, models.KYCDocument{
		ID:          uuid.NewString(),
		UserID:      userID,
		DocType:     req.DocType,
		FileRef:     req.FileRef,
		Status:      models.KYCStatusPending,
		SubmittedAt: s.now(),
	})
}

func (s *KYCService) ListPending(ctx context.Context) ([]models.KYCDocument, error) {
	return s.storage.ListKYCDocumentsByStatus(ctx, models.KYCStatusPending)
}

func (s *KYCService) ListForUser(ctx context.Context, userID string) ([]models.KYCDocument, error) {
	return s.storage.ListKYCDocumentsByUser(ctx, userID)
}

// Review records an approve/reject decision for a pending document.
func (s *KYCService) Review(ctx context.Context, reviewerID string, req models.ReviewKYCRequest) (*models.KYCDocument, error) {
	doc, err := s.storage.GetKYCDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != models.KYCStatusPending {
		return nil, ErrKYCNotPending
	}

	doc.Status = models.KYCStatusRejected
	if req.Approve {
		doc.Status = models.KYCStatusApproved
	}
	doc.ReviewNote = req.Note
	doc.ReviewerID = reviewerID
	doc.ReviewedAt = s.now()

	if err := s.storage.UpdateKYCReview(ctx, *doc); err != nil {
		// Lost the race with another reviewer.
		if errors.Is(err, storage.ErrDocumentNotFound) {
			return nil, ErrKYCNotPending
		}
		return nil, err
	}

	s.log.Infow("kyc document reviewed",
		"documentID", doc.ID,
		"userID", doc.UserID,
		"status", doc.Status,
		"reviewerID", reviewerID,
	)
	return doc, nil
}
