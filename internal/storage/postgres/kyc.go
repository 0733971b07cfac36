package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/creatorly/identity-service/internal/models"
	"github.com/creatorly/identity-service/internal/storage"
)

const kycColumns = `id, user_id, doc_type, file_ref, status, review_note, reviewer_id, submitted_at, reviewed_at`

type KYCRepository struct {
	db storage.DBTX
}

func NewKYCRepository(db storage.DBTX) *KYCRepository {
	return &KYCRepository{db: db}
}

func scanKYCDocument(row interface{ Scan(...any) error }) (*models.KYCDocument, error) {
	var (
		doc        models.KYCDocument
		reviewerID sql.NullString
		reviewedAt sql.NullTime
	)
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.DocType,
		&doc.FileRef,
		&doc.Status,
		&doc.ReviewNote,
		&reviewerID,
		&doc.SubmittedAt,
		&reviewedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.ReviewerID = reviewerID.String
	if reviewedAt.Valid {
		doc.ReviewedAt = reviewedAt.Time
	}
	return &doc, nil
}

func (r *KYCRepository) CreateKYCDocument(ctx context.Context, doc models.KYCDocument) (*models.KYCDocument, error) {
	query := `INSERT INTO kyc_documents (id, user_id, doc_type, file_ref, status, review_note, submitted_at)
		VALUES ($1, $2, $3, $4, $5, '', $6)
		RETURNING ` + kycColumns
	created, err := scanKYCDocument(r.db.QueryRowContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.DocType,
		doc.FileRef,
		doc.Status,
		doc.SubmittedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create kyc document: %w", err)
	}
	return created, nil
}

func (r *KYCRepository) GetKYCDocument(ctx context.Context, id string) (*models.KYCDocument, error) {
	query := `SELECT ` + kycColumns + ` FROM kyc_documents WHERE id = $1`
	doc, err := scanKYCDocument(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get kyc document: %w", err)
	}
	return doc, nil
}

func (r *KYCRepository) ListKYCDocumentsByStatus(ctx context.Context, status models.KYCStatus) ([]models.KYCDocument, error) {
	query := `SELECT ` + kycColumns + ` FROM kyc_documents WHERE status = $1 ORDER BY submitted_at ASC`
	return r.listKYCDocuments(ctx, query, string(status))
}

func (r *KYCRepository) ListKYCDocumentsByUser(ctx context.Context, userID string) ([]models.KYCDocument, error) {
	query := `SELECT ` + kycColumns + ` FROM kyc_documents WHERE user_id = $1 ORDER BY submitted_at ASC`
	return r.listKYCDocuments(ctx, query, userID)
}

func (r *KYCRepository) listKYCDocuments(ctx context.Context, query string, arg string) ([]models.KYCDocument, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list kyc documents: %w", err)
	}
	defer rows.Close()

	docs := make([]models.KYCDocument, 0)
	for rows.Next() {
		doc, err := scanKYCDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan kyc document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list kyc documents: %w", err)
	}
	return docs, nil
}

// UpdateKYCReview records a review decision. The status guard keeps the
// transition one-way: only pending documents can be decided.
func (r *KYCRepository) UpdateKYCReview(ctx context.Context, doc models.KYCDocument) error {
	query := `UPDATE kyc_documents
		SET status = $2, review_note = $3, reviewer_id = $4, reviewed_at = $5
		WHERE id = $1 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, doc.ID, doc.Status, doc.ReviewNote, doc.ReviewerID, doc.ReviewedAt)
	if err != nil {
		return fmt.Errorf("update kyc review: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update kyc review: %w", err)
	}
	if affected == 0 {
		return storage.ErrDocumentNotFound
	}
	return nil
}
