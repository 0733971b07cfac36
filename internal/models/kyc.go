package models

import "time"

type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
)

// KYCDocument is one identity document submitted for review.
// Status moves pending -> approved|rejected exactly once.
type KYCDocument struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DocType     string    `json:"doc_type"`
	FileRef     string    `json:"file_ref"`
	Status      KYCStatus `json:"status"`
	ReviewNote  string    `json:"review_note,omitempty"`
	ReviewerID  string    `json:"reviewer_id,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	ReviewedAt  time.Time `json:"reviewed_at,omitempty"`
}
