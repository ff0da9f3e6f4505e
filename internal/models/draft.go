package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftStatus represents the review lifecycle of a draft.
// pending -> approved | rejected | partial, approved | partial -> listed.
// Once a draft leaves pending it never returns to pending.
type DraftStatus string

const (
	DraftStatusPending  DraftStatus = "pending"
	DraftStatusApproved DraftStatus = "approved"
	DraftStatusRejected DraftStatus = "rejected"
	DraftStatusPartial  DraftStatus = "partial"
	DraftStatusListed   DraftStatus = "listed"
)

// Draft is a proposed, not-yet-live set of AI-generated changes for one
// catalog product, awaiting human approval. At most one pending draft may
// exist per product at a time.
type Draft struct {
	ID                  string      `json:"id" badgerhold:"key"`
	ProductID           string      `json:"product_id"`
	ProposedTitle       string      `json:"proposed_title,omitempty"`
	ProposedDescription string      `json:"proposed_description,omitempty"`
	ProposedPhotos      []string    `json:"proposed_photos,omitempty"`
	Status              DraftStatus `json:"status"`
	ListingID           string      `json:"listing_id,omitempty"`
	OfferID             string      `json:"offer_id,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// NewDraft creates a pending draft for a product.
func NewDraft(productID string) *Draft {
	now := time.Now()
	return &Draft{
		ID:        uuid.New().String(),
		ProductID: productID,
		Status:    DraftStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPending returns true while the draft is still awaiting review.
func (d *Draft) IsPending() bool {
	return d.Status == DraftStatusPending
}

// Publishable returns true if the draft state allows a marketplace publish.
func (d *Draft) Publishable() bool {
	return d.Status == DraftStatusPending ||
		d.Status == DraftStatusApproved ||
		d.Status == DraftStatusPartial
}
