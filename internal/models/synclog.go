package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncLogEntry is an append-only audit record of a publish attempt.
// Write-once, never mutated.
type SyncLogEntry struct {
	ID        string    `json:"id" badgerhold:"key"`
	DraftID   string    `json:"draft_id,omitempty"`
	ProductID string    `json:"product_id"`
	SKU       string    `json:"sku"`
	ListingID string    `json:"listing_id,omitempty"`
	OfferID   string    `json:"offer_id,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSyncLogEntry creates a sync log entry stamped with the current time.
func NewSyncLogEntry(productID, sku string) *SyncLogEntry {
	return &SyncLogEntry{
		ID:        uuid.New().String(),
		ProductID: productID,
		SKU:       sku,
		CreatedAt: time.Now(),
	}
}
