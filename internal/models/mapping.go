package models

import "time"

// MappingStatus tracks the sync state of a product mapping.
type MappingStatus string

const (
	MappingStatusActive MappingStatus = "active"
	MappingStatusStale  MappingStatus = "stale"
)

// ProductMapping is the durable association between a catalog product id and
// a marketplace listing id / inventory SKU. Created on first successful
// publish and updated in place on later syncs, never re-created.
type ProductMapping struct {
	ProductID string        `json:"product_id" badgerhold:"key"`
	ListingID string        `json:"listing_id"`
	OfferID   string        `json:"offer_id,omitempty"`
	SKU       string        `json:"sku"`
	Status    MappingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IsListed returns true when the mapping points at a live listing.
func (m *ProductMapping) IsListed() bool {
	return m != nil && m.ListingID != ""
}
