package models

import "time"

// Product is the internal view of a catalog (Shopify) product record.
// Field names are canonical internal names; catalog wire-format variants
// live in the catalog client, not here.
type Product struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ProductType   string    `json:"product_type"`
	Vendor        string    `json:"vendor"`
	Tags          []string  `json:"tags,omitempty"`
	Images        []string  `json:"images"`
	SKU           string    `json:"sku"`
	Barcode       string    `json:"barcode,omitempty"`
	Price         string    `json:"price"`
	Quantity      int       `json:"quantity"`
	ConditionCode int       `json:"condition_code"`
	ConditionNote string    `json:"condition_note,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Order is the minimal view of a catalog order used by the cleanup batch.
type Order struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Test      bool      `json:"test"`
	CreatedAt time.Time `json:"created_at"`
}

// BusinessPolicies are the seller policy ids required to create an offer.
type BusinessPolicies struct {
	FulfillmentPolicyID string `json:"fulfillment_policy_id"`
	PaymentPolicyID     string `json:"payment_policy_id"`
	ReturnPolicyID      string `json:"return_policy_id"`
}

// Offer is a marketplace-side sellable unit tied to a SKU.
type Offer struct {
	ID        string `json:"id"`
	SKU       string `json:"sku"`
	ListingID string `json:"listing_id,omitempty"`
	Status    string `json:"status,omitempty"`
}
