package models

// ListingOverrides are optional human-supplied fields that take precedence
// over system-computed defaults when building a listing payload. Supplied
// per publish call, never persisted.
type ListingOverrides struct {
	Title      string              `json:"title,omitempty" validate:"omitempty,max=80"`
	Price      string              `json:"price,omitempty" validate:"omitempty,numeric"`
	CategoryID string              `json:"category_id,omitempty" validate:"omitempty,numeric"`
	Condition  int                 `json:"condition,omitempty" validate:"omitempty,gte=0"`
	Aspects    map[string][]string `json:"aspects,omitempty"`
	PhotoURLs  []string            `json:"photo_urls,omitempty" validate:"omitempty,dive,url"`
}

// ListingPayload is the fully resolved marketplace listing produced by the
// listing builder and consumed by the publisher.
type ListingPayload struct {
	SKU                  string              `json:"sku"`
	Title                string              `json:"title"`
	Description          string              `json:"description"`
	PhotoURLs            []string            `json:"photo_urls"`
	CategoryID           string              `json:"category_id"`
	ConditionID          string              `json:"condition_id"`
	ConditionDescription string              `json:"condition_description,omitempty"`
	Price                string              `json:"price"`
	Currency             string              `json:"currency"`
	Quantity             int                 `json:"quantity"`
	MPN                  string              `json:"mpn,omitempty"`
	Barcode              string              `json:"barcode"`
	Aspects              map[string][]string `json:"aspects,omitempty"`
}
