package marketplace

// eBay Sell API wire types. Only the fields the publisher needs.

type inventoryLocation struct {
	MerchantLocationKey string          `json:"merchantLocationKey,omitempty"`
	Name                string          `json:"name,omitempty"`
	Location            locationDetails `json:"location"`
	LocationTypes       []string        `json:"locationTypes,omitempty"`
}

type locationDetails struct {
	Address locationAddress `json:"address"`
}

type locationAddress struct {
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type inventoryItem struct {
	Product      inventoryProduct `json:"product"`
	Condition    string           `json:"condition"`
	Availability availability     `json:"availability"`
}

type inventoryProduct struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	ImageURLs   []string            `json:"imageUrls"`
	MPN         string              `json:"mpn,omitempty"`
	UPC         []string            `json:"upc,omitempty"`
	Aspects     map[string][]string `json:"aspects,omitempty"`
}

type availability struct {
	ShipToLocationAvailability shipToLocationAvailability `json:"shipToLocationAvailability"`
}

type shipToLocationAvailability struct {
	Quantity int `json:"quantity"`
}

type offersEnvelope struct {
	Offers []offer `json:"offers"`
	Total  int     `json:"total"`
}

type offer struct {
	OfferID             string           `json:"offerId,omitempty"`
	SKU                 string           `json:"sku"`
	MarketplaceID       string           `json:"marketplaceId"`
	Format              string           `json:"format"`
	AvailableQuantity   int              `json:"availableQuantity"`
	CategoryID          string           `json:"categoryId"`
	ListingDescription  string           `json:"listingDescription,omitempty"`
	Listing             *offerListing    `json:"listing,omitempty"`
	ListingPolicies     *listingPolicies `json:"listingPolicies,omitempty"`
	MerchantLocationKey string           `json:"merchantLocationKey,omitempty"`
	PricingSummary      *pricingSummary  `json:"pricingSummary,omitempty"`
	Status              string           `json:"status,omitempty"`
}

type offerListing struct {
	ListingID string `json:"listingId"`
}

type listingPolicies struct {
	FulfillmentPolicyID string `json:"fulfillmentPolicyId"`
	PaymentPolicyID     string `json:"paymentPolicyId"`
	ReturnPolicyID      string `json:"returnPolicyId"`
}

type pricingSummary struct {
	Price moneyAmount `json:"price"`
}

type moneyAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type createOfferResponse struct {
	OfferID string `json:"offerId"`
}

type publishResponse struct {
	ListingID string `json:"listingId"`
}

type fulfillmentPoliciesEnvelope struct {
	FulfillmentPolicies []policy `json:"fulfillmentPolicies"`
}

type paymentPoliciesEnvelope struct {
	PaymentPolicies []policy `json:"paymentPolicies"`
}

type returnPoliciesEnvelope struct {
	ReturnPolicies []policy `json:"returnPolicies"`
}

type policy struct {
	FulfillmentPolicyID string `json:"fulfillmentPolicyId,omitempty"`
	PaymentPolicyID     string `json:"paymentPolicyId,omitempty"`
	ReturnPolicyID      string `json:"returnPolicyId,omitempty"`
	Name                string `json:"name"`
}
