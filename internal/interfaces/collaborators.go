// -----------------------------------------------------------------------
// Collaborator interfaces - narrow contracts for the external systems the
// pipeline calls. Implementations live under internal/services.
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/ternarybob/relist/internal/models"
)

// CatalogService is the source commerce platform (Shopify) client.
type CatalogService interface {
	// FetchProduct returns the catalog record for a product id, or
	// models.ErrProductNotFound.
	FetchProduct(ctx context.Context, productID string) (*models.Product, error)

	// ListOrders returns orders filtered by status, newest first.
	ListOrders(ctx context.Context, status string, limit int) ([]*models.Order, error)

	// DeleteOrder permanently removes an order from the catalog platform.
	DeleteOrder(ctx context.Context, orderID string) error
}

// MarketplaceService is the external marketplace (eBay Sell) client.
type MarketplaceService interface {
	// EnsureLocation gets the merchant inventory location, creating it only
	// if absent. Returns the merchant location key.
	EnsureLocation(ctx context.Context) (string, error)

	// GetBusinessPolicies fetches the seller fulfillment/payment/return
	// policy ids required by CreateOffer.
	GetBusinessPolicies(ctx context.Context) (*models.BusinessPolicies, error)

	// CreateOrReplaceInventoryItem upserts the inventory item for a SKU.
	// Safe to repeat; last write wins.
	CreateOrReplaceInventoryItem(ctx context.Context, sku string, payload *models.ListingPayload) error

	// GetOffersBySKU returns existing offers for a SKU.
	GetOffersBySKU(ctx context.Context, sku string) ([]*models.Offer, error)

	// CreateOffer creates a new unpublished offer and returns its id.
	CreateOffer(ctx context.Context, payload *models.ListingPayload, policies *models.BusinessPolicies, locationKey string) (string, error)

	// PublishOffer publishes an offer and returns the live listing id.
	PublishOffer(ctx context.Context, offerID string) (string, error)
}

// ImageService is the photo background-removal microservice client.
type ImageService interface {
	// ProcessImage runs one photo through the background-removal pipeline
	// and returns the URL of the processed image.
	ProcessImage(ctx context.Context, sourceURL string) (string, error)

	// Health probes the image service.
	Health(ctx context.Context) error
}

// DescriptionService generates marketplace listing descriptions.
type DescriptionService interface {
	// GenerateDescription produces a sales description for a product.
	GenerateDescription(ctx context.Context, product *models.Product) (string, error)

	// Provider returns the provider name ("claude", "gemini").
	Provider() string
}
