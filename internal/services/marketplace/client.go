// Package marketplace provides a client for the eBay Sell APIs used to
// create inventory, offers, and live listings.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/relist/internal/common"
	"github.com/ternarybob/relist/internal/models"
)

const (
	// DefaultBaseURL is the eBay production API host.
	DefaultBaseURL = "https://api.ebay.com"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit keeps the client under eBay's application quota.
	DefaultRateLimit = 5

	offerFormatFixedPrice = "FIXED_PRICE"
)

// Client is an eBay Sell API client.
type Client struct {
	baseURL       string
	token         string
	marketplaceID string
	locationKey   string
	postalCode    string
	country       string
	policies      models.BusinessPolicies
	httpClient    *http.Client
	logger        arbor.ILogger
	limiter       *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new eBay Sell API client from configuration.
func NewClient(cfg common.EbayConfig, opts ...ClientOption) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:       baseURL,
		token:         cfg.Token,
		marketplaceID: cfg.MarketplaceID,
		locationKey:   cfg.MerchantLocationKey,
		postalCode:    cfg.LocationPostalCode,
		country:       cfg.LocationCountry,
		policies: models.BusinessPolicies{
			FulfillmentPolicyID: cfg.FulfillmentPolicyID,
			PaymentPolicyID:     cfg.PaymentPolicyID,
			ReturnPolicyID:      cfg.ReturnPolicyID,
		},
		httpClient: &http.Client{
			Timeout: common.ParseDurationOr(cfg.Timeout, DefaultTimeout),
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error from the eBay Sell APIs.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ebay API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// EnsureLocation gets the configured merchant location, creating it only if
// absent, and returns the merchant location key.
func (c *Client) EnsureLocation(ctx context.Context) (string, error) {
	path := fmt.Sprintf("/sell/inventory/v1/location/%s", url.PathEscape(c.locationKey))

	var existing inventoryLocation
	err := c.do(ctx, http.MethodGet, path, nil, &existing)
	if err == nil {
		return c.locationKey, nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		return "", fmt.Errorf("failed to get merchant location: %w", err)
	}

	location := inventoryLocation{
		Name: "Primary warehouse",
		Location: locationDetails{
			Address: locationAddress{
				PostalCode: c.postalCode,
				Country:    c.country,
			},
		},
		LocationTypes: []string{"WAREHOUSE"},
	}
	if err := c.do(ctx, http.MethodPost, path, location, nil); err != nil {
		return "", fmt.Errorf("failed to create merchant location: %w", err)
	}

	c.logger.Info().
		Str("location_key", c.locationKey).
		Msg("Created merchant inventory location")

	return c.locationKey, nil
}

// GetBusinessPolicies returns the seller policy ids required by CreateOffer.
// Configured overrides win; otherwise the first policy of each kind on the
// account is used.
func (c *Client) GetBusinessPolicies(ctx context.Context) (*models.BusinessPolicies, error) {
	policies := c.policies

	if policies.FulfillmentPolicyID == "" {
		var envelope fulfillmentPoliciesEnvelope
		if err := c.do(ctx, http.MethodGet, "/sell/account/v1/fulfillment_policy?marketplace_id="+c.marketplaceID, nil, &envelope); err != nil {
			return nil, fmt.Errorf("failed to fetch fulfillment policies: %w", err)
		}
		if len(envelope.FulfillmentPolicies) == 0 {
			return nil, fmt.Errorf("no fulfillment policy configured for marketplace %s", c.marketplaceID)
		}
		policies.FulfillmentPolicyID = envelope.FulfillmentPolicies[0].FulfillmentPolicyID
	}

	if policies.PaymentPolicyID == "" {
		var envelope paymentPoliciesEnvelope
		if err := c.do(ctx, http.MethodGet, "/sell/account/v1/payment_policy?marketplace_id="+c.marketplaceID, nil, &envelope); err != nil {
			return nil, fmt.Errorf("failed to fetch payment policies: %w", err)
		}
		if len(envelope.PaymentPolicies) == 0 {
			return nil, fmt.Errorf("no payment policy configured for marketplace %s", c.marketplaceID)
		}
		policies.PaymentPolicyID = envelope.PaymentPolicies[0].PaymentPolicyID
	}

	if policies.ReturnPolicyID == "" {
		var envelope returnPoliciesEnvelope
		if err := c.do(ctx, http.MethodGet, "/sell/account/v1/return_policy?marketplace_id="+c.marketplaceID, nil, &envelope); err != nil {
			return nil, fmt.Errorf("failed to fetch return policies: %w", err)
		}
		if len(envelope.ReturnPolicies) == 0 {
			return nil, fmt.Errorf("no return policy configured for marketplace %s", c.marketplaceID)
		}
		policies.ReturnPolicyID = envelope.ReturnPolicies[0].ReturnPolicyID
	}

	return &policies, nil
}

// CreateOrReplaceInventoryItem upserts the inventory item for a SKU. The
// call is a PUT; repeating it replaces the item in place.
func (c *Client) CreateOrReplaceInventoryItem(ctx context.Context, sku string, payload *models.ListingPayload) error {
	item := inventoryItem{
		Product: inventoryProduct{
			Title:       payload.Title,
			Description: payload.Description,
			ImageURLs:   payload.PhotoURLs,
			MPN:         payload.MPN,
			Aspects:     payload.Aspects,
		},
		Condition: payload.ConditionID,
		Availability: availability{
			ShipToLocationAvailability: shipToLocationAvailability{
				Quantity: payload.Quantity,
			},
		},
	}
	if payload.Barcode != "" {
		item.Product.UPC = []string{payload.Barcode}
	}

	path := fmt.Sprintf("/sell/inventory/v1/inventory_item/%s", url.PathEscape(sku))
	if err := c.do(ctx, http.MethodPut, path, item, nil); err != nil {
		return err
	}

	c.logger.Debug().Str("sku", sku).Msg("Upserted inventory item")
	return nil
}

// GetOffersBySKU returns existing offers for a SKU. A 404 means no offers
// exist yet and is not an error.
func (c *Client) GetOffersBySKU(ctx context.Context, sku string) ([]*models.Offer, error) {
	params := url.Values{}
	params.Set("sku", sku)
	params.Set("marketplace_id", c.marketplaceID)

	var envelope offersEnvelope
	err := c.do(ctx, http.MethodGet, "/sell/inventory/v1/offer?"+params.Encode(), nil, &envelope)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	offers := make([]*models.Offer, len(envelope.Offers))
	for i, o := range envelope.Offers {
		offers[i] = &models.Offer{
			ID:     o.OfferID,
			SKU:    o.SKU,
			Status: o.Status,
		}
		if o.Listing != nil {
			offers[i].ListingID = o.Listing.ListingID
		}
	}
	return offers, nil
}

// CreateOffer creates a new unpublished fixed-price offer and returns its id.
func (c *Client) CreateOffer(ctx context.Context, payload *models.ListingPayload, policies *models.BusinessPolicies, locationKey string) (string, error) {
	body := offer{
		SKU:                 payload.SKU,
		MarketplaceID:       c.marketplaceID,
		Format:              offerFormatFixedPrice,
		AvailableQuantity:   payload.Quantity,
		CategoryID:          payload.CategoryID,
		ListingDescription:  payload.Description,
		MerchantLocationKey: locationKey,
		ListingPolicies: &listingPolicies{
			FulfillmentPolicyID: policies.FulfillmentPolicyID,
			PaymentPolicyID:     policies.PaymentPolicyID,
			ReturnPolicyID:      policies.ReturnPolicyID,
		},
		PricingSummary: &pricingSummary{
			Price: moneyAmount{
				Value:    payload.Price,
				Currency: payload.Currency,
			},
		},
	}

	var resp createOfferResponse
	if err := c.do(ctx, http.MethodPost, "/sell/inventory/v1/offer", body, &resp); err != nil {
		return "", err
	}

	c.logger.Debug().
		Str("sku", payload.SKU).
		Str("offer_id", resp.OfferID).
		Msg("Created offer")

	return resp.OfferID, nil
}

// PublishOffer publishes an offer and returns the live listing id.
func (c *Client) PublishOffer(ctx context.Context, offerID string) (string, error) {
	path := fmt.Sprintf("/sell/inventory/v1/offer/%s/publish", url.PathEscape(offerID))

	var resp publishResponse
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.ListingID, nil
}

// do performs a request against the Sell APIs.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Language", "en-US")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("method", method).
			Str("path", path).
			Msg("eBay API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
			Endpoint:   path,
		}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
