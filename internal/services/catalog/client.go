// Package catalog provides a client for the Shopify Admin API, the source
// commerce platform the pipeline imports products from.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/relist/internal/common"
	"github.com/ternarybob/relist/internal/models"
)

const (
	// DefaultAPIVersion is the Shopify Admin API version used when the
	// configuration does not pin one.
	DefaultAPIVersion = "2024-01"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit matches Shopify's REST bucket of 2 requests/second.
	DefaultRateLimit = 2

	// Products without a condition tag are assumed used-excellent.
	defaultConditionGrade = 3
)

// conditionTagPattern extracts the internal condition grade from product
// tags of the form "condition:3".
var conditionTagPattern = regexp.MustCompile(`^condition:(\d)$`)

// Client is a Shopify Admin API client.
type Client struct {
	shopDomain  string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
	logger      arbor.ILogger
	limiter     *rate.Limiter
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

// NewClient creates a new Shopify Admin API client from configuration.
func NewClient(cfg common.ShopifyConfig, opts ...ClientOption) *Client {
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	c := &Client{
		shopDomain:  cfg.ShopDomain,
		accessToken: cfg.AccessToken,
		apiVersion:  apiVersion,
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

// APIError represents an error from the Shopify Admin API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopify API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// FetchProduct returns the catalog record for a product id, flattened to the
// internal product view. The first variant supplies SKU, barcode, price and
// quantity.
func (c *Client) FetchProduct(ctx context.Context, productID string) (*models.Product, error) {
	var envelope productEnvelope
	path := fmt.Sprintf("/products/%s.json", url.PathEscape(productID))
	if err := c.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, models.ErrProductNotFound
		}
		return nil, err
	}

	return flattenProduct(envelope.Product), nil
}

// ListOrders returns orders filtered by status, newest first.
func (c *Client) ListOrders(ctx context.Context, status string, limit int) ([]*models.Order, error) {
	params := url.Values{}
	if status != "" {
		params.Set("status", status)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	params.Set("order", "created_at desc")

	var envelope ordersEnvelope
	path := "/orders.json?" + params.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}

	orders := make([]*models.Order, len(envelope.Orders))
	for i, order := range envelope.Orders {
		orders[i] = &models.Order{
			ID:        strconv.FormatInt(order.ID, 10),
			Name:      order.Name,
			Status:    order.FinancialStatus,
			Test:      order.Test,
			CreatedAt: order.CreatedAt,
		}
	}
	return orders, nil
}

// DeleteOrder permanently removes an order.
func (c *Client) DeleteOrder(ctx context.Context, orderID string) error {
	path := fmt.Sprintf("/orders/%s.json", url.PathEscape(orderID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do performs a request against the Admin API.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL := fmt.Sprintf("https://%s/admin/api/%s%s", c.shopDomain, c.apiVersion, path)
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")

	if c.logger != nil {
		c.logger.Debug().
			Str("method", method).
			Str("path", path).
			Msg("Shopify API request")
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
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func flattenProduct(p shopifyProduct) *models.Product {
	product := &models.Product{
		ID:            strconv.FormatInt(p.ID, 10),
		Title:         p.Title,
		Description:   stripHTML(p.BodyHTML),
		ProductType:   p.ProductType,
		Vendor:        p.Vendor,
		ConditionCode: defaultConditionGrade,
		UpdatedAt:     p.UpdatedAt,
	}

	for _, tag := range strings.Split(p.Tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		product.Tags = append(product.Tags, tag)
		if m := conditionTagPattern.FindStringSubmatch(tag); m != nil {
			if grade, err := strconv.Atoi(m[1]); err == nil {
				product.ConditionCode = grade
			}
		}
	}

	for _, image := range p.Images {
		if image.Src != "" {
			product.Images = append(product.Images, image.Src)
		}
	}

	if len(p.Variants) > 0 {
		variant := p.Variants[0]
		product.SKU = variant.SKU
		product.Barcode = variant.Barcode
		product.Price = variant.Price
		product.Quantity = variant.InventoryQuantity
	}

	return product
}

// stripHTML flattens Shopify body_html to plain text, decoding entities.
func stripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
