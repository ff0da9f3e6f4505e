// Package orders implements the batch order cleanup used to purge test and
// cancelled orders from the catalog platform.
package orders

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/relist/internal/common"
	"github.com/ternarybob/relist/internal/interfaces"
	"github.com/ternarybob/relist/internal/metrics"
)

// CleanupResult summarizes one cleanup run.
type CleanupResult struct {
	Scanned int      `json:"scanned"`
	Deleted int      `json:"deleted"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// maxCleanupErrors bounds the error sample in a result.
const maxCleanupErrors = 5

// Cleaner deletes unwanted orders in a throttled batch so the catalog API
// rate limit is never tripped.
type Cleaner struct {
	catalog interfaces.CatalogService
	limiter *rate.Limiter
	limit   int
	metrics *metrics.Collector
	logger  arbor.ILogger
}

// NewCleaner creates a cleaner with a fixed inter-delete delay.
func NewCleaner(cfg common.OrdersConfig, catalog interfaces.CatalogService, collector *metrics.Collector, logger arbor.ILogger) *Cleaner {
	delay := common.ParseDurationOr(cfg.CleanupDelay, 0)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}

	limit := cfg.CleanupLimit
	if limit <= 0 {
		limit = 250
	}

	return &Cleaner{
		catalog: catalog,
		limiter: limiter,
		limit:   limit,
		metrics: collector,
		logger:  logger,
	}
}

// Cleanup deletes orders matching the status filter, one at a time with the
// configured delay between deletes. Individual failures are counted and do
// not stop the batch; a cancelled context does.
func (c *Cleaner) Cleanup(ctx context.Context, status string) (*CleanupResult, error) {
	orders, err := c.catalog.ListOrders(ctx, status, c.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	result := &CleanupResult{Scanned: len(orders)}
	for _, order := range orders {
		if err := c.limiter.Wait(ctx); err != nil {
			return result, err
		}

		if err := c.catalog.DeleteOrder(ctx, order.ID); err != nil {
			result.Failed++
			if len(result.Errors) < maxCleanupErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("order %s: %v", order.ID, err))
			}
			c.logger.Warn().Err(err).Str("order_id", order.ID).Msg("Failed to delete order")
			continue
		}

		result.Deleted++
		c.metrics.OrderDeleted()
	}

	c.logger.Info().
		Int("scanned", result.Scanned).
		Int("deleted", result.Deleted).
		Int("failed", result.Failed).
		Msg("Order cleanup finished")

	return result, nil
}
