package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/common"
	"github.com/ternarybob/relist/internal/metrics"
	"github.com/ternarybob/relist/internal/models"
)

type stubCatalog struct {
	orders     []*models.Order
	listErr    error
	failOrders map[string]bool
	deleted    []string
	listLimit  int
	listStatus string
}

func (s *stubCatalog) FetchProduct(ctx context.Context, productID string) (*models.Product, error) {
	return nil, models.ErrProductNotFound
}

func (s *stubCatalog) ListOrders(ctx context.Context, status string, limit int) ([]*models.Order, error) {
	s.listStatus = status
	s.listLimit = limit
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.orders, nil
}

func (s *stubCatalog) DeleteOrder(ctx context.Context, orderID string) error {
	if s.failOrders[orderID] {
		return errors.New("order is locked")
	}
	s.deleted = append(s.deleted, orderID)
	return nil
}

func newTestCleaner(catalog *stubCatalog, cfg common.OrdersConfig) *Cleaner {
	return NewCleaner(cfg, catalog, metrics.NewCollector(), arbor.NewLogger())
}

func TestCleanupDeletesMatchingOrders(t *testing.T) {
	catalog := &stubCatalog{orders: []*models.Order{
		{ID: "1001", Status: "cancelled"},
		{ID: "1002", Status: "cancelled"},
		{ID: "1003", Status: "cancelled"},
	}}
	cleaner := newTestCleaner(catalog, common.OrdersConfig{})

	result, err := cleaner.Cleanup(context.Background(), "cancelled")
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if result.Scanned != 3 || result.Deleted != 3 || result.Failed != 0 {
		t.Errorf("result = %+v", result)
	}
	if len(catalog.deleted) != 3 {
		t.Errorf("deleted = %v", catalog.deleted)
	}
	if catalog.listStatus != "cancelled" {
		t.Errorf("list status = %q", catalog.listStatus)
	}
	if catalog.listLimit != 250 {
		t.Errorf("list limit = %d, want default 250", catalog.listLimit)
	}
}

func TestCleanupContinuesPastFailures(t *testing.T) {
	catalog := &stubCatalog{
		orders: []*models.Order{
			{ID: "1001"},
			{ID: "1002"},
			{ID: "1003"},
		},
		failOrders: map[string]bool{"1002": true},
	}
	cleaner := newTestCleaner(catalog, common.OrdersConfig{})

	result, err := cleaner.Cleanup(context.Background(), "cancelled")
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if result.Deleted != 2 || result.Failed != 1 {
		t.Errorf("result = %+v, want 2 deleted, 1 failed", result)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestCleanupErrorSampleBounded(t *testing.T) {
	catalog := &stubCatalog{failOrders: map[string]bool{}}
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("10%02d", i)
		catalog.orders = append(catalog.orders, &models.Order{ID: id})
		catalog.failOrders[id] = true
	}
	cleaner := newTestCleaner(catalog, common.OrdersConfig{})

	result, err := cleaner.Cleanup(context.Background(), "cancelled")
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if result.Failed != 10 {
		t.Errorf("failed = %d, want 10", result.Failed)
	}
	if len(result.Errors) != maxCleanupErrors {
		t.Errorf("error sample = %d, want %d", len(result.Errors), maxCleanupErrors)
	}
}

func TestCleanupListFailure(t *testing.T) {
	catalog := &stubCatalog{listErr: errors.New("catalog unavailable")}
	cleaner := newTestCleaner(catalog, common.OrdersConfig{})

	if _, err := cleaner.Cleanup(context.Background(), "cancelled"); err == nil {
		t.Fatal("expected list failure to propagate")
	}
}

func TestCleanupHonorsContextCancel(t *testing.T) {
	catalog := &stubCatalog{orders: []*models.Order{
		{ID: "1001"},
		{ID: "1002"},
	}}
	// A long delay between deletes forces the second Wait past the deadline.
	cleaner := newTestCleaner(catalog, common.OrdersConfig{CleanupDelay: "1h"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := cleaner.Cleanup(ctx, "cancelled")
	if err == nil {
		t.Fatal("expected context error")
	}
	if result == nil || result.Deleted != 0 {
		t.Errorf("result = %+v, want partial result with no deletes", result)
	}
}

func TestCleanupCustomLimit(t *testing.T) {
	catalog := &stubCatalog{}
	cleaner := newTestCleaner(catalog, common.OrdersConfig{CleanupLimit: 50})

	if _, err := cleaner.Cleanup(context.Background(), "any"); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if catalog.listLimit != 50 {
		t.Errorf("list limit = %d, want 50", catalog.listLimit)
	}
}
