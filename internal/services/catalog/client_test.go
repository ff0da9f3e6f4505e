package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ternarybob/relist/internal/common"
	"github.com/ternarybob/relist/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(common.ShopifyConfig{
		ShopDomain:  strings.TrimPrefix(server.URL, "https://"),
		AccessToken: "test-token",
		APIVersion:  "2024-01",
	}, WithHTTPClient(server.Client()))

	return client, server
}

func TestFetchProduct(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2024-01/products/1001.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("X-Shopify-Access-Token"); got != "test-token" {
			t.Errorf("access token header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"product":{
			"id": 1001,
			"title": "Nikon F3 35mm SLR",
			"body_html": "<p>Classic <b>professional</b> body.</p>",
			"product_type": "Film Camera",
			"vendor": "Nikon",
			"tags": "vintage, condition:3, serviced",
			"images": [{"id": 1, "src": "https://cdn.example.com/a.jpg"}, {"id": 2, "src": ""}],
			"variants": [
				{"id": 1, "sku": "NIK-F3-U1234", "barcode": "018208016068", "price": "349.00", "inventory_quantity": 1},
				{"id": 2, "sku": "IGNORED", "price": "999.00"}
			]
		}}`))
	})

	product, err := client.FetchProduct(context.Background(), "1001")
	if err != nil {
		t.Fatalf("FetchProduct failed: %v", err)
	}

	if product.ID != "1001" || product.Title != "Nikon F3 35mm SLR" {
		t.Errorf("product = %+v", product)
	}
	if product.Description != "Classic professional body." {
		t.Errorf("description = %q, want markup stripped", product.Description)
	}
	if product.ConditionCode != 3 {
		t.Errorf("condition = %d, want 3 from condition tag", product.ConditionCode)
	}
	if len(product.Tags) != 3 {
		t.Errorf("tags = %v", product.Tags)
	}
	if len(product.Images) != 1 || product.Images[0] != "https://cdn.example.com/a.jpg" {
		t.Errorf("images = %v, want empty src dropped", product.Images)
	}
	// The first variant supplies the commercial fields.
	if product.SKU != "NIK-F3-U1234" || product.Price != "349.00" || product.Quantity != 1 {
		t.Errorf("variant fields = %q/%q/%d", product.SKU, product.Price, product.Quantity)
	}
	if product.Barcode != "018208016068" {
		t.Errorf("barcode = %q", product.Barcode)
	}
}

func TestFetchProductNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":"Not Found"}`, http.StatusNotFound)
	})

	_, err := client.FetchProduct(context.Background(), "9999")
	if !errors.Is(err, models.ErrProductNotFound) {
		t.Errorf("err = %v, want ErrProductNotFound", err)
	}
}

func TestFetchProductServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	_, err := client.FetchProduct(context.Background(), "1001")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}

func TestListOrders(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2024-01/orders.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("status") != "cancelled" || query.Get("limit") != "50" {
			t.Errorf("query = %v", query)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"orders":[
			{"id": 5001, "name": "#1042", "financial_status": "refunded", "test": true, "created_at": "2026-08-01T10:00:00Z"},
			{"id": 5002, "name": "#1041", "financial_status": "voided", "test": false, "created_at": "2026-07-30T09:00:00Z"}
		]}`))
	})

	orders, err := client.ListOrders(context.Background(), "cancelled", 50)
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("orders = %d, want 2", len(orders))
	}
	if orders[0].ID != "5001" || orders[0].Status != "refunded" || !orders[0].Test {
		t.Errorf("order = %+v", orders[0])
	}
}

func TestDeleteOrder(t *testing.T) {
	var method, path string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	if err := client.DeleteOrder(context.Background(), "5001"); err != nil {
		t.Fatalf("DeleteOrder failed: %v", err)
	}
	if method != http.MethodDelete || path != "/admin/api/2024-01/orders/5001.json" {
		t.Errorf("request = %s %s", method, path)
	}
}

func TestFlattenProductDefaults(t *testing.T) {
	product := flattenProduct(shopifyProduct{ID: 1, Title: "Bare"})
	if product.ConditionCode != defaultConditionGrade {
		t.Errorf("condition = %d, want default %d", product.ConditionCode, defaultConditionGrade)
	}
	if product.SKU != "" || len(product.Images) != 0 {
		t.Errorf("product = %+v, want empty commercial fields", product)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>Hello</p>", "Hello"},
		{"plain text", "plain text"},
		{"  <div> padded </div>  ", "padded"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := stripHTML(tt.in); got != tt.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
