package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/common"
	"github.com/ternarybob/relist/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(common.EbayConfig{
		BaseURL:             server.URL,
		Token:               "test-token",
		MarketplaceID:       "EBAY_US",
		MerchantLocationKey: "warehouse-1",
		LocationPostalCode:  "98101",
		LocationCountry:     "US",
	}, WithLogger(arbor.NewLogger()))
}

func testPayload() *models.ListingPayload {
	return &models.ListingPayload{
		SKU:         "NIK-F3-U1234",
		Title:       "Nikon F3 35mm SLR Film Camera",
		Description: "Classic body.",
		PhotoURLs:   []string{"https://img.example.com/1.png"},
		CategoryID:  "15230",
		ConditionID: "USED_EXCELLENT",
		Price:       "349.00",
		Currency:    "USD",
		Quantity:    1,
		MPN:         "NIK-F3",
		Barcode:     "018208016068",
	}
}

func TestEnsureLocationExisting(t *testing.T) {
	var creates int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			creates++
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization = %q", got)
		}
		w.Write([]byte(`{"name": "Primary warehouse"}`))
	}))

	key, err := client.EnsureLocation(context.Background())
	if err != nil {
		t.Fatalf("EnsureLocation failed: %v", err)
	}
	if key != "warehouse-1" {
		t.Errorf("key = %q", key)
	}
	if creates != 0 {
		t.Error("existing location was re-created")
	}
}

func TestEnsureLocationCreatesWhenAbsent(t *testing.T) {
	var created inventoryLocation
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sell/inventory/v1/location/warehouse-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		switch r.Method {
		case http.MethodGet:
			http.Error(w, `{"errors":[{"errorId":25804}]}`, http.StatusNotFound)
		case http.MethodPost:
			json.NewDecoder(r.Body).Decode(&created)
			w.WriteHeader(http.StatusNoContent)
		}
	}))

	key, err := client.EnsureLocation(context.Background())
	if err != nil {
		t.Fatalf("EnsureLocation failed: %v", err)
	}
	if key != "warehouse-1" {
		t.Errorf("key = %q", key)
	}
	if created.Location.Address.PostalCode != "98101" || created.Location.Address.Country != "US" {
		t.Errorf("created address = %+v", created.Location.Address)
	}
	if len(created.LocationTypes) != 1 || created.LocationTypes[0] != "WAREHOUSE" {
		t.Errorf("location types = %v", created.LocationTypes)
	}
}

func TestGetBusinessPoliciesFetchesFirstOfEach(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("marketplace_id"); got != "EBAY_US" {
			t.Errorf("marketplace id = %q", got)
		}
		switch r.URL.Path {
		case "/sell/account/v1/fulfillment_policy":
			w.Write([]byte(`{"fulfillmentPolicies":[{"fulfillmentPolicyId":"ful-1"},{"fulfillmentPolicyId":"ful-2"}]}`))
		case "/sell/account/v1/payment_policy":
			w.Write([]byte(`{"paymentPolicies":[{"paymentPolicyId":"pay-1"}]}`))
		case "/sell/account/v1/return_policy":
			w.Write([]byte(`{"returnPolicies":[{"returnPolicyId":"ret-1"}]}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))

	policies, err := client.GetBusinessPolicies(context.Background())
	if err != nil {
		t.Fatalf("GetBusinessPolicies failed: %v", err)
	}
	want := models.BusinessPolicies{FulfillmentPolicyID: "ful-1", PaymentPolicyID: "pay-1", ReturnPolicyID: "ret-1"}
	if *policies != want {
		t.Errorf("policies = %+v, want %+v", policies, want)
	}
}

func TestGetBusinessPoliciesConfigOverridesWin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("configured policies still hit the API: %s", r.URL.Path)
	}))
	t.Cleanup(server.Close)

	client := NewClient(common.EbayConfig{
		BaseURL:             server.URL,
		MarketplaceID:       "EBAY_US",
		FulfillmentPolicyID: "ful-x",
		PaymentPolicyID:     "pay-x",
		ReturnPolicyID:      "ret-x",
	}, WithLogger(arbor.NewLogger()))

	policies, err := client.GetBusinessPolicies(context.Background())
	if err != nil {
		t.Fatalf("GetBusinessPolicies failed: %v", err)
	}
	if policies.FulfillmentPolicyID != "ful-x" {
		t.Errorf("policies = %+v", policies)
	}
}

func TestGetBusinessPoliciesNonePresent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	if _, err := client.GetBusinessPolicies(context.Background()); err == nil {
		t.Fatal("expected error when account has no policies")
	}
}

func TestCreateOrReplaceInventoryItem(t *testing.T) {
	var item inventoryItem
	var method string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		if r.URL.Path != "/sell/inventory/v1/inventory_item/NIK-F3-U1234" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Content-Language"); got != "en-US" {
			t.Errorf("content language = %q", got)
		}
		json.NewDecoder(r.Body).Decode(&item)
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.CreateOrReplaceInventoryItem(context.Background(), "NIK-F3-U1234", testPayload()); err != nil {
		t.Fatalf("CreateOrReplaceInventoryItem failed: %v", err)
	}
	if method != http.MethodPut {
		t.Errorf("method = %q, want PUT", method)
	}
	if item.Product.Title != "Nikon F3 35mm SLR Film Camera" || item.Condition != "USED_EXCELLENT" {
		t.Errorf("item = %+v", item)
	}
	if len(item.Product.UPC) != 1 || item.Product.UPC[0] != "018208016068" {
		t.Errorf("upc = %v", item.Product.UPC)
	}
	if item.Availability.ShipToLocationAvailability.Quantity != 1 {
		t.Errorf("quantity = %d", item.Availability.ShipToLocationAvailability.Quantity)
	}
}

func TestCreateOrReplaceInventoryItemOmitsEmptyBarcode(t *testing.T) {
	var item inventoryItem
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&item)
		w.WriteHeader(http.StatusNoContent)
	}))

	payload := testPayload()
	payload.Barcode = ""
	if err := client.CreateOrReplaceInventoryItem(context.Background(), payload.SKU, payload); err != nil {
		t.Fatalf("CreateOrReplaceInventoryItem failed: %v", err)
	}
	if item.Product.UPC != nil {
		t.Errorf("upc = %v, want omitted", item.Product.UPC)
	}
}

func TestGetOffersBySKU(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("sku") != "NIK-F3-U1234" || query.Get("marketplace_id") != "EBAY_US" {
			t.Errorf("query = %v", query)
		}
		w.Write([]byte(`{"offers":[
			{"offerId": "offer-1", "sku": "NIK-F3-U1234", "status": "PUBLISHED", "listing": {"listingId": "listing-1"}},
			{"offerId": "offer-2", "sku": "NIK-F3-U1234", "status": "UNPUBLISHED"}
		]}`))
	}))

	offers, err := client.GetOffersBySKU(context.Background(), "NIK-F3-U1234")
	if err != nil {
		t.Fatalf("GetOffersBySKU failed: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("offers = %d, want 2", len(offers))
	}
	if offers[0].ListingID != "listing-1" {
		t.Errorf("published offer = %+v", offers[0])
	}
	if offers[1].ListingID != "" {
		t.Errorf("unpublished offer = %+v", offers[1])
	}
}

func TestGetOffersBySKUNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"errorId":25713}]}`, http.StatusNotFound)
	}))

	offers, err := client.GetOffersBySKU(context.Background(), "FRESH-SKU")
	if err != nil {
		t.Fatalf("GetOffersBySKU failed: %v", err)
	}
	if offers != nil {
		t.Errorf("offers = %v, want nil for a SKU with no offers", offers)
	}
}

func TestCreateOffer(t *testing.T) {
	var body offer
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sell/inventory/v1/offer" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"offerId": "offer-9"}`))
	}))

	policies := &models.BusinessPolicies{FulfillmentPolicyID: "ful-1", PaymentPolicyID: "pay-1", ReturnPolicyID: "ret-1"}
	offerID, err := client.CreateOffer(context.Background(), testPayload(), policies, "warehouse-1")
	if err != nil {
		t.Fatalf("CreateOffer failed: %v", err)
	}
	if offerID != "offer-9" {
		t.Errorf("offer id = %q", offerID)
	}
	if body.Format != offerFormatFixedPrice || body.MerchantLocationKey != "warehouse-1" {
		t.Errorf("offer body = %+v", body)
	}
	if body.PricingSummary == nil || body.PricingSummary.Price.Value != "349.00" || body.PricingSummary.Price.Currency != "USD" {
		t.Errorf("pricing = %+v", body.PricingSummary)
	}
	if body.ListingPolicies == nil || body.ListingPolicies.ReturnPolicyID != "ret-1" {
		t.Errorf("policies = %+v", body.ListingPolicies)
	}
}

func TestPublishOffer(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sell/inventory/v1/offer/offer-9/publish" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"listingId": "110123456789"}`))
	}))

	listingID, err := client.PublishOffer(context.Background(), "offer-9")
	if err != nil {
		t.Fatalf("PublishOffer failed: %v", err)
	}
	if listingID != "110123456789" {
		t.Errorf("listing id = %q", listingID)
	}
}

func TestPublishOfferFailureSurfacesAPIBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"Item specifics are missing"}]}`, http.StatusBadRequest)
	}))

	_, err := client.PublishOffer(context.Background(), "offer-9")
	if err == nil {
		t.Fatal("expected publish failure")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}
