package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/drafts"
	"github.com/ternarybob/relist/internal/interfaces"
	"github.com/ternarybob/relist/internal/metrics"
	"github.com/ternarybob/relist/internal/models"
	"github.com/ternarybob/relist/internal/publisher"
	"github.com/ternarybob/relist/internal/services/events"
	"github.com/ternarybob/relist/internal/storage/memory"
)

type stubCatalog struct{}

func (stubCatalog) FetchProduct(ctx context.Context, productID string) (*models.Product, error) {
	return &models.Product{
		ID:            productID,
		Title:         "Canon AE-1 35mm SLR",
		ProductType:   "film camera",
		Vendor:        "Canon",
		Images:        []string{"https://cdn.example.com/a.jpg"},
		SKU:           "CAN-AE1-U55",
		Price:         "199.00",
		Quantity:      1,
		ConditionCode: 3,
	}, nil
}

func (stubCatalog) ListOrders(ctx context.Context, status string, limit int) ([]*models.Order, error) {
	return nil, nil
}

func (stubCatalog) DeleteOrder(ctx context.Context, orderID string) error { return nil }

type stubMarketplace struct{}

func (stubMarketplace) EnsureLocation(ctx context.Context) (string, error) {
	return "warehouse-1", nil
}

func (stubMarketplace) GetBusinessPolicies(ctx context.Context) (*models.BusinessPolicies, error) {
	return &models.BusinessPolicies{FulfillmentPolicyID: "ful-1", PaymentPolicyID: "pay-1", ReturnPolicyID: "ret-1"}, nil
}

func (stubMarketplace) CreateOrReplaceInventoryItem(ctx context.Context, sku string, payload *models.ListingPayload) error {
	return nil
}

func (stubMarketplace) GetOffersBySKU(ctx context.Context, sku string) ([]*models.Offer, error) {
	return nil, nil
}

func (stubMarketplace) CreateOffer(ctx context.Context, payload *models.ListingPayload, policies *models.BusinessPolicies, locationKey string) (string, error) {
	return "offer-1", nil
}

func (stubMarketplace) PublishOffer(ctx context.Context, offerID string) (string, error) {
	return "listing-1", nil
}

type captureMarketplace struct {
	stubMarketplace
	lastPayload *models.ListingPayload
}

func (m *captureMarketplace) CreateOffer(ctx context.Context, payload *models.ListingPayload, policies *models.BusinessPolicies, locationKey string) (string, error) {
	m.lastPayload = payload
	return m.stubMarketplace.CreateOffer(ctx, payload, policies, locationKey)
}

func newDraftServer(t *testing.T) (*httptest.Server, interfaces.StorageManager) {
	t.Helper()
	return newDraftServerWith(t, stubMarketplace{})
}

func newDraftServerWith(t *testing.T, marketplace interfaces.MarketplaceService) (*httptest.Server, interfaces.StorageManager) {
	t.Helper()

	logger := arbor.NewLogger()
	storage := memory.NewManager()
	collector := metrics.NewCollector()
	eventService := events.NewService(logger)
	t.Cleanup(func() { eventService.Close() })

	pub := publisher.New(marketplace, storage, collector, logger)
	service := drafts.NewService(storage, stubCatalog{}, pub, eventService, collector, logger)
	handler := NewDraftHandler(service, storage.DraftStorage(), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/drafts", handler.ListDraftsHandler)
	mux.HandleFunc("POST /api/drafts/approve-all", handler.ApproveAllHandler)
	mux.HandleFunc("GET /api/drafts/{draftId}", handler.GetDraftHandler)
	mux.HandleFunc("POST /api/drafts/{draftId}/approve", handler.ApproveDraftHandler)
	mux.HandleFunc("POST /api/drafts/{draftId}/reject", handler.RejectDraftHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, storage
}

func seedDraft(t *testing.T, storage interfaces.StorageManager, productID string) *models.Draft {
	t.Helper()

	draft := models.NewDraft(productID)
	draft.ProposedTitle = "Canon AE-1 35mm SLR Film Camera"
	draft.ProposedDescription = "A generated description."
	draft.ProposedPhotos = []string{"https://img.example.com/1.png"}
	if err := storage.DraftStorage().SaveDraft(context.Background(), draft); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}
	return draft
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()

	var reader bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reader).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &reader)
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestListDraftsHandler(t *testing.T) {
	server, storage := newDraftServer(t)
	seedDraft(t, storage, "prod-1")
	seedDraft(t, storage, "prod-2")

	resp, err := http.Get(server.URL + "/api/drafts?status=pending")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Drafts []models.Draft `json:"drafts"`
		Count  int            `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Count != 2 || len(body.Drafts) != 2 {
		t.Errorf("body = %+v", body)
	}
}

func TestListDraftsHandlerBadStatus(t *testing.T) {
	server, _ := newDraftServer(t)

	resp, err := http.Get(server.URL + "/api/drafts?status=bogus")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetDraftHandler(t *testing.T) {
	server, storage := newDraftServer(t)
	draft := seedDraft(t, storage, "prod-1")

	resp, err := http.Get(server.URL + "/api/drafts/" + draft.ID)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	var got models.Draft
	json.NewDecoder(resp.Body).Decode(&got)
	if got.ID != draft.ID || got.ProductID != "prod-1" {
		t.Errorf("draft = %+v", got)
	}

	missing, err := http.Get(server.URL + "/api/drafts/missing")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", missing.StatusCode)
	}
}

func TestApproveDraftHandler(t *testing.T) {
	server, storage := newDraftServer(t)
	draft := seedDraft(t, storage, "prod-1")

	resp := postJSON(t, server.URL+"/api/drafts/"+draft.ID+"/approve", map[string]bool{"description": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got models.Draft
	json.NewDecoder(resp.Body).Decode(&got)
	if got.Status != models.DraftStatusPartial {
		t.Errorf("status = %q, want partial", got.Status)
	}
}

func TestApproveDraftHandlerEmptyBodyDefaultsToFull(t *testing.T) {
	server, storage := newDraftServer(t)
	draft := seedDraft(t, storage, "prod-1")

	resp := postJSON(t, server.URL+"/api/drafts/"+draft.ID+"/approve", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got models.Draft
	json.NewDecoder(resp.Body).Decode(&got)
	if got.Status != models.DraftStatusApproved {
		t.Errorf("status = %q, want approved", got.Status)
	}
}

func TestApproveDraftHandlerPublish(t *testing.T) {
	server, storage := newDraftServer(t)
	draft := seedDraft(t, storage, "prod-1")

	resp := postJSON(t, server.URL+"/api/drafts/"+draft.ID+"/approve", map[string]bool{"publish": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got models.Draft
	json.NewDecoder(resp.Body).Decode(&got)
	if got.Status != models.DraftStatusListed || got.ListingID != "listing-1" {
		t.Errorf("draft = %+v, want listed", got)
	}
}

func TestApproveDraftHandlerPublishWithOverrides(t *testing.T) {
	marketplace := &captureMarketplace{}
	server, storage := newDraftServerWith(t, marketplace)
	draft := seedDraft(t, storage, "prod-1")

	body := map[string]interface{}{
		"publish": true,
		"overrides": map[string]interface{}{
			"title": "Canon AE-1 Program 35mm SLR, New Seals",
			"price": "275.00",
		},
	}
	resp := postJSON(t, server.URL+"/api/drafts/"+draft.ID+"/approve", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	if marketplace.lastPayload == nil {
		t.Fatal("no payload reached the marketplace")
	}
	if marketplace.lastPayload.Title != "Canon AE-1 Program 35mm SLR, New Seals" {
		t.Errorf("title = %q, want override title", marketplace.lastPayload.Title)
	}
	if marketplace.lastPayload.Price != "275.00" {
		t.Errorf("price = %q, want override price", marketplace.lastPayload.Price)
	}
}

func TestApproveDraftHandlerRejectsBadOverrides(t *testing.T) {
	server, storage := newDraftServer(t)
	draft := seedDraft(t, storage, "prod-1")

	body := map[string]interface{}{
		"publish": true,
		"overrides": map[string]interface{}{
			"title": strings.Repeat("x", 81),
		},
	}
	resp := postJSON(t, server.URL+"/api/drafts/"+draft.ID+"/approve", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	// The review decision must not have been applied.
	saved, _ := storage.DraftStorage().GetDraft(context.Background(), draft.ID)
	if saved.Status != models.DraftStatusPending {
		t.Errorf("draft status = %q, want pending", saved.Status)
	}
}

func TestRejectDraftHandlerConflict(t *testing.T) {
	server, storage := newDraftServer(t)
	draft := seedDraft(t, storage, "prod-1")

	resp := postJSON(t, server.URL+"/api/drafts/"+draft.ID+"/reject", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	// Rejecting again conflicts with the final state.
	again := postJSON(t, server.URL+"/api/drafts/"+draft.ID+"/reject", nil)
	if again.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", again.StatusCode)
	}
}

func TestApproveAllHandler(t *testing.T) {
	server, storage := newDraftServer(t)
	seedDraft(t, storage, "prod-1")
	seedDraft(t, storage, "prod-2")

	// Missing confirmation.
	resp := postJSON(t, server.URL+"/api/drafts/approve-all", map[string]bool{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without confirm", resp.StatusCode)
	}

	resp = postJSON(t, server.URL+"/api/drafts/approve-all", map[string]bool{"confirm": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var result drafts.BulkResult
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Total != 2 || result.Succeeded != 2 || result.Failed != 0 {
		t.Errorf("result = %+v", result)
	}
}
