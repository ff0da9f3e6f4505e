package catalog

import "time"

// Shopify Admin API wire types. Only the fields the pipeline reads.

type productEnvelope struct {
	Product shopifyProduct `json:"product"`
}

type ordersEnvelope struct {
	Orders []shopifyOrder `json:"orders"`
}

type shopifyProduct struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	BodyHTML    string           `json:"body_html"`
	ProductType string           `json:"product_type"`
	Vendor      string           `json:"vendor"`
	Tags        string           `json:"tags"`
	Images      []shopifyImage   `json:"images"`
	Variants    []shopifyVariant `json:"variants"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type shopifyImage struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

type shopifyVariant struct {
	ID                int64  `json:"id"`
	SKU               string `json:"sku"`
	Barcode           string `json:"barcode"`
	Price             string `json:"price"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

type shopifyOrder struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FinancialStatus string    `json:"financial_status"`
	Test            bool      `json:"test"`
	CreatedAt       time.Time `json:"created_at"`
}
