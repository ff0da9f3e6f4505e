// -----------------------------------------------------------------------
// Listing Builder - draft + catalog record + overrides -> listing payload
// -----------------------------------------------------------------------

package listing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/models"
)

const (
	// Photo URL limits imposed by the marketplace image field: individual
	// URLs of 500+ characters are rejected, and the joined list (with one
	// comma separator between URLs) must stay under the field budget.
	maxPhotoURLLength  = 500
	maxPhotoListLength = 3975

	// Marketplace listing description maximum.
	maxDescriptionLength = 4000

	defaultCurrency = "USD"
	defaultQuantity = 1

	// Barcode sentinel for products without a usable identifier.
	barcodeUnknown = "Does not apply"
)

// mpnSuffixPattern strips the internal "-U<digits>" used-stock suffix from a
// SKU when deriving the manufacturer part number.
var mpnSuffixPattern = regexp.MustCompile(`-U\d+$`)

// barcodePlaceholders are catalog values that mean "no barcode".
var barcodePlaceholders = map[string]bool{
	"":              true,
	"0":             true,
	"00":            true,
	"000000000000":  true,
	"0000000000000": true,
}

// Build resolves a draft, its catalog record, and optional human overrides
// into a marketplace listing payload. Precedence is override > draft >
// catalog default. Returns a *models.ValidationError when required input is
// missing; no side effects in that case.
func Build(draft *models.Draft, product *models.Product, overrides *models.ListingOverrides, logger arbor.ILogger) (*models.ListingPayload, error) {
	if product == nil {
		return nil, models.NewValidationError("no product")
	}
	if overrides == nil {
		overrides = &models.ListingOverrides{}
	}

	title := firstNonEmpty(overrides.Title, draftTitle(draft), product.Title)
	description := firstNonEmpty(draftDescription(draft), product.Description)

	photos := overrides.PhotoURLs
	if len(photos) == 0 && draft != nil {
		photos = draft.ProposedPhotos
	}
	if len(photos) == 0 {
		photos = product.Images
	}

	photos = trimPhotoURLs(photos, logger)
	if len(photos) == 0 {
		return nil, models.NewValidationError("no images")
	}

	condition := product.ConditionCode
	if overrides.Condition != 0 {
		condition = overrides.Condition
	}

	categoryID := overrides.CategoryID
	if categoryID == "" {
		categoryID = categoryForType(product.ProductType)
	}

	price := firstNonEmpty(overrides.Price, product.Price)
	if price == "" {
		return nil, models.NewValidationError("no price")
	}

	sku := product.SKU
	if sku == "" {
		id := product.ID
		if draft != nil {
			id = draft.ID
		}
		sku = fmt.Sprintf("DRAFT-%s", id)
	}

	quantity := product.Quantity
	if quantity <= 0 {
		quantity = defaultQuantity
	}

	payload := &models.ListingPayload{
		SKU:                  sku,
		Title:                title,
		Description:          capDescription(description),
		PhotoURLs:            photos,
		CategoryID:           categoryID,
		ConditionID:          conditionID(condition),
		ConditionDescription: conditionDescription(condition, product.ConditionNote),
		Price:                price,
		Currency:             defaultCurrency,
		Quantity:             quantity,
		MPN:                  mpnFromSKU(sku),
		Barcode:              normalizeBarcode(product.Barcode),
		Aspects:              buildAspects(product, overrides),
	}

	return payload, nil
}

// trimPhotoURLs drops oversized URLs, then accumulates the rest in original
// order until appending another URL (plus its comma separator) would push
// the joined length past the budget.
func trimPhotoURLs(urls []string, logger arbor.ILogger) []string {
	kept := make([]string, 0, len(urls))
	total := 0

	for _, url := range urls {
		if url == "" {
			continue
		}
		if len(url) >= maxPhotoURLLength {
			if logger != nil {
				logger.Warn().
					Int("length", len(url)).
					Msg("Dropping photo URL over length limit")
			}
			continue
		}

		next := total + len(url)
		if len(kept) > 0 {
			next++ // comma separator
		}
		if next >= maxPhotoListLength {
			if logger != nil {
				logger.Warn().
					Int("kept", len(kept)).
					Int("dropped", len(urls)-len(kept)).
					Msg("Photo URL budget reached, dropping trailing photos")
			}
			break
		}

		kept = append(kept, url)
		total = next
	}

	return kept
}

// capDescription truncates a description to the marketplace maximum with an
// ellipsis marker.
func capDescription(description string) string {
	if len(description) <= maxDescriptionLength {
		return description
	}
	return description[:maxDescriptionLength-3] + "..."
}

// mpnFromSKU derives the manufacturer part number by stripping the trailing
// used-stock suffix from the SKU.
func mpnFromSKU(sku string) string {
	return mpnSuffixPattern.ReplaceAllString(sku, "")
}

// normalizeBarcode maps absent or placeholder barcodes to the marketplace
// "unknown" sentinel.
func normalizeBarcode(barcode string) string {
	barcode = strings.TrimSpace(barcode)
	if barcodePlaceholders[barcode] {
		return barcodeUnknown
	}
	return barcode
}

func buildAspects(product *models.Product, overrides *models.ListingOverrides) map[string][]string {
	aspects := make(map[string][]string)
	if product.Vendor != "" {
		aspects["Brand"] = []string{product.Vendor}
	}
	for key, values := range overrides.Aspects {
		aspects[key] = values
	}
	if len(aspects) == 0 {
		return nil
	}
	return aspects
}

func draftTitle(draft *models.Draft) string {
	if draft == nil {
		return ""
	}
	return draft.ProposedTitle
}

func draftDescription(draft *models.Draft) string {
	if draft == nil {
		return ""
	}
	return draft.ProposedDescription
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
