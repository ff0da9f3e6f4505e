package listing

import "strings"

// defaultCategoryID is the marketplace category used when the product type
// has no explicit mapping.
const defaultCategoryID = "171485"

// categoryIDs maps normalized catalog product types to marketplace leaf
// category identifiers.
var categoryIDs = map[string]string{
	"camera":      "31388",
	"lens":        "3323",
	"film camera": "15230",
	"tripod":      "30090",
	"flash":       "64353",
	"bag":         "107894",
	"filter":      "43479",
	"binoculars":  "28179",
	"audio":       "14969",
	"accessory":   "15200",
}

func categoryForType(productType string) string {
	key := strings.ToLower(strings.TrimSpace(productType))
	if id, ok := categoryIDs[key]; ok {
		return id
	}
	return defaultCategoryID
}
