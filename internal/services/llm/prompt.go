package llm

import (
	"fmt"
	"strings"

	"github.com/ternarybob/relist/internal/models"
)

// systemPrompt instructs the model to write marketplace-ready copy.
const systemPrompt = `You are a product listing copywriter for a second-hand camera and photography gear store.
Write an accurate, specific sales description for the product. Plain text only, no markdown, no headings.
Describe what the item is, what it is good for, and its condition. Do not invent specifications.
Keep it under 300 words.`

// buildPrompt renders the product facts the model is allowed to use.
func buildPrompt(product *models.Product) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Product: %s\n", product.Title)
	if product.Vendor != "" {
		fmt.Fprintf(&b, "Brand: %s\n", product.Vendor)
	}
	if product.ProductType != "" {
		fmt.Fprintf(&b, "Type: %s\n", product.ProductType)
	}
	if product.ConditionNote != "" {
		fmt.Fprintf(&b, "Condition: %s\n", product.ConditionNote)
	} else {
		fmt.Fprintf(&b, "Condition grade: %d (1=new .. 4=for parts)\n", product.ConditionCode)
	}
	if len(product.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(product.Tags, ", "))
	}
	if product.Description != "" {
		fmt.Fprintf(&b, "\nExisting store notes:\n%s\n", product.Description)
	}

	b.WriteString("\nWrite the listing description now.")
	return b.String()
}
