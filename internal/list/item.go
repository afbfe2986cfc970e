package list

import "github.com/zombor/shopper/internal/scanning"

// ShoppingItem represents one entry on the live shopping list. Timestamps
// are milliseconds since epoch; UpdatedAt never precedes CreatedAt.
type ShoppingItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Unit      string `json:"unit,omitempty"`
	Checked   bool   `json:"checked"`
	Barcode   string `json:"barcode,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// ScannedItemMetadata is the durable record of a product learned from a
// scan, independent of the live shopping list. Records are deduplicated by
// barcode when present, else by case-insensitive name, and are never
// auto-deleted.
type ScannedItemMetadata struct {
	ID            string            `json:"id"`
	Barcode       string            `json:"barcode,omitempty"`
	Name          string            `json:"name"`
	Category      scanning.Category `json:"category,omitempty"`
	ExpiryDate    string            `json:"expiryDate,omitempty"`
	ImageURI      string            `json:"imageUri,omitempty"`
	Price         float64           `json:"price,omitempty"`
	LastScannedAt int64             `json:"lastScannedAt"`
}
