package list

import (
	"strings"

	"github.com/zombor/shopper/internal/scanning"
)

// Reconcile merges a scan result into the scanned-item history and finds the
// shopping-list item the scan should check off. It returns the updated
// history and the ID of the first matching unchecked item, or "" when
// nothing matches. A failed result or one without an item name leaves the
// history untouched.
//
// newID and now are supplied by the caller so the merge itself stays
// deterministic.
func Reconcile(result *scanning.ScanResult, items []ShoppingItem, history []ScannedItemMetadata, newID string, now int64) ([]ScannedItemMetadata, string) {
	if result == nil || !result.Success || result.ItemName == "" {
		return history, ""
	}

	history = upsertScannedItem(history, result, newID, now)

	var matchedID string
	if match := FindMatch(items, result.ItemName, result.Barcode); match != nil {
		matchedID = match.ID
	}

	return history, matchedID
}

// upsertScannedItem deduplicates by barcode when the result carries one,
// else by case-insensitive name; at most one record owns a given key.
// Present result fields override the prior record, absent fields keep their
// previous values, and lastScannedAt is always refreshed.
func upsertScannedItem(history []ScannedItemMetadata, result *scanning.ScanResult, newID string, now int64) []ScannedItemMetadata {
	for i := range history {
		existing := &history[i]
		byBarcode := result.Barcode != "" && existing.Barcode == result.Barcode
		byName := strings.EqualFold(existing.Name, result.ItemName)
		if !byBarcode && !byName {
			continue
		}

		existing.Name = result.ItemName
		if result.Barcode != "" {
			existing.Barcode = result.Barcode
		}
		if result.Category != "" {
			existing.Category = result.Category
		}
		if result.ExpiryDate != "" {
			existing.ExpiryDate = result.ExpiryDate
		}
		existing.LastScannedAt = now
		return history
	}

	return append(history, ScannedItemMetadata{
		ID:            newID,
		Name:          result.ItemName,
		Barcode:       result.Barcode,
		Category:      result.Category,
		ExpiryDate:    result.ExpiryDate,
		LastScannedAt: now,
	})
}

// FindMatch returns the first unchecked item, in list order, whose name
// contains the scanned name or is contained by it (case-insensitively), or
// whose barcode equals the scanned barcode. The dual containment rule is
// deliberately permissive so "milk" matches "Whole Milk" in either
// direction.
func FindMatch(items []ShoppingItem, name, barcode string) *ShoppingItem {
	lowerName := strings.ToLower(name)
	for i := range items {
		item := &items[i]
		if item.Checked {
			continue
		}
		itemName := strings.ToLower(item.Name)
		if strings.Contains(itemName, lowerName) ||
			strings.Contains(lowerName, itemName) ||
			(barcode != "" && item.Barcode == barcode) {
			return item
		}
	}
	return nil
}
