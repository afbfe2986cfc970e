package scanning

import "fmt"

// BuildScanResult derives a ScanResult from an on-device barcode detection
// and OCR text fragments. It is deterministic: identical inputs produce
// identical outputs.
func BuildScanResult(barcode string, texts []string) *ScanResult {
	var itemName string

	// Filter out short texts and numbers-only strings
	var meaningful []string
	for _, text := range texts {
		if len(text) > 3 && !isNumeric(text) {
			meaningful = append(meaningful, text)
		}
	}

	// Use the longest text as the candidate item name, keeping the earliest
	// fragment among equal-length candidates
	for _, text := range meaningful {
		if len(text) > len(itemName) {
			itemName = text
		}
	}

	// Expiry is searched over all raw fragments, not just meaningful ones
	expiryDate := ExtractExpiry(texts)

	// The name-length bonus applies only to a name actually read off the
	// packaging, so score before any placeholder is synthesized
	confidence := 0.5
	if barcode != "" {
		confidence += 0.3
	}
	if len(itemName) > 5 {
		confidence += 0.2
	}
	if expiryDate != "" {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	// A barcode with no readable name still identifies the product
	if barcode != "" && itemName == "" {
		itemName = fmt.Sprintf("Product (%s)", barcode)
	}

	category := Classify(itemName, barcode)

	if itemName == "" && barcode == "" {
		return &ScanResult{
			Success:    false,
			Confidence: 0,
			Error:      "could not identify the item; try again with better lighting or angle",
		}
	}

	return &ScanResult{
		Success:    true,
		ItemName:   itemName,
		Barcode:    barcode,
		ExpiryDate: expiryDate,
		Category:   category,
		Confidence: confidence,
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Local implements the Analyzer interface using on-device barcode and text
// detections, with no network dependency
type Local struct{}

// NewLocal creates a new Local Analyzer instance
func NewLocal() *Local {
	return &Local{}
}

// AnalyzeCapture builds a ScanResult from the capture's detections
func (l *Local) AnalyzeCapture(capture Capture) (*ScanResult, error) {
	return BuildScanResult(capture.Barcode, capture.Texts), nil
}

// Close closes the Local analyzer (no-op)
func (l *Local) Close() error {
	return nil
}
