package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// itemScanPrompt is the shared prompt used by vision backends for scanning
// grocery items
const itemScanPrompt = `You are analyzing a photo of a grocery or household product. Carefully read all visible text on the packaging and extract the following information:

1. **Product Name**: The name of the item as printed on the packaging, e.g. "Whole Milk", "Orange Juice".
2. **Barcode**: The barcode/UPC/EAN digits if a barcode with readable digits is visible.
3. **Expiry Date**: Any expiry, best-before, or use-by date printed on the packaging, exactly as printed.
4. **Category**: One of: dairy, meat, produce, bakery, frozen, beverages, snacks, household, personal_care, other.
5. **Confidence**: Your confidence in the identification, from 0.0 to 1.0.

Return ONLY valid JSON in this exact format:
{
  "itemName": "product name",
  "barcode": "digits if visible",
  "expiryDate": "date if visible",
  "category": "one of the listed categories",
  "confidence": 0.0
}

Important:
- Omit any field you cannot identify
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// renderPDFPage renders the first page of a PDF as a PNG image
func renderPDFPage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// decodeToPNG converts any supported image format to PNG
func decodeToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	// HEIC/HEIF is the default camera format on iPhones; Go's standard image
	// package doesn't support it
	if isHEICData(imageData) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding image (supported: JPEG, PNG, GIF, HEIC, HEIF, PDF): %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// isHEICData checks the ftyp box for HEIC-related brands
func isHEICData(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// preparePNG normalizes an uploaded capture to PNG for the vision backend.
// Phone uploads arrive as JPEG, HEIC, or occasionally PDF.
func preparePNG(imageData []byte, contentType string) ([]byte, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	if mimeType == "application/pdf" {
		return renderPDFPage(imageData)
	}
	if mimeType == "image/png" && !isHEICData(imageData) {
		return imageData, nil
	}
	return decodeToPNG(imageData, mimeType)
}
