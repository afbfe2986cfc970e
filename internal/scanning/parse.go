package scanning

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	nameLabelPattern    = regexp.MustCompile(`(?i)(?:item|product|name)[\s:]+([^\n,]+)`)
	barcodeLabelPattern = regexp.MustCompile(`(?i)(?:barcode|upc|ean)[\s:]+(\d{8,14})`)
	expiryLabelPattern  = regexp.MustCompile(`(?i)(?:expiry|expires?|best before|use by)[\s:]+([^\n,]+)`)
)

var knownCategories = []Category{
	CategoryDairy,
	CategoryMeat,
	CategoryProduce,
	CategoryBakery,
	CategoryFrozen,
	CategoryBeverages,
	CategorySnacks,
	CategoryHousehold,
	CategoryPersonalCare,
	CategoryOther,
}

// parseCategory maps a free-text category to the enum, or "" when unknown
func parseCategory(s string) Category {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range knownCategories {
		if s == string(c) {
			return c
		}
	}
	return ""
}

// parseScanResponse extracts a ScanResult from a model response. It prefers
// an embedded JSON object; when the response contains no valid JSON it falls
// back to labeled-text parsing at reduced confidence.
func parseScanResponse(text string) *ScanResult {
	// Remove markdown code blocks if present
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if result := parseScanJSON(text); result != nil {
		return result
	}
	return parseScanText(text)
}

// parseScanJSON parses the JSON object between the first { and last }.
// Models name fields inconsistently, so aliases are accepted:
// itemName|name|product, barcode|upc|ean, expiryDate|expiry|bestBefore.
func parseScanJSON(text string) *ScanResult {
	startIdx := strings.Index(text, "{")
	endIdx := strings.LastIndex(text, "}")
	if startIdx == -1 || endIdx < startIdx {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text[startIdx:endIdx+1]), &fields); err != nil {
		return nil
	}

	result := &ScanResult{
		ItemName:   firstString(fields, "itemName", "name", "product"),
		Barcode:    firstString(fields, "barcode", "upc", "ean"),
		ExpiryDate: firstString(fields, "expiryDate", "expiry", "bestBefore"),
		Category:   parseCategory(firstString(fields, "category")),
		Confidence: 0.8,
	}
	if raw, ok := fields["confidence"]; ok {
		var confidence float64
		if err := json.Unmarshal(raw, &confidence); err == nil && confidence > 0 {
			result.Confidence = confidence
		}
	}
	result.Success = result.ItemName != ""

	return result
}

// firstString returns the first of the named fields holding a non-empty
// value; numeric values (a bare barcode, typically) are accepted as digits
func firstString(fields map[string]json.RawMessage, names ...string) string {
	for _, name := range names {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil && n.String() != "" {
			return n.String()
		}
	}
	return ""
}

// parseScanText recovers fields from a freeform response via labeled
// patterns
func parseScanText(text string) *ScanResult {
	result := &ScanResult{Confidence: 0.6}

	if m := nameLabelPattern.FindStringSubmatch(text); m != nil {
		result.ItemName = strings.TrimSpace(m[1])
	}
	if m := barcodeLabelPattern.FindStringSubmatch(text); m != nil {
		result.Barcode = m[1]
	}
	if m := expiryLabelPattern.FindStringSubmatch(text); m != nil {
		result.ExpiryDate = strings.TrimSpace(m[1])
	}

	lower := strings.ToLower(text)
	for _, c := range knownCategories {
		if c == CategoryOther {
			continue
		}
		if strings.Contains(lower, strings.ReplaceAll(string(c), "_", " ")) {
			result.Category = c
			break
		}
	}

	result.Success = result.ItemName != ""

	return result
}
