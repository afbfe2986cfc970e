package scanning

import (
	"regexp"
	"strings"
)

// expiryPatterns is tried in order against the joined text; labeled dates
// outrank bare dates even when a bare date occurs earlier in the text.
var expiryPatterns = []*regexp.Regexp{
	// labeled DD/MM/YYYY or DD-MM-YY
	regexp.MustCompile(`(?i)(?:exp|expiry|best before|use by)[\s:]*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	// labeled MM/YYYY
	regexp.MustCompile(`(?i)(?:exp|expiry|best before|use by)[\s:]*(\d{1,2}[/\-]\d{2,4})`),
	// bare ISO date
	regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),
	// bare "15 Jan 2024" style
	regexp.MustCompile(`(?i)(\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4})`),
}

// ExtractExpiry scans OCR text fragments for an expiry-looking date and
// returns the first match of the first matching pattern, or "" when none
// matches.
func ExtractExpiry(fragments []string) string {
	allText := strings.Join(fragments, " ")

	for _, pattern := range expiryPatterns {
		if m := pattern.FindStringSubmatch(allText); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	return ""
}
