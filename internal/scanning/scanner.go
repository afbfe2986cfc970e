package scanning

// Category is the fixed set of product categories a scan can resolve to
type Category string

const (
	CategoryDairy        Category = "dairy"
	CategoryMeat         Category = "meat"
	CategoryProduce      Category = "produce"
	CategoryBakery       Category = "bakery"
	CategoryFrozen       Category = "frozen"
	CategoryBeverages    Category = "beverages"
	CategorySnacks       Category = "snacks"
	CategoryHousehold    Category = "household"
	CategoryPersonalCare Category = "personal_care"
	CategoryOther        Category = "other"
)

// ScanResult contains the fields derived from one scan attempt
type ScanResult struct {
	Success     bool     `json:"success"`
	ItemName    string   `json:"itemName,omitempty"`
	Barcode     string   `json:"barcode,omitempty"`
	ExpiryDate  string   `json:"expiryDate,omitempty"`
	Category    Category `json:"category,omitempty"`
	Confidence  float64  `json:"confidence"`
	RawResponse string   `json:"rawResponse,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Capture is the input to an analyzer: raw media for a vision backend, or
// barcode/text detections already extracted on the device
type Capture struct {
	Image       []byte
	ContentType string
	Barcode     string
	Texts       []string
}

// Analyzer defines the interface for scan analysis backends
type Analyzer interface {
	// AnalyzeCapture derives a ScanResult from a capture
	AnalyzeCapture(capture Capture) (*ScanResult, error)
	// Close closes the analyzer and releases resources
	Close() error
}
