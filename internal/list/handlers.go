package list

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/shopper/internal/scanning"
)

// maxCaptureSize caps scan uploads to handle high-resolution phone photos
const maxCaptureSize = int64(50 << 20) // 50MB

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes a JSON error body with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// scanResponse is the body returned by both scan endpoints
type scanResponse struct {
	Result        *scanning.ScanResult `json:"result"`
	MatchedItemID string               `json:"matchedItemId,omitempty"`
}

// handleListItems returns the shopping list
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items := s.state.Items()
	if items == nil {
		items = []ShoppingItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// handleAddItem adds an item to the shopping list. The body carries either a
// raw entry line ("2 milk", "milk x3") or explicit name/quantity/unit fields.
func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Entry    string `json:"entry"`
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
		Unit     string `json:"unit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	name, quantity := req.Name, req.Quantity
	if strings.TrimSpace(req.Entry) != "" {
		name, quantity = ParseEntry(req.Entry)
	}

	item, err := s.state.AddItem(name, quantity, req.Unit)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// handleUpdateItem replaces an item
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var item ShoppingItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	item.ID = id
	if strings.TrimSpace(item.Name) == "" {
		jsonError(w, "item name is required", http.StatusBadRequest)
		return
	}

	stored, ok := s.state.UpdateItem(item)
	if !ok {
		corsError(w, "Item not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, stored)
}

// handleRemoveItem deletes an item
func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if !s.state.RemoveItem(r.PathValue("id")) {
		corsError(w, "Item not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleToggleItem flips an item's checked flag
func (s *Server) handleToggleItem(w http.ResponseWriter, r *http.Request) {
	item, ok := s.state.ToggleItem(r.PathValue("id"))
	if !ok {
		corsError(w, "Item not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleClearChecked removes all checked items
func (s *Server) handleClearChecked(w http.ResponseWriter, r *http.Request) {
	removed := s.state.ClearChecked()
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// handleSuggestions returns autocomplete suggestions for the q parameter
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions := s.state.Suggestions(r.URL.Query().Get("q"))
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, suggestions)
}

// handleListScannedItems returns the scanned-item metadata history
func (s *Server) handleListScannedItems(w http.ResponseWriter, r *http.Request) {
	items := s.state.ScannedItems()
	if items == nil {
		items = []ScannedItemMetadata{}
	}
	writeJSON(w, http.StatusOK, items)
}

// handleScanCapture accepts a multipart capture image, runs the configured
// analyzer, and reconciles the result against the shopping list
func (s *Server) handleScanCapture(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxCaptureSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxCaptureSize {
		jsonError(w, "File is too large. Maximum size is 50MB.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file", http.StatusInternalServerError)
		return
	}

	capture := scanning.Capture{
		Image:       data,
		ContentType: captureContentType(header.Header.Get("Content-Type"), header.Filename),
		Barcode:     r.FormValue("barcode"),
	}

	result, err := s.analyzer.AnalyzeCapture(capture)
	if err != nil {
		slog.Error("Error analyzing capture", "filename", header.Filename, "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	s.respondScan(w, result)
}

// handleScanDetections accepts on-device barcode/text detections and builds
// the scan result locally, with no analyzer backend involved
func (s *Server) handleScanDetections(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Barcode string   `json:"barcode"`
		Texts   []string `json:"texts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.respondScan(w, scanning.BuildScanResult(req.Barcode, req.Texts))
}

// respondScan records the scan and reports the outcome. A failed scan is not
// an HTTP error: the result carries the error string for user display and
// the state is unchanged.
func (s *Server) respondScan(w http.ResponseWriter, result *scanning.ScanResult) {
	matchedID, err := s.state.RecordScan(result)
	if err != nil {
		slog.Warn("Scan not reconciled", "error", err)
	}

	writeJSON(w, http.StatusOK, scanResponse{
		Result:        result,
		MatchedItemID: matchedID,
	})
}

// captureContentType falls back to the filename extension when the part
// carries no Content-Type
func captureContentType(contentType, filename string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType != "" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}
