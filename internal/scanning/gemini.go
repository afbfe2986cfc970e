package scanning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini implements the Analyzer interface using Google Gemini vision
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini Analyzer instance
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)

	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

// AnalyzeCapture sends the capture image to Gemini and parses the response
// into a ScanResult. A failed identification is reported on the result, not
// as an error; errors are reserved for transport and backend failures.
func (g *Gemini) AnalyzeCapture(capture Capture) (*ScanResult, error) {
	if len(capture.Image) == 0 {
		return nil, fmt.Errorf("gemini analyzer requires capture image data")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pngData, err := preparePNG(capture.Image, capture.ContentType)
	if err != nil {
		return nil, err
	}

	// genai.ImageData expects just the format suffix, and preparePNG
	// guarantees PNG
	parts := []genai.Part{
		genai.ImageData("png", pngData),
		genai.Text(itemScanPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	text := strings.TrimSpace(responseText.String())
	result := parseScanResponse(text)
	result.RawResponse = text

	// A barcode detected on the device outranks whatever the model read
	if capture.Barcode != "" {
		result.Barcode = capture.Barcode
	}
	if result.Success && result.Category == "" {
		result.Category = Classify(result.ItemName, result.Barcode)
	}
	if !result.Success && result.Error == "" {
		result.Error = "could not identify the item from the capture"
	}

	return result, nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
