// Package receipts extracts structured purchase data from receipt photos and
// raw receipt text.
package receipts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const modelName = "gemini-2.5-flash"

const extractionPrompt = `You are a receipt parser.
Extract the purchase details from the receipt below.
Output STRICT JSON only (no comments, no trailing commas, no extra text).

The JSON object must have these fields:
- "storeName": string
- "date": string, ISO format "YYYY-MM-DD"
- "totalAmount": number
- "items": array of objects with "name" (string), "price" (number) and "quantity" (number, default 1)

Return ONLY valid raw JSON.
Do NOT wrap the response in code fences.
Do NOT use ` + "```json" + ` or any Markdown.
Output must begin with "{" and end with "}".
`

// Item is one line on a receipt.
type Item struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Receipt is the structured result of a scan. Field names follow the wire
// format the dashboard consumes.
type Receipt struct {
	StoreName   string  `json:"storeName"`
	Date        string  `json:"date"`
	TotalAmount float64 `json:"totalAmount"`
	Items       []Item  `json:"items"`
}

// ScanInput carries either raw receipt text or a base64-encoded image.
type ScanInput struct {
	Text        string `json:"text,omitempty"`
	ImageBase64 string `json:"image,omitempty"`
	ImageType   string `json:"imageType,omitempty"`
}

// Scanner parses receipts with Gemini. A model response that is not valid
// JSON is salvaged field by field; an unreachable model degrades to pattern
// matching on the raw text.
type Scanner struct {
	apiKey string
	log    zerolog.Logger

	// now and generate are swapped in tests.
	now      func() time.Time
	generate func(ctx context.Context, input ScanInput) (string, error)
}

// New creates a scanner.
func New(apiKey string, log zerolog.Logger) *Scanner {
	s := &Scanner{
		apiKey: apiKey,
		log:    log.With().Str("component", "receipts").Logger(),
		now:    time.Now,
	}
	s.generate = s.callModel
	return s
}

// Scan extracts a Receipt from the input. Model failures degrade to the text
// fallback; only inputs with neither text nor image are an error.
func (s *Scanner) Scan(ctx context.Context, input ScanInput) (*Receipt, error) {
	if input.Text == "" && input.ImageBase64 == "" {
		return nil, fmt.Errorf("receipts: text or image is required")
	}

	var receipt *Receipt
	raw, err := s.generate(ctx, input)
	if err != nil {
		s.log.Error().Err(err).Msg("Model extraction failed, using text fallback")
		receipt = ParseText(input.Text)
	} else {
		receipt = s.decode(raw)
	}

	s.applyDefaults(receipt)
	return receipt, nil
}

func (s *Scanner) callModel(ctx context.Context, input ScanInput) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("receipts: no Gemini API key configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      s.apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("receipts: create genai client: %w", err)
	}

	parts := []*genai.Part{{Text: extractionPrompt}}
	if input.ImageBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(input.ImageBase64)
		if err != nil {
			return "", fmt.Errorf("receipts: decode image: %w", err)
		}
		mimeType := input.ImageType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: mimeType, Data: data},
		})
	}
	if input.Text != "" {
		parts = append(parts, &genai.Part{Text: "Receipt text:\n" + input.Text})
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := client.Models.GenerateContent(ctx, modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("receipts: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", fmt.Errorf("receipts: empty response from model")
	}
	return rawText, nil
}

// decode parses the model response. Output that is not valid JSON still
// usually names the fields, so it is mined for them instead of being thrown
// away.
func (s *Scanner) decode(raw string) *Receipt {
	clean := cleanModelJSON(raw)

	var receipt Receipt
	if err := json.Unmarshal([]byte(clean), &receipt); err != nil {
		s.log.Warn().Err(err).Msg("Model returned malformed JSON, salvaging fields")
		return salvageModelOutput(raw)
	}
	return &receipt
}

// applyDefaults fills the holes a partial extraction leaves.
func (s *Scanner) applyDefaults(r *Receipt) {
	if r.StoreName == "" {
		r.StoreName = "Unknown Store"
	}
	if r.Date == "" {
		r.Date = s.now().Format("2006-01-02")
	}
	for i := range r.Items {
		if r.Items[i].Quantity <= 0 {
			r.Items[i].Quantity = 1
		}
	}
	if r.TotalAmount == 0 && len(r.Items) > 0 {
		var sum float64
		for _, item := range r.Items {
			sum += item.Price * float64(item.Quantity)
		}
		r.TotalAmount = sum
	}
}

// cleanModelJSON strips Markdown fences and surrounding prose, keeping the
// outermost JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end != -1 && end > start {
		s = s[start : end+1]
	}
	return s
}
