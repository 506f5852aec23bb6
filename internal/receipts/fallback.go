package receipts

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	totalRe = regexp.MustCompile(`(?i)(?:total|amount due|balance due)[:\s]*\$?\s*(\d+(?:[.,]\d{2})?)`)
	dateRe  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4})\b`)
	lineRe  = regexp.MustCompile(`^(.{2,40}?)\s+\$?(\d+\.\d{2})$`)
)

var (
	salvageStoreRe  = regexp.MustCompile(`(?i)store.*?name["'\s:]+([^"',\n]+)`)
	salvageDateRe   = regexp.MustCompile(`(?i)date["'\s:]+([\d\-/.]+)`)
	salvageTotalRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total.*?amount["'\s:]+([\d.]+)`),
		regexp.MustCompile(`(?i)amount["'\s:]+([\d.]+)`),
		regexp.MustCompile(`(?i)total["'\s:]+([\d.]+)`),
	}
)

// salvageModelOutput pulls the top-level fields out of a model response that
// failed to parse as JSON. Line items are not recoverable from broken output.
func salvageModelOutput(raw string) *Receipt {
	receipt := &Receipt{}

	if m := salvageStoreRe.FindStringSubmatch(raw); m != nil {
		receipt.StoreName = strings.TrimSpace(m[1])
	}
	if m := salvageDateRe.FindStringSubmatch(raw); m != nil {
		receipt.Date = normalizeDate(strings.TrimSpace(m[1]))
	}
	for _, re := range salvageTotalRes {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			receipt.TotalAmount = v
		}
		break
	}
	return receipt
}

// ParseText is the no-model fallback: it pulls a total, a date and line items
// out of raw receipt text with pattern matching.
func ParseText(text string) *Receipt {
	receipt := &Receipt{}
	if text == "" {
		return receipt
	}

	if m := totalRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64); err == nil {
			receipt.TotalAmount = v
		}
	}

	if m := dateRe.FindString(text); m != "" {
		receipt.Date = normalizeDate(m)
	}

	lines := strings.Split(text, "\n")
	if len(lines) > 0 {
		if name := strings.TrimSpace(lines[0]); name != "" && !totalRe.MatchString(name) {
			receipt.StoreName = name
		}
	}

	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if totalRe.MatchString(line) {
			continue
		}
		if m := lineRe.FindStringSubmatch(line); m != nil {
			price, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			receipt.Items = append(receipt.Items, Item{
				Name:     strings.TrimSpace(m[1]),
				Price:    price,
				Quantity: 1,
			})
		}
	}

	return receipt
}

// normalizeDate converts the common M/D/Y receipt formats to ISO.
func normalizeDate(s string) string {
	if strings.Contains(s, "-") {
		return s
	}
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return s
	}
	year := parts[2]
	if len(year) == 2 {
		year = "20" + year
	}
	month := parts[0]
	if len(month) == 1 {
		month = "0" + month
	}
	day := parts[1]
	if len(day) == 1 {
		day = "0" + day
	}
	return year + "-" + month + "-" + day
}
