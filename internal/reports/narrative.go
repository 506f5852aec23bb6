package reports

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const modelName = "gemini-2.5-flash"

const narrativePrompt = `You are a financial analyst writing a personal finance report.
Write a short narrative (3-5 paragraphs) for the figures below.
Cover: overall cash flow, the largest spending categories, budget adherence, and one practical suggestion.
Use plain text only - no markdown, no asterisks, no headings.
Keep a neutral, encouraging tone.
`

// narrative asks Gemini to write the report body for a summary.
func narrative(ctx context.Context, apiKey string, summary Summary) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("reports: no Gemini API key configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("reports: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: narrativePrompt},
				{Text: formatSummary(summary)},
			},
		},
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.4)),
		MaxOutputTokens: 1024,
	}

	resp, err := client.Models.GenerateContent(ctx, modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("reports: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("reports: empty response from model")
	}
	return text, nil
}

// formatSummary renders the figures the model writes from.
func formatSummary(s Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s report, %s to %s.\n\n",
		s.Frequency.Label(),
		s.PeriodStart.Format("2006-01-02"),
		s.PeriodEnd.Format("2006-01-02"))
	fmt.Fprintf(&b, "Total income: %.2f\n", s.TotalIncome)
	fmt.Fprintf(&b, "Total expenses: %.2f\n", s.TotalExpenses)
	fmt.Fprintf(&b, "Net: %.2f\n", s.Net)
	fmt.Fprintf(&b, "Current balance across accounts: %.2f\n", s.TotalBalance)

	if len(s.ByCategory) > 0 {
		b.WriteString("\nSpending by category:\n")
		for _, cat := range s.ByCategory {
			fmt.Fprintf(&b, "- %s: %.2f\n", cat.Category, cat.Amount)
		}
	}

	if len(s.Budgets) > 0 {
		b.WriteString("\nBudgets:\n")
		for _, budget := range s.Budgets {
			fmt.Fprintf(&b, "- %s: %.2f of %.2f (%.0f%%)\n", budget.Category, budget.Spent, budget.Total, budget.PercentUsed)
		}
	}

	return b.String()
}

// templateBody is the no-model fallback report text.
func templateBody(s Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Here is your %s financial summary for %s to %s.\n\n",
		strings.ToLower(s.Frequency.Label()),
		s.PeriodStart.Format("January 2, 2006"),
		s.PeriodEnd.Format("January 2, 2006"))

	fmt.Fprintf(&b, "You earned %.2f and spent %.2f, ", s.TotalIncome, s.TotalExpenses)
	if s.Net >= 0 {
		fmt.Fprintf(&b, "leaving you %.2f ahead for the period.\n", s.Net)
	} else {
		fmt.Fprintf(&b, "putting you %.2f over your income for the period.\n", -s.Net)
	}
	fmt.Fprintf(&b, "Your combined account balance is %.2f.\n", s.TotalBalance)

	if len(s.ByCategory) > 0 {
		top := s.ByCategory[0]
		fmt.Fprintf(&b, "\nYour largest spending category was %s at %.2f.\n", top.Category, top.Amount)
	}

	var over []string
	for _, budget := range s.Budgets {
		if budget.PercentUsed >= 100 {
			over = append(over, budget.Category)
		}
	}
	if len(over) > 0 {
		fmt.Fprintf(&b, "\nBudgets exceeded this period: %s.\n", strings.Join(over, ", "))
	} else if len(s.Budgets) > 0 {
		b.WriteString("\nAll budgets stayed within their limits this period.\n")
	}

	return b.String()
}
