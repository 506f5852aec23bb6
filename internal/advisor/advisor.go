// Package advisor answers free-form finance questions with the user's own
// accounts, transactions and budgets as context.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/findash/findash/internal/domain"
	"github.com/findash/findash/internal/store"
)

const (
	// modelName is the Gemini model used for advice.
	modelName = "gemini-2.5-flash"

	// contextTransactionLimit caps how many recent transactions go into the
	// prompt.
	contextTransactionLimit = 50

	// fallbackResponse is returned whenever the model call fails; external
	// API errors never propagate to the caller.
	fallbackResponse = "I apologize, but I'm unable to provide financial advice at the moment. Please try again later."
)

const systemPrompt = `You are a professional financial advisor.
Your goal is to provide accurate, personalized financial advice based on the user's query and financial data.
Focus on actionable insights and practical recommendations related to:
- Budgeting strategies
- Investment planning
- Debt management
- Saving techniques
- Retirement planning
- Tax optimization
- Financial goal setting

IMPORTANT: Do not use any markdown formatting in your response - no asterisks, no bullet points with dashes, no hashtags for headings.
Format lists with bullet points using the "•" symbol instead of dashes or asterisks.
Use clear paragraph breaks instead of markdown formatting.

Keep your responses informative, concise, and tailored to the specific financial topic.
`

// Store is the subset of the data layer the advisor reads.
type Store interface {
	ListTransactions(ctx context.Context, userID string, filter store.TransactionFilter) ([]domain.Transaction, error)
	AccountsByUser(ctx context.Context, userID string) ([]domain.Account, error)
	BudgetsByUser(ctx context.Context, userID string) ([]domain.Budget, error)
}

// Advisor builds prompts and calls Gemini.
type Advisor struct {
	store  Store
	apiKey string
	log    zerolog.Logger
}

// New creates an advisor. An empty apiKey makes Advise always return the
// fallback response.
func New(s Store, apiKey string, log zerolog.Logger) *Advisor {
	return &Advisor{
		store:  s,
		apiKey: apiKey,
		log:    log.With().Str("component", "advisor").Logger(),
	}
}

// Advise answers one query. userID may be empty, in which case the advice is
// generic. Model failures are logged and replaced by the fallback string.
func (a *Advisor) Advise(ctx context.Context, query, userID string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("advisor: query is required")
	}

	prompt := systemPrompt
	if userID != "" {
		if financial := a.buildFinancialContext(ctx, userID); financial != "" {
			prompt += financial
		}
	}

	text, err := a.generate(ctx, prompt, query)
	if err != nil {
		a.log.Error().Err(err).Str("user_id", userID).Msg("Advice generation failed")
		return fallbackResponse, nil
	}

	return stripMarkdown(text), nil
}

func (a *Advisor) generate(ctx context.Context, prompt, query string) (string, error) {
	if a.apiKey == "" {
		return "", fmt.Errorf("advisor: no Gemini API key configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      a.apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("advisor: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{Text: query},
			},
		},
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.4)),
		TopP:            genai.Ptr(float32(0.8)),
		TopK:            genai.Ptr(float32(40)),
		MaxOutputTokens: 1024,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("advisor: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("advisor: empty response from model")
	}
	return text, nil
}

// buildFinancialContext formats the user's rows for the prompt. Each fetch is
// independent; a failing one is logged and skipped rather than blocking the
// advice.
func (a *Advisor) buildFinancialContext(ctx context.Context, userID string) string {
	transactions, err := a.store.ListTransactions(ctx, userID, store.TransactionFilter{Limit: contextTransactionLimit})
	if err != nil {
		a.log.Error().Err(err).Msg("Failed to fetch transactions for context")
	}
	accounts, err := a.store.AccountsByUser(ctx, userID)
	if err != nil {
		a.log.Error().Err(err).Msg("Failed to fetch accounts for context")
	}
	budgets, err := a.store.BudgetsByUser(ctx, userID)
	if err != nil {
		a.log.Error().Err(err).Msg("Failed to fetch budgets for context")
	}

	return FormatFinancialContext(transactions, accounts, budgets)
}

// FormatFinancialContext renders rows into the prompt block the model sees.
func FormatFinancialContext(transactions []domain.Transaction, accounts []domain.Account, budgets []domain.Budget) string {
	if len(transactions) == 0 && len(accounts) == 0 && len(budgets) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\nHere is this user's financial data:\n")

	if len(accounts) > 0 {
		b.WriteString("\nACCOUNTS:\n")
		for _, acc := range accounts {
			fmt.Fprintf(&b, "- %s (%s): %.2f\n", acc.Name, acc.Type, acc.Balance)
		}
	}

	if len(transactions) > 0 {
		b.WriteString("\nRECENT TRANSACTIONS:\n")
		for _, tx := range transactions {
			sign := "+"
			if tx.Type == domain.TypeExpense {
				sign = "-"
			}
			fmt.Fprintf(&b, "- %s: %s %s%.2f (%s)\n", tx.Date.Format("2006-01-02"), tx.Name, sign, tx.Amount, tx.Category)
		}
	}

	if len(budgets) > 0 {
		b.WriteString("\nBUDGETS:\n")
		for i := range budgets {
			budget := &budgets[i]
			fmt.Fprintf(&b, "- %s: %.2f spent of %.2f (%.0f%% used)\n", budget.Category, budget.Spent, budget.Total, budget.PercentUsed())
		}
	}

	b.WriteString("\nBased on the above financial information, please provide personalized advice.\n")
	return b.String()
}
