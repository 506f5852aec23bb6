// Package charts renders the PNG attachments embedded in report emails.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
)

// CategoryTotal is one spending category slice.
type CategoryTotal struct {
	Category string
	Amount   float64
}

// SpendingPie renders expenses by category. Returns nil when there is nothing
// to draw; slices under 1% of the total are dropped to keep labels legible.
func SpendingPie(categories []CategoryTotal) ([]byte, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	var total float64
	for _, cat := range categories {
		total += cat.Amount
	}
	if total <= 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(categories))
	for _, cat := range categories {
		percentage := cat.Amount / total * 100
		if percentage <= 1.0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %.2f (%.1f%%)", cat.Category, cat.Amount, percentage),
			Value: cat.Amount,
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	pie := chart.PieChart{
		Title:  "Spending by Category",
		Width:  800,
		Height: 800,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("charts: render spending pie: %w", err)
	}
	return buffer.Bytes(), nil
}

// CashFlowBar renders income against expenses for the period.
func CashFlowBar(income, expenses float64) ([]byte, error) {
	if income <= 0 && expenses <= 0 {
		return nil, nil
	}

	bars := []chart.Value{
		{
			Label: fmt.Sprintf("Income: %.2f", income),
			Value: income,
			Style: chart.Style{
				StrokeColor: chart.ColorGreen,
				FillColor:   chart.ColorGreen,
				FontSize:    12,
				FontColor:   chart.ColorBlack,
			},
		},
		{
			Label: fmt.Sprintf("Expenses: %.2f", expenses),
			Value: expenses,
			Style: chart.Style{
				StrokeColor: chart.ColorRed,
				FillColor:   chart.ColorRed,
				FontSize:    12,
				FontColor:   chart.ColorBlack,
			},
		},
	}

	graph := chart.BarChart{
		Title: "Income vs Expenses",
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: chart.ColorBlack,
		},
		Width:    800,
		Height:   500,
		BarWidth: 80,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("charts: render cash flow bar: %w", err)
	}
	return buffer.Bytes(), nil
}
