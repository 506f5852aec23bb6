package reports

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/findash/findash/internal/charts"
	"github.com/findash/findash/internal/domain"
	"github.com/findash/findash/internal/jobs"
	"github.com/findash/findash/internal/mailer"
	"github.com/findash/findash/internal/store"
)

type sentReport struct {
	to        string
	userID    string
	frequency domain.Frequency
	body      string
	charts    []mailer.Attachment
}

type mockMailer struct {
	sent []sentReport
}

func (m *mockMailer) SendReport(ctx context.Context, to, userID string, frequency domain.Frequency, body string, charts []mailer.Attachment) error {
	m.sent = append(m.sent, sentReport{to, userID, frequency, body, charts})
	return nil
}

type mockStore struct {
	transactions []domain.Transaction
	accounts     []domain.Account
	budgets      []domain.Budget
	profiles     []domain.Profile
	records      []domain.ReportRecord

	listedStart *time.Time
}

func (m *mockStore) ListTransactions(ctx context.Context, userID string, filter store.TransactionFilter) ([]domain.Transaction, error) {
	m.listedStart = filter.StartDate
	return m.transactions, nil
}

func (m *mockStore) AccountsByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	return m.accounts, nil
}

func (m *mockStore) BudgetsByUser(ctx context.Context, userID string) ([]domain.Budget, error) {
	return m.budgets, nil
}

func (m *mockStore) ProfilesByFrequency(ctx context.Context, frequency domain.Frequency) ([]domain.Profile, error) {
	return m.profiles, nil
}

func (m *mockStore) InsertReportRecord(ctx context.Context, record *domain.ReportRecord) error {
	m.records = append(m.records, *record)
	return nil
}

type mockDirectory struct {
	emails map[string]string
}

func (m *mockDirectory) EmailByID(ctx context.Context, userID string) (string, error) {
	email, ok := m.emails[userID]
	if !ok {
		return "", fmt.Errorf("no such user")
	}
	return email, nil
}

type mockQueue struct {
	published []*jobs.ReportJob
}

func (m *mockQueue) PublishReport(ctx context.Context, job *jobs.ReportJob) error {
	m.published = append(m.published, job)
	return nil
}

func (m *mockQueue) Close() error { return nil }

func TestSummarize(t *testing.T) {
	start := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	transactions := []domain.Transaction{
		{Type: domain.TypeIncome, Amount: 3000, Category: "salary"},
		{Type: domain.TypeExpense, Amount: 400, Category: "food"},
		{Type: domain.TypeExpense, Amount: 600, Category: "housing"},
		{Type: domain.TypeExpense, Amount: 100, Category: "food"},
	}
	accounts := []domain.Account{
		{Balance: 1200}, {Balance: 800},
	}
	budgets := []domain.Budget{
		{Category: "food", Total: 500, Spent: 500},
	}

	s := Summarize(domain.FrequencyMonthly, start, end, transactions, accounts, budgets)

	if s.TotalIncome != 3000 || s.TotalExpenses != 1100 {
		t.Errorf("income/expenses = %v/%v, want 3000/1100", s.TotalIncome, s.TotalExpenses)
	}
	if s.Net != 1900 {
		t.Errorf("net = %v, want 1900", s.Net)
	}
	if s.TotalBalance != 2000 {
		t.Errorf("balance = %v, want 2000", s.TotalBalance)
	}
	if len(s.ByCategory) != 2 || s.ByCategory[0].Category != "housing" || s.ByCategory[0].Amount != 600 {
		t.Errorf("categories not sorted by amount: %+v", s.ByCategory)
	}
	if len(s.Budgets) != 1 || s.Budgets[0].PercentUsed != 100 {
		t.Errorf("unexpected budget progress: %+v", s.Budgets)
	}
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2026, time.September, 14, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		freq domain.Frequency
		want time.Time
	}{
		{domain.FrequencyWeekly, time.Date(2026, time.September, 7, 8, 0, 0, 0, time.UTC)},
		{domain.FrequencyMonthly, time.Date(2026, time.August, 14, 8, 0, 0, 0, time.UTC)},
		{domain.FrequencyQuarterly, time.Date(2026, time.June, 14, 8, 0, 0, 0, time.UTC)},
		{domain.FrequencyHalfYearly, time.Date(2026, time.March, 14, 8, 0, 0, 0, time.UTC)},
		{domain.FrequencyYearly, time.Date(2025, time.September, 14, 8, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			if got := PeriodStart(tt.freq, now); !got.Equal(tt.want) {
				t.Errorf("PeriodStart = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDueFrequencies(t *testing.T) {
	tests := []struct {
		name string
		day  time.Time
		want []domain.Frequency
	}{
		{
			"plain tuesday",
			time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC),
			nil,
		},
		{
			"monday mid-month",
			time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC),
			[]domain.Frequency{domain.FrequencyWeekly},
		},
		{
			"first of a plain month",
			time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
			[]domain.Frequency{domain.FrequencyMonthly},
		},
		{
			"first of april",
			time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
			[]domain.Frequency{domain.FrequencyMonthly, domain.FrequencyQuarterly},
		},
		{
			"first of july",
			time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
			[]domain.Frequency{domain.FrequencyMonthly, domain.FrequencyQuarterly, domain.FrequencyHalfYearly},
		},
		{
			"new year's day (a thursday)",
			time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			[]domain.Frequency{domain.FrequencyMonthly, domain.FrequencyQuarterly, domain.FrequencyHalfYearly, domain.FrequencyYearly},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DueFrequencies(tt.day)
			if len(got) != len(tt.want) {
				t.Fatalf("DueFrequencies = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("DueFrequencies = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestGenerate_SendsReportAndRecordsHistory(t *testing.T) {
	st := &mockStore{
		transactions: []domain.Transaction{
			{Type: domain.TypeIncome, Amount: 2000, Category: "salary"},
			{Type: domain.TypeExpense, Amount: 500, Category: "food"},
		},
		accounts: []domain.Account{{Balance: 1500}},
	}
	mm := &mockMailer{}
	// No API key, so the template body is used.
	svc := New(st, mm, nil, nil, "", zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2026, time.September, 14, 8, 0, 0, 0, time.UTC)
	}

	err := svc.Generate(context.Background(), "user-1", "user@example.com", domain.FrequencyWeekly, "manual")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(mm.sent) != 1 {
		t.Fatalf("expected 1 report email, got %d", len(mm.sent))
	}
	sent := mm.sent[0]
	if sent.to != "user@example.com" || sent.frequency != domain.FrequencyWeekly {
		t.Errorf("unexpected send %+v", sent)
	}
	if !strings.Contains(sent.body, "2000.00") || !strings.Contains(sent.body, "500.00") {
		t.Errorf("body missing figures:\n%s", sent.body)
	}
	if len(sent.charts) != 2 {
		t.Errorf("expected pie and bar attachments, got %d", len(sent.charts))
	}
	if sent.charts[0].ContentID != "spending-chart" || sent.charts[1].ContentID != "cashflow-chart" {
		t.Errorf("unexpected chart content ids: %+v", sent.charts)
	}

	wantStart := time.Date(2026, time.September, 7, 8, 0, 0, 0, time.UTC)
	if st.listedStart == nil || !st.listedStart.Equal(wantStart) {
		t.Errorf("period start = %v, want %v", st.listedStart, wantStart)
	}

	if len(st.records) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(st.records))
	}
	record := st.records[0]
	if record.Frequency != "weekly" || record.ReportType != "manual" || record.EmailSentTo != "user@example.com" {
		t.Errorf("unexpected history record %+v", record)
	}
}

func TestGenerate_NoActivityStillSends(t *testing.T) {
	st := &mockStore{}
	mm := &mockMailer{}
	svc := New(st, mm, nil, nil, "", zerolog.Nop())

	err := svc.Generate(context.Background(), "user-1", "user@example.com", domain.FrequencyMonthly, "")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(mm.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(mm.sent))
	}
	if len(mm.sent[0].charts) != 0 {
		t.Errorf("no charts expected without activity, got %d", len(mm.sent[0].charts))
	}
	if st.records[0].ReportType != "scheduled" {
		t.Errorf("report type should default to scheduled, got %q", st.records[0].ReportType)
	}
}

func TestDispatch_QueuesSubscribedProfiles(t *testing.T) {
	st := &mockStore{profiles: []domain.Profile{
		{ID: "user-1"}, {ID: "user-2"}, {ID: "user-3"},
	}}
	directory := &mockDirectory{emails: map[string]string{
		"user-1": "one@example.com",
		"user-3": "three@example.com",
	}}
	queue := &mockQueue{}
	svc := New(st, &mockMailer{}, directory, queue, "", zerolog.Nop())

	queued, err := svc.Dispatch(context.Background(), domain.FrequencyWeekly)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	// user-2 has no resolvable email and is skipped.
	if queued != 2 {
		t.Errorf("queued = %d, want 2", queued)
	}
	if len(queue.published) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(queue.published))
	}
	job := queue.published[0]
	if job.UserID != "user-1" || job.Email != "one@example.com" || job.Frequency != domain.FrequencyWeekly {
		t.Errorf("unexpected job %+v", job)
	}
}

func TestTemplateBody(t *testing.T) {
	summary := Summary{
		Frequency:     domain.FrequencyMonthly,
		PeriodStart:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		TotalIncome:   3000,
		TotalExpenses: 3200,
		Net:           -200,
		TotalBalance:  5400,
		ByCategory:    []charts.CategoryTotal{{Category: "food", Amount: 900}},
		Budgets: []BudgetProgress{
			{Category: "food", Spent: 900, Total: 800, PercentUsed: 112.5},
			{Category: "travel", Spent: 100, Total: 400, PercentUsed: 25},
		},
	}

	body := templateBody(summary)

	for _, want := range []string{
		"monthly financial summary",
		"putting you 200.00 over your income",
		"largest spending category was food at 900.00",
		"Budgets exceeded this period: food.",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("templateBody missing %q in:\n%s", want, body)
		}
	}

	summary.Budgets[0].PercentUsed = 90
	body = templateBody(summary)
	if !strings.Contains(body, "All budgets stayed within their limits") {
		t.Errorf("expected within-limits line, got:\n%s", body)
	}
}
