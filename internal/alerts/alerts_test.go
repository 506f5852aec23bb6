package alerts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/findash/findash/internal/domain"
	"github.com/findash/findash/internal/mailer"
)

// mockStore collects writes and replays canned alert-log history.
type mockStore struct {
	recentLogs    []domain.BudgetAlertLog
	recentErr     error
	insertLogErr  error
	notifErr      error
	loggedAlerts  []domain.BudgetAlertLog
	notifications []domain.Notification
}

func (m *mockStore) RecentAlertLogs(ctx context.Context, budgetID, userID string, since time.Time) ([]domain.BudgetAlertLog, error) {
	return m.recentLogs, m.recentErr
}

func (m *mockStore) InsertAlertLog(ctx context.Context, log *domain.BudgetAlertLog) error {
	if m.insertLogErr != nil {
		return m.insertLogErr
	}
	m.loggedAlerts = append(m.loggedAlerts, *log)
	return nil
}

func (m *mockStore) InsertNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if m.notifErr != nil {
		return nil, m.notifErr
	}
	created := *n
	created.ID = fmt.Sprintf("notif-%d", len(m.notifications)+1)
	m.notifications = append(m.notifications, created)
	return &created, nil
}

type mockMailer struct {
	sent    []mailer.BudgetAlert
	sendErr error
}

func (m *mockMailer) SendBudgetAlert(ctx context.Context, alert mailer.BudgetAlert) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, alert)
	return nil
}

func newService(store *mockStore, mm *mockMailer) *Service {
	return New(store, mm, nil, zerolog.Nop())
}

func baseAlert(percent float64) Alert {
	return Alert{
		BudgetID:    "budget-1",
		UserID:      "user-1",
		Category:    "food",
		PercentUsed: percent,
		Email:       "user@example.com",
	}
}

func TestProcess_FirstAlertFires(t *testing.T) {
	store := &mockStore{}
	mm := &mockMailer{}
	svc := newService(store, mm)

	// Budget at 70% pushed to 80% with no prior alert.
	result, err := svc.Process(context.Background(), baseAlert(80))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Suppressed {
		t.Fatal("first alert should not be suppressed")
	}
	if len(store.loggedAlerts) != 1 {
		t.Fatalf("expected 1 alert log, got %d", len(store.loggedAlerts))
	}
	if len(store.notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(store.notifications))
	}
	if store.notifications[0].Title != "Budget Alert" {
		t.Errorf("title = %q, want Budget Alert", store.notifications[0].Title)
	}
	if !result.EmailSent || len(mm.sent) != 1 {
		t.Error("expected alert email to be sent")
	}
}

func TestProcess_SmallIncreaseInsideWindowSuppressed(t *testing.T) {
	// An alert at 85% went out two hours ago; 89% is below the 10-point step.
	store := &mockStore{recentLogs: []domain.BudgetAlertLog{{
		BudgetID:       "budget-1",
		UserID:         "user-1",
		PercentageUsed: 85,
		CreatedAt:      time.Now().Add(-2 * time.Hour),
	}}}
	mm := &mockMailer{}
	svc := newService(store, mm)

	result, err := svc.Process(context.Background(), baseAlert(89))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !result.Suppressed {
		t.Fatal("expected suppression for a sub-10-point increase")
	}
	if len(store.loggedAlerts) != 0 || len(store.notifications) != 0 || len(mm.sent) != 0 {
		t.Error("suppressed alert must not write or send anything")
	}
}

func TestProcess_TenPointJumpFires(t *testing.T) {
	store := &mockStore{recentLogs: []domain.BudgetAlertLog{{
		PercentageUsed: 85,
		CreatedAt:      time.Now().Add(-time.Hour),
	}}}
	mm := &mockMailer{}
	svc := newService(store, mm)

	result, err := svc.Process(context.Background(), baseAlert(95))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Suppressed {
		t.Fatal("a 10-point jump should not be suppressed")
	}
	if len(mm.sent) != 1 {
		t.Errorf("expected 1 email, got %d", len(mm.sent))
	}
}

func TestProcess_ExceededTitleAt100(t *testing.T) {
	store := &mockStore{}
	svc := newService(store, &mockMailer{})

	if _, err := svc.Process(context.Background(), baseAlert(112)); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	n := store.notifications[0]
	if n.Title != "Budget Exceeded" {
		t.Errorf("title = %q, want Budget Exceeded", n.Title)
	}
	if n.Message != "You've exceeded your food budget." {
		t.Errorf("unexpected message %q", n.Message)
	}
}

func TestProcess_NotificationMessageRoundsPercent(t *testing.T) {
	store := &mockStore{}
	svc := newService(store, &mockMailer{})

	if _, err := svc.Process(context.Background(), baseAlert(85.4)); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if got := store.notifications[0].Message; got != "You've used 85% of your food budget." {
		t.Errorf("unexpected message %q", got)
	}
}

func TestProcess_LookupFailureDoesNotSuppress(t *testing.T) {
	store := &mockStore{recentErr: fmt.Errorf("connection reset")}
	mm := &mockMailer{}
	svc := newService(store, mm)

	result, err := svc.Process(context.Background(), baseAlert(80))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Suppressed {
		t.Error("a failed suppression lookup must not drop the alert")
	}
	if len(mm.sent) != 1 {
		t.Error("expected the alert email despite the lookup failure")
	}
}

func TestProcess_PartialCompletionTolerated(t *testing.T) {
	// Notification insert fails; the email still goes out and no error
	// surfaces to the caller.
	store := &mockStore{notifErr: fmt.Errorf("insert denied")}
	mm := &mockMailer{}
	svc := newService(store, mm)

	result, err := svc.Process(context.Background(), baseAlert(92))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.NotificationID != "" {
		t.Error("no notification id expected when the insert failed")
	}
	if !result.EmailSent {
		t.Error("email should still be sent after a notification failure")
	}

	// And the reverse: email failure leaves the notification in place.
	store2 := &mockStore{}
	svc2 := newService(store2, &mockMailer{sendErr: fmt.Errorf("sendgrid down")})

	result2, err := svc2.Process(context.Background(), baseAlert(92))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result2.EmailSent {
		t.Error("email must be reported unsent")
	}
	if len(store2.notifications) != 1 {
		t.Error("notification should persist when only the email fails")
	}
}

func TestProcess_MissingFieldsRejected(t *testing.T) {
	svc := newService(&mockStore{}, &mockMailer{})

	alert := baseAlert(80)
	alert.Email = ""
	if _, err := svc.Process(context.Background(), alert); err == nil {
		t.Error("expected validation error for missing email")
	}
}
