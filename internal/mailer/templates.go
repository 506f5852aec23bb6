package mailer

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/findash/findash/internal/domain"
)

// AlertContent is the rendered subject and body of a budget-alert email.
type AlertContent struct {
	Title   string
	Subject string
	HTML    string
}

var budgetAlertTmpl = template.Must(template.New("budget_alert").Parse(`<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background-color: {{.BoxColor}}; border-radius: 5px; padding: 20px; margin-bottom: 20px;">
      <h1 style="color: {{.TitleColor}}; margin-top: 0;">{{.Title}}</h1>
      <p style="font-size: 16px;">{{.Message}}</p>
    </div>
    <p>Hello,</p>
    <p>This is a friendly reminder to check your spending on {{.Category}}.</p>
    <p>You have spent {{.Percent}}% of your budget for this category.</p>
    {{if .Exceeded}}<p style="color: #721c24; font-weight: bold;">You have exceeded your budget limit. Consider reviewing your spending or adjusting your budget.</p>{{end}}
    <div style="margin: 30px 0; text-align: center;">
      <a href="{{.BudgetsURL}}" style="background-color: #4CAF50; color: white; padding: 12px 25px; text-decoration: none; border-radius: 4px; font-weight: bold;">View your budget</a>
    </div>
    <p>Thank you,<br>Finance Dashboard Team</p>
  </body>
</html>`))

// budgetAlertContent picks title, message and styling by threshold:
// exceeded at 100, nearly exceeded at 90, generic below that.
func budgetAlertContent(category string, percentUsed float64, dashURL string) AlertContent {
	pct := fmt.Sprintf("%.0f", percentUsed)

	title := "Budget Alert"
	message := fmt.Sprintf("Your %s budget has reached %s%% of the limit.", category, pct)
	switch {
	case percentUsed >= 100:
		title = "Budget Exceeded"
		message = fmt.Sprintf("Your %s budget has been exceeded. You've spent %s%% of your allocated limit.", category, pct)
	case percentUsed >= 90:
		title = "Budget Nearly Exceeded"
		message = fmt.Sprintf("Your %s budget is nearly depleted at %s%% of the limit.", category, pct)
	}

	exceeded := percentUsed >= 100
	boxColor, titleColor := "#d4edda", "#155724"
	if exceeded {
		boxColor, titleColor = "#f8d7da", "#721c24"
	}

	var b strings.Builder
	_ = budgetAlertTmpl.Execute(&b, map[string]interface{}{
		"Title":      title,
		"Message":    message,
		"Category":   category,
		"Percent":    pct,
		"Exceeded":   exceeded,
		"BoxColor":   template.CSS(boxColor),
		"TitleColor": template.CSS(titleColor),
		"BudgetsURL": dashURL + "/budgets",
	})

	return AlertContent{
		Title:   title,
		Subject: fmt.Sprintf("%s: %s Budget at %s%%", title, category, pct),
		HTML:    b.String(),
	}
}

func welcomeHTML() string {
	return `<html>
  <body>
    <h1>Welcome to Finance Dashboard!</h1>
    <p>Hello,</p>
    <p>Your account has been created and confirmed. You can now log in.</p>
    <p>Thank you for joining us,<br>Finance Dashboard Team</p>
  </body>
</html>`
}

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`<html>
  <body>
    <h1>Reset Your Password</h1>
    <p>Hello,</p>
    <p>You requested to reset your password for your Finance Dashboard account.</p>
    <p>Please click the link below to reset your password:</p>
    <p><a href="{{.}}">Reset Password</a></p>
    <p>If you didn't request this, you can safely ignore this email.</p>
    <p>Thank you,<br>Finance Dashboard Team</p>
  </body>
</html>`))

func passwordResetHTML(actionLink string) string {
	var b strings.Builder
	_ = passwordResetTmpl.Execute(&b, actionLink)
	return b.String()
}

var reportTmpl = template.Must(template.New("report").Parse(`<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #155724;">Your {{.Label}} Financial Report</h1>
    <div style="white-space: pre-line;">{{.Body}}</div>
    {{if .HasCharts}}
    <div style="margin: 20px 0;">
      <img src="cid:spending-chart" alt="Spending by category" style="max-width: 100%;" />
      <img src="cid:cashflow-chart" alt="Income vs expenses" style="max-width: 100%;" />
    </div>
    {{end}}
    <p>Thank you,<br>Finance Dashboard Team</p>
  </body>
</html>`))

func reportHTML(frequency domain.Frequency, body string, hasCharts bool) string {
	var b strings.Builder
	_ = reportTmpl.Execute(&b, map[string]interface{}{
		"Label":     frequency.Label(),
		"Body":      body,
		"HasCharts": hasCharts,
	})
	return b.String()
}
