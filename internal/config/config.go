package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the services need to talk to the hosted backends.
type Config struct {
	// Port is the HTTP listen port for the API server.
	Port string

	// SupabaseURL is the base URL of the hosted project
	// (e.g. https://xyzcompany.supabase.co).
	SupabaseURL string

	// SupabaseServiceKey is the service-role key. All server-side access
	// bypasses row-level security with it.
	SupabaseServiceKey string

	// AvatarBucket is the storage bucket for profile avatars.
	AvatarBucket string

	// GeminiAPIKey authenticates advice, receipt-OCR and report generation.
	// When empty those features degrade to their fallbacks.
	GeminiAPIKey string

	// SendGridAPIKey authenticates outbound email. Required.
	SendGridAPIKey string

	// EmailFrom / EmailFromName form the sender identity on every email.
	EmailFrom     string
	EmailFromName string

	// DashboardURL is the public URL of the web dashboard, used in email
	// links ("View your budget") and reset redirects.
	DashboardURL string

	// ServiceAPIKey, when set, is required as a bearer token on the
	// /functions endpoints.
	ServiceAPIKey string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// A missing .env is fine; deployments set real environment variables.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getenv("PORT", "8080"),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		AvatarBucket:       getenv("AVATAR_BUCKET", "avatars"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		SendGridAPIKey:     os.Getenv("SENDGRID_API_KEY"),
		EmailFrom:          getenv("EMAIL_FROM", "notifications@financedashboard.com"),
		EmailFromName:      getenv("EMAIL_FROM_NAME", "Finance Dashboard"),
		DashboardURL:       getenv("DASHBOARD_URL", "https://finance-dashboard.com"),
		ServiceAPIKey:      os.Getenv("SERVICE_API_KEY"),
	}

	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("config: SUPABASE_URL is required")
	}
	if cfg.SupabaseServiceKey == "" {
		return nil, fmt.Errorf("config: SUPABASE_SERVICE_ROLE_KEY is required")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
