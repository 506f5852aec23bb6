package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/findash/findash/internal/auth"
	"github.com/findash/findash/internal/config"
	"github.com/findash/findash/internal/domain"
	"github.com/findash/findash/internal/logger"
	"github.com/findash/findash/internal/mailer"
	"github.com/findash/findash/internal/reports"
	"github.com/findash/findash/internal/store"
)

func main() {
	log := logger.New()

	userID := flag.String("user", "", "user id to generate the report for")
	email := flag.String("email", "", "recipient address (resolved from the user id when omitted)")
	frequency := flag.String("frequency", "monthly", "report period: weekly, monthly, quarterly, half-yearly or yearly")
	flag.Parse()

	if *userID == "" {
		log.Fatal().Msg("Error: --user is required")
	}

	freq, err := domain.ParseFrequency(*frequency)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid frequency")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := store.New(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Supabase")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ctx = logger.WithContext(ctx, log)

	directory := auth.New(cfg.SupabaseURL, cfg.SupabaseServiceKey, log)

	to := *email
	if to == "" {
		to, err = directory.EmailByID(ctx, *userID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to resolve recipient email")
		}
	}

	mail := mailer.New(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName, cfg.DashboardURL, db, log)
	svc := reports.New(db, mail, directory, nil, cfg.GeminiAPIKey, log)

	log.Info().Str("user_id", *userID).Str("frequency", string(freq)).Msg("Generating report")

	if err := svc.Generate(ctx, *userID, to, freq, "manual"); err != nil {
		log.Fatal().Err(err).Msg("Report generation failed")
	}

	fmt.Println("Report sent to", to)
}
