package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/findash/findash/internal/auth"
	"github.com/findash/findash/internal/config"
	"github.com/findash/findash/internal/jobs"
	"github.com/findash/findash/internal/jobs/inmemory"
	"github.com/findash/findash/internal/logger"
	"github.com/findash/findash/internal/mailer"
	"github.com/findash/findash/internal/reports"
	"github.com/findash/findash/internal/store"
)

// dispatchHourUTC is when the daily schedule check runs.
const dispatchHourUTC = 6

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := store.New(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Supabase")
	}

	directory := auth.New(cfg.SupabaseURL, cfg.SupabaseServiceKey, log)
	mail := mailer.New(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName, cfg.DashboardURL, db, log)

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	reportSvc := reports.New(db, mail, directory, jobQueue, cfg.GeminiAPIKey, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		reportJob, ok := job.(*jobs.ReportJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}
		return reportSvc.Generate(ctx, reportJob.UserID, reportJob.Email, reportJob.Frequency, reportJob.ReportType)
	}

	if err := jobQueue.Start(ctx, jobHandler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Int("hour_utc", dispatchHourUTC).Msg("Report scheduler started")

	go runSchedule(ctx, reportSvc, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Worker exited")
}

// runSchedule fires once per day at dispatchHourUTC and enqueues every report
// frequency that is due.
func runSchedule(ctx context.Context, svc *reports.Service, log zerolog.Logger) {
	for {
		now := time.Now().UTC()
		next := time.Date(now.Year(), now.Month(), now.Day(), dispatchHourUTC, 0, 0, 0, time.UTC)
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		due := reports.DueFrequencies(time.Now().UTC())
		if len(due) == 0 {
			log.Info().Msg("No reports due today")
			continue
		}

		for _, freq := range due {
			queued, err := svc.Dispatch(ctx, freq)
			if err != nil {
				log.Error().Err(err).Str("frequency", string(freq)).Msg("Scheduled dispatch failed")
				continue
			}
			log.Info().Str("frequency", string(freq)).Int("queued", queued).Msg("Scheduled reports queued")
		}
	}
}
