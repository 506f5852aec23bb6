package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/findash/findash/internal/advisor"
	"github.com/findash/findash/internal/alerts"
	"github.com/findash/findash/internal/api/handlers"
	"github.com/findash/findash/internal/api/middleware"
	"github.com/findash/findash/internal/auth"
	"github.com/findash/findash/internal/config"
	"github.com/findash/findash/internal/events"
	"github.com/findash/findash/internal/jobs"
	"github.com/findash/findash/internal/jobs/inmemory"
	"github.com/findash/findash/internal/ledger"
	"github.com/findash/findash/internal/logger"
	"github.com/findash/findash/internal/mailer"
	"github.com/findash/findash/internal/receipts"
	"github.com/findash/findash/internal/reports"
	"github.com/findash/findash/internal/store"
)

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

	bus := events.NewBus()
	defer bus.Close()

	directory := auth.New(cfg.SupabaseURL, cfg.SupabaseServiceKey, log)
	mail := mailer.New(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName, cfg.DashboardURL, db, log)

	alertSvc := alerts.New(db, mail, bus, log)
	ledgerSvc := ledger.New(db, alertSvc, bus, log)
	adviceSvc := advisor.New(db, cfg.GeminiAPIKey, log)
	scanner := receipts.New(cfg.GeminiAPIKey, log)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	reportSvc := reports.New(db, mail, directory, jobQueue, cfg.GeminiAPIKey, log)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		reportJob, ok := job.(*jobs.ReportJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", reportJob.JobID).
			Str("user_id", reportJob.UserID).
			Str("frequency", string(reportJob.Frequency)).
			Msg("Processing report job")

		return reportSvc.Generate(ctx, reportJob.UserID, reportJob.Email, reportJob.Frequency, reportJob.ReportType)
	}

	go func() {
		log.Info().Msg("Starting report worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Report worker stopped with error")
		}
	}()

	// Initialize handlers
	accountsHandler := handlers.NewAccountsHandler(db, bus, log)
	transactionsHandler := handlers.NewTransactionsHandler(db, ledgerSvc, log)
	budgetsHandler := handlers.NewBudgetsHandler(db, bus, log)
	notificationsHandler := handlers.NewNotificationsHandler(db, log)
	profileHandler := handlers.NewProfileHandler(db, db.Client(), cfg.AvatarBucket, bus, log)
	authEmailsHandler := handlers.NewAuthEmailsHandler(directory, mail, cfg.DashboardURL, log)
	budgetNotificationsHandler := handlers.NewBudgetNotificationsHandler(alertSvc, log)
	adviceHandler := handlers.NewAdviceHandler(adviceSvc, log)
	receiptHandler := handlers.NewReceiptHandler(scanner, log)
	reportsHandler := handlers.NewReportsHandler(reportSvc, log)
	eventsHandler := handlers.NewEventsHandler(bus, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Create router
	api := http.NewServeMux()

	api.HandleFunc("/api/accounts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			accountsHandler.List(w, r)
		case http.MethodPost:
			accountsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	api.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.List(w, r)
		case http.MethodPost:
			transactionsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	api.HandleFunc("/api/budgets", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			budgetsHandler.List(w, r)
		case http.MethodPost:
			budgetsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	api.HandleFunc("/api/notifications", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			notificationsHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	api.HandleFunc("/api/notifications/unread-count", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			notificationsHandler.UnreadCount(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	api.HandleFunc("/api/notifications/read", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			notificationsHandler.MarkRead(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	api.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			profileHandler.Get(w, r)
		case http.MethodPut, http.MethodPost:
			profileHandler.Upsert(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	api.HandleFunc("/api/profile/avatar", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			profileHandler.UploadAvatar(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	api.HandleFunc("/api/events", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			eventsHandler.Stream(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	api.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	api.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Function endpoints mirror the original edge function paths and are the
	// only routes behind the service key.
	functions := http.NewServeMux()

	functions.HandleFunc("/api/functions/auth-emails", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			authEmailsHandler.Handle(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	functions.HandleFunc("/api/functions/budget-notifications", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			budgetNotificationsHandler.Handle(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	functions.HandleFunc("/api/functions/financial-advice", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			adviceHandler.Handle(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	functions.HandleFunc("/api/functions/receipt-scanner", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			receiptHandler.Handle(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	functions.HandleFunc("/api/functions/financial-report", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			reportsHandler.Dispatch(w, r)
		case http.MethodPost:
			reportsHandler.Generate(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux := http.NewServeMux()
	mux.Handle("/api/functions/", middleware.ServiceAuth(cfg.ServiceAPIKey)(functions))
	mux.Handle("/api/", api)

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// WriteTimeout stays 0 because /api/events holds its response open.
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
