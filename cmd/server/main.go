package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/vncsmyrnk/publicvoting/internal/adapters/handler/http"
	"github.com/vncsmyrnk/publicvoting/internal/adapters/repository"
	"github.com/vncsmyrnk/publicvoting/internal/adapters/repository/sqlstore"
	"github.com/vncsmyrnk/publicvoting/internal/config"
	"github.com/vncsmyrnk/publicvoting/internal/core/identity"
	"github.com/vncsmyrnk/publicvoting/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireSecrets(); err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(cfg.NewLogger())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	migrator, err := repository.MigratorFor(cfg.DatabaseDriver)
	if err != nil {
		log.Fatal(err)
	}
	if err := migrator.Up(ctx, db); err != nil {
		log.Fatal(err)
	}

	codec, err := identity.NewCodec(cfg.SecretKey, cfg.VoteLinkTTL)
	if err != nil {
		log.Fatal(err)
	}
	organizerAuth, err := services.NewOrganizerAuth(cfg.JWTSecret)
	if err != nil {
		log.Fatal(err)
	}

	eventRepo := sqlstore.NewEventRepository(db)
	submissionRepo := sqlstore.NewSubmissionRepository(db)
	settingsRepo := sqlstore.NewSettingsRepository(db)
	voteRepo := sqlstore.NewVoteRepository(db)
	permissionRepo := sqlstore.NewPermissionRepository(db)
	mailQueue := sqlstore.NewMailQueue(db)

	votingService := services.NewVotingService(eventRepo, submissionRepo, settingsRepo, voteRepo, mailQueue, codec, cfg.BaseURL)
	settingsService := services.NewSettingsService(eventRepo, settingsRepo, permissionRepo)
	exportService := services.NewExportService(eventRepo, voteRepo)

	handler := http.NewHandler(
		http.NewVotingHandler(votingService),
		http.NewSettingsHandler(settingsService, exportService),
		http.RouterConfig{
			AllowedOrigins: cfg.AllowedOrigins,
			Auth:           organizerAuth,
			Settings:       settingsService,
		},
	)
	server := &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("listening", "addr", cfg.HTTPAddr, "driver", cfg.DatabaseDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	slog.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}
