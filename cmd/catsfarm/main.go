package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/catsfarm/internal/adapter/driven/catsapi"
	"github.com/ericfisherdev/catsfarm/internal/adapter/driven/console"
	"github.com/ericfisherdev/catsfarm/internal/adapter/driven/credfile"
	sqliteadapter "github.com/ericfisherdev/catsfarm/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/catsfarm/internal/adapter/driving/http"
	"github.com/ericfisherdev/catsfarm/internal/application"
	"github.com/ericfisherdev/catsfarm/internal/config"
	"github.com/ericfisherdev/catsfarm/internal/domain/port/driven"
)

func main() {
	reporter := console.New(os.Stdout)
	if err := run(reporter); err != nil {
		reporter.Error(err.Error())
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(reporter *console.Reporter) error {
	// 1. Load configuration (fail fast on invalid values).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	slog.Info("config loaded",
		"data_file", cfg.DataFile,
		"base_url", cfg.BaseURL,
		"task_group", cfg.TaskGroup,
		"task_timeout", cfg.TaskTimeout,
		"pass_interval", cfg.PassInterval,
		"isolate_account_errors", cfg.IsolateAccountErrors,
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Read credentials once; they are not reloaded while running.
	var source driven.CredentialSource = credfile.New(cfg.DataFile)
	creds, err := source.Load()
	if err != nil {
		return err
	}
	slog.Info("credentials loaded", "path", cfg.DataFile, "count", len(creds))

	// 4. Open the attempt journal (optional).
	var journal driven.JournalStore
	if cfg.HasJournal() {
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()

		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			return err
		}
		journal = sqliteadapter.NewJournalRepo(db)
		slog.Info("journal opened", "path", db.Path())
	} else {
		slog.Info("journal disabled")
	}

	// 5. Wire the task service client and the account loop.
	client, err := catsapi.NewClient(cfg.BaseURL, cfg.RequestTimeout)
	if err != nil {
		return err
	}

	farm := application.NewFarmService(client, reporter, journal, creds, application.FarmSettings{
		TaskGroup:            cfg.TaskGroup,
		TaskTimeout:          cfg.TaskTimeout,
		PassInterval:         cfg.PassInterval,
		CountdownTick:        application.DefaultCountdownTick,
		IsolateAccountErrors: cfg.IsolateAccountErrors,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return farm.Run(gctx)
	})

	// 6. Status API (optional).
	if cfg.HasStatusAPI() {
		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           httphandler.NewServeMux(httphandler.NewHandler(farm, journal, slog.Default()), slog.Default()),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}

		g.Go(func() error {
			return serveStatus(gctx, srv)
		})
	}

	slog.Info("catsfarm started", "accounts", len(creds))

	// 7. Wait for a signal or a fatal loop error.
	err = g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		slog.Info("shutdown complete")
		return nil
	}
	return err
}
