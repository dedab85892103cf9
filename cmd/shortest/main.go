// Command shortest serves the pull/merge request dashboard: the JSON API and
// the HTML shell on one listener, backed by SQLite.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container
	"golang.org/x/sync/errgroup"

	githubadapter "github.com/ericfisherdev/shortest/internal/adapter/driven/github"
	gitlabadapter "github.com/ericfisherdev/shortest/internal/adapter/driven/gitlab"
	sqliteadapter "github.com/ericfisherdev/shortest/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/shortest/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/shortest/internal/adapter/driving/web"
	"github.com/ericfisherdev/shortest/internal/application"
	"github.com/ericfisherdev/shortest/internal/config"
	"github.com/ericfisherdev/shortest/internal/domain/model"
	"github.com/ericfisherdev/shortest/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"gitlab_base_url", cfg.GitLabBaseURL,
		"credential_storage", cfg.SecretKey != nil,
		"user_header", cfg.UserHeader,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	logger.Info("database opened", "path", db.Path())

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	logger.Info("migrations complete")

	// 5. Wire stores.
	repoStore := sqliteadapter.NewRepoRepo(db)
	credentialStore := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)

	// 6. Build provider clients. Stored tokens take priority over env vars.
	clients := application.NewClientProvider(nil, nil)
	factory := application.ClientFactory{
		GitHub: func(token string) (driven.GitHubClient, error) {
			return githubadapter.NewClient(token), nil
		},
		GitLab: func(token string) (driven.GitLabClient, error) {
			return gitlabadapter.NewClient(token, cfg.GitLabBaseURL)
		},
	}
	credentialSvc := application.NewCredentialService(credentialStore, clients, factory,
		map[model.Provider]string{
			model.ProviderGitHub: cfg.GitHubToken,
			model.ProviderGitLab: cfg.GitLabToken,
		}, logger)
	if err := credentialSvc.Init(ctx); err != nil {
		return fmt.Errorf("initialize provider clients: %w", err)
	}

	// 7. Application services.
	changeSvc := application.NewChangeRequestService(clients, repoStore, logger)

	// 8. Register API and shell routes on one mux.
	mux := http.NewServeMux()
	apiHandler := httphandler.NewHandler(changeSvc, credentialSvc, repoStore, db, logger)
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	webHandler := webhandler.NewHandler(repoStore, changeSvc, cfg.UserHeader, cfg.SignInURL, logger)
	webhandler.RegisterRoutes(mux, webHandler)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.ApplyMiddleware(mux, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 9. Serve until the signal context ends, then drain.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}
