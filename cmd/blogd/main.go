package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/blogosphere/blogd/internal/auth"
	"github.com/blogosphere/blogd/internal/config"
	httpserver "github.com/blogosphere/blogd/internal/http"
	"github.com/blogosphere/blogd/internal/notification"
	"github.com/blogosphere/blogd/internal/repository"
	"github.com/blogosphere/blogd/internal/token"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "blogd",
		Short:         "Blogosphere account and blog service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSweepCommand())
	return cmd
}

func setup() (*config.Config, *slog.Logger, error) {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, logger, nil
}

func openDB(cfg *config.Config) (*sql.DB, error) {
	return repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			db, err := openDB(cfg)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close()
			logger.Info("connected to database")

			usersRepo := repository.NewUsersRepository(db)
			tokensRepo := repository.NewTokensRepository(db)
			postsRepo := repository.NewPostsRepository(db)
			commentsRepo := repository.NewCommentsRepository(db)
			categoriesRepo := repository.NewCategoriesRepository(db)

			codec, err := token.NewCodec(cfg.SecretKey, cfg.EncryptTokens)
			if err != nil {
				return fmt.Errorf("token codec: %w", err)
			}
			store := token.NewStore(codec, tokensRepo, usersRepo)

			accounts := auth.NewAccountService(usersRepo)
			sessions := auth.NewSessions(auth.SessionConfig{
				Secret: []byte(cfg.SecretKey),
				Issuer: cfg.JWTIssuer,
				TTL:    cfg.AccessTokenTTL,
			})
			verification := auth.NewVerificationService(store, usersRepo)
			reset := auth.NewPasswordResetService(store, usersRepo)
			janitor := auth.NewJanitor(tokensRepo, logger)
			sender := notification.NewLogSender(logger)

			router := httpserver.NewRouter(httpserver.RouterConfig{
				Logger:          logger,
				Accounts:        accounts,
				Sessions:        sessions,
				Verification:    verification,
				Reset:           reset,
				Users:           usersRepo,
				Posts:           postsRepo,
				Comments:        commentsRepo,
				Categories:      categoriesRepo,
				Sender:          sender,
				AppBaseURL:      fmt.Sprintf("http://%s:%d", cfg.ServerAddr, cfg.ServerPort),
				RateLimitConfig: cfg.RateLimit,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.JanitorInterval > 0 {
				go janitor.Run(ctx, cfg.JanitorInterval)
				logger.Info("janitor started", "interval", cfg.JanitorInterval)
			}

			server := &http.Server{
				Addr:              fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", "addr", server.Addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			logger.Info("shutting down")
			return server.Shutdown(shutdownCtx)
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			db, err := openDB(cfg)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close()

			if err := repository.Migrate(cmd.Context(), db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}

func newSweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired and consumed tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			db, err := openDB(cfg)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close()

			janitor := auth.NewJanitor(repository.NewTokensRepository(db), logger)
			count, err := janitor.Sweep(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
			fmt.Printf("removed %d spent tokens\n", count)
			return nil
		},
	}
}
