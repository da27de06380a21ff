package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"helpdesk/internal/auth"
	"helpdesk/internal/helpdesk"
	"helpdesk/internal/seed"
	"helpdesk/internal/server"
)

var seedOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := stdoutLogger()
		if err != nil {
			return err
		}
		logger.Info("helpdesk starting", "version", version)

		sessions, err := auth.NewSessions(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			return errors.New("auth.jwt_secret must be set (HELPDESK_AUTH_JWT_SECRET)")
		}

		store, err := openStore(logger)
		if err != nil {
			return err
		}
		defer store.Close()

		hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if seedOnStart {
			doc, err := seed.Default()
			if err != nil {
				return err
			}
			if _, err := seed.Run(ctx, store, hasher, doc, configuredAdmin(), logger); err != nil {
				return err
			}
		}

		svc := helpdesk.New(store, hasher, helpdesk.Options{
			DefaultStatus:     cfg.Ticket.DefaultStatus,
			DefaultPriority:   cfg.Ticket.DefaultPriority,
			CompletedStatus:   cfg.Ticket.CompletedStatus,
			HighPriority:      cfg.Ticket.HighPriority,
			PasswordMinLength: cfg.Auth.PasswordMinLength,
		}, logger)

		srv := server.New(svc, sessions, logger, server.Options{
			StaticDir:    cfg.Server.StaticDir,
			CookieName:   cfg.Auth.CookieName,
			CookieSecure: cfg.Auth.CookieSecure,
		})

		httpServer := &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      srv.Engine(),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting server", slog.String("addr", httpServer.Addr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
				return err
			}
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown server", slog.String("error", err.Error()))
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&seedOnStart, "seed", false, "insert missing reference data before serving")
}
