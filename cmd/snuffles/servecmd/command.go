// Package servecmd runs the HTTP listener for the Slack Events API plus the
// daily briefing scheduler.
package servecmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quailyquaily/snuffles/internal/briefing"
	"github.com/quailyquaily/snuffles/internal/router"
	"github.com/quailyquaily/snuffles/internal/setup"
	"github.com/quailyquaily/snuffles/internal/signature"
	"github.com/quailyquaily/snuffles/internal/slackapi"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Slack events webhook server",
		RunE:  runServe,
	}
	cmd.Flags().String("listen", "", "listen address (default from config)")
	_ = viper.BindPFlag("listen", cmd.Flags().Lookup("listen"))
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := slog.Default()

	// A running instance that cannot verify requests or reply is useless
	// and dangerous to operate, so both secrets are required up front.
	signingSecret := strings.TrimSpace(viper.GetString("slack.signing_secret"))
	if signingSecret == "" {
		return fmt.Errorf("missing slack.signing_secret (set SLACK_SIGNING_SECRET)")
	}
	botToken := strings.TrimSpace(viper.GetString("slack.bot_token"))
	if botToken == "" {
		return fmt.Errorf("missing slack.bot_token (set SLACK_BOT_TOKEN)")
	}

	components, err := setup.Build(logger)
	if err != nil {
		return err
	}

	slackClient := slackapi.New(&http.Client{Timeout: 30 * time.Second}, slackapi.DefaultBaseURL, botToken)
	authCtx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	auth, err := slackClient.AuthTest(authCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("slack auth.test: %w", err)
	}
	logger.Info("slack_authenticated", "team", auth.Team, "bot_user_id", auth.UserID)

	rt := router.New(router.Options{
		Poster:   slackClient,
		Timezone: components.Timezone,
		Calendar: components.Calendar,
		Briefing: components.Generator,
		Logger:   logger,
	})

	if channel := strings.TrimSpace(viper.GetString("briefing.channel")); channel != "" {
		sched, err := briefing.NewScheduler(
			components.Timezone.Location(),
			viper.GetString("briefing.cron"),
			channel,
			components.Generator,
			slackClient,
			logger,
		)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	} else {
		logger.Info("briefing_scheduler_disabled", "reason", "briefing.channel is empty")
	}

	verifier := signature.NewVerifier(signingSecret)
	srv := &http.Server{
		Addr:              viper.GetString("listen"),
		Handler:           newServer(logger, verifier, rt).routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-cmd.Context().Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server_shutdown_error", "error", err.Error())
		}
		return nil
	}
}
