// Package briefingcmd generates one daily briefing and either prints it or
// posts it to Slack. Useful for checking feeds and formatting without
// waiting for the scheduler.
package briefingcmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quailyquaily/snuffles/internal/setup"
	"github.com/quailyquaily/snuffles/internal/slackapi"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "briefing",
		Short: "Generate the daily briefing once",
		RunE:  runBriefing,
	}
	cmd.Flags().String("channel", "", "Slack channel ID to post to (default from briefing.channel)")
	cmd.Flags().Bool("stdout", false, "print the briefing instead of posting it")
	return cmd
}

func runBriefing(cmd *cobra.Command, _ []string) error {
	logger := slog.Default()

	components, err := setup.Build(logger)
	if err != nil {
		return err
	}

	text := components.Generator.Generate(cmd.Context())

	toStdout, _ := cmd.Flags().GetBool("stdout")
	if toStdout {
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}

	channel, _ := cmd.Flags().GetString("channel")
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = strings.TrimSpace(viper.GetString("briefing.channel"))
	}
	if channel == "" {
		return fmt.Errorf("missing briefing channel (use --channel or set briefing.channel)")
	}
	botToken := strings.TrimSpace(viper.GetString("slack.bot_token"))
	if botToken == "" {
		return fmt.Errorf("missing slack.bot_token (set SLACK_BOT_TOKEN)")
	}

	client := slackapi.New(&http.Client{Timeout: 30 * time.Second}, slackapi.DefaultBaseURL, botToken)
	if err := client.PostMessage(cmd.Context(), channel, text); err != nil {
		return fmt.Errorf("post briefing: %w", err)
	}
	logger.Info("briefing_posted", "channel_id", channel)
	return nil
}
