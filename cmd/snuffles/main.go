package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quailyquaily/snuffles/cmd/snuffles/briefingcmd"
	"github.com/quailyquaily/snuffles/cmd/snuffles/servecmd"
)

func main() {
	root := &cobra.Command{
		Use:           "snuffles",
		Short:         "Slack assistant for greetings, time, calendar and daily briefings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cmd); err != nil {
				return err
			}
			initLogger()
			return nil
		},
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(servecmd.NewCommand())
	root.AddCommand(briefingcmd.NewCommand())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command) error {
	// Missing .env is fine; the file is a local convenience, not a
	// requirement.
	_ = godotenv.Load()

	viper.SetDefault("listen", ":8080")
	viper.SetDefault("timezone", "America/Chicago")
	viper.SetDefault("weather.latitude", 42.0451)
	viper.SetDefault("weather.longitude", -87.6877)
	viper.SetDefault("weather.location_name", "Evanston")
	viper.SetDefault("news.feeds", []string{"http://feeds.bbci.co.uk/news/rss.xml"})
	viper.SetDefault("briefing.cron", "30 7 * * *")
	viper.SetDefault("openai.model", "gpt-4o-mini")

	viper.SetEnvPrefix("SNUFFLES")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("slack.signing_secret", "SLACK_SIGNING_SECRET")
	_ = viper.BindEnv("slack.bot_token", "SLACK_BOT_TOKEN")
	_ = viper.BindEnv("openai.api_key", "OPENAI_API_KEY")

	if path, _ := cmd.Flags().GetString("config"); strings.TrimSpace(path) != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	viper.SetConfigName("snuffles")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func initLogger() {
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(viper.GetString("log-level"))) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
