// ABOUTME: Entry point for the studybuddy Telegram assistant
// ABOUTME: Wires config, logging, store, GigaChat gateway, and the Telegram transport

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/studybuddy/studybuddy/internal/bot"
	"github.com/studybuddy/studybuddy/internal/config"
	"github.com/studybuddy/studybuddy/internal/gigachat"
	"github.com/studybuddy/studybuddy/internal/store"
	"github.com/studybuddy/studybuddy/internal/subjects"
	"github.com/studybuddy/studybuddy/internal/telegram"
)

// Version is set at build time.
var version = "dev"

const banner = `
     _             _       _               _     _
 ___| |_ _   _  __| |_   _| |__  _   _  __| | __| |_   _
/ __| __| | | |/ _' | | | | '_ \| | | |/ _' |/ _' | | | |
\__ \ |_| |_| | (_| | |_| | |_) | |_| | (_| | (_| | |_| |
|___/\__|\__,_|\__,_|\__, |_.__/ \__,_|\__,_|\__,_|\__, |
                     |___/                         |___/
`

const starterConfig = `telegram:
  bot_token: "${TELEGRAM_BOT_TOKEN}"

gigachat:
  auth_key: "${GIGACHAT_AUTH_KEY}"
  # scope: "GIGACHAT_API_PERS"
  # model: "GigaChat"
  # max_tokens: 500
  # temperature: 0.7
  # request_timeout: "30s"

database:
  path: "./studybuddy.db"

logging:
  level: "info"
  format: "text"
`

// getConfigPath returns the path to the config file.
// Priority: STUDYBUDDY_CONFIG env var > ./studybuddy.yaml
func getConfigPath() string {
	if envPath := os.Getenv("STUDYBUDDY_CONFIG"); envPath != "" {
		return envPath
	}
	return "studybuddy.yaml"
}

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: studybuddy <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve   Start the bot (default)")
	fmt.Println("  init    Write a starter config file")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  STUDYBUDDY_CONFIG   Config file path (default: ./studybuddy.yaml)")
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	color.New(color.FgHiBlack).Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Components pick up slog.Default, so install the logger first
	slog.SetDefault(setupLogger(cfg.Logging))

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	credentials := gigachat.NewCredentialCache(
		cfg.GigaChat.OAuthURL,
		cfg.GigaChat.AuthKey,
		cfg.GigaChat.Scope,
		cfg.GigaChat.RequestTimeout,
	)
	assistant := gigachat.NewClient(
		cfg.GigaChat.BaseURL,
		cfg.GigaChat.Model,
		cfg.GigaChat.MaxTokens,
		cfg.GigaChat.Temperature,
		credentials,
		cfg.GigaChat.RequestTimeout,
	)

	tg, err := telegram.New(cfg.Telegram.BotToken, cfg.Telegram.PollTimeoutSeconds, cfg.GigaChat.RequestTimeout)
	if err != nil {
		return fmt.Errorf("creating telegram transport: %w", err)
	}

	controller := bot.New(tg, subjects.NewStore(), st, assistant)
	tg.SetHandler(controller)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	green.Print("    ▶ ")
	fmt.Printf("Bot:      @%s\n", tg.Username())
	fmt.Println()

	slog.Info("starting studybuddy",
		"config", configPath,
		"database", cfg.Database.Path,
		"model", cfg.GigaChat.Model,
	)

	return tg.Run(ctx)
}

func runInit() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(starterConfig), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	color.Green("Created %s", configPath)
	fmt.Println("Set TELEGRAM_BOT_TOKEN and GIGACHAT_AUTH_KEY, then run: studybuddy serve")
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
