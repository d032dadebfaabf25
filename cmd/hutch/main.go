package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/hutch/internal/config"
	"github.com/user/hutch/pkg/chat/warren"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "hutch",
	Short: "Chat with a Warren agent from the terminal, Telegram, or cron",
	Long: `Hutch converts between the Warren agent platform's event stream and
plain chat messages. It ships a CLI for one-shot prompts and history,
and a daemon bridging Telegram chats and scheduled tasks to an agent.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath,
		"config",
		filepath.Join(os.Getenv("HOME"), ".hutch", "config.json"),
		"config file path")
}

// loadConfig loads the config file, exiting on failure. Commands call this
// instead of handling config errors individually.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newClient builds a Warren client from the config.
func newClient(cfg *config.Config) *warren.Client {
	policy := warren.DefaultRetryPolicy()
	if cfg.Warren.MaxRetries > 0 {
		policy.MaxAttempts = cfg.Warren.MaxRetries
	}
	return warren.NewClient(
		warren.WithBaseURL(cfg.Warren.BaseURL),
		warren.WithAPIKey(cfg.Warren.APIKey),
		warren.WithTimeout(time.Duration(cfg.Warren.TimeoutSeconds)*time.Second),
		warren.WithRetry(policy),
	)
}

// newProvider builds the provider addressed to the configured agent, with the
// configured event kind allow-list applied.
func newProvider(cfg *config.Config, extra ...warren.ProviderOption) (*warren.Provider, error) {
	if cfg.Warren.AgentID == "" {
		return nil, fmt.Errorf("no agent configured (set warren.agent_id or %s)", config.EnvWarrenAgentID)
	}
	kinds, err := parseKinds(cfg.Warren.Kinds)
	if err != nil {
		return nil, err
	}
	opts := []warren.ProviderOption{
		warren.WithClient(newClient(cfg)),
		warren.WithAgent(cfg.Warren.AgentID),
	}
	if len(kinds) > 0 {
		opts = append(opts, warren.WithEventKinds(kinds...))
	}
	opts = append(opts, extra...)
	return warren.New(opts...), nil
}

func parseKinds(names []string) ([]warren.EventKind, error) {
	kinds := make([]warren.EventKind, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		kind, err := warren.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
