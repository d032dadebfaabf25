package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/hutch/internal/tokens"
	"github.com/user/hutch/pkg/chat/warren"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 50, "maximum number of events to fetch")
	historyCmd.Flags().String("kinds", "", "comma-separated event kinds to include (overrides config)")
	historyCmd.Flags().Bool("stats", false, "print token estimates")
	historyCmd.Flags().Bool("json", false, "print raw UI messages as JSON")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Fetch and render the agent's conversation history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		var extra []warren.ProviderOption
		if csv, _ := cmd.Flags().GetString("kinds"); csv != "" {
			kinds, err := parseKinds(strings.Split(csv, ","))
			if err != nil {
				return err
			}
			extra = append(extra, warren.WithEventKinds(kinds...))
		}

		provider, err := newProvider(cfg, extra...)
		if err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		messages, err := provider.History(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("fetch history: %w", err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printMessagesJSON(os.Stdout, messages)
		}

		if len(messages) == 0 {
			fmt.Println("No history.")
			return nil
		}
		printMessages(os.Stdout, messages)

		if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
			estimator, err := tokens.NewEstimator("")
			if err != nil {
				return fmt.Errorf("create token estimator: %w", err)
			}
			fmt.Printf("\n%d messages, ~%d tokens\n", len(messages), estimator.CountMessages(messages))
		}
		return nil
	},
}
