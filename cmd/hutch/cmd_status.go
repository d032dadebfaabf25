package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity to the Warren server and the configured agent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		client := newClient(cfg)
		ctx := cmd.Context()

		if err := client.Health(ctx); err != nil {
			return fmt.Errorf("server %s unreachable: %w", cfg.Warren.BaseURL, err)
		}
		fmt.Printf("Server %s: ok\n", cfg.Warren.BaseURL)

		if cfg.Warren.AgentID == "" {
			fmt.Println("No agent configured.")
			return nil
		}

		agent, err := client.GetAgent(ctx, cfg.Warren.AgentID)
		if err != nil {
			return fmt.Errorf("fetch agent %s: %w", cfg.Warren.AgentID, err)
		}

		fmt.Printf("Agent %s (%s), model %s\n", agent.Name, agent.ID, agent.Model)

		if len(agent.Tools) == 0 {
			fmt.Println("No tools attached.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TOOL")
		for _, name := range agent.Tools {
			fmt.Fprintf(w, "%s\n", name)
		}
		return w.Flush()
	},
}
