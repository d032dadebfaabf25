package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/hutch/internal/tokens"
	"github.com/user/hutch/pkg/chat"
)

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().Bool("stats", false, "print token estimates after each reply")
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat with the configured agent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		provider, err := newProvider(cfg)
		if err != nil {
			return err
		}

		showStats, _ := cmd.Flags().GetBool("stats")
		var estimator *tokens.Estimator
		if showStats {
			estimator, err = tokens.NewEstimator("")
			if err != nil {
				return fmt.Errorf("create token estimator: %w", err)
			}
		}

		fmt.Printf("Chatting with agent %s. Type /quit to exit.\n\n", provider.AgentID())

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "/quit" || line == "/exit" {
				break
			}

			reply, err := provider.Generate(cmd.Context(), []chat.PromptMessage{chat.UserText(line)})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}

			fmt.Println()
			printMessages(os.Stdout, reply.Messages)
			fmt.Println()

			if showStats {
				fmt.Printf("(server: %d in / %d out, local estimate: %d tokens)\n\n",
					reply.Usage.InputTokens,
					reply.Usage.OutputTokens,
					estimator.CountMessages(reply.Messages),
				)
			}
		}
		return scanner.Err()
	},
}
