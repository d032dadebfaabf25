package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/hutch/internal/webfetch"
	"github.com/user/hutch/pkg/chat"
)

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().String("url", "", "fetch the URL and append its content as markdown")
	sendCmd.Flags().String("system", "", "system message to prepend")
	sendCmd.Flags().Bool("json", false, "print raw UI messages as JSON")
}

var sendCmd = &cobra.Command{
	Use:   "send <text>",
	Short: "Send a one-shot prompt to the configured agent",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		provider, err := newProvider(cfg)
		if err != nil {
			return err
		}

		text := strings.Join(args, " ")

		if url, _ := cmd.Flags().GetString("url"); url != "" {
			page, err := webfetch.New().Markdown(cmd.Context(), url)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", url, err)
			}
			text = fmt.Sprintf("%s\n\nContent of %s:\n\n%s", text, url, page)
		}

		var prompt []chat.PromptMessage
		if system, _ := cmd.Flags().GetString("system"); system != "" {
			prompt = append(prompt, chat.SystemText(system))
		}
		prompt = append(prompt, chat.UserText(text))

		reply, err := provider.Generate(cmd.Context(), prompt)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printMessagesJSON(os.Stdout, reply.Messages)
		}
		printMessages(os.Stdout, reply.Messages)
		return nil
	},
}
