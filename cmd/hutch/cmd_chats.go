package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/user/hutch/internal/transcript"
	"github.com/user/hutch/internal/types"
)

func init() {
	rootCmd.AddCommand(chatsCmd)
	chatsCmd.AddCommand(chatsListCmd, chatsClearCmd)
}

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "Manage known chats and their transcripts",
}

var chatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all known chats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		chats := transcript.NewChatStore(cfg.DataDir)
		transcripts := transcript.NewStore(cfg.DataDir)

		ctx := context.Background()
		list, err := chats.List(ctx)
		if err != nil {
			return fmt.Errorf("list chats: %w", err)
		}

		if len(list) == 0 {
			fmt.Println("No chats found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CHAT KEY\tSTATUS\tMESSAGES\tCREATED")
		for _, c := range list {
			count, err := transcripts.Count(ctx, c.ChatKey)
			if err != nil {
				count = 0
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
				c.ChatKey,
				c.Status,
				count,
				c.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		return w.Flush()
	},
}

var chatsClearCmd = &cobra.Command{
	Use:   "clear <key|all>",
	Short: "Clear a chat's transcript or all chats",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		if args[0] == "all" {
			if err := os.RemoveAll(filepath.Join(cfg.DataDir, "chats")); err != nil {
				return fmt.Errorf("remove chats directory: %w", err)
			}
			fmt.Println("All chats cleared.")
			return nil
		}

		chats := transcript.NewChatStore(cfg.DataDir)
		if err := chats.Delete(context.Background(), types.ChatKey(args[0])); err != nil {
			return fmt.Errorf("clear chat: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Chat %s cleared.\n", args[0])
		return nil
	},
}
