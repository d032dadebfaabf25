package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/hutch/internal/config"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("Hutch Setup Wizard")
		fmt.Println("Press Enter to accept the default value shown in brackets.")
		fmt.Println()

		// 1. Warren server base URL
		cfg.Warren.BaseURL = prompt(scanner, "Warren base URL", cfg.Warren.BaseURL)

		// 2. Warren API key
		cfg.Warren.APIKey = prompt(scanner, "Warren API key", cfg.Warren.APIKey)

		// 3. Agent ID
		cfg.Warren.AgentID = prompt(scanner, "Agent ID", cfg.Warren.AgentID)

		// 4. Request timeout
		timeoutStr := prompt(scanner, "Request timeout (seconds)", strconv.Itoa(cfg.Warren.TimeoutSeconds))
		if n, err := strconv.Atoi(timeoutStr); err == nil {
			cfg.Warren.TimeoutSeconds = n
		}

		// 5. Telegram bot token (optional)
		cfg.Telegram.Token = prompt(scanner, "Telegram bot token (optional)", cfg.Telegram.Token)

		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Println()
		fmt.Println("Configuration saved to", cfgPath)
		return nil
	},
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(scanner *bufio.Scanner, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}
