package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/user/hutch/internal/bridge"
	"github.com/user/hutch/internal/delivery"
	"github.com/user/hutch/internal/httpapi"
	"github.com/user/hutch/internal/schedule"
	"github.com/user/hutch/internal/task"
	"github.com/user/hutch/internal/telegram"
	"github.com/user/hutch/internal/transcript"
	"github.com/user/hutch/internal/types"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the hutch daemon",
	RunE:  runServe,
}

func writePIDFile(dataDir string) (string, error) {
	pidPath := filepath.Join(dataDir, "hutch.pid")
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return pidPath, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// Write PID file
	pidPath, err := writePIDFile(cfg.DataDir)
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	// Stores
	chats := transcript.NewChatStore(cfg.DataDir)
	transcripts := transcript.NewStore(cfg.DataDir)
	taskStore := task.NewStore(filepath.Join(cfg.DataDir, "tasks.json"))

	// Agent provider
	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}

	// Bridge
	b := bridge.New(provider, cfg.Warren.AgentID, chats, transcripts, int64(cfg.MaxConcurrent))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b.Start(ctx)
	defer b.Stop()

	slog.Info("hutch started",
		"data_dir", cfg.DataDir,
		"log_level", cfg.LogLevel,
		"max_concurrent", cfg.MaxConcurrent,
		"warren_base_url", cfg.Warren.BaseURL,
		"agent_id", cfg.Warren.AgentID,
		"pid_file", pidPath,
	)

	// Delivery registry
	deliveryReg := delivery.NewRegistry()

	// Telegram adapter
	if cfg.Telegram.Token != "" {
		adapter, err := telegram.New(cfg.Telegram.Token, b, chats, transcripts)
		if err != nil {
			return fmt.Errorf("create telegram adapter: %w", err)
		}
		go adapter.Start(ctx)
		slog.Info("telegram adapter started")

		// Register telegram delivery for scheduled task replies
		deliveryReg.Register("telegram:", adapter.SendTo)
	} else {
		slog.Warn("telegram adapter disabled (no token)")
	}

	// Helper: synchronously process a prompt through the bridge and return
	// the rendered reply.
	process := func(ctx context.Context, key types.ChatKey, text string) (string, error) {
		done := make(chan string, 1)
		inbound := &types.Inbound{
			Source:  "task",
			ChatKey: key,
			UserID:  "system",
			Text:    text,
		}
		if err := b.HandleInbound(ctx, inbound, bridge.WithOnComplete(func(reply string) {
			done <- reply
		})); err != nil {
			return "", err
		}
		select {
		case reply := <-done:
			return reply, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	// Scheduler
	sched := schedule.New(taskStore, func(key types.ChatKey, prompt string) {
		reply, err := process(ctx, key, prompt)
		if err != nil {
			slog.Error("scheduled task failed", "chat_key", string(key), "error", err)
			return
		}
		if reply == "" {
			return // agent decided not to respond
		}
		if err := deliveryReg.Deliver(key, reply); err != nil {
			slog.Error("scheduled delivery failed", "chat_key", string(key), "error", err)
		}
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()
	slog.Info("scheduler started", "entries", sched.Entries())

	// Reload the scheduler when the tasks file changes on disk
	go func() {
		if err := sched.Watch(ctx, taskStore.Path()); err != nil && ctx.Err() == nil {
			slog.Error("tasks file watch failed", "error", err)
		}
	}()

	// Local HTTP API
	if cfg.HTTP.Enabled {
		apiSrv := httpapi.NewServer(process, taskStore, chats, transcripts, "http:local:default")
		httpServer := &http.Server{
			Addr:    cfg.HTTP.Listen,
			Handler: apiSrv,
		}
		go func() {
			slog.Info("http api started", "listen", cfg.HTTP.Listen)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("http api error", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			httpServer.Close()
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigChan
		if sig == syscall.SIGHUP {
			slog.Info("received SIGHUP, restarting")
			execPath, err := os.Executable()
			if err != nil {
				slog.Error("failed to get executable path", "error", err)
				continue
			}
			// Clean up PID file before re-exec
			os.Remove(pidPath)
			if err := syscall.Exec(execPath, os.Args, os.Environ()); err != nil {
				slog.Error("failed to re-exec", "error", err)
				// Re-write PID file since we failed to re-exec
				if _, writeErr := writePIDFile(cfg.DataDir); writeErr != nil {
					slog.Error("failed to re-write PID file", "error", writeErr)
				}
				continue
			}
		}
		// SIGINT or SIGTERM
		slog.Info("shutting down", "signal", sig)
		return nil
	}
}
