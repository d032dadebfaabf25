package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/hutch/internal/bridge"
	"github.com/user/hutch/internal/types"
)

const maxTelegramMessage = 4096

// Adapter bridges Telegram to the agent bridge.
type Adapter struct {
	bot         *tgbotapi.BotAPI
	bridge      *bridge.Bridge
	chats       types.ChatStore
	transcripts types.TranscriptStore
}

// New creates a Telegram adapter.
func New(token string, b *bridge.Bridge, chats types.ChatStore, transcripts types.TranscriptStore) (*Adapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Adapter{
		bot:         bot,
		bridge:      b,
		chats:       chats,
		transcripts: transcripts,
	}, nil
}

// Start begins long-polling for Telegram updates.
func (a *Adapter) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := a.bot.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			a.handleMessage(ctx, update.Message)
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			return
		}
	}
}

func (a *Adapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		a.handleCommand(ctx, msg)
		return
	}

	chatID := msg.Chat.ID
	inbound := &types.Inbound{
		Source:  "telegram",
		ChatKey: buildChatKey(msg.From.ID, msg.Chat.ID),
		UserID:  strconv.FormatInt(msg.From.ID, 10),
		Text:    msg.Text,
	}

	err := a.bridge.HandleInbound(ctx, inbound, bridge.WithOnComplete(func(reply string) {
		a.sendReply(chatID, reply)
	}))
	if err != nil {
		log.Printf("handle inbound error: %v", err)
		a.sendReply(chatID, "Sorry, I encountered an error processing your message.")
	}
}

func (a *Adapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		a.sendReply(chatID, "Hello! I'm Hutch, the bridge to your agent. Send me a message to get started.")

	case "new":
		a.sendReply(chatID, "Starting fresh. The agent still remembers its own history; this only resets this chat's log.")

	case "status":
		key := buildChatKey(msg.From.ID, msg.Chat.ID)
		index, err := a.chats.Get(ctx, key)
		if err != nil {
			a.sendReply(chatID, "No chat recorded yet. Send a message first.")
			return
		}
		count, err := a.transcripts.Count(ctx, key)
		if err != nil {
			a.sendReply(chatID, "Error fetching status.")
			return
		}
		a.sendReply(chatID, fmt.Sprintf("Chat: %s\nAgent: %s\nMessages: %d", key, index.AgentID, count))

	default:
		a.sendReply(chatID, "Unknown command. Available: /start, /new, /status")
	}
}

// SendTo delivers a message to the Telegram chat embedded in the chat key.
// Used for scheduled task replies that arrive outside an update handler.
func (a *Adapter) SendTo(key types.ChatKey, message string) error {
	parts := strings.Split(string(key), ":")
	if len(parts) != 3 || parts[0] != "telegram" {
		return fmt.Errorf("not a telegram chat key: %s", key)
	}
	chatID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id in key %s: %w", key, err)
	}
	a.sendReply(chatID, message)
	return nil
}

func (a *Adapter) sendReply(chatID int64, text string) {
	parts := splitMessage(text)
	for _, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = "Markdown"
		if _, err := a.bot.Send(msg); err != nil {
			// Retry without markdown if it fails
			msg.ParseMode = ""
			if _, err := a.bot.Send(msg); err != nil {
				log.Printf("send message error: %v", err)
			}
		}
	}
}

func splitMessage(text string) []string {
	if len(text) <= maxTelegramMessage {
		return []string{text}
	}
	var parts []string
	for len(text) > 0 {
		end := maxTelegramMessage
		if end > len(text) {
			end = len(text)
		}
		parts = append(parts, text[:end])
		text = text[end:]
	}
	return parts
}

func buildChatKey(userID, chatID int64) types.ChatKey {
	return types.NewChatKey("telegram",
		strconv.FormatInt(userID, 10),
		strconv.FormatInt(chatID, 10),
	)
}
