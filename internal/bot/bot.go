package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/wikichat/internal/chatbot"
	"github.com/xaenox/wikichat/internal/classifier"
	"github.com/xaenox/wikichat/internal/webloader"
	"go.uber.org/zap"
)

const historyLimit = 5

type Bot struct {
	api     *tgbotapi.BotAPI
	service *chatbot.Service
	logger  *zap.Logger
}

func New(token string, service *chatbot.Service, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:     api,
		service: service,
		logger:  logger,
	}, nil
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("Telegram bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	content := message.Text
	if message.Caption != "" {
		content = message.Caption
	}
	if strings.TrimSpace(content) == "" {
		return
	}

	reply, err := b.service.Reply(ctx, message.From.ID, content)
	switch {
	case err == nil:
		b.sendReply(message.Chat.ID, message.MessageID, reply.Text)
	case errors.Is(err, classifier.ErrModelNotTrained):
		b.logger.Error("Model not trained", zap.Error(err))
		b.sendErrorMessage(message.Chat.ID, "I'm not ready yet. The intent model has not been trained.")
	case errors.Is(err, chatbot.ErrUnknownTag):
		b.logger.Warn("No response for intent", zap.Error(err), zap.String("intent", reply.Intent))
		b.sendReply(message.Chat.ID, message.MessageID, chatbot.FallbackResponse)
	default:
		b.logger.Error("Failed to reply",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, something went wrong. Please try again.")
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "index":
		b.handleIndex(ctx, message)
	case "history":
		b.handleHistory(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to WikiChat! 📚
I can chat a little and answer questions about a Wikipedia page.

Use /index to load a page first, then ask me anything about it.
Use /help to see all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/index [url] - Load a Wikipedia page (Artificial intelligence by default)
/history - Show your last messages`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleIndex(ctx context.Context, message *tgbotapi.Message) {
	url := strings.TrimSpace(message.CommandArguments())
	if url == "" {
		url = webloader.DefaultURL
	}

	b.sendMessage(message.Chat.ID, "Indexing "+url+" ...")
	if _, err := b.service.Index(ctx, url); err != nil {
		b.logger.Error("Failed to index page",
			zap.Error(err),
			zap.String("url", url))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't index that page.")
		return
	}
	b.sendMessage(message.Chat.ID, "Database has been created successfully!")
}

func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	messages, err := b.service.History(ctx, message.From.ID, historyLimit)
	if err != nil {
		b.logger.Error("Failed to get user messages",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't retrieve your message history.")
		return
	}

	if len(messages) == 0 {
		b.sendMessage(message.Chat.ID, "You don't have any messages yet.")
		return
	}

	response := "*Your recent messages:*\n\n"
	for _, msg := range messages {
		response += fmt.Sprintf("*%s*\n", escapeMarkdown("#"+msg.Intent))
		response += fmt.Sprintf("_%s_\n", escapeMarkdown(msg.Content))
		response += escapeMarkdown(msg.Reply) + "\n\n"
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, response)
	msg.ParseMode = "MarkdownV2"
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send history message",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

// escapeMarkdown escapes the characters MarkdownV2 treats as markup.
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendReply(chatID int64, replyToID int, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyToID
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send reply",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
