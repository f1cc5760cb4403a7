package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/ui"
)

type UpdateHandler func(context.Context, tgbotapi.Update)

// Client wraps the long-poll transport. With an empty token it runs in dry
// mode: updates never arrive and sends are dropped, which keeps local
// development possible without bot credentials.
type Client struct {
	api         *tgbotapi.BotAPI
	logger      *zap.Logger
	handler     UpdateHandler
	pollTimeout int
	dryRun      bool
}

func NewClient(token string, pollTimeout int, logger *zap.Logger, handler UpdateHandler) (*Client, error) {
	if handler == nil {
		return nil, errors.New("telegram update handler is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if strings.TrimSpace(token) == "" {
		return &Client{
			logger:      logger,
			handler:     handler,
			pollTimeout: pollTimeout,
			dryRun:      true,
		}, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:         api,
		logger:      logger,
		handler:     handler,
		pollTimeout: pollTimeout,
	}, nil
}

func (c *Client) Start(ctx context.Context) error {
	if c.dryRun {
		c.logger.Warn("bot token is empty, running in dry mode")
		<-ctx.Done()
		return nil
	}

	timeout := c.pollTimeout
	if timeout <= 0 {
		timeout = 30
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = timeout
	updates := c.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			c.handler(ctx, update)
		}
	}
}

// Deliver sends one engine outbound to a chat: photos first, then the text
// split into transport-sized chunks with the keyboard attached to the last
// chunk.
func (c *Client) Deliver(ctx context.Context, chatID int64, out ui.Outbound) error {
	if c.dryRun {
		return nil
	}

	for _, photoURL := range out.PhotoURLs {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(photoURL))
		if _, err := c.api.Send(photo); err != nil {
			c.logger.Warn("send photo failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}

	chunks := ui.SplitMessage(out.Text, ui.MaxMessageSize)
	for i, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if i == len(chunks)-1 && out.Keyboard != nil {
			msg.ReplyMarkup = replyKeyboard(out.Keyboard)
		}
		if _, err := c.api.Send(msg); err != nil {
			return err
		}
	}
	return nil
}
