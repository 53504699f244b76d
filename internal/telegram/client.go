// Package telegram implements the messaging collaborator over the Telegram
// Bot API: it turns updates into session events and delivers the core's
// outbound notification payloads.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"github.com/invalid8th/bookingbot/internal/notify"
	"github.com/invalid8th/bookingbot/pkg/logging"
)

// Client wraps the Telegram Bot API and implements notify.Notifier.
type Client struct {
	api    *tgbotapi.BotAPI
	logger *logging.Logger
}

// NewClient authorizes against the Bot API.
func NewClient(token string, debug bool, logger *logging.Logger) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: token required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: authorize bot: %w", err)
	}
	api.Debug = debug
	logger.Info("telegram bot authorized", "username", api.Self.UserName)

	// Long polling needs any leftover webhook gone.
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		logger.Warn("could not delete webhook", "error", err)
	}

	return &Client{api: api, logger: logger}, nil
}

// Updates returns the long-poll update channel.
func (c *Client) Updates(timeoutSeconds int) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSeconds
	return c.api.GetUpdatesChan(u)
}

// StopPolling closes the update channel.
func (c *Client) StopPolling() {
	c.api.StopReceivingUpdates()
}

// Send delivers one notification payload. The Bot API has no context
// support; ctx only gates the attempt.
func (c *Client) Send(ctx context.Context, chatID int64, msg notify.Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("telegram: send aborted: %w", err)
	}

	switch {
	case msg.ForwardID != "":
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(msg.ForwardID))
		photo.Caption = msg.Text
		if _, err := c.api.Send(photo); err != nil {
			return fmt.Errorf("telegram: forward artifact: %w", err)
		}
	case len(msg.PNG) > 0:
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "payment-qr.png", Bytes: msg.PNG})
		photo.Caption = msg.Text
		if _, err := c.api.Send(photo); err != nil {
			return fmt.Errorf("telegram: send photo: %w", err)
		}
	case msg.Text != "":
		if _, err := c.api.Send(tgbotapi.NewMessage(chatID, msg.Text)); err != nil {
			return fmt.Errorf("telegram: send message: %w", err)
		}
	}

	if msg.Document != nil {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: msg.Document.Name, Bytes: msg.Document.Data})
		if _, err := c.api.Send(doc); err != nil {
			return fmt.Errorf("telegram: send document: %w", err)
		}
	}
	return nil
}

// SendText is a convenience for plain replies.
func (c *Client) SendText(chatID int64, text string) error {
	_, err := c.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	return nil
}

// SendKeyboard sends text with an inline keyboard.
func (c *Client) SendKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = keyboard
	if _, err := c.api.Send(m); err != nil {
		return fmt.Errorf("telegram: send keyboard: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a callback query so the client stops its
// spinner.
func (c *Client) AnswerCallback(queryID string) {
	if _, err := c.api.Request(tgbotapi.NewCallback(queryID, "")); err != nil {
		c.logger.Warn("answer callback failed", "error", err)
	}
}
