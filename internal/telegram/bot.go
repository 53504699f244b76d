package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"github.com/invalid8th/bookingbot/internal/booking"
	"github.com/invalid8th/bookingbot/internal/dialog"
	"github.com/invalid8th/bookingbot/internal/export"
	"github.com/invalid8th/bookingbot/internal/lifecycle"
	"github.com/invalid8th/bookingbot/internal/notify"
	"github.com/invalid8th/bookingbot/pkg/logging"
)

// chatQueueSize bounds each chat's pending updates. A long-poll batch for
// one chat is at most a handful of messages.
const chatQueueSize = 32

// Bot routes Telegram updates into the dialog and lifecycle managers.
// Updates for one chat go through that chat's queue and are applied in
// arrival order by a dedicated worker; different chats are handled
// concurrently.
type Bot struct {
	client     *Client
	dialogs    *dialog.Manager
	lifecycle  *lifecycle.Manager
	store      *booking.Store
	operatorID int64
	logger     *logging.Logger

	// process is what a chat worker applies to each dequeued update.
	process func(ctx context.Context, update tgbotapi.Update)

	mu     sync.Mutex
	queues map[int64]chan tgbotapi.Update
	wg     sync.WaitGroup
}

// NewBot wires the transport to the core.
func NewBot(client *Client, dialogs *dialog.Manager, lm *lifecycle.Manager, store *booking.Store, operatorID int64, logger *logging.Logger) *Bot {
	if logger == nil {
		logger = logging.Default()
	}
	b := &Bot{
		client:     client,
		dialogs:    dialogs,
		lifecycle:  lm,
		store:      store,
		operatorID: operatorID,
		logger:     logger,
		queues:     make(map[int64]chan tgbotapi.Update),
	}
	b.process = b.handleUpdate
	return b
}

// Run consumes the long-poll update channel until ctx is cancelled,
// returning once every queued update has been applied. Routing happens on
// this goroutine, so each chat's queue receives its updates in channel
// order.
func (b *Bot) Run(ctx context.Context) {
	updates := b.client.Updates(60)
	b.logger.Info("bot ready, polling for updates")

	for {
		select {
		case <-ctx.Done():
			b.client.StopPolling()
			b.drain()
			return
		case update, ok := <-updates:
			if !ok {
				b.drain()
				return
			}
			b.route(ctx, update)
		}
	}
}

func (b *Bot) route(ctx context.Context, update tgbotapi.Update) {
	chatID, ok := routeKey(update)
	if !ok {
		// Callbacks on old or inaccessible messages carry no chat;
		// acknowledge so the client stops its spinner and drop.
		if update.CallbackQuery != nil {
			b.client.AnswerCallback(update.CallbackQuery.ID)
		}
		return
	}
	b.enqueue(ctx, chatID, update)
}

// routeKey extracts the chat an update belongs to.
func routeKey(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	}
	return 0, false
}

// enqueue appends the update to the chat's queue, starting the chat's
// worker on first use.
func (b *Bot) enqueue(ctx context.Context, chatID int64, update tgbotapi.Update) {
	b.mu.Lock()
	q, ok := b.queues[chatID]
	if !ok {
		q = make(chan tgbotapi.Update, chatQueueSize)
		b.queues[chatID] = q
		b.wg.Add(1)
		go b.work(ctx, q)
	}
	b.mu.Unlock()
	q <- update
}

func (b *Bot) work(ctx context.Context, q chan tgbotapi.Update) {
	defer b.wg.Done()
	for update := range q {
		b.process(ctx, update)
	}
}

// drain closes every chat queue and waits for the workers to finish their
// backlog.
func (b *Bot) drain() {
	b.mu.Lock()
	for _, q := range b.queues {
		close(q)
	}
	b.queues = make(map[int64]chan tgbotapi.Update)
	b.mu.Unlock()
	b.wg.Wait()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, chatID, msg.Photo[len(msg.Photo)-1].FileID)
		return
	}

	if b.dialogs.Active(chatID) {
		b.advanceDialog(ctx, chatID, dialog.Input{Text: msg.Text})
		return
	}

	b.reply(chatID, "Send /book to start a booking, or /help for the full list of commands.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		// /start works as the universal escape hatch: any in-progress
		// dialog is abandoned, exactly like a restart.
		b.dialogs.Abandon(chatID)
		b.sendMainMenu(chatID)
	case "help":
		b.reply(chatID, helpText)
	case "book":
		b.startDialog(chatID)
	case "cancel":
		if b.dialogs.Abandon(chatID) {
			b.reply(chatID, "Booking abandoned. Send /book to start again.")
		} else {
			b.reply(chatID, "Nothing to cancel.")
		}
	case "membership":
		b.reply(chatID, membershipText)
	case "faqs":
		b.reply(chatID, faqsText)
	case "fee":
		b.handleFeeCommand(ctx, msg)
	case "paid":
		b.handlePaidCommand(ctx, msg)
	case "export":
		b.handleExportCommand(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Send /help.")
	}
}

func (b *Bot) sendMainMenu(chatID int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📸 Book a Shoot", "menu:book"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👑 Membership", "menu:membership"),
			tgbotapi.NewInlineKeyboardButtonData("ℹ️ FAQs", "menu:faqs"),
		),
	)
	if err := b.client.SendKeyboard(chatID, welcomeText, keyboard); err != nil {
		b.logger.Warn("send main menu failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) startDialog(chatID int64) {
	reply, _ := b.dialogs.Start(chatID)
	b.reply(chatID, reply.Prompt)
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	b.client.AnswerCallback(query.ID)

	switch {
	case query.Data == "menu:book":
		b.startDialog(chatID)
	case query.Data == "menu:membership":
		b.reply(chatID, membershipText)
	case query.Data == "menu:faqs":
		b.reply(chatID, faqsText)
	case strings.HasPrefix(query.Data, "pkg:"):
		b.advanceDialog(ctx, chatID, dialog.Input{Selection: strings.TrimPrefix(query.Data, "pkg:")})
	default:
		b.reply(chatID, "Unknown action. Send /start for the menu.")
	}
}

// advanceDialog feeds one event to the state machine and renders its reply.
func (b *Bot) advanceDialog(ctx context.Context, chatID int64, input dialog.Input) {
	reply, err := b.dialogs.Handle(chatID, input)
	if err != nil {
		var verr *dialog.ValidationError
		switch {
		case errors.As(err, &verr):
			// fall through: the reply carries the re-prompt
		case errors.Is(err, dialog.ErrNoDialog):
			b.reply(chatID, "No booking in progress. Send /book to start.")
			return
		default:
			b.logger.Error("dialog step failed", "chat_id", chatID, "error", err)
			b.reply(chatID, "Something went wrong. Send /book to start again.")
			return
		}
	}

	if reply.Completed != nil {
		b.announceCompletion(ctx, reply.Completed)
		return
	}
	if reply.AskCategory {
		b.sendCategoryChoices(chatID, reply.Prompt)
		return
	}
	b.reply(chatID, reply.Prompt)
}

func (b *Bot) sendCategoryChoices(chatID int64, prompt string) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Lifestyle", "pkg:lifestyle"),
			tgbotapi.NewInlineKeyboardButtonData("Football/Matchday", "pkg:matchday"),
		),
	)
	if err := b.client.SendKeyboard(chatID, prompt, keyboard); err != nil {
		b.logger.Warn("send category keyboard failed", "chat_id", chatID, "error", err)
	}
}

// announceCompletion surfaces a committed draft to both parties, including
// the advisory conflict warning.
func (b *Bot) announceCompletion(ctx context.Context, done *dialog.Completion) {
	warning := conflictWarning(done.Conflict)

	text := requesterSummary(done.Booking)
	if warning != "" {
		text += "\n\n" + warning
	}
	b.deliver(ctx, done.Booking.ChatID, notify.Message{Text: text})

	opText := operatorSummary(done.Booking)
	if warning != "" {
		opText = warning + "\n\n" + opText
	}
	b.deliver(ctx, b.operatorID, notify.Message{Text: opText})
}

func (b *Bot) handlePhoto(ctx context.Context, chatID int64, fileID string) {
	_, err := b.lifecycle.RecordPaymentProof(ctx, chatID, chatID, fileID)
	switch {
	case err == nil:
		b.reply(chatID, "Payment proof received. We'll confirm shortly.")
	case errors.Is(err, lifecycle.ErrNoMatchingAwaitingPayment):
		b.reply(chatID, "Thanks, but there's no booking awaiting payment for you right now.")
	default:
		b.logger.Error("record payment proof failed", "chat_id", chatID, "error", err)
	}
}

// handleFeeCommand handles the operator's "/fee <chatID> <amount>".
func (b *Bot) handleFeeCommand(ctx context.Context, msg *tgbotapi.Message) {
	actor := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		b.reply(actor, "Usage: /fee <chat id> <amount>")
		return
	}
	target, err1 := strconv.ParseInt(args[0], 10, 64)
	amount, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		b.reply(actor, "Usage: /fee <chat id> <amount>")
		return
	}

	updated, err := b.lifecycle.SetTravelFee(ctx, actor, target, amount)
	if err != nil {
		b.reply(actor, lifecycleErrorText(err))
		return
	}
	total, _ := updated.Total()
	b.reply(actor, fmt.Sprintf("Travel fee £%d set for %s. Total £%d. Awaiting payment.", amount, updated.Name, total))
}

// handlePaidCommand handles the operator's "/paid <chatID>".
func (b *Bot) handlePaidCommand(ctx context.Context, msg *tgbotapi.Message) {
	actor := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 1 {
		b.reply(actor, "Usage: /paid <chat id>")
		return
	}
	target, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(actor, "Usage: /paid <chat id>")
		return
	}

	confirmed, err := b.lifecycle.ConfirmPayment(ctx, actor, target)
	if err != nil {
		b.reply(actor, lifecycleErrorText(err))
		return
	}
	b.reply(actor, fmt.Sprintf("Booking for %s confirmed and recorded.", confirmed.Name))
}

// handleExportCommand sends the operator a spreadsheet of finalized
// bookings.
func (b *Bot) handleExportCommand(ctx context.Context, actor int64) {
	if actor != b.operatorID {
		b.reply(actor, "You're not allowed to do that.")
		return
	}

	finalized := b.store.Finalized()
	if len(finalized) == 0 {
		b.reply(actor, "No finalized bookings yet.")
		return
	}
	data, err := export.Spreadsheet(finalized)
	if err != nil {
		b.logger.Error("spreadsheet export failed", "error", err)
		b.reply(actor, "Export failed, check the logs.")
		return
	}
	b.deliver(ctx, actor, notify.Message{
		Text:     fmt.Sprintf("%d finalized bookings.", len(finalized)),
		Document: &notify.Document{Name: export.SpreadsheetName(time.Now()), Data: data},
	})
}

func lifecycleErrorText(err error) string {
	switch {
	case errors.Is(err, lifecycle.ErrUnauthorized):
		return "You're not allowed to do that."
	case errors.Is(err, booking.ErrNoActiveBooking):
		return "No active booking for that chat."
	case errors.Is(err, lifecycle.ErrInvalidAmount):
		return "The fee must be a non-negative whole number."
	case errors.Is(err, lifecycle.ErrFeeNotSet):
		return "Set the travel fee first with /fee."
	case errors.Is(err, lifecycle.ErrNoMatchingAwaitingPayment):
		return "That chat has no booking awaiting payment."
	}
	return "Command failed: " + err.Error()
}

func (b *Bot) reply(chatID int64, text string) {
	if err := b.client.SendText(chatID, text); err != nil {
		b.logger.Warn("reply failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) deliver(ctx context.Context, chatID int64, msg notify.Message) {
	if err := b.client.Send(ctx, chatID, msg); err != nil {
		b.logger.Warn("delivery failed", "chat_id", chatID, "error", err)
	}
}
