package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/content"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/external/market"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/interface/telegram/middleware"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// UTILITY HANDLER
// Market prices, scripted content, in-process lists and one-shot
// reminders. None of this state survives a restart except progress
// already owned by the application layer.
// ══════════════════════════════════════════════════════════════════════════════

// maxReminderMinutes bounds how far ahead a reminder can be scheduled.
const maxReminderMinutes = 24 * 60

// UtilityHandler handles market, content and list commands.
type UtilityHandler struct {
	market    *market.Client
	library   *content.Library
	sessions  *SessionState
	usage     *middleware.UsageTracker
	stats     *presenter.StatsPresenter
	logger    *slog.Logger
	boardSize int
}

// NewUtilityHandler creates a new UtilityHandler.
func NewUtilityHandler(
	marketClient *market.Client,
	library *content.Library,
	sessions *SessionState,
	usage *middleware.UsageTracker,
	logger *slog.Logger,
) *UtilityHandler {
	return &UtilityHandler{
		market:    marketClient,
		library:   library,
		sessions:  sessions,
		usage:     usage,
		stats:     presenter.NewStatsPresenter(),
		logger:    logger,
		boardSize: 10,
	}
}

// Price processes /price <symbol>: a live CoinGecko quote.
func (h *UtilityHandler) Price(ctx context.Context, cmdCtx Context) error {
	symbol := strings.TrimSpace(cmdCtx.Args)
	if symbol == "" {
		_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
			"Usage: /price <symbol>, e.g. /price btc")
		return err
	}

	quote, err := h.market.GetCryptoPrice(ctx, symbol)
	if err != nil {
		if errors.Is(err, market.ErrUnknownSymbol) {
			_, sendErr := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
				fmt.Sprintf("🤷 I couldn't find a coin called %q. Try /price btc", symbol))
			return sendErr
		}
		_, sendErr := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
			"📉 The price service is unavailable right now. Try again in a minute!")
		if sendErr != nil {
			return sendErr
		}
		return err
	}

	_, err = cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, quote.Format())
	return err
}

// News processes /news: the scripted market news digest.
func (h *UtilityHandler) News(ctx context.Context, cmdCtx Context) error {
	_, err := cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, h.library.NewsDigest())
	return err
}

// Quote processes /quote: a motivational quote.
func (h *UtilityHandler) Quote(ctx context.Context, cmdCtx Context) error {
	_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, h.library.Quote())
	return err
}

// Tips processes /tips: a trading tip.
func (h *UtilityHandler) Tips(ctx context.Context, cmdCtx Context) error {
	_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, h.library.Tip())
	return err
}

// Gif processes /gif: a scripted market mood line.
func (h *UtilityHandler) Gif(ctx context.Context, cmdCtx Context) error {
	_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, h.library.Gif())
	return err
}

// Convert processes /convert <amount> <from> <to>.
func (h *UtilityHandler) Convert(ctx context.Context, cmdCtx Context) error {
	fields := strings.Fields(cmdCtx.Args)
	usage := "Usage: /convert <amount> <from> <to>, e.g. /convert 100 usd inr"
	if len(fields) != 3 {
		_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, usage)
		return err
	}

	amount, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || amount <= 0 {
		_, sendErr := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, usage)
		return sendErr
	}

	result, err := content.Convert(amount, fields[1], fields[2])
	if err != nil {
		_, sendErr := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, fmt.Sprintf(
			"🤷 %v\nSupported: %s", err, strings.Join(content.SupportedCurrencies(), ", ")))
		return sendErr
	}

	_, err = cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, fmt.Sprintf(
		"💱 %.2f %s = %.2f %s",
		amount, strings.ToUpper(fields[1]), result, strings.ToUpper(fields[2])))
	return err
}

// Translate processes /translate <text>: the scripted Hindi phrasebook.
func (h *UtilityHandler) Translate(ctx context.Context, cmdCtx Context) error {
	text := strings.TrimSpace(cmdCtx.Args)
	if text == "" {
		_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
			"Usage: /translate <text>, e.g. /translate good morning")
		return err
	}

	translated, ok := content.TranslateHindi(text)
	if !ok {
		_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
			"🤷 That phrase is not in my phrasebook yet.")
		return err
	}
	_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, "🇮🇳 "+translated)
	return err
}

// Stats processes /stats: the bot usage summary.
func (h *UtilityHandler) Stats(ctx context.Context, cmdCtx Context) error {
	_, err := cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, h.stats.FormatStats(h.usage.Snapshot()))
	return err
}

// Leaderboard processes /leaderboard: the activity leaderboard.
func (h *UtilityHandler) Leaderboard(ctx context.Context, cmdCtx Context) error {
	board := h.usage.Leaderboard(h.boardSize)
	_, err := cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, h.stats.FormatLeaderboard(board))
	return err
}

// Watchlist processes /watchlist [symbol|clear].
func (h *UtilityHandler) Watchlist(ctx context.Context, cmdCtx Context) error {
	arg := strings.TrimSpace(cmdCtx.Args)
	id := int64(cmdCtx.Sender.TelegramID)

	switch {
	case arg == "":
		list := h.sessions.Watchlist(id)
		if len(list) == 0 {
			_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
				"👀 Your watchlist is empty. Add a ticker with /watchlist btc")
			return err
		}
		var sb strings.Builder
		sb.WriteString("👀 **Your Watchlist:**\n")
		for _, symbol := range list {
			fmt.Fprintf(&sb, "• %s\n", symbol)
		}
		sb.WriteString("\nCheck any of them with /price <symbol>")
		_, err := cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, sb.String())
		return err

	case strings.EqualFold(arg, "clear"):
		h.sessions.ClearWatchlist(id)
		_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, "🧹 Watchlist cleared.")
		return err

	default:
		if !h.sessions.AddToWatchlist(id, arg) {
			_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
				"🤔 Already on your list (or the list is full).")
			return err
		}
		_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
			fmt.Sprintf("✅ %s added to your watchlist!", strings.ToUpper(arg)))
		return err
	}
}

// Todo processes /todo [item], /todo done <n>.
func (h *UtilityHandler) Todo(ctx context.Context, cmdCtx Context) error {
	arg := strings.TrimSpace(cmdCtx.Args)
	id := int64(cmdCtx.Sender.TelegramID)

	if arg == "" {
		list := h.sessions.Todos(id)
		if len(list) == 0 {
			_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
				"📝 Nothing on your list. Add an item with /todo <text>")
			return err
		}
		var sb strings.Builder
		sb.WriteString("📝 **Your Todo List:**\n")
		for i, item := range list {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, item)
		}
		sb.WriteString("\nFinish one with /todo done <number>")
		_, err := cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, sb.String())
		return err
	}

	if rest, ok := strings.CutPrefix(arg, "done "); ok {
		position, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			_, sendErr := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
				"Usage: /todo done <number>")
			return sendErr
		}
		item, ok := h.sessions.CompleteTodo(id, position)
		if !ok {
			_, sendErr := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
				"🤔 No item at that position. Check /todo")
			return sendErr
		}
		_, sendErr := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
			fmt.Sprintf("✅ Done: %s", item))
		return sendErr
	}

	if !h.sessions.AddTodo(id, arg) {
		_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
			"🤔 Your list is full. Finish something first!")
		return err
	}
	_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, "📝 Added to your list!")
	return err
}

// Reminder processes /reminder <minutes> <text>: a one-shot in-process
// reminder. Reminders do not survive a restart.
func (h *UtilityHandler) Reminder(ctx context.Context, cmdCtx Context) error {
	usage := "Usage: /reminder <minutes> <text>, e.g. /reminder 30 check the charts"
	fields := strings.SplitN(strings.TrimSpace(cmdCtx.Args), " ", 2)
	if len(fields) != 2 {
		_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, usage)
		return err
	}

	minutes, err := strconv.Atoi(fields[0])
	if err != nil || minutes < 1 || minutes > maxReminderMinutes {
		_, sendErr := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, usage)
		return sendErr
	}
	text := strings.TrimSpace(fields[1])

	chatID := cmdCtx.ChatID
	name := cmdCtx.Sender.DisplayName
	client := cmdCtx.Client
	time.AfterFunc(time.Duration(minutes)*time.Minute, func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := client.SendText(sendCtx, chatID,
			fmt.Sprintf("⏰ %s, reminder: %s", name, text)); err != nil {
			h.logger.Warn("failed to deliver reminder", "chat_id", chatID, "error", err)
		}
	})

	_, err = cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
		fmt.Sprintf("⏰ Got it! I'll remind you in %d minutes.", minutes))
	return err
}
