// Package telegram implements the Telegram interface of the learning bot.
// This package is the entry point for all Telegram interactions: it
// classifies inbound messages, routes commands, and hands conversation
// to the AI responder. Group chatter is dropped here and never reaches
// the generation delegate.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/authz"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/chat"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/command"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/query"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/content"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/user"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/external/market"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/external/telegram"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/external/ytdlp"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/interface/telegram/handler"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/interface/telegram/middleware"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOT CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// BotConfig contains configuration for the Telegram bot.
type BotConfig struct {
	// Token is the Telegram Bot API token.
	Token string

	// BotNames are the names the bot answers to when mentioned in a
	// group (e.g. "ayaka", "@AyakaLearningBot").
	BotNames []string

	// LeaderID is whitelisted from rate limiting.
	LeaderID int64

	// MaxConcurrentUpdates limits concurrent update processing.
	MaxConcurrentUpdates int

	// GracefulShutdownTimeout bounds how long Stop waits for in-flight
	// handlers.
	GracefulShutdownTimeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultBotConfig returns sensible defaults.
func DefaultBotConfig(token string) BotConfig {
	return BotConfig{
		Token:                   token,
		BotNames:                []string{"ayaka"},
		MaxConcurrentUpdates:    50,
		GracefulShutdownTimeout: 30 * time.Second,
		Logger:                  slog.Default(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT DEPENDENCIES
// Aggregates everything the handlers need.
// ══════════════════════════════════════════════════════════════════════════════

// BotDependencies contains all dependencies for the bot handlers.
type BotDependencies struct {
	// Repositories
	UserRepo user.Repository

	// Commands
	ObserveUserCmd *command.ObserveUserHandler
	RecordMissCmd  *command.RecordMissHandler
	RecordDoneCmd  *command.RecordDoneHandler
	PayPenaltyCmd  *command.PayPenaltyHandler
	ExceptionCmd   *command.RequestExceptionHandler
	ProgressCmd    *command.ProgressHandler

	// Queries
	PenaltyStatusQuery *query.PenaltyStatusHandler
	ProgressQuery      *query.GetProgressHandler

	// Conversation
	Responder *chat.Responder

	// External services and content
	Market    *market.Client
	Extractor *ytdlp.Extractor
	Library   *content.Library

	// Authorization and scheduling
	Auth           *authz.Service
	Jobs           handler.JobToggler
	TributeJobName string
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// ══════════════════════════════════════════════════════════════════════════════

// Bot is the main Telegram bot controller.
type Bot struct {
	config BotConfig
	client *telegram.Client
	router *Router
	logger *slog.Logger

	deps BotDependencies

	recovery *middleware.RecoveryMiddleware
	limiter  *middleware.RateLimiter
	usage    *middleware.UsageTracker

	// classifier is built in Start once getMe reveals the bot's own ID.
	classifierMu sync.RWMutex
	classifier   *Classifier

	running   bool
	runningMu sync.RWMutex
	updateSem chan struct{}
	wg        sync.WaitGroup
}

// NewBot creates a new Telegram bot with all dependencies wired.
func NewBot(config BotConfig, deps BotDependencies) (*Bot, error) {
	if config.Token == "" {
		return nil, errors.New("telegram token is required")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.MaxConcurrentUpdates <= 0 {
		config.MaxConcurrentUpdates = 50
	}

	clientConfig := telegram.DefaultClientConfig(config.Token)
	clientConfig.Logger = config.Logger
	client := telegram.NewClient(clientConfig)

	rateLimitConfig := middleware.DefaultRateLimitConfig()
	if config.LeaderID != 0 {
		rateLimitConfig.WhitelistedUsers[config.LeaderID] = true
	}

	bot := &Bot{
		config:    config,
		client:    client,
		logger:    config.Logger,
		deps:      deps,
		recovery:  middleware.NewRecoveryMiddleware(defaultRecovery(config.Logger)),
		limiter:   middleware.NewRateLimiter(rateLimitConfig),
		usage:     middleware.NewUsageTracker(),
		updateSem: make(chan struct{}, config.MaxConcurrentUpdates),
	}
	bot.router = bot.buildRouter()
	return bot, nil
}

func defaultRecovery(log *slog.Logger) middleware.RecoveryConfig {
	cfg := middleware.DefaultRecoveryConfig()
	cfg.OnPanic = func(_ context.Context, info *middleware.PanicInfo) {
		log.Error("panic recovered in handler",
			"telegram_id", info.TelegramID,
			"command", info.Command,
			"panic", fmt.Sprintf("%v", info.PanicValue),
			"stack", info.StackTrace,
		)
	}
	return cfg
}

// buildRouter creates all handlers and registers the command table.
func (b *Bot) buildRouter() *Router {
	deps := b.deps
	router := NewRouter(b.logger)

	startH := handler.NewStartHandler()
	learnH := handler.NewLearnHandler(deps.ProgressCmd, deps.ProgressQuery, deps.Library, b.logger)
	utilityH := handler.NewUtilityHandler(deps.Market, deps.Library, handler.NewSessionState(), b.usage, b.logger)
	penaltyH := handler.NewPenaltyHandler(
		deps.RecordMissCmd, deps.RecordDoneCmd, deps.PayPenaltyCmd, deps.ExceptionCmd,
		deps.PenaltyStatusQuery, handler.NewDirectoryResolver(deps.UserRepo), b.logger)
	tributeH := handler.NewTributeHandler(deps.Auth, deps.Jobs, deps.TributeJobName, b.logger)
	videoH := handler.NewVideoHandler(deps.Extractor, b.logger)

	register := func(name string, fn func(context.Context, handler.Context) error) {
		router.Register(name, CommandFunc(func(ctx context.Context, cmdCtx CommandContext) error {
			return fn(ctx, handler.Context(cmdCtx))
		}))
	}

	register("start", startH.Start)
	register("help", startH.Help)

	register("learn", learnH.Learn)
	register("crypto", learnH.Crypto)
	register("stocks", learnH.Stocks)
	register("quiz", learnH.Quiz)
	register("trivia", learnH.Trivia)
	register("progress", learnH.Progress)
	register("reset", learnH.Reset)
	for _, mod := range content.Modules() {
		register("module_"+mod.ID, learnH.Module(mod.ID))
	}

	// Nil optional deps mean the feature is switched off; its commands
	// are simply not registered and fall through to the chat fallback.
	if deps.Market != nil {
		register("price", utilityH.Price)
	}
	register("news", utilityH.News)
	register("quote", utilityH.Quote)
	register("tips", utilityH.Tips)
	register("gif", utilityH.Gif)
	register("convert", utilityH.Convert)
	register("translate", utilityH.Translate)
	register("stats", utilityH.Stats)
	register("leaderboard", utilityH.Leaderboard)
	register("watchlist", utilityH.Watchlist)
	register("todo", utilityH.Todo)
	register("reminder", utilityH.Reminder)

	if deps.RecordMissCmd != nil {
		register("penalty_status", penaltyH.Status)
		register("penalty_miss", penaltyH.Miss)
		register("penalty_done", penaltyH.Done)
		register("penalty_pay", penaltyH.Pay)
		register("penalty_exception", penaltyH.Exception)
		register("penalty_tips", penaltyH.Tips)
	}

	if deps.Jobs != nil {
		register("start_tribute", tributeH.Start)
		register("stop_tribute", tributeH.Stop)
	}

	if deps.Extractor != nil {
		register("getvideo", videoH.GetVideo)
	}

	return router
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start verifies the token, publishes the command menu and begins long
// polling. It blocks until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	b.runningMu.Lock()
	if b.running {
		b.runningMu.Unlock()
		return errors.New("bot is already running")
	}
	b.running = true
	b.runningMu.Unlock()

	me, err := b.client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify bot token: %w", err)
	}
	b.logger.Info("bot verified", "id", me.ID, "username", me.Username)

	names := append([]string(nil), b.config.BotNames...)
	if me.Username != "" {
		names = append(names, "@"+me.Username)
	}
	b.classifierMu.Lock()
	b.classifier = NewClassifier(me.ID, names)
	b.classifierMu.Unlock()

	if err := b.client.SetMyCommands(ctx, commandMenu()); err != nil {
		// The menu is cosmetic; polling still works without it.
		b.logger.Warn("failed to publish command menu", "error", err)
	}

	b.logger.Info("starting long polling")
	return b.client.StartPolling(ctx, func(ctx context.Context, update *telegram.Update) error {
		return b.handleUpdate(ctx, update)
	})
}

// Stop waits for in-flight handlers, bounded by the configured timeout.
func (b *Bot) Stop(ctx context.Context) error {
	b.runningMu.Lock()
	if !b.running {
		b.runningMu.Unlock()
		return nil
	}
	b.running = false
	b.runningMu.Unlock()

	b.logger.Info("stopping telegram bot")
	b.limiter.Close()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
		return nil
	case <-time.After(b.config.GracefulShutdownTimeout):
		b.logger.Warn("graceful shutdown timeout exceeded")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UsageTracker exposes the in-process counters (used by main for
// shutdown logging).
func (b *Bot) UsageTracker() *middleware.UsageTracker {
	return b.usage
}

// Client exposes the underlying API client so the scheduler and the
// notifiers can share one connection.
func (b *Bot) Client() *telegram.Client {
	return b.client
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE PIPELINE
// recovery → rate limit → observe identity → classify → dispatch
// ══════════════════════════════════════════════════════════════════════════════

func (b *Bot) handleUpdate(ctx context.Context, update *telegram.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return nil
	}

	// Each update runs on its own goroutine; the semaphore bounds how
	// many are in flight so a slow handler cannot stall the poll loop.
	select {
	case b.updateSem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	b.wg.Add(1)

	go func() {
		defer func() {
			<-b.updateSem
			b.wg.Done()
		}()

		commandName := telegram.ExtractCommand(msg)
		result := b.recovery.Run(ctx, msg.From.ID, commandName, func() error {
			return b.processMessage(ctx, msg, commandName)
		})

		switch {
		case result.Recovered:
			b.usage.RecordError()
			if _, err := b.client.SendText(ctx, msg.Chat.ID, result.UserMessage); err != nil {
				b.logger.Error("failed to send panic apology", "error", err)
			}
		case result.Err != nil:
			b.usage.RecordError()
			b.logger.Error("update handling failed",
				"telegram_id", msg.From.ID,
				"command", commandName,
				"error", result.Err,
			)
		}
	}()
	return nil
}

func (b *Bot) processMessage(ctx context.Context, msg *telegram.Message, commandName string) error {
	limit := b.limiter.Check(ctx, msg.From.ID)
	if !limit.Allowed {
		_, err := b.client.SendText(ctx, msg.Chat.ID, limit.ResponseMessage)
		return err
	}

	sender, err := b.deps.ObserveUserCmd.Handle(ctx, command.ObserveUserCommand{
		TelegramID:  msg.From.ID,
		Username:    msg.From.Username,
		DisplayName: displayName(msg.From),
	})
	if err != nil {
		return fmt.Errorf("failed to observe user: %w", err)
	}

	b.classifierMu.RLock()
	classifier := b.classifier
	b.classifierMu.RUnlock()
	if classifier == nil {
		return errors.New("classifier not initialised")
	}

	switch kind := classifier.Classify(msg, sender); kind {
	case KindCommand:
		b.usage.RecordCommand(int64(sender.TelegramID), sender.DisplayName, commandName)
		return b.router.Dispatch(ctx, commandName, CommandContext{
			Sender:    sender,
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
			Args:      telegram.ExtractCommandArgs(msg),
			Message:   msg,
			Client:    b.client,
		})

	case KindDirect, KindMention, KindReplyToBot:
		b.usage.RecordMessage(int64(sender.TelegramID), sender.DisplayName)
		return b.respond(ctx, msg, sender)

	default:
		// Group chatter: counted for the leaderboard, never answered.
		b.usage.RecordMessage(int64(sender.TelegramID), sender.DisplayName)
		return nil
	}
}

// respond runs the conversation path: typing action, then the AI reply.
func (b *Bot) respond(ctx context.Context, msg *telegram.Message, sender *user.Record) error {
	if err := b.client.SendChatAction(ctx, msg.Chat.ID, "typing"); err != nil {
		b.logger.Debug("failed to send typing action", "error", err)
	}

	reply := b.deps.Responder.Respond(ctx, chat.Request{
		TelegramID:  int64(sender.TelegramID),
		ChatID:      msg.Chat.ID,
		IsGroup:     telegram.IsGroupChat(msg),
		DisplayName: sender.DisplayName,
		Text:        msg.Text,
	})
	if reply == "" {
		return nil
	}

	_, err := b.client.SendMarkdown(ctx, msg.Chat.ID, reply)
	return err
}

func displayName(from *telegram.User) string {
	name := from.FirstName
	if from.LastName != "" {
		name += " " + from.LastName
	}
	if name == "" {
		name = from.Username
	}
	return name
}

// commandMenu is the menu Telegram shows behind the / button.
func commandMenu() []telegram.BotCommand {
	return []telegram.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "help", Description: "Show all commands"},
		{Command: "learn", Description: "Browse learning modules"},
		{Command: "crypto", Description: "Cryptocurrency basics"},
		{Command: "stocks", Description: "Stock market basics"},
		{Command: "quiz", Description: "Take a knowledge quiz"},
		{Command: "trivia", Description: "Random crypto trivia"},
		{Command: "progress", Description: "Your learning progress"},
		{Command: "price", Description: "Live crypto price"},
		{Command: "news", Description: "Market news digest"},
		{Command: "quote", Description: "Motivational quote"},
		{Command: "tips", Description: "Trading tip of the day"},
		{Command: "watchlist", Description: "Your ticker watchlist"},
		{Command: "todo", Description: "Your todo list"},
		{Command: "reminder", Description: "Set a one-shot reminder"},
		{Command: "getvideo", Description: "Fetch an Instagram/X video"},
		{Command: "penalty_status", Description: "Penalty ledger status"},
		{Command: "penalty_tips", Description: "How to recover from penalties"},
		{Command: "stats", Description: "Bot usage stats"},
		{Command: "leaderboard", Description: "Most active members"},
	}
}
