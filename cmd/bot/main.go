// Ayaka is a Telegram study-group bot: guided crypto/stocks lessons,
// streak tracking, an accountability penalty ledger, a scheduled
// morning tribute and Gemini-backed conversation.
//
// Everything is wired here, in dependency order. The process fails
// fast on configuration errors; a bot without its tokens is useless.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/config"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/authz"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/chat"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/command"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/query"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/content"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/memory"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/penalty"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/external/gemini"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/external/market"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/external/telegram"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/external/ytdlp"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/notify"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/persistence/jsonstore"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/persistence/postgres"
	redisstore "github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/persistence/redis"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/scheduler"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/scheduler/jobs"
	botui "github.com/ayaka-hub/ayaka-learning-bot/internal/interface/telegram"
	"github.com/ayaka-hub/ayaka-learning-bot/pkg/circuitbreaker"
	"github.com/ayaka-hub/ayaka-learning-bot/pkg/logger"
	"github.com/ayaka-hub/ayaka-learning-bot/pkg/retry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ──────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ──────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// ──────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ──────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Level:      cfg.Observability.LogLevel,
		Format:     cfg.Observability.LogFormat,
		AppName:    cfg.App.Name,
		AppVersion: cfg.App.Version,
		AppEnv:     string(cfg.App.Environment),
	})
	slog.SetDefault(log)

	log.Info("starting",
		"env", cfg.App.Environment,
		"timezone", cfg.App.Timezone,
		"storage", cfg.Storage.Backend,
		"features", cfg.Features.Enabled(),
	)

	// ──────────────────────────────────────────────────────────────────────────
	// 3. STORAGE
	// ──────────────────────────────────────────────────────────────────────────
	dataDir := cfg.Storage.DataDir
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	userRepo, err := jsonstore.NewUserRepository(filepath.Join(dataDir, "users.json"))
	if err != nil {
		return fmt.Errorf("user store: %w", err)
	}
	progressRepo, err := jsonstore.NewProgressRepository(filepath.Join(dataDir, "progress.json"))
	if err != nil {
		return fmt.Errorf("progress store: %w", err)
	}

	var penaltyRepo penalty.Repository
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		conn, err := postgres.NewConnection(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer conn.Close()
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			return fmt.Errorf("postgres migrations: %w", err)
		}
		penaltyRepo = postgres.NewPenaltyRepository(conn)
	default:
		repo, err := jsonstore.NewPenaltyRepository(filepath.Join(dataDir, "penalties.json"))
		if err != nil {
			return fmt.Errorf("penalty store: %w", err)
		}
		penaltyRepo = repo
	}

	var memoryRepo memory.Repository
	switch cfg.Storage.MemoryBackend {
	case config.BackendRedis:
		redisCfg := redisstore.DefaultConfig()
		redisCfg.Addr = cfg.Storage.RedisAddr
		redisCfg.Password = cfg.Storage.RedisPassword
		redisCfg.DB = cfg.Storage.RedisDB
		repo, err := redisstore.NewMemoryRepository(redisCfg)
		if err != nil {
			return fmt.Errorf("redis memory store: %w", err)
		}
		defer repo.Close()
		memoryRepo = repo
	default:
		repo, err := jsonstore.NewMemoryRepository(
			filepath.Join(dataDir, "memory_users.json"),
			filepath.Join(dataDir, "memory_chats.json"),
			memory.DefaultWindowCap,
		)
		if err != nil {
			return fmt.Errorf("memory store: %w", err)
		}
		memoryRepo = repo
	}

	// ──────────────────────────────────────────────────────────────────────────
	// 4. DOMAIN
	// ──────────────────────────────────────────────────────────────────────────
	ledger := penalty.NewLedger(penalty.Config{
		Unit:                penalty.FromRupees(cfg.Penalty.UnitRupees),
		DailyRatePercent:    cfg.Penalty.DailyRatePercent,
		EscalationThreshold: cfg.Penalty.EscalationThreshold,
		PaymentTolerance:    penalty.FromRupees(1),
		Location:            cfg.App.Location,
	})

	library := content.NewLibrary()

	// ──────────────────────────────────────────────────────────────────────────
	// 5. EXTERNAL CLIENTS
	// ──────────────────────────────────────────────────────────────────────────

	// A second API client for the scheduler and the penalty announcer;
	// the bot's own client is busy long polling.
	announceCfg := telegram.DefaultClientConfig(cfg.Telegram.Token)
	announceCfg.Logger = log
	announceClient := telegram.NewClient(announceCfg)

	geminiCfg := gemini.DefaultClientConfig(cfg.Gemini.APIKey)
	geminiCfg.Model = cfg.Gemini.Model
	geminiCfg.Temperature = cfg.Gemini.Temperature
	geminiCfg.MaxOutputTokens = cfg.Gemini.MaxOutputTokens
	geminiCfg.Timeout = cfg.Gemini.RequestTimeout
	geminiCfg.RetryConfig = retry.Config{
		MaxAttempts:  cfg.Gemini.MaxRetries,
		InitialDelay: cfg.Gemini.RetryBaseDelay,
		MaxDelay:     cfg.Gemini.RetryMaxDelay,
		Multiplier:   2.0,
		JitterFactor: 0.2,
	}
	geminiCfg.BreakerConfig = circuitbreaker.Config{
		Name:             "gemini-api",
		FailureThreshold: cfg.Gemini.CircuitBreakerThreshold,
		SuccessThreshold: 2,
		Timeout:          cfg.Gemini.CircuitBreakerTimeout,
	}
	geminiCfg.Logger = log
	geminiClient := gemini.NewClient(geminiCfg)

	var marketClient *market.Client
	if cfg.Features.IsEnabled(config.FeatureMarketPrices) {
		marketCfg := market.DefaultClientConfig()
		marketCfg.Logger = log
		marketClient = market.NewClient(marketCfg)
	}

	var extractor *ytdlp.Extractor
	if cfg.Features.IsEnabled(config.FeatureVideoFetch) {
		extractor, err = ytdlp.NewExtractor(ytdlp.Config{
			BinaryPath:  cfg.Video.BinaryPath,
			DownloadDir: cfg.Video.DownloadDir,
			MaxFileSize: cfg.Video.MaxFileSize,
			Timeout:     cfg.Video.DownloadTimeout,
			Logger:      log,
		})
		if err != nil {
			return fmt.Errorf("video extractor: %w", err)
		}
	}

	// ──────────────────────────────────────────────────────────────────────────
	// 6. APPLICATION LAYER
	// ──────────────────────────────────────────────────────────────────────────
	auth := authz.NewService(userRepo)

	var deps botui.BotDependencies
	deps.UserRepo = userRepo
	deps.ObserveUserCmd = command.NewObserveUserHandler(userRepo, cfg.Telegram.LeaderID, log)
	deps.ProgressCmd = command.NewProgressHandler(progressRepo, content.Catalog{}, log)
	deps.ProgressQuery = query.NewGetProgressHandler(progressRepo, content.TotalModules())
	deps.Market = marketClient
	deps.Extractor = extractor
	deps.Library = library
	deps.Auth = auth

	if cfg.Features.IsEnabled(config.FeaturePenaltySystem) {
		// The notifier interface values must stay nil when no group
		// chat is configured; a typed nil would dodge the handlers'
		// nil checks.
		var donations command.DonationNotifier
		var exceptions command.ExceptionNotifier
		if cfg.Scheduler.TributeChatID != 0 {
			announcer := notify.NewGroupAnnouncer(announceClient, cfg.Scheduler.TributeChatID, log)
			donations = announcer
			exceptions = announcer
		}
		deps.RecordMissCmd = command.NewRecordMissHandler(auth, penaltyRepo, ledger, donations, log)
		deps.RecordDoneCmd = command.NewRecordDoneHandler(auth, penaltyRepo, ledger, log)
		deps.PayPenaltyCmd = command.NewPayPenaltyHandler(auth, penaltyRepo, ledger, log)
		deps.ExceptionCmd = command.NewRequestExceptionHandler(auth, penaltyRepo, ledger, exceptions, log)
		deps.PenaltyStatusQuery = query.NewPenaltyStatusHandler(penaltyRepo, ledger)
	}

	// ──────────────────────────────────────────────────────────────────────────
	// 7. CONVERSATION RESPONDER
	// ──────────────────────────────────────────────────────────────────────────
	var generator chat.Generator = &geminiGenerator{client: geminiClient}
	if !cfg.Features.IsEnabled(config.FeatureAIChat) {
		generator = disabledGenerator{}
	}
	deps.Responder = chat.NewResponder(generator, memoryRepo, "", log)

	// ──────────────────────────────────────────────────────────────────────────
	// 8. SCHEDULER
	// ──────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		schedCfg := scheduler.DefaultSchedulerConfig()
		schedCfg.Logger = log
		schedCfg.Timezone = cfg.App.Location
		sched = scheduler.NewScheduler(schedCfg)

		if cfg.Scheduler.TributeChatID != 0 {
			tribute := jobs.NewDailyTributeJob(announceClient, jobs.DailyTributeConfig{
				ChatID:        cfg.Scheduler.TributeChatID,
				Message:       cfg.Scheduler.TributeMessage,
				StickerFileID: cfg.Scheduler.TributeSticker,
			}, log)
			when, err := scheduler.DailyAt(cfg.Scheduler.TributeHour, cfg.Scheduler.TributeMinute)
			if err != nil {
				return fmt.Errorf("tribute schedule: %w", err)
			}
			if err := sched.Register(tribute, when); err != nil {
				return fmt.Errorf("register tribute job: %w", err)
			}
			if !cfg.Features.IsEnabled(config.FeatureDailyTribute) {
				_ = sched.DisableJob(tribute.Name())
			}
			deps.Jobs = sched
			deps.TributeJobName = tribute.Name()
		}

		if cfg.Features.IsEnabled(config.FeatureDailyInterest) &&
			cfg.Features.IsEnabled(config.FeaturePenaltySystem) {
			interest := jobs.NewDailyInterestJob(penaltyRepo, ledger, log)
			when, err := scheduler.DailyAt(cfg.Scheduler.InterestHour, cfg.Scheduler.InterestMinute)
			if err != nil {
				return fmt.Errorf("interest schedule: %w", err)
			}
			if err := sched.Register(interest, when); err != nil {
				return fmt.Errorf("register interest job: %w", err)
			}
		}
	}

	// ──────────────────────────────────────────────────────────────────────────
	// 9. BOT
	// ──────────────────────────────────────────────────────────────────────────
	botCfg := botui.DefaultBotConfig(cfg.Telegram.Token)
	botCfg.BotNames = cfg.Telegram.BotNames
	botCfg.LeaderID = cfg.Telegram.LeaderID
	botCfg.MaxConcurrentUpdates = cfg.Telegram.MaxConcurrentUpdates
	botCfg.GracefulShutdownTimeout = cfg.App.ShutdownTimeout
	botCfg.Logger = log

	bot, err := botui.NewBot(botCfg, deps)
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}

	// ──────────────────────────────────────────────────────────────────────────
	// 10. START AND SHUTDOWN
	// ──────────────────────────────────────────────────────────────────────────
	if sched != nil {
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
	}

	// Blocks until ctx is cancelled by a signal.
	runErr := bot.Start(ctx)

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := bot.Stop(shutdownCtx); err != nil {
		log.Warn("bot stop", "error", err)
	}
	if sched != nil {
		if err := sched.Stop(); err != nil {
			log.Warn("scheduler stop", "error", err)
		}
	}

	snap := bot.UsageTracker().Snapshot()
	log.Info("goodbye",
		"uptime", snap.Uptime.Round(time.Second).String(),
		"messages", snap.TotalMessages,
		"commands", snap.TotalCommands,
		"errors", snap.TotalErrors,
	)

	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ADAPTERS
// ══════════════════════════════════════════════════════════════════════════════

// geminiGenerator adapts the Gemini client to the responder's
// Generator port.
type geminiGenerator struct {
	client *gemini.Client
}

func (g *geminiGenerator) Generate(ctx context.Context, systemInstruction string, turns []chat.Turn) (string, error) {
	converted := make([]gemini.Turn, len(turns))
	for i, t := range turns {
		converted[i] = gemini.Turn{Role: t.Role, Text: t.Text}
	}
	return g.client.Generate(ctx, systemInstruction, converted)
}

// disabledGenerator stands in when ai_chat is switched off; the
// responder turns its error into the standing apology.
type disabledGenerator struct{}

func (disabledGenerator) Generate(context.Context, string, []chat.Turn) (string, error) {
	return "", fmt.Errorf("ai chat is disabled by feature flag")
}
