// Package jobs contains the learning bot's scheduled jobs.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/external/telegram"
	"github.com/ayaka-hub/ayaka-learning-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAILY TRIBUTE JOB
// ══════════════════════════════════════════════════════════════════════════════

// Announcer is the outward-send surface the tribute needs.
type Announcer interface {
	SendMarkdown(ctx context.Context, chatID int64, markdown string) (*telegram.Message, error)
	SendSticker(ctx context.Context, chatID int64, stickerFileID string) (*telegram.Message, error)
}

// DailyTributeConfig contains configuration for the tribute job.
type DailyTributeConfig struct {
	// ChatID is the chat the tribute is posted to
	ChatID int64

	// Message is the tribute text, Markdown allowed
	Message string

	// StickerFileID optionally follows the message with a sticker
	StickerFileID string
}

// DefaultTributeMessage is posted when no message is configured.
const DefaultTributeMessage = "🌅 **Good morning, team!**\n\n" +
	"Another day, another chance to learn something new. " +
	"Check in with /progress, knock out a module with /learn, " +
	"and don't let the streak die. 📈"

// DailyTributeJob posts one message to the configured chat when it fires.
// Enabling and disabling the job is handled by the scheduler; this job
// keeps no durable state.
type DailyTributeJob struct {
	announcer Announcer
	config    DailyTributeConfig
	logger    *slog.Logger
	now       func() time.Time

	sentCount atomic.Int64
}

// NewDailyTributeJob creates the tribute job.
func NewDailyTributeJob(announcer Announcer, config DailyTributeConfig, logger *slog.Logger) *DailyTributeJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Message == "" {
		config.Message = DefaultTributeMessage
	}
	return &DailyTributeJob{
		announcer: announcer,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (j *DailyTributeJob) WithClock(now func() time.Time) *DailyTributeJob {
	j.now = now
	return j
}

// Name returns the unique name of the job.
func (j *DailyTributeJob) Name() string {
	return "daily_tribute"
}

// Description returns a human-readable description of the job.
func (j *DailyTributeJob) Description() string {
	return "Posts the daily tribute message to the group chat"
}

// Run sends the tribute. A firing that lands outside the group's waking
// hours (a RunNow at night, a misconfigured schedule) is skipped, not
// deferred.
func (j *DailyTributeJob) Run(ctx context.Context) error {
	if now := j.now(); !timeutil.IsSafeNotificationTime(now) {
		j.logger.Warn("tribute skipped outside waking hours",
			"next_window", timeutil.FormatIndia(timeutil.NextSafeNotificationTime(now), timeutil.FormatTime))
		return nil
	}

	if _, err := j.announcer.SendMarkdown(ctx, j.config.ChatID, j.config.Message); err != nil {
		return fmt.Errorf("failed to send tribute: %w", err)
	}

	if j.config.StickerFileID != "" {
		if _, err := j.announcer.SendSticker(ctx, j.config.ChatID, j.config.StickerFileID); err != nil {
			// The message already landed; a lost sticker is not a job failure.
			j.logger.Warn("tribute sticker failed", "error", err)
		}
	}

	j.sentCount.Add(1)
	j.logger.Info("daily tribute sent", "chat_id", j.config.ChatID, "total_sent", j.sentCount.Load())
	return nil
}

// SentCount reports how many tributes this process has posted.
func (j *DailyTributeJob) SentCount() int64 {
	return j.sentCount.Load()
}
