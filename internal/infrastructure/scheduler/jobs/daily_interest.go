package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/penalty"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAILY INTEREST JOB
// ══════════════════════════════════════════════════════════════════════════════

// DailyInterestJob sweeps every tracked penalty record and applies the
// interest owed for elapsed calendar days. Accrual is idempotent per day,
// so re-running the job (or a restart mid-sweep) never double-charges.
type DailyInterestJob struct {
	repo   penalty.Repository
	ledger *penalty.Ledger
	logger *slog.Logger
	now    func() time.Time
}

// NewDailyInterestJob creates the interest sweep job.
func NewDailyInterestJob(repo penalty.Repository, ledger *penalty.Ledger, logger *slog.Logger) *DailyInterestJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyInterestJob{
		repo:   repo,
		ledger: ledger,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (j *DailyInterestJob) WithClock(now func() time.Time) *DailyInterestJob {
	j.now = now
	return j
}

// Name returns the unique name of the job.
func (j *DailyInterestJob) Name() string {
	return "daily_interest"
}

// Description returns a human-readable description of the job.
func (j *DailyInterestJob) Description() string {
	return "Applies daily compounding interest to outstanding penalty balances"
}

// Run applies interest to every tracked record. One failing record does
// not abort the sweep; the first error is reported after all records
// have been visited.
func (j *DailyInterestJob) Run(ctx context.Context) error {
	records, err := j.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load penalty records: %w", err)
	}

	now := j.now()
	var firstErr error
	var charged, swept int

	for _, rec := range records {
		before := rec.LastInterestDate
		amount := j.ledger.ApplyDailyInterest(rec, now)
		if amount == 0 && rec.LastInterestDate.Equal(before) {
			continue
		}

		if err := j.repo.Save(ctx, rec); err != nil {
			j.logger.Error("failed to save penalty record after interest",
				"telegram_id", rec.TelegramID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		swept++
		if amount > 0 {
			charged++
			j.logger.Info("interest applied",
				"telegram_id", rec.TelegramID,
				"amount", amount.Rupees(),
				"outstanding", rec.Outstanding.Rupees(),
			)
		}
	}

	j.logger.Info("interest sweep complete",
		"records", len(records), "updated", swept, "charged", charged)
	return firstErr
}
