package presenter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/command"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/query"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/content"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/penalty"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/progress"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/interface/telegram/middleware"
)

func TestPenaltyPresenter_FormatStatus(t *testing.T) {
	p := NewPenaltyPresenter()

	view := &query.PenaltyStatusView{
		Tracked:           true,
		Username:          "@neel",
		State:             penalty.StateOwing,
		Outstanding:       penalty.FromRupees(200),
		PaidTotal:         penalty.FromRupees(100),
		DonatedTotal:      penalty.FromRupees(50),
		ConsecutiveMisses: 2,
		MissedDays:        5,
		LastMissDate:      time.Now().Add(-26 * time.Hour),
		DailyRatePercent:  18,
		RecentHistory: []penalty.HistoryEntry{
			{Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Type: penalty.EventMiss, Amount: penalty.FromRupees(100)},
		},
	}

	out := p.FormatStatus(view)
	assert.Contains(t, out, "neel - Penalty Status")
	assert.Contains(t, out, "💰 Total Penalty: ₹350.00")
	assert.Contains(t, out, "✅ Paid Amount: ₹100.00")
	assert.Contains(t, out, "⏳ Pending: ₹200.00")
	assert.Contains(t, out, "🔄 Consecutive Misses: 2")
	assert.Contains(t, out, "🫀 Donated to Foundation: ₹50.00")
	assert.Contains(t, out, "Missed Days: 5 (last yesterday)")
	assert.Contains(t, out, "Interest (18%/day): ₹36.00")
	assert.Contains(t, out, "• Mar 1 ❌ miss (₹100.00)")
	assert.NotContains(t, out, "@neel")
}

func TestPenaltyPresenter_FormatStatus_Untracked(t *testing.T) {
	p := NewPenaltyPresenter()
	out := p.FormatStatus(&query.PenaltyStatusView{Tracked: false})
	assert.Contains(t, out, "No penalties recorded yet")
}

func TestPenaltyPresenter_FormatStatus_ClearHasNoInterestWarning(t *testing.T) {
	p := NewPenaltyPresenter()
	out := p.FormatStatus(&query.PenaltyStatusView{
		Tracked:          true,
		Username:         "neel",
		DailyRatePercent: 18,
	})
	assert.NotContains(t, out, "Interest")
}

func TestPenaltyPresenter_FormatMissResult_Escalated(t *testing.T) {
	p := NewPenaltyPresenter()
	out := p.FormatMissResult(&command.RecordMissResult{
		Record:    &penalty.Record{},
		Charged:   penalty.FromRupees(100),
		Escalated: true,
		Donated:   penalty.FromRupees(300),
	})
	assert.Contains(t, out, "₹100.00 penalty added")
	assert.Contains(t, out, "₹300.00 donated to local foundation")
}

func TestPenaltyPresenter_FormatPaymentResult(t *testing.T) {
	p := NewPenaltyPresenter()

	partial := p.FormatPaymentResult(&command.PayPenaltyResult{
		Record:  &penalty.Record{Outstanding: penalty.FromRupees(50)},
		Applied: penalty.FromRupees(100),
	})
	assert.Contains(t, partial, "Payment of ₹100.00 recorded")
	assert.Contains(t, partial, "Remaining: ₹50.00")

	full := p.FormatPaymentResult(&command.PayPenaltyResult{
		Record:  &penalty.Record{},
		Applied: penalty.FromRupees(150),
	})
	assert.Contains(t, full, "fully paid")
	assert.Contains(t, full, "₹150.00 received")
}

func TestProgressPresenter_FormatModuleList(t *testing.T) {
	p := NewProgressPresenter()
	modules := content.Modules()

	out := p.FormatModuleList(modules, []string{modules[0].ID})
	assert.Contains(t, out, "✅ **"+modules[0].Title+"**")
	assert.Contains(t, out, "📖 **"+modules[1].Title+"**")
	assert.Contains(t, out, "/module_"+modules[1].ID)
}

func TestProgressPresenter_FormatProgress(t *testing.T) {
	p := NewProgressPresenter()
	out := p.FormatProgress("Rahul", &query.ProgressView{
		CompletedModules: []string{"crypto_basics"},
		TotalModules:     6,
		OverallScore:     16,
		SkillLevel:       progress.SkillBeginner,
		StreakCount:      3,
		QuizzesTaken:     2,
		RecentTopics:     []string{"wallets", "exchanges"},
		LastActivityDate: time.Now().Add(-3 * time.Hour),
	})

	assert.Contains(t, out, "Learning Progress for Rahul")
	assert.Contains(t, out, "Last Activity: 3h ago")
	assert.Contains(t, out, "16%")
	assert.Contains(t, out, "1 of 6")
	assert.Contains(t, out, "3 days")
	assert.Contains(t, out, "Beginner")
	assert.Contains(t, out, "• wallets")
}

func TestProgressPresenter_FormatQuestion(t *testing.T) {
	p := NewProgressPresenter()
	q := content.Question{
		Question: "What year was Bitcoin created?",
		Options:  []string{"2008", "2009", "2010"},
		Answer:   1,
	}

	out := p.FormatQuestion("🧠 **Quiz Time!**", q)
	assert.Contains(t, out, "What year was Bitcoin created?")
	assert.Contains(t, out, "A) 2008")
	assert.Contains(t, out, "B) 2009")
	assert.Equal(t, "💡 Answer: B) 2009", p.FormatAnswerReveal(q))
}

func TestStatsPresenter_FormatLeaderboard(t *testing.T) {
	p := NewStatsPresenter()

	empty := p.FormatLeaderboard(nil)
	assert.Contains(t, empty, "No activity yet")

	out := p.FormatLeaderboard([]middleware.LeaderboardEntry{
		{TelegramID: 1, Name: "Rahul", Points: 10},
		{TelegramID: 2, Name: "Priya", Points: 7},
		{TelegramID: 3, Name: "", Points: 3},
		{TelegramID: 4, Name: "Dev", Points: 1},
	})
	assert.Contains(t, out, "🥇 Rahul - 10 points")
	assert.Contains(t, out, "🥈 Priya - 7 points")
	assert.Contains(t, out, "🥉 user-3 - 3 points")
	assert.Contains(t, out, "4. Dev - 1 points")
}

func TestStatsPresenter_FormatStats(t *testing.T) {
	p := NewStatsPresenter()
	out := p.FormatStats(middleware.UsageSnapshot{
		Uptime:        90 * time.Minute,
		TotalMessages: 12,
		TotalCommands: 5,
		UniqueUsers:   3,
		TopCommands: []middleware.CommandCount{
			{Command: "quiz", Count: 3},
			{Command: "price", Count: 2},
		},
	})

	assert.Contains(t, out, "Uptime: 1h 30m")
	assert.Contains(t, out, "Messages handled: 12")
	assert.Contains(t, out, "/quiz - 3")
}
