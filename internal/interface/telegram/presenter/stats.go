package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/interface/telegram/middleware"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS PRESENTER
// Renders in-process usage counters and the activity leaderboard.
// ══════════════════════════════════════════════════════════════════════════════

// StatsPresenter formats usage tracker snapshots.
type StatsPresenter struct{}

// NewStatsPresenter creates the presenter.
func NewStatsPresenter() *StatsPresenter {
	return &StatsPresenter{}
}

// FormatStats renders the bot usage summary since startup.
func (p *StatsPresenter) FormatStats(snap middleware.UsageSnapshot) string {
	var sb strings.Builder
	sb.WriteString("📈 **Bot Stats** (since startup)\n\n")
	fmt.Fprintf(&sb, "⏱ Uptime: %s\n", formatUptime(snap.Uptime))
	fmt.Fprintf(&sb, "💬 Messages handled: %d\n", snap.TotalMessages)
	fmt.Fprintf(&sb, "⌨️ Commands handled: %d\n", snap.TotalCommands)
	fmt.Fprintf(&sb, "👥 Active users: %d\n", snap.UniqueUsers)
	if snap.TotalErrors > 0 {
		fmt.Fprintf(&sb, "⚠️ Errors: %d\n", snap.TotalErrors)
	}

	if len(snap.TopCommands) > 0 {
		sb.WriteString("\n🏅 **Top Commands:**\n")
		top := snap.TopCommands
		if len(top) > 5 {
			top = top[:5]
		}
		for _, cc := range top {
			fmt.Fprintf(&sb, "• /%s - %d\n", cc.Command, cc.Count)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatLeaderboard renders the activity leaderboard with medal emojis
// for the podium.
func (p *StatsPresenter) FormatLeaderboard(entries []middleware.LeaderboardEntry) string {
	if len(entries) == 0 {
		return "🏆 No activity yet today. Be the first to say something!"
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var sb strings.Builder
	sb.WriteString("🏆 **Activity Leaderboard**\n\n")
	for i, entry := range entries {
		marker := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			marker = medals[i]
		}
		name := entry.Name
		if name == "" {
			name = fmt.Sprintf("user-%d", entry.TelegramID)
		}
		fmt.Fprintf(&sb, "%s %s - %d points\n", marker, name, entry.Points)
	}
	sb.WriteString("\nPoints reset when the bot restarts. Stay active! 💪")
	return sb.String()
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	if hours < 24 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dd %dh", hours/24, hours%24)
}
