package middleware

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// USAGE TRACKER MIDDLEWARE
// Collects in-process usage counters: how many messages the bot handled, which
// commands are popular, and who the most active group members are. Backs the
// /stats and /leaderboard commands. Counters reset on restart.
// ══════════════════════════════════════════════════════════════════════════════

// UsageTracker records per-user and per-command activity.
type UsageTracker struct {
	startedAt time.Time

	totalMessages atomic.Int64
	totalCommands atomic.Int64
	totalErrors   atomic.Int64

	commandCounts sync.Map // map[string]*atomic.Int64
	userActivity  sync.Map // map[int64]*userUsage
}

type userUsage struct {
	mu       sync.Mutex
	name     string
	points   int64
	lastSeen time.Time
}

// NewUsageTracker creates a usage tracker anchored at the current time.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{startedAt: time.Now()}
}

// RecordMessage records any handled message from a user.
// Every message is worth one activity point.
func (t *UsageTracker) RecordMessage(telegramID int64, displayName string) {
	t.totalMessages.Add(1)
	t.addPoints(telegramID, displayName, 1)
}

// RecordCommand records a dispatched command.
// Commands are worth two points since they take deliberate effort.
func (t *UsageTracker) RecordCommand(telegramID int64, displayName, command string) {
	t.totalCommands.Add(1)
	t.addPoints(telegramID, displayName, 2)

	counter, _ := t.commandCounts.LoadOrStore(command, &atomic.Int64{})
	counter.(*atomic.Int64).Add(1)
}

// RecordError records a handler failure.
func (t *UsageTracker) RecordError() {
	t.totalErrors.Add(1)
}

func (t *UsageTracker) addPoints(telegramID int64, displayName string, points int64) {
	val, _ := t.userActivity.LoadOrStore(telegramID, &userUsage{})
	usage := val.(*userUsage)

	usage.mu.Lock()
	if displayName != "" {
		usage.name = displayName
	}
	usage.points += points
	usage.lastSeen = time.Now()
	usage.mu.Unlock()
}

// UsageSnapshot is a point-in-time view of the collected counters.
type UsageSnapshot struct {
	Uptime        time.Duration
	TotalMessages int64
	TotalCommands int64
	TotalErrors   int64
	UniqueUsers   int
	TopCommands   []CommandCount
}

// CommandCount pairs a command name with its invocation count.
type CommandCount struct {
	Command string
	Count   int64
}

// Snapshot returns current totals and the most used commands, busiest first.
func (t *UsageTracker) Snapshot() UsageSnapshot {
	snap := UsageSnapshot{
		Uptime:        time.Since(t.startedAt),
		TotalMessages: t.totalMessages.Load(),
		TotalCommands: t.totalCommands.Load(),
		TotalErrors:   t.totalErrors.Load(),
	}

	t.userActivity.Range(func(_, _ any) bool {
		snap.UniqueUsers++
		return true
	})

	t.commandCounts.Range(func(key, val any) bool {
		snap.TopCommands = append(snap.TopCommands, CommandCount{
			Command: key.(string),
			Count:   val.(*atomic.Int64).Load(),
		})
		return true
	})
	sort.Slice(snap.TopCommands, func(i, j int) bool {
		if snap.TopCommands[i].Count != snap.TopCommands[j].Count {
			return snap.TopCommands[i].Count > snap.TopCommands[j].Count
		}
		return snap.TopCommands[i].Command < snap.TopCommands[j].Command
	})

	return snap
}

// LeaderboardEntry is one row of the activity leaderboard.
type LeaderboardEntry struct {
	TelegramID int64
	Name       string
	Points     int64
}

// Leaderboard returns up to limit most active users, highest points first.
func (t *UsageTracker) Leaderboard(limit int) []LeaderboardEntry {
	var entries []LeaderboardEntry
	t.userActivity.Range(func(key, val any) bool {
		usage := val.(*userUsage)
		usage.mu.Lock()
		entries = append(entries, LeaderboardEntry{
			TelegramID: key.(int64),
			Name:       usage.name,
			Points:     usage.points,
		})
		usage.mu.Unlock()
		return true
	})

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].TelegramID < entries[j].TelegramID
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
