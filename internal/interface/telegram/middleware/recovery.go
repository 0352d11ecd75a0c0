// Package middleware contains Telegram bot middlewares for update processing.
package middleware

import (
	"bytes"
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOVERY MIDDLEWARE
// Catches panics in handlers and converts them to user-friendly error messages.
// The bot must stay responsive even if a single handler crashes.
// ══════════════════════════════════════════════════════════════════════════════

// RecoveryConfig holds configuration for the recovery middleware.
type RecoveryConfig struct {
	// EnableStackTrace enables capturing stack traces on panic.
	EnableStackTrace bool

	// OnPanic is called when a panic is recovered.
	OnPanic func(ctx context.Context, info *PanicInfo)

	// UserErrorMessage is the message sent to users when a panic occurs.
	UserErrorMessage string

	// MaxPanicsPerMinute limits how many panics to fully process per minute
	// to prevent cascading failures.
	MaxPanicsPerMinute int
}

// DefaultRecoveryConfig returns sensible defaults for recovery middleware.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		EnableStackTrace: true,
		OnPanic:          nil,
		UserErrorMessage: "😔 Something went wrong on my end.\n\n" +
			"Please try again in a moment!",
		MaxPanicsPerMinute: 100,
	}
}

// PanicInfo contains information about a recovered panic.
type PanicInfo struct {
	// PanicValue is the raw panic value.
	PanicValue interface{}

	// StackTrace is the formatted stack trace.
	StackTrace string

	// TelegramID is the Telegram user ID (if available).
	TelegramID int64

	// Command is the command that was being processed (if available).
	Command string

	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

// String returns a formatted string representation of the panic info.
func (p *PanicInfo) String() string {
	var buf bytes.Buffer
	buf.WriteString("=== PANIC RECOVERED ===\n")
	buf.WriteString(fmt.Sprintf("Time:       %s\n", p.Timestamp.Format(time.RFC3339)))
	if p.TelegramID != 0 {
		buf.WriteString(fmt.Sprintf("TelegramID: %d\n", p.TelegramID))
	}
	if p.Command != "" {
		buf.WriteString(fmt.Sprintf("Command:    %s\n", p.Command))
	}
	buf.WriteString(fmt.Sprintf("Error:      %v\n", p.PanicValue))
	if p.StackTrace != "" {
		buf.WriteString("\nStack Trace:\n")
		buf.WriteString(p.StackTrace)
	}
	buf.WriteString("========================\n")
	return buf.String()
}

// RecoveryMiddleware recovers from panics in update handlers.
type RecoveryMiddleware struct {
	config       RecoveryConfig
	panicCounter *panicRateLimiter
}

// NewRecoveryMiddleware creates a new recovery middleware.
func NewRecoveryMiddleware(config RecoveryConfig) *RecoveryMiddleware {
	return &RecoveryMiddleware{
		config:       config,
		panicCounter: newPanicRateLimiter(config.MaxPanicsPerMinute),
	}
}

// RecoveryResult represents the result of running a handler under recovery.
type RecoveryResult struct {
	// Recovered indicates if a panic was recovered.
	Recovered bool

	// PanicInfo contains panic details (if recovered).
	PanicInfo *PanicInfo

	// UserMessage is the message to show to the user (if recovered).
	UserMessage string

	// Err is the error returned by the handler (if it did not panic).
	Err error
}

// Run executes a handler and recovers from any panics.
func (m *RecoveryMiddleware) Run(
	ctx context.Context,
	telegramID int64,
	command string,
	handler func() error,
) *RecoveryResult {
	var result *RecoveryResult
	var handlerErr error

	func() {
		defer func() {
			if r := recover(); r != nil {
				result = m.handlePanic(ctx, r, telegramID, command)
			}
		}()
		handlerErr = handler()
	}()

	if result != nil {
		return result
	}
	return &RecoveryResult{Recovered: false, Err: handlerErr}
}

func (m *RecoveryMiddleware) handlePanic(
	ctx context.Context,
	panicValue interface{},
	telegramID int64,
	command string,
) *RecoveryResult {
	// During a panic storm, keep answering users but skip the expensive parts.
	if !m.panicCounter.allow() {
		return &RecoveryResult{
			Recovered:   true,
			UserMessage: m.config.UserErrorMessage,
		}
	}

	info := &PanicInfo{
		PanicValue: panicValue,
		Timestamp:  time.Now(),
		TelegramID: telegramID,
		Command:    command,
	}
	if m.config.EnableStackTrace {
		info.StackTrace = string(debug.Stack())
	}
	if m.config.OnPanic != nil {
		m.config.OnPanic(ctx, info)
	}

	return &RecoveryResult{
		Recovered:   true,
		PanicInfo:   info,
		UserMessage: m.config.UserErrorMessage,
	}
}

// panicRateLimiter is a simple sliding-window counter for panic processing.
type panicRateLimiter struct {
	mu       sync.Mutex
	max      int
	window   time.Time
	observed int
}

func newPanicRateLimiter(max int) *panicRateLimiter {
	if max <= 0 {
		max = 100
	}
	return &panicRateLimiter{max: max, window: time.Now()}
}

func (l *panicRateLimiter) allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.window) >= time.Minute {
		l.window = now
		l.observed = 0
	}
	if l.observed >= l.max {
		return false
	}
	l.observed++
	return true
}
