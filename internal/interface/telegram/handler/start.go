package handler

import (
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// START HANDLER
// Handles /start and /help. First impression matters: make members feel
// welcome from the very first interaction.
// ══════════════════════════════════════════════════════════════════════════════

// StartHandler handles the onboarding and help commands.
type StartHandler struct{}

// NewStartHandler creates a new StartHandler.
func NewStartHandler() *StartHandler {
	return &StartHandler{}
}

// Start processes the /start command.
func (h *StartHandler) Start(ctx context.Context, cmdCtx Context) error {
	name := "there"
	if cmdCtx.Sender != nil && cmdCtx.Sender.DisplayName != "" {
		name = cmdCtx.Sender.DisplayName
	}

	welcome := fmt.Sprintf(`🚀 Welcome to Crypto & Stocks Learning Bot!

Hey %s! I'm Ayaka, your friendly AI tutor. I'm here to help you learn about cryptocurrency and stock trading!

🎯 What I can do:
• Teach you crypto and stocks fundamentals
• Remember our conversations and your progress
• Provide personalized learning experiences
• Track your learning milestones
• Be your supportive learning companion

📚 Available Commands:
/help - Show all commands
/learn - Start learning modules
/progress - Check your learning progress
/crypto - Learn about cryptocurrency
/stocks - Learn about stock trading
/quiz - Take a knowledge quiz
/reset - Reset your progress

Let's start your financial education journey! What would you like to learn about first?`, name)

	_, err := cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, welcome)
	return err
}

// Help processes the /help command.
func (h *StartHandler) Help(ctx context.Context, cmdCtx Context) error {
	help := `🤖 **Crypto & Stocks Learning Bot - Commands**

**Learning Commands:**
/learn - Browse available learning modules
/crypto - Cryptocurrency fundamentals
/stocks - Stock trading basics
/quiz - Test your knowledge
/trivia - Random crypto trivia
/progress - View your learning progress
/reset - Reset your learning progress

**Market Commands:**
/price <symbol> - Live crypto price (e.g. /price btc)
/watchlist [symbol|clear] - Your ticker watchlist
/convert <amount> <from> <to> - Currency conversion
/news - Market news digest

**Fun & Utility:**
/quote - Motivational quote
/tips - Trading tip of the day
/gif - A mood for the market
/translate <text> - Quick Hindi phrases
/todo [item|done N] - Your todo list
/reminder <minutes> <text> - One-shot reminder
/getvideo <url> - Fetch an Instagram/X video
/stats - Bot usage stats
/leaderboard - Most active members

**Accountability:**
/penalty_status - Penalty ledger status
/penalty_tips - How to recover from penalties

💡 **Tip:** You can also just chat with me naturally! I'll remember our conversations and help you learn step by step.`

	_, err := cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, help)
	return err
}
