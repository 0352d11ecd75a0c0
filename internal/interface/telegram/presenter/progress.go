package presenter

import (
	"fmt"
	"strings"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/query"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/content"
	"github.com/ayaka-hub/ayaka-learning-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS PRESENTER
// Renders the learning catalog, the progress card and quiz questions.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressPresenter formats learning state for Telegram.
type ProgressPresenter struct{}

// NewProgressPresenter creates the presenter.
func NewProgressPresenter() *ProgressPresenter {
	return &ProgressPresenter{}
}

// FormatModuleList renders the catalog with per-module completion marks.
func (p *ProgressPresenter) FormatModuleList(modules []content.Module, completed []string) string {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}

	var sb strings.Builder
	sb.WriteString("📚 **Available Learning Modules:**\n\n")
	for _, m := range modules {
		status := "📖"
		if done[m.ID] {
			status = "✅"
		}
		fmt.Fprintf(&sb, "%s **%s**\n", status, m.Title)
		fmt.Fprintf(&sb, "   └ %s\n", m.Description)
		fmt.Fprintf(&sb, "   └ Use: /module_%s\n\n", m.ID)
	}
	sb.WriteString("Open a module to mark it complete and grow your streak!")
	return sb.String()
}

// FormatProgress renders the progress card.
func (p *ProgressPresenter) FormatProgress(displayName string, view *query.ProgressView) string {
	if displayName == "" {
		displayName = "Student"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 **Learning Progress for %s**\n\n", displayName)
	fmt.Fprintf(&sb, "🎯 **Overall Progress:** %d%%\n", view.OverallScore)
	fmt.Fprintf(&sb, "🏆 **Completed Modules:** %d of %d\n", len(view.CompletedModules), view.TotalModules)
	fmt.Fprintf(&sb, "🔥 **Current Streak:** %d days\n", view.StreakCount)
	fmt.Fprintf(&sb, "❓ **Quizzes Taken:** %d\n", view.QuizzesTaken)
	fmt.Fprintf(&sb, "🎓 **Skill Level:** %s\n", capitalize(string(view.SkillLevel)))
	if !view.LastActivityDate.IsZero() {
		fmt.Fprintf(&sb, "🕒 **Last Activity:** %s\n", timeutil.FormatRelative(view.LastActivityDate))
	}

	if len(view.RecentTopics) > 0 {
		sb.WriteString("\n📚 **Recent Topics:**\n")
		topics := view.RecentTopics
		if len(topics) > 5 {
			topics = topics[len(topics)-5:]
		}
		for _, topic := range topics {
			fmt.Fprintf(&sb, "• %s\n", topic)
		}
	}

	sb.WriteString("\nKeep learning every day! 💪")
	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatQuestion renders a quiz or trivia question with lettered options.
func (p *ProgressPresenter) FormatQuestion(title string, q content.Question) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n%s\n\n", title, q.Question)
	for i, opt := range q.Options {
		fmt.Fprintf(&sb, "%c) %s\n", 'A'+i, opt)
	}
	sb.WriteString("\nReply with your answer!")
	return sb.String()
}

// FormatAnswerReveal renders the correct answer for a question.
func (p *ProgressPresenter) FormatAnswerReveal(q content.Question) string {
	return fmt.Sprintf("💡 Answer: %c) %s", 'A'+q.Answer, q.Options[q.Answer])
}
