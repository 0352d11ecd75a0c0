package query

import (
	"context"
	"fmt"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/progress"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ProgressView is the read model for the progress command.
type ProgressView struct {
	CompletedModules []string
	TotalModules     int
	OverallScore     int
	SkillLevel       progress.SkillLevel
	StreakCount      int
	QuizzesTaken     int
	RecentTopics     []string
	LastActivityDate time.Time
}

// GetProgressHandler answers the progress query.
type GetProgressHandler struct {
	repo         progress.Repository
	totalModules int
}

// NewGetProgressHandler creates the handler. totalModules comes from
// the static content catalog.
func NewGetProgressHandler(repo progress.Repository, totalModules int) *GetProgressHandler {
	return &GetProgressHandler{repo: repo, totalModules: totalModules}
}

// Handle returns the progress view; identities without progress get the
// default-initialised view.
func (h *GetProgressHandler) Handle(ctx context.Context, telegramID int64) (*ProgressView, error) {
	rec, err := h.repo.GetOrDefault(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	modules := make([]string, 0, len(rec.CompletedModules))
	for _, id := range rec.CompletedModules {
		modules = append(modules, string(id))
	}

	return &ProgressView{
		CompletedModules: modules,
		TotalModules:     h.totalModules,
		OverallScore:     rec.OverallScore(h.totalModules),
		SkillLevel:       rec.SkillLevel,
		StreakCount:      rec.StreakCount,
		QuizzesTaken:     rec.QuizzesTaken,
		RecentTopics:     append([]string(nil), rec.RecentTopics...),
		LastActivityDate: rec.LastActivityDate,
	}, nil
}
