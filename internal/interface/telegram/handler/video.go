package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/external/ytdlp"
)

// ══════════════════════════════════════════════════════════════════════════════
// VIDEO HANDLER
// Fetches Instagram/X videos through yt-dlp and relays them into the
// chat. Oversized downloads are already deleted by the extractor and
// only ever reach the user as an apology.
// ══════════════════════════════════════════════════════════════════════════════

// VideoHandler handles /getvideo.
type VideoHandler struct {
	extractor *ytdlp.Extractor
	logger    *slog.Logger
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(extractor *ytdlp.Extractor, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{extractor: extractor, logger: logger}
}

// GetVideo processes /getvideo <url>.
func (h *VideoHandler) GetVideo(ctx context.Context, cmdCtx Context) error {
	url := strings.TrimSpace(cmdCtx.Args)
	if url == "" {
		_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
			"Usage: /getvideo <url> (Instagram and X links)")
		return err
	}

	if !ytdlp.IsSupportedURL(url) {
		_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
			"🤔 I can only fetch videos from Instagram and X.")
		return err
	}

	// The download can take a while; the action keeps the chat alive.
	if err := cmdCtx.Client.SendChatAction(ctx, cmdCtx.ChatID, "upload_video"); err != nil {
		h.logger.Debug("failed to send chat action", "error", err)
	}

	video, err := h.extractor.Extract(ctx, url)
	if err != nil {
		_, sendErr := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, describeExtractError(err))
		return sendErr
	}
	defer func() {
		if err := os.Remove(video.Path); err != nil && !os.IsNotExist(err) {
			h.logger.Warn("failed to remove downloaded video", "path", video.Path, "error", err)
		}
	}()

	if _, err := cmdCtx.Client.SendVideo(ctx, cmdCtx.ChatID, video.Path, video.Title); err != nil {
		h.logger.Error("failed to deliver video", "url", url, "error", err)
		_, sendErr := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
			"😔 The download worked but the upload failed. Try again?")
		return sendErr
	}
	return nil
}

func describeExtractError(err error) string {
	var tooLarge *ytdlp.TooLargeError
	switch {
	case errors.As(err, &tooLarge):
		return fmt.Sprintf(
			"📦 That video is %.1f MB, over my %d MB limit, so I can't send it.",
			float64(tooLarge.Size)/(1024*1024), tooLarge.Limit/(1024*1024))
	case errors.Is(err, ytdlp.ErrPrivateVideo):
		return "🔒 That video is private or protected."
	case errors.Is(err, ytdlp.ErrAgeRestricted):
		return "🔞 That video is age restricted, I can't fetch it."
	case errors.Is(err, ytdlp.ErrUnavailable):
		return "🤷 That video is unavailable or was deleted."
	default:
		return "😔 I couldn't download that video. Try another link?"
	}
}
