// Package ytdlp downloads videos from Instagram and X posts by shelling
// out to the yt-dlp binary. Downloads land in a scratch directory and are
// capped at the Telegram upload limit; anything larger is deleted before
// it can be delivered.
package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// DefaultMaxFileSize is the Telegram bot upload ceiling.
const DefaultMaxFileSize = 50 * 1024 * 1024

// supportedDomains lists the hosts the extractor accepts.
var supportedDomains = []string{
	"instagram.com", "instagr.am", "insta.am",
	"x.com", "twitter.com", "post.x.com",
}

// Config contains configuration for the video extractor.
type Config struct {
	// BinaryPath is the yt-dlp executable, looked up on PATH when bare
	BinaryPath string

	// DownloadDir is where videos are written before upload
	DownloadDir string

	// MaxFileSize is the delivery ceiling in bytes
	MaxFileSize int64

	// Timeout bounds a single download
	Timeout time.Duration

	// Logger for structured logging
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BinaryPath:  "yt-dlp",
		DownloadDir: "videos",
		MaxFileSize: DefaultMaxFileSize,
		Timeout:     2 * time.Minute,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrUnsupportedURL - the link is not an Instagram or X post.
	ErrUnsupportedURL = errors.New("not an Instagram or X post link")

	// ErrPrivateVideo - the post is private or protected.
	ErrPrivateVideo = errors.New("video is private or protected")

	// ErrAgeRestricted - the post is age-restricted.
	ErrAgeRestricted = errors.New("video is age-restricted")

	// ErrUnavailable - the post was deleted or is otherwise gone.
	ErrUnavailable = errors.New("video is unavailable or deleted")

	// ErrDownloadFailed - yt-dlp failed for a reason we do not classify.
	ErrDownloadFailed = errors.New("video download failed")
)

// TooLargeError reports a video that downloaded fine but exceeds the
// delivery ceiling. The file is already deleted when this is returned.
type TooLargeError struct {
	Size  int64
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("video too large (%.1fMB, limit %.0fMB)",
		float64(e.Size)/(1024*1024), float64(e.Limit)/(1024*1024))
}

// ══════════════════════════════════════════════════════════════════════════════
// EXTRACTOR
// ══════════════════════════════════════════════════════════════════════════════

// Video is a successfully downloaded clip, ready for upload.
type Video struct {
	Path  string
	Title string
	Size  int64
}

// Extractor downloads videos via the yt-dlp binary.
type Extractor struct {
	config Config
	logger *slog.Logger
}

// NewExtractor creates the extractor and its download directory.
func NewExtractor(config Config) (*Extractor, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = DefaultMaxFileSize
	}
	if err := os.MkdirAll(config.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}
	return &Extractor{config: config, logger: config.Logger}, nil
}

// IsSupportedURL reports whether the link points at a host we can pull from.
func IsSupportedURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, domain := range supportedDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// Extract downloads the video behind url. The caller owns the returned
// file and should remove it after upload.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Video, error) {
	if !IsSupportedURL(rawURL) {
		return nil, ErrUnsupportedURL
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	outTemplate := filepath.Join(e.config.DownloadDir, "%(id)s.%(ext)s")
	cmd := exec.CommandContext(ctx, e.config.BinaryPath,
		"--format", "best[ext=mp4]/best",
		"--output", outTemplate,
		"--quiet",
		"--no-warnings",
		"--socket-timeout", "30",
		"--print", "after_move:filepath",
		"--print", "title",
		"--no-simulate",
		rawURL,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Info("downloading video", "url", rawURL)
	if err := cmd.Run(); err != nil {
		return nil, classifyFailure(stderr.String(), err)
	}

	path, title, err := parsePrintOutput(stdout.String())
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: downloaded file missing", ErrDownloadFailed)
	}

	if info.Size() > e.config.MaxFileSize {
		// Never deliver an oversized file.
		if rmErr := os.Remove(path); rmErr != nil {
			e.logger.Warn("failed to remove oversized video", "path", path, "error", rmErr)
		}
		return nil, &TooLargeError{Size: info.Size(), Limit: e.config.MaxFileSize}
	}

	e.logger.Info("video downloaded", "path", path, "size_bytes", info.Size())
	return &Video{Path: path, Title: title, Size: info.Size()}, nil
}

// parsePrintOutput splits yt-dlp's --print output. Line order matches the
// flag order on the command line: filepath first, then title.
func parsePrintOutput(out string) (path, title string, err error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 1 || strings.TrimSpace(lines[0]) == "" {
		return "", "", fmt.Errorf("%w: no output path reported", ErrDownloadFailed)
	}
	path = strings.TrimSpace(lines[0])
	title = "Video"
	if len(lines) > 1 && strings.TrimSpace(lines[1]) != "" {
		title = strings.TrimSpace(lines[1])
	}
	return path, title, nil
}

// classifyFailure maps yt-dlp stderr to the error taxonomy.
func classifyFailure(stderr string, runErr error) error {
	msg := strings.ToLower(stderr)
	switch {
	case strings.Contains(msg, "private") || strings.Contains(msg, "protected"):
		return ErrPrivateVideo
	case strings.Contains(msg, "age restricted") || strings.Contains(msg, "age-restricted"):
		return ErrAgeRestricted
	case strings.Contains(msg, "unavailable"):
		return ErrUnavailable
	}

	detail := strings.TrimSpace(stderr)
	if len(detail) > 120 {
		detail = detail[:120]
	}
	if detail == "" {
		detail = runErr.Error()
	}
	return fmt.Errorf("%w: %s", ErrDownloadFailed, detail)
}
