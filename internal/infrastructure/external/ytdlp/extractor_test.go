package ytdlp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeStub installs a shell script that stands in for yt-dlp.
func writeStub(t *testing.T, dir, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts need a POSIX shell")
	}
	path := filepath.Join(dir, "yt-dlp-stub")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func newTestExtractor(t *testing.T, binary string) *Extractor {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BinaryPath = binary
	cfg.DownloadDir = t.TempDir()
	ex, err := NewExtractor(cfg)
	require.NoError(t, err)
	return ex
}

func TestIsSupportedURL(t *testing.T) {
	assert.True(t, IsSupportedURL("https://www.instagram.com/reel/xyz/"))
	assert.True(t, IsSupportedURL("https://X.com/user/status/123"))
	assert.True(t, IsSupportedURL("https://twitter.com/user/status/123"))
	assert.False(t, IsSupportedURL("https://youtube.com/watch?v=abc"))
	assert.False(t, IsSupportedURL("not a url"))
}

func TestExtract_RejectsUnsupportedURL(t *testing.T) {
	ex := newTestExtractor(t, "/nonexistent/yt-dlp")

	_, err := ex.Extract(context.Background(), "https://youtube.com/watch?v=abc")

	assert.ErrorIs(t, err, ErrUnsupportedURL)
}

func TestExtract_Success(t *testing.T) {
	videoDir := t.TempDir()
	videoPath := filepath.Join(videoDir, "abc123.mp4")
	stub := writeStub(t, t.TempDir(),
		"printf 'mp4 bytes' > "+videoPath+"\n"+
			"echo "+videoPath+"\n"+
			"echo 'Test Clip'\n")

	ex := newTestExtractor(t, stub)
	video, err := ex.Extract(context.Background(), "https://instagram.com/reel/abc123/")

	require.NoError(t, err)
	assert.Equal(t, videoPath, video.Path)
	assert.Equal(t, "Test Clip", video.Title)
	assert.Equal(t, int64(9), video.Size)
	assert.FileExists(t, videoPath)
}

func TestExtract_OversizedVideoDeleted(t *testing.T) {
	videoDir := t.TempDir()
	videoPath := filepath.Join(videoDir, "big.mp4")
	stub := writeStub(t, t.TempDir(),
		"printf 'way too many bytes' > "+videoPath+"\n"+
			"echo "+videoPath+"\n"+
			"echo 'Huge Clip'\n")

	ex := newTestExtractor(t, stub)
	ex.config.MaxFileSize = 4

	_, err := ex.Extract(context.Background(), "https://x.com/user/status/1")

	var tooLarge *TooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(4), tooLarge.Limit)
	assert.NoFileExists(t, videoPath)
}

func TestExtract_BinaryFailure(t *testing.T) {
	stub := writeStub(t, t.TempDir(),
		"echo 'ERROR: this video is private' >&2\n"+
			"exit 1\n")

	ex := newTestExtractor(t, stub)
	_, err := ex.Extract(context.Background(), "https://instagram.com/p/secret/")

	assert.ErrorIs(t, err, ErrPrivateVideo)
}

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   error
	}{
		{"private", "ERROR: This post is private", ErrPrivateVideo},
		{"protected", "ERROR: protected tweet", ErrPrivateVideo},
		{"age restricted", "ERROR: age restricted content", ErrAgeRestricted},
		{"unavailable", "ERROR: video unavailable", ErrUnavailable},
		{"other", "ERROR: something odd happened", ErrDownloadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyFailure(tt.stderr, errors.New("exit status 1"))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParsePrintOutput(t *testing.T) {
	path, title, err := parsePrintOutput("videos/a.mp4\nMy Clip\n")
	require.NoError(t, err)
	assert.Equal(t, "videos/a.mp4", path)
	assert.Equal(t, "My Clip", title)

	path, title, err = parsePrintOutput("videos/b.mp4\n")
	require.NoError(t, err)
	assert.Equal(t, "videos/b.mp4", path)
	assert.Equal(t, "Video", title)

	_, _, err = parsePrintOutput("")
	assert.ErrorIs(t, err, ErrDownloadFailed)
}
