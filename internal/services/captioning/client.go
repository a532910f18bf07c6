package captioning

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Config configures the local whisper, ffmpeg, and ffprobe binaries.
type Config struct {
	WhisperBinaryPath string
	FFmpegBinaryPath  string
	FFprobeBinaryPath string
}

// Client drives local whisper alignment and ffmpeg caption burn-in.
type Client struct {
	whisperBinary string
	ffmpegBinary  string
	ffprobeBinary string
}

// NewClient constructs a captioning client. Empty paths fall back to
// resolving the binaries on PATH.
func NewClient(cfg Config) *Client {
	whisper := cfg.WhisperBinaryPath
	if whisper == "" {
		whisper = "whisper"
	}
	ffmpeg := cfg.FFmpegBinaryPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	ffprobe := cfg.FFprobeBinaryPath
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	return &Client{whisperBinary: whisper, ffmpegBinary: ffmpeg, ffprobeBinary: ffprobe}
}

// Align runs word-level alignment against audioPath and writes the
// resulting subtitle track to srtPath.
func (c *Client) Align(ctx context.Context, audioPath, srtPath string) error {
	if audioPath == "" || srtPath == "" {
		return errors.New("captioning align: audio and srt paths required")
	}
	outDir := filepath.Dir(srtPath)
	cmd := exec.CommandContext(ctx, c.whisperBinary,
		audioPath,
		"--output_format", "srt",
		"--output_dir", outDir,
		"--word_timestamps", "True",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("captioning align: whisper failed: %w: %s", err, stderr.String())
	}
	if _, err := os.Stat(srtPath); err != nil {
		return fmt.Errorf("captioning align: expected subtitle output missing: %w", err)
	}
	return nil
}

// Burn overlays the subtitle track at srtPath onto videoPath and writes the
// captioned result to outputPath.
func (c *Client) Burn(ctx context.Context, videoPath, srtPath, outputPath string) error {
	if videoPath == "" || srtPath == "" || outputPath == "" {
		return errors.New("captioning burn: video, srt, and output paths required")
	}
	filter := fmt.Sprintf("subtitles=%s", escapeFilterPath(srtPath))
	cmd := exec.CommandContext(ctx, c.ffmpegBinary,
		"-y", "-i", videoPath,
		"-vf", filter,
		"-c:a", "copy",
		outputPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("captioning burn: ffmpeg failed: %w: %s", err, stderr.String())
	}
	return nil
}

// ProbeDuration reports mediaPath's duration in seconds via ffprobe. Used
// to cross-check aligned caption timestamps against the narration
// audio's actual length before burn-in.
func (c *Client) ProbeDuration(ctx context.Context, mediaPath string) (float64, error) {
	if mediaPath == "" {
		return 0, errors.New("captioning probe: media path required")
	}
	cmd := exec.CommandContext(ctx, c.ffprobeBinary,
		"-i", mediaPath,
		"-show_entries", "format=duration",
		"-v", "quiet",
		"-of", "csv=p=0",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("captioning probe: ffprobe failed: %w: %s", err, stderr.String())
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("captioning probe: parse duration: %w", err)
	}
	return duration, nil
}

// escapeFilterPath escapes characters ffmpeg's filtergraph parser treats
// specially when a path is embedded inside a filter option value.
func escapeFilterPath(path string) string {
	return strings.ReplaceAll(path, ":", `\:`)
}

// HealthCheck verifies the ffmpeg, whisper and ffprobe binaries are
// invokable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := exec.CommandContext(ctx, c.ffmpegBinary, "-version").Run(); err != nil {
		return fmt.Errorf("captioning health: ffmpeg: %w", err)
	}
	if err := exec.CommandContext(ctx, c.whisperBinary, "--help").Run(); err != nil {
		return fmt.Errorf("captioning health: whisper: %w", err)
	}
	if err := exec.CommandContext(ctx, c.ffprobeBinary, "-version").Run(); err != nil {
		return fmt.Errorf("captioning health: ffprobe: %w", err)
	}
	return nil
}
