package videoassembly

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const (
	targetWidth  = 1080
	targetHeight = 1920
	targetFPS    = 30
	videoCodec   = "libx264"
	audioCodec   = "aac"
	videoBitrate = "2500k"
	audioBitrate = "128k"
)

// Config configures the ffmpeg binary location.
type Config struct {
	BinaryPath string
}

// Client drives the local ffmpeg binary to assemble a vertical video.
type Client struct {
	binary string
}

// NewClient constructs an assembly client. An empty BinaryPath falls back
// to resolving "ffmpeg" on PATH.
func NewClient(cfg Config) *Client {
	binary := cfg.BinaryPath
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Client{binary: binary}
}

// Assemble overlays narrationPath onto the concatenated clipPaths, scaled
// and cropped to the target vertical frame, and writes the result to
// outputPath.
func (c *Client) Assemble(ctx context.Context, narrationPath string, clipPaths []string, outputPath string) error {
	if narrationPath == "" {
		return errors.New("videoassembly assemble: narration path required")
	}
	if len(clipPaths) == 0 {
		return errors.New("videoassembly assemble: at least one clip required")
	}
	if outputPath == "" {
		return errors.New("videoassembly assemble: output path required")
	}

	args := []string{"-y"}
	for _, clip := range clipPaths {
		args = append(args, "-i", clip)
	}
	args = append(args, "-i", narrationPath)

	var filter strings.Builder
	for i := range clipPaths {
		fmt.Fprintf(&filter,
			"[%d:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,fps=%d,setsar=1[v%d];",
			i, targetWidth, targetHeight, targetWidth, targetHeight, targetFPS, i,
		)
	}
	for i := range clipPaths {
		fmt.Fprintf(&filter, "[v%d]", i)
	}
	fmt.Fprintf(&filter, "concat=n=%d:v=1:a=0[outv]", len(clipPaths))
	args = append(args,
		"-filter_complex", filter.String(),
		"-map", "[outv]",
		"-map", fmt.Sprintf("%d:a", len(clipPaths)),
		"-c:v", videoCodec,
		"-b:v", videoBitrate,
		"-c:a", audioCodec,
		"-b:a", audioBitrate,
		"-shortest",
		outputPath,
	)

	cmd := exec.CommandContext(ctx, c.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("videoassembly assemble: ffmpeg failed: %w: %s", err, stderr.String())
	}
	return nil
}

// HealthCheck verifies the ffmpeg binary is invokable.
func (c *Client) HealthCheck(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.binary, "-version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("videoassembly health: %w", err)
	}
	return nil
}
