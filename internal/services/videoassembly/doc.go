// Package videoassembly combines narration audio and sourced stock clips
// into a single vertical video using ffmpeg.
//
// Grounded on original_source/shorts_factory/src/integrations/ffmpeg_video.py's
// FFmpegVideoAssembly: 1080x1920 output, 30fps, libx264/aac, 2500k/128k
// bitrates. Unlike the HTTP-backed collaborators, this runs a local
// subprocess; resilience.Manager still mediates the call for its timeout
// and circuit-breaker bookkeeping; ffmpeg failures are not retried, since
// retrying a deterministic encode failure changes nothing.
package videoassembly
