// Package captioning aligns narration audio to word-level timestamps and
// burns the resulting captions into the assembled video.
//
// Grounded on original_source/shorts_factory/src/integrations/
// whisper_alignment.py (word-level alignment via a local whisper model,
// including its validate_alignment_quality cue-span checks, carried here
// as ValidateCues) and ffmpeg_captions.py (burning an SRT track into the
// frame via ffmpeg's subtitles filter). These steps are local
// subprocesses, mediated the same way videoassembly's ffmpeg calls are.
package captioning
