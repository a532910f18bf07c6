// Package tts synthesizes narration audio from a finished script.
//
// The client speaks the ElevenLabs text-to-speech HTTP API, grounded on
// original_source/shorts_factory/src/integrations/elevenlabs_api.py:
// the same voice, stability/similarity/style knobs, and MP3 output format.
// Retries and circuit breaking are left entirely to resilience.Manager;
// the client issues one request per call.
package tts
