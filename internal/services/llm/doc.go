// Package llm provides an OpenRouter-compatible chat completion client used
// by the text-generation operation class: idea titles, ~160-word scripts,
// and publish metadata (title/description/tags).
//
// # Generation
//
// The client sends a system/user prompt pair to a configured model and
// requests JSON-only output, decoded with DecodeLLMJSON which tolerates code
// fences and surrounding prose.
//
// # Configuration
//
// Requires api_key, model, and optionally base_url, referer, title, timeout.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive JSON response.
// Client.GenerateScript: ~160-word script generation for a concept.
// Client.GenerateTitles: candidate title generation for ideation.
// Client.GenerateMetadata: title/description/tags for publication.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors and network timeouts with
// exponential backoff (base 1s, max 10s, up to 5 attempts by default).
// Context cancellation aborts retries immediately.
//
// # Fallback
//
// If the LLM is unavailable or returns an error, callers should fall back to
// sensible defaults.
package llm
