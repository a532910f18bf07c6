// Package secrets loads API keys and tokens from the configured
// credential directory.
//
// Grounded on original_source/shorts_factory/src/security/
// secure_credential_manager.py's SecureCredentialManager: a dedicated,
// restricted-permission directory, and every access logged. That
// original backs onto macOS Keychain, which has no portable Go
// equivalent; this package keeps its two load-bearing guarantees
// instead — secrets never live in config.toml or an environment
// dump, and each credential file's mode is checked before it is read
// (the directory's own mode is not checked) — backed by the filesystem rather than a platform keychain,
// the same way the project already reads TextGen/TTS/Dashboard API keys
// from config.toml fields for the services already wired.
package secrets
