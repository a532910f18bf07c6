// Package publish uploads a finished, captioned video to YouTube.
//
// Grounded on original_source/shorts_factory/src/integrations/
// youtube_api.py's YouTubeAPIManager: upload against the YouTube Data
// API v3, "People & Blogs" default category, configurable privacy status.
// The video is sent in a single multipart request; this client does not
// use the resumable upload protocol. The OAuth 2.0 token exchange itself is out of scope
// (the original's InstalledAppFlow is an interactive, one-time setup
// step); this client expects an already-minted bearer token supplied by
// internal/secrets, the same way the original reads a cached
// youtube_token.pickle rather than re-running the consent flow per call.
package publish
