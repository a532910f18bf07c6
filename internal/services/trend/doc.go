// Package trend pulls trending story candidates from Reddit for the
// ideation backlog.
//
// Grounded on original_source/shorts_factory/src/integrations/
// reddit_api.py's RedditContentExtractor: fixed subreddit lists per
// content category, a minimum score and a maximum post age, read-only
// access through Reddit's public JSON listing endpoints (no OAuth
// required for read access, unlike the original's optional
// authenticated path).
package trend
