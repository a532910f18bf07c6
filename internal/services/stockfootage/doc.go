// Package stockfootage searches a stock-video provider for clips matching
// a narration's topic.
//
// Grounded on original_source/shorts_factory/src/integrations/pexels_api.py's
// PexelsVideoSourcing: portrait orientation, medium size, English locale,
// five candidates per search. Decoded responses are returned as
// internal/stage.StockClipSearchResult, the shared schema.
package stockfootage
