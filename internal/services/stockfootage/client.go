package stockfootage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shortfactory/internal/resilience"
	"shortfactory/internal/stage"
)

// Config captures the runtime settings required to talk to the stock
// footage provider.
type Config struct {
	APIKey         string
	BaseURL        string
	PerPage        int
	TimeoutSeconds int
}

// Client wraps the Pexels video search API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient constructs a stock footage client using the supplied configuration.
func NewClient(cfg Config) *Client {
	timeout := 15 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.pexels.com/videos"
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = 5
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout, Transport: resilience.NewTransport(resilience.ClassSearch)}}
}

type pexelsSearchResponse struct {
	TotalResults int `json:"total_results"`
	Videos       []struct {
		ID       int     `json:"id"`
		Duration float64 `json:"duration"`
		Width    int     `json:"width"`
		Height   int     `json:"height"`
		VideoFiles []struct {
			Link    string `json:"link"`
			Quality string `json:"quality"`
			Width   int    `json:"width"`
			Height  int    `json:"height"`
		} `json:"video_files"`
	} `json:"videos"`
}

// Search queries the provider for clips matching query, portrait-oriented
// for vertical short-form video.
func (c *Client) Search(ctx context.Context, query string) (stage.StockClipSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return stage.StockClipSearchResult{}, errors.New("stockfootage search: query required")
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return stage.StockClipSearchResult{}, errors.New("stockfootage search: api key required")
	}

	values := url.Values{}
	values.Set("query", query)
	values.Set("per_page", strconv.Itoa(c.cfg.PerPage))
	values.Set("orientation", "portrait")
	values.Set("size", "medium")
	values.Set("locale", "en-US")

	endpoint := c.cfg.BaseURL + "/search?" + values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return stage.StockClipSearchResult{}, fmt.Errorf("stockfootage search: new request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return stage.StockClipSearchResult{}, fmt.Errorf("stockfootage search: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return stage.StockClipSearchResult{}, fmt.Errorf("stockfootage search: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return stage.StockClipSearchResult{}, fmt.Errorf("stockfootage search: http %d", resp.StatusCode)
	}

	var parsed pexelsSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return stage.StockClipSearchResult{}, fmt.Errorf("stockfootage search: decode response: %w", err)
	}

	result := stage.StockClipSearchResult{Query: query}
	for _, v := range parsed.Videos {
		link := bestVideoFile(v.VideoFiles)
		if link == "" {
			continue
		}
		result.Clips = append(result.Clips, stage.StockClip{
			ID:              strconv.Itoa(v.ID),
			URL:             link,
			DurationSeconds: v.Duration,
			Width:           v.Width,
			Height:          v.Height,
		})
	}
	return result, nil
}

func bestVideoFile(files []struct {
	Link    string `json:"link"`
	Quality string `json:"quality"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}) string {
	for _, f := range files {
		if f.Quality == "sd" || f.Quality == "hd" {
			return f.Link
		}
	}
	if len(files) > 0 {
		return files[0].Link
	}
	return ""
}

// HealthCheck issues a minimal search to verify the API key is usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.Search(ctx, "nature")
	return err
}
