package trend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shortfactory/internal/resilience"
)

// Subreddits grouped by content category, mirroring the teacher's fixed
// target list.
var Subreddits = map[string][]string{
	"career": {
		"careerguidance", "careeradvice", "jobs",
		"ITCareerQuestions", "cscareerquestions", "resumes",
	},
	"self_help": {
		"getmotivated", "selfimprovement", "decidingtobebetter",
		"productivity", "getdisciplined", "motivation",
	},
	"stories": {
		"tifu", "AmItheAsshole", "relationship_advice",
		"LifeProTips", "YouShouldKnow", "todayilearned",
	},
}

const (
	minScore     = 100
	maxAgeHours  = 24
	defaultLimit = 25
)

// Config captures the runtime settings required to talk to Reddit.
type Config struct {
	BaseURL        string
	UserAgent      string
	TimeoutSeconds int
}

// Client wraps Reddit's public JSON listing API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient constructs a trend client using the supplied configuration.
func NewClient(cfg Config) *Client {
	timeout := 15 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://www.reddit.com"
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = "shortfactory-trend-ingest/1.0"
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout, Transport: resilience.NewTransport(resilience.ClassAPI)}}
}

// Candidate is one trending post considered as a content idea source.
type Candidate struct {
	Subreddit string
	Title     string
	Body      string
	Score     int
	CreatedAt time.Time
	URL       string
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				Score       int     `json:"score"`
				CreatedUTC  float64 `json:"created_utc"`
				Permalink   string  `json:"permalink"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchTop returns posts from subreddit newer than maxAgeHours with at
// least minScore upvotes.
func (c *Client) FetchTop(ctx context.Context, subreddit string) ([]Candidate, error) {
	subreddit = strings.TrimSpace(subreddit)
	if subreddit == "" {
		return nil, fmt.Errorf("trend fetch: subreddit required")
	}
	endpoint := fmt.Sprintf("%s/r/%s/top.json?limit=%d&t=day", c.cfg.BaseURL, subreddit, defaultLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("trend fetch: new request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trend fetch: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("trend fetch: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("trend fetch: http %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("trend fetch: decode response: %w", err)
	}

	cutoff := time.Now().Add(-maxAgeHours * time.Hour)
	var candidates []Candidate
	for _, child := range listing.Data.Children {
		post := child.Data
		createdAt := time.Unix(int64(post.CreatedUTC), 0)
		if post.Score < minScore || createdAt.Before(cutoff) {
			continue
		}
		candidates = append(candidates, Candidate{
			Subreddit: subreddit,
			Title:     strings.TrimSpace(post.Title),
			Body:      strings.TrimSpace(post.Selftext),
			Score:     post.Score,
			CreatedAt: createdAt,
			URL:       c.cfg.BaseURL + post.Permalink,
		})
	}
	return candidates, nil
}

// HealthCheck verifies the configured endpoint is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.FetchTop(ctx, "getmotivated")
	return err
}
