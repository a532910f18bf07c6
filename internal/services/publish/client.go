package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"shortfactory/internal/resilience"
)

const (
	uploadEndpoint       = "https://www.googleapis.com/upload/youtube/v3/videos"
	defaultCategoryID    = "22" // People & Blogs
	defaultPrivacyStatus = "public"
)

// Config captures the runtime settings required to upload to YouTube.
type Config struct {
	AccessToken    string
	PrivacyStatus  string
	CategoryID     string
	MadeForKids    bool
	TimeoutSeconds int
}

// Client wraps the YouTube Data API v3 video upload endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient constructs a publish client using the supplied configuration.
func NewClient(cfg Config) *Client {
	timeout := 300 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if strings.TrimSpace(cfg.PrivacyStatus) == "" {
		cfg.PrivacyStatus = defaultPrivacyStatus
	}
	if strings.TrimSpace(cfg.CategoryID) == "" {
		cfg.CategoryID = defaultCategoryID
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout, Transport: resilience.NewTransport(resilience.ClassDownload)}}
}

// Metadata describes the title, description, and tags to attach to the
// uploaded video.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
}

// Result captures the published video's identity.
type Result struct {
	VideoID string
	URL     string
}

type videoSnippet struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	CategoryID  string   `json:"categoryId"`
}

type videoStatus struct {
	PrivacyStatus           string `json:"privacyStatus"`
	SelfDeclaredMadeForKids bool   `json:"selfDeclaredMadeForKids"`
}

type videoResource struct {
	Snippet videoSnippet `json:"snippet"`
	Status  videoStatus  `json:"status"`
}

type uploadResponse struct {
	ID string `json:"id"`
}

// Upload publishes the video at videoPath with the supplied metadata.
func (c *Client) Upload(ctx context.Context, videoPath string, meta Metadata) (Result, error) {
	if strings.TrimSpace(c.cfg.AccessToken) == "" {
		return Result{}, errors.New("publish upload: access token required")
	}
	if strings.TrimSpace(videoPath) == "" {
		return Result{}, errors.New("publish upload: video path required")
	}

	file, err := os.Open(videoPath)
	if err != nil {
		return Result{}, fmt.Errorf("publish upload: open video: %w", err)
	}
	defer file.Close()

	resource := videoResource{
		Snippet: videoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryID:  c.cfg.CategoryID,
		},
		Status: videoStatus{
			PrivacyStatus:           c.cfg.PrivacyStatus,
			SelfDeclaredMadeForKids: c.cfg.MadeForKids,
		},
	}
	metaJSON, err := json.Marshal(resource)
	if err != nil {
		return Result{}, fmt.Errorf("publish upload: encode metadata: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	metaPart, err := writer.CreatePart(multipartHeader("application/json; charset=UTF-8"))
	if err != nil {
		return Result{}, fmt.Errorf("publish upload: create metadata part: %w", err)
	}
	if _, err := metaPart.Write(metaJSON); err != nil {
		return Result{}, fmt.Errorf("publish upload: write metadata part: %w", err)
	}

	videoPart, err := writer.CreatePart(multipartHeader("video/mp4"))
	if err != nil {
		return Result{}, fmt.Errorf("publish upload: create video part: %w", err)
	}
	if _, err := io.Copy(videoPart, file); err != nil {
		return Result{}, fmt.Errorf("publish upload: write video part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Result{}, fmt.Errorf("publish upload: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadEndpoint+"?uploadType=multipart&part=snippet,status", body)
	if err != nil {
		return Result{}, fmt.Errorf("publish upload: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("publish upload: http error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("publish upload: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return Result{}, fmt.Errorf("publish upload: http %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed uploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Result{}, fmt.Errorf("publish upload: decode response: %w", err)
	}
	if parsed.ID == "" {
		return Result{}, errors.New("publish upload: response missing video id")
	}
	return Result{
		VideoID: parsed.ID,
		URL:     "https://youtu.be/" + parsed.ID,
	}, nil
}

func multipartHeader(contentType string) map[string][]string {
	return map[string][]string{"Content-Type": {contentType}}
}

// HealthCheck verifies the access token can reach the channels endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	if strings.TrimSpace(c.cfg.AccessToken) == "" {
		return errors.New("publish health: access token required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://www.googleapis.com/youtube/v3/channels?part=id&mine=true", nil)
	if err != nil {
		return fmt.Errorf("publish health: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("publish health: http error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("publish health: http %d", resp.StatusCode)
	}
	return nil
}
