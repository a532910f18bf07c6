package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shortfactory/internal/resilience"
)

// defaultVoiceID is ElevenLabs' "Rachel" voice: natural and versatile,
// matching the teacher script's default.
const defaultVoiceID = "21m00Tcm4TlvDq8ikWAM"

const defaultModelID = "eleven_multilingual_v2"

// Config captures the runtime settings required to talk to the TTS provider.
type Config struct {
	APIKey         string
	BaseURL        string
	VoiceID        string
	TimeoutSeconds int
}

// Client wraps the ElevenLabs text-to-speech API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient constructs a TTS client using the supplied configuration.
func NewClient(cfg Config) *Client {
	timeout := 30 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.elevenlabs.io/v1"
	}
	if strings.TrimSpace(cfg.VoiceID) == "" {
		cfg.VoiceID = defaultVoiceID
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout, Transport: resilience.NewTransport(resilience.ClassGeneration)}}
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	SpeakerBoost    bool    `json:"use_speaker_boost"`
}

// Result captures the synthesized narration audio.
type Result struct {
	Audio       []byte
	ContentType string
}

// Synthesize converts script text into narration audio.
func (c *Client) Synthesize(ctx context.Context, script string) (Result, error) {
	script = strings.TrimSpace(script)
	if script == "" {
		return Result{}, errors.New("tts synthesize: script required")
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return Result{}, errors.New("tts synthesize: api key required")
	}

	payload, err := json.Marshal(synthesizeRequest{
		Text:    script,
		ModelID: defaultModelID,
		VoiceSettings: voiceSettings{
			Stability:       0.75,
			SimilarityBoost: 0.75,
			Style:           0.20,
			SpeakerBoost:    true,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("tts synthesize: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/text-to-speech/%s", c.cfg.BaseURL, c.cfg.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("tts synthesize: new request: %w", err)
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("tts synthesize: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("tts synthesize: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return Result{}, fmt.Errorf("tts synthesize: http %d: %s", resp.StatusCode, summarize(body))
	}
	return Result{Audio: body, ContentType: resp.Header.Get("Content-Type")}, nil
}

// HealthCheck verifies the configured voice can be fetched.
func (c *Client) HealthCheck(ctx context.Context) error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return errors.New("tts health: api key required")
	}
	endpoint := fmt.Sprintf("%s/voices/%s", c.cfg.BaseURL, c.cfg.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("tts health: new request: %w", err)
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tts health: http error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("tts health: http %d", resp.StatusCode)
	}
	return nil
}

func summarize(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > 200 {
		trimmed = trimmed[:200] + "..."
	}
	return trimmed
}
