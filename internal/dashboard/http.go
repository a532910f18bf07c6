package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"shortfactory/internal/config"
	"shortfactory/internal/resilience"
)

// HTTPStore talks to an external row-store HTTP API. It performs no
// retries of its own: the caller wraps every call through
// resilience.Manager.Call with the "api" operation class, matching how
// the LLM client and this store both leave backoff to their caller
// rather than duplicating retry logic in two places.
type HTTPStore struct {
	endpoint    string
	bearerToken string
	httpClient  *http.Client
}

// NewHTTPStore constructs an HTTPStore from dashboard config. bearerToken
// is sent as an Authorization header on every request when non-empty; the
// caller reads it from the credential file named by cfg.CredentialsPath
// via internal/secrets rather than storing it in config.toml.
func NewHTTPStore(cfg config.Dashboard, bearerToken string) *HTTPStore {
	timeout := time.Duration(cfg.RequestTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPStore{
		endpoint:    cfg.Endpoint,
		bearerToken: bearerToken,
		httpClient:  &http.Client{Timeout: timeout, Transport: resilience.NewTransport(resilience.ClassAPI)},
	}
}

type wireRow struct {
	ItemID         string `json:"item_id"`
	Source         string `json:"source"`
	TitleConcept   string `json:"title_concept"`
	Status         string `json:"status"`
	ScriptPath     string `json:"script_path"`
	AudioFile      string `json:"audio_file"`
	VideoFile      string `json:"video_file"`
	PublicationURL string `json:"publication_url"`
	ErrorLog       string `json:"error_log"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

func (w wireRow) toRow() Row {
	created, _ := time.Parse(time.RFC3339, w.CreatedAt)
	updated, _ := time.Parse(time.RFC3339, w.UpdatedAt)
	return Row{
		ItemID:         w.ItemID,
		Source:         w.Source,
		TitleConcept:   w.TitleConcept,
		Status:         w.Status,
		ScriptPath:     w.ScriptPath,
		AudioFile:      w.AudioFile,
		VideoFile:      w.VideoFile,
		PublicationURL: w.PublicationURL,
		ErrorLog:       w.ErrorLog,
		CreatedAt:      created,
		UpdatedAt:      updated,
	}
}

func (s *HTTPStore) do(ctx context.Context, method, path string, body any, out any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.bearerToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dashboard request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return resp, ErrStale
	}
	if resp.StatusCode == http.StatusNotFound {
		return resp, ErrNotFound
	}
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return resp, fmt.Errorf("dashboard returned %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("decode dashboard response: %w", err)
		}
	}
	return resp, nil
}

func (s *HTTPStore) ListItems(ctx context.Context, filter Filter) ([]Row, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if !filter.UpdatedSince.IsZero() {
		q.Set("updated_since", filter.UpdatedSince.UTC().Format(time.RFC3339))
	}
	path := "/items"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var wireRows []wireRow
	if _, err := s.do(ctx, http.MethodGet, path, nil, &wireRows); err != nil {
		return nil, err
	}
	rows := make([]Row, len(wireRows))
	for i, w := range wireRows {
		rows[i] = w.toRow()
	}
	return rows, nil
}

func (s *HTTPStore) AppendItem(ctx context.Context, fields map[string]string) (string, error) {
	var created struct {
		ItemID string `json:"item_id"`
	}
	if _, err := s.do(ctx, http.MethodPost, "/items", fields, &created); err != nil {
		return "", err
	}
	return created.ItemID, nil
}

func (s *HTTPStore) UpdateFields(ctx context.Context, itemID string, fields map[string]string, expectedState string) error {
	body := struct {
		Fields        map[string]string `json:"fields"`
		ExpectedState string            `json:"expected_state"`
	}{Fields: fields, ExpectedState: expectedState}
	_, err := s.do(ctx, http.MethodPatch, "/items/"+url.PathEscape(itemID), body, nil)
	return err
}

func (s *HTTPStore) GetItem(ctx context.Context, itemID string) (Row, error) {
	var w wireRow
	if _, err := s.do(ctx, http.MethodGet, "/items/"+url.PathEscape(itemID), nil, &w); err != nil {
		return Row{}, err
	}
	return w.toRow(), nil
}
