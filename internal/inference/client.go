// Package inference talks to a hosted text-classification endpoint in
// the Hugging Face Inference API shape and adapts its responses to the
// scoring contract.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/danuhaha/telestats/internal/scoring"
)

const defaultBaseURL = "https://api-inference.huggingface.co/models"

type Client struct {
	token    string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient builds a classification client for one model. The token may
// be empty for public models.
func NewClient(token, model string) *Client {
	return &Client{
		token:    token,
		model:    model,
		endpoint: fmt.Sprintf("%s/%s", defaultBaseURL, model),
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

// SetEndpoint overrides the inference URL, e.g. for a self-hosted
// endpoint or a test server.
func (c *Client) SetEndpoint(url string) {
	c.endpoint = url
}

type request struct {
	Inputs  []string `json:"inputs"`
	Options struct {
		WaitForModel bool `json:"wait_for_model"`
	} `json:"options"`
}

// labelScore is one label's entry in the per-text response slice.
type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Score classifies a batch of texts. Each text yields a full label→score
// map. Implements scoring.Scorer.
func (c *Client) Score(ctx context.Context, texts []string) ([]scoring.Result, error) {
	reqBody := request{Inputs: texts}
	reqBody.Options.WaitForModel = true

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}

	var perText [][]labelScore
	if err := json.Unmarshal(respBody, &perText); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(perText) != len(texts) {
		return nil, fmt.Errorf("got %d results for %d texts", len(perText), len(texts))
	}

	results := make([]scoring.Result, len(perText))
	for i, entries := range perText {
		scores := make(map[string]float64, len(entries))
		for _, e := range entries {
			scores[e.Label] = e.Score
		}
		results[i] = scoring.Result{Scores: scores}
	}
	return results, nil
}
