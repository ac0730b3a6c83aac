// Package huggingface classifies review sentiment through the
// HuggingFace Inference API.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/dealscope/dealscope/internal/model"
	"github.com/dealscope/dealscope/internal/resilience"
)

const (
	defaultBaseURL = "https://api-inference.huggingface.co"

	// DefaultModel is a three-class sentiment model (negative, neutral,
	// positive).
	DefaultModel = "cardiffnlp/twitter-roberta-base-sentiment-latest"
)

// Client classifies text with a hosted sentiment model. It satisfies the
// review stage's classifier contract.
type Client interface {
	Classify(ctx context.Context, text string) (model.SentimentResult, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithModel overrides the default sentiment model.
func WithModel(model string) Option {
	return func(c *httpClient) {
		c.model = model
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// NewClient creates an Inference API sentiment client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   DefaultModel,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *httpClient) Classify(ctx context.Context, text string) (model.SentimentResult, error) {
	var zero model.SentimentResult

	payload, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return zero, eris.Wrap(err, "huggingface: marshal request")
	}

	endpoint := c.baseURL + "/models/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return zero, eris.Wrap(err, "huggingface: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, eris.Wrap(err, "huggingface: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, eris.Wrap(err, "huggingface: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("huggingface: unexpected status %d: %s", resp.StatusCode, string(body))
		// 503 while the model loads is the common transient case.
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return zero, resilience.NewTransientError(err, resp.StatusCode)
		}
		return zero, err
	}

	scores, err := parseScores(body)
	if err != nil {
		return zero, err
	}
	return bestLabel(scores), nil
}

// parseScores accepts both response shapes the API produces: a list of
// label scores, or that list nested one level deeper.
func parseScores(body []byte) ([]labelScore, error) {
	var nested [][]labelScore
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 {
		return nested[0], nil
	}

	var flat []labelScore
	if err := json.Unmarshal(body, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}
	return nil, eris.Errorf("huggingface: unrecognized response: %s", string(body))
}

func bestLabel(scores []labelScore) model.SentimentResult {
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return model.SentimentResult{
		Label:      normalizeLabel(best.Label),
		Confidence: best.Score,
	}
}

// normalizeLabel maps model-specific label names onto the pipeline's
// sentiment labels. Index-style labels follow the cardiffnlp ordering.
func normalizeLabel(label string) model.SentimentLabel {
	switch strings.ToUpper(label) {
	case "POSITIVE", "POS", "LABEL_2":
		return model.SentimentPositive
	case "NEGATIVE", "NEG", "LABEL_0":
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}
