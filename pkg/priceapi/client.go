// Package priceapi wraps the PriceAPI bulk job service. The API is
// asynchronous: a job is created, polled until finished, then its
// results are downloaded.
package priceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/dealscope/dealscope/internal/resilience"
)

const (
	defaultBaseURL      = "https://api.priceapi.com/v2"
	defaultPollInterval = 5 * time.Second
	defaultMaxWait      = 60 * time.Second

	jobStatusFinished = "finished"
)

// ErrJobTimeout indicates the job did not finish within the poll window.
var ErrJobTimeout = eris.New("priceapi: job did not finish in time")

// Client fetches offers through the PriceAPI job flow.
type Client interface {
	FetchOffers(ctx context.Context, term string) ([]Offer, error)
}

// Offer is one merchant offer from a downloaded job.
type Offer struct {
	Merchant     string    `json:"merchant"`
	Price        flexFloat `json:"price"`
	Shipping     flexFloat `json:"shipping"`
	Currency     string    `json:"currency"`
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Link         string    `json:"link"`
	Availability string    `json:"availability"`
}

type createJobRequest struct {
	Token    string   `json:"token"`
	Source   string   `json:"source"`
	Country  string   `json:"country"`
	Topic    string   `json:"topic"`
	Key      string   `json:"key"`
	Values   []string `json:"values"`
	MaxPages int      `json:"max_pages"`
}

type jobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type downloadResponse struct {
	Results []Offer `json:"results"`
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

// WithPollInterval overrides how often job status is checked.
func WithPollInterval(d time.Duration) Option {
	return func(c *httpClient) {
		c.pollInterval = d
	}
}

// WithMaxWait bounds the total time spent waiting for a job.
func WithMaxWait(d time.Duration) Option {
	return func(c *httpClient) {
		c.maxWait = d
	}
}

type httpClient struct {
	token        string
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
	maxWait      time.Duration
}

// NewClient creates a PriceAPI client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		pollInterval: defaultPollInterval,
		maxWait:      defaultMaxWait,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) FetchOffers(ctx context.Context, term string) ([]Offer, error) {
	jobID, err := c.createJob(ctx, term)
	if err != nil {
		return nil, err
	}
	if err := c.waitForJob(ctx, jobID); err != nil {
		return nil, err
	}
	return c.download(ctx, jobID)
}

func (c *httpClient) createJob(ctx context.Context, term string) (string, error) {
	payload, err := json.Marshal(createJobRequest{
		Token:    c.token,
		Source:   "google_shopping",
		Country:  "us",
		Topic:    "search_results",
		Key:      "term",
		Values:   []string{term},
		MaxPages: 1,
	})
	if err != nil {
		return "", eris.Wrap(err, "priceapi: marshal job request")
	}

	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/jobs", payload)
	if err != nil {
		return "", err
	}

	var job jobResponse
	if err := json.Unmarshal(body, &job); err != nil {
		return "", eris.Wrap(err, "priceapi: unmarshal job response")
	}
	if job.JobID == "" {
		return "", eris.New("priceapi: job response missing job_id")
	}
	return job.JobID, nil
}

func (c *httpClient) waitForJob(ctx context.Context, jobID string) error {
	deadline := time.Now().Add(c.maxWait)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return eris.Wrap(ctx.Err(), "priceapi: wait for job")
		case <-ticker.C:
		}

		body, err := c.do(ctx, http.MethodGet, c.baseURL+"/jobs/"+jobID, nil)
		if err != nil {
			return err
		}
		var job jobResponse
		if err := json.Unmarshal(body, &job); err != nil {
			return eris.Wrap(err, "priceapi: unmarshal job status")
		}
		if job.Status == jobStatusFinished {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrJobTimeout
		}
	}
}

func (c *httpClient) download(ctx context.Context, jobID string) ([]Offer, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/jobs/"+jobID+"/download", nil)
	if err != nil {
		return nil, err
	}

	var resp downloadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "priceapi: unmarshal download")
	}
	return resp.Results, nil
}

func (c *httpClient) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, eris.Wrap(err, "priceapi: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "priceapi: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "priceapi: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("priceapi: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}
	return body, nil
}
