package priceapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJobServer(t *testing.T, pollsUntilFinished int32, results string) *httptest.Server {
	var polls atomic.Int32
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/jobs":
			var req createJobRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "google_shopping", req.Source)
			assert.Equal(t, "search_results", req.Topic)
			assert.Equal(t, []string{"wireless headphones"}, req.Values)
			_, _ = w.Write([]byte(`{"job_id": "job-42", "status": "new"}`))

		case r.Method == http.MethodGet && r.URL.Path == "/jobs/job-42":
			status := "working"
			if polls.Add(1) >= pollsUntilFinished {
				status = "finished"
			}
			_, _ = w.Write([]byte(`{"job_id": "job-42", "status": "` + status + `"}`))

		case r.Method == http.MethodGet && r.URL.Path == "/jobs/job-42/download":
			_, _ = w.Write([]byte(results))

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

const sampleResults = `{"results": [
  {"merchant": "Walmart", "price": "189.00", "shipping": 5.99, "currency": "USD",
   "id": "offer-1", "title": "Wireless Headphones Pro", "link": "https://walmart.com/1",
   "availability": "In Stock"},
  {"merchant": "", "price": 210.5, "title": "Wireless Headphones Pro"}
]}`

func TestFetchOffers_JobFlow(t *testing.T) {
	srv := newJobServer(t, 2, sampleResults)
	defer srv.Close()

	client := NewClient("test-token",
		WithBaseURL(srv.URL),
		WithPollInterval(time.Millisecond),
		WithMaxWait(time.Second),
	)

	offers, err := client.FetchOffers(context.Background(), "wireless headphones")
	require.NoError(t, err)
	require.Len(t, offers, 2)

	// String and numeric prices both parse.
	assert.InDelta(t, 189.0, float64(offers[0].Price), 0.001)
	assert.InDelta(t, 5.99, float64(offers[0].Shipping), 0.001)
	assert.InDelta(t, 210.5, float64(offers[1].Price), 0.001)
}

func TestFetchOffers_Timeout(t *testing.T) {
	srv := newJobServer(t, 1<<30, sampleResults)
	defer srv.Close()

	client := NewClient("test-token",
		WithBaseURL(srv.URL),
		WithPollInterval(time.Millisecond),
		WithMaxWait(5*time.Millisecond),
	)

	_, err := client.FetchOffers(context.Background(), "wireless headphones")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrJobTimeout)
}

func TestFetchOffers_MissingJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "rejected"}`))
	}))
	defer srv.Close()

	client := NewClient("test-token", WithBaseURL(srv.URL))
	_, err := client.FetchOffers(context.Background(), "headphones")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "job_id")
}

func TestSourceQuotes(t *testing.T) {
	srv := newJobServer(t, 1, sampleResults)
	defer srv.Close()

	source := NewSource(NewClient("test-token",
		WithBaseURL(srv.URL),
		WithPollInterval(time.Millisecond),
		WithMaxWait(time.Second),
	))
	assert.Equal(t, "priceapi", source.Name())

	quotes, err := source.Quotes(context.Background(), "wireless headphones")
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, "Walmart", quotes[0].Source)
	assert.InDelta(t, 194.99, quotes[0].TotalCost, 0.001)
	assert.Equal(t, "Unknown", quotes[1].Source)
}
