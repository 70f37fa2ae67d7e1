package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// FindEntriesPath is the datastore endpoint that returns entries by write_ts.
const FindEntriesPath = "/datastreams/find_entries/timestamp"

// HTTPClient abstracts the HTTP transport so tests can substitute it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FindEntriesResponse is the body returned by the find_entries endpoint.
type FindEntriesResponse struct {
	PhoneData []models.Entry `json:"phone_data"`
}

// HTTPStore retrieves entries from a remote datastore.
type HTTPStore struct {
	baseURL string
	client  HTTPClient
}

// NewHTTPStore creates a store for the datastore at baseURL. A nil client
// uses http.DefaultClient.
func NewHTTPStore(baseURL string, client HTTPClient) *HTTPStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPStore{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Retrieve implements Retriever.
func (s *HTTPStore) Retrieve(ctx context.Context, user, key string, startTS, endTS float64) ([]models.Entry, error) {
	body, err := json.Marshal(models.EntryQuery{
		User:      user,
		KeyList:   []string{key},
		StartTime: startTS,
		EndTime:   endTS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+FindEntriesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("datastore returned %d for %s/%s: %s", resp.StatusCode, user, key, strings.TrimSpace(string(msg)))
	}

	var out FindEntriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return window(out.PhoneData, startTS, endTS), nil
}
