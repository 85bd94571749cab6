package unread

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"chatnotify/internal/model"
)

// Fetcher pulls per-conversation unread counts for one user. Errors propagate
// to the caller; the core swallows them and keeps its last-known-good total.
type Fetcher interface {
	FetchUnread(ctx context.Context, userID int64) ([]model.ConversationUnread, error)
}

// Client talks to the backend unread-count API.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     logger,
	}
}

func (c *Client) FetchUnread(ctx context.Context, userID int64) ([]model.ConversationUnread, error) {
	url := fmt.Sprintf("%s/users/%d/unread", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("unread request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unread fetch: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unread fetch: unexpected status %d", res.StatusCode)
	}

	var counts []model.ConversationUnread
	if err := json.NewDecoder(res.Body).Decode(&counts); err != nil {
		return nil, fmt.Errorf("unread decode: %w", err)
	}
	return counts, nil
}

// Total reduces per-conversation counts to one aggregate. Negative rows are
// clamped so the total never goes below zero.
func Total(counts []model.ConversationUnread) int {
	total := 0
	for _, c := range counts {
		if c.UnreadCount > 0 {
			total += c.UnreadCount
		}
	}
	return total
}
