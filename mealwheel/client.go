// Package mealwheel is a small client for the MealWheel REST API.
//
// Only the two read endpoints the dish picker needs are covered:
//
//	GET {base}/api/v1/users
//	GET {base}/api/v1/dishes?id={userId}
//
// Wire records are decoded as-is and shaped into domain types by the caller
// (see ToDish). Nothing is cached; every call hits the server.
package mealwheel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mealwheel/config"
	"mealwheel/model"
)

const apiPath = "/api/v1/"

// Client talks to one MealWheel server.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for baseURL (e.g. "https://tsmealwheel.herokuapp.com").
// A nil httpClient uses a client with a 30s timeout.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	if baseURL == "" {
		baseURL = config.DefaultMealWheelBaseURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MealWheel URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid MealWheel URL %q: scheme must be http or https", baseURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

// BaseURL returns the server root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Users fetches the full user list.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.getJSON(ctx, "users", nil, &users); err != nil {
		return nil, err
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[MealWheel] Fetched %d users", len(users))
	}
	return users, nil
}

// Dishes fetches every dish wire record owned by userID.
func (c *Client) Dishes(ctx context.Context, userID string) ([]DishFromServer, error) {
	var dishes []DishFromServer
	query := url.Values{"id": []string{userID}}
	if err := c.getJSON(ctx, "dishes", query, &dishes); err != nil {
		return nil, err
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[MealWheel] Fetched %d dishes for user %s", len(dishes), userID)
	}
	return dishes, nil
}

func (c *Client) getJSON(ctx context.Context, resource string, query url.Values, out any) error {
	endpoint := c.baseURL + apiPath + resource
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", resource, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", model.ErrNetworkFailure, resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: GET %s: status %d: %s", model.ErrNetworkFailure, resource, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", model.ErrParseFailure, resource, err)
	}
	return nil
}
