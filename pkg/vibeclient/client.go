// Package vibeclient is a small HTTP client for the VibeSRM API.
package vibeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vibesrm/pkg/dto"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Status int
	dto.ErrorResponse
}

func (e *APIError) Error() string {
	msg := e.ErrorResponse.Error
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("vibesrm: %d %s", e.Status, msg)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CheckIn(ctx context.Context, req dto.CheckInRequest) (dto.CheckInResponse, error) {
	var out dto.CheckInResponse
	err := c.do(ctx, http.MethodPost, "/v1/checkins", nil, req, &out)
	return out, err
}

func (c *Client) CheckOut(ctx context.Context, sessionID string, req dto.CheckOutRequest) (dto.CheckOutResponse, error) {
	var out dto.CheckOutResponse
	err := c.do(ctx, http.MethodPost, "/v1/checkins/"+url.PathEscape(sessionID)+"/checkout", nil, req, &out)
	return out, err
}

func (c *Client) Active(ctx context.Context) (dto.ActiveSessionResponse, error) {
	var out dto.ActiveSessionResponse
	err := c.do(ctx, http.MethodGet, "/v1/checkins/active", nil, nil, &out)
	return out, err
}

// History lists recent sessions; limit <= 0 uses the server default.
func (c *Client) History(ctx context.Context, limit int) (dto.HistoryResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out dto.HistoryResponse
	err := c.do(ctx, http.MethodGet, "/v1/checkins/history", q, nil, &out)
	return out, err
}

func (c *Client) Stats(ctx context.Context) (dto.UserStatsResponse, error) {
	var out dto.UserStatsResponse
	err := c.do(ctx, http.MethodGet, "/v1/me/stats", nil, nil, &out)
	return out, err
}

// Ghosts lists active ghost sessions, optionally at one location.
func (c *Client) Ghosts(ctx context.Context, locationID string) (dto.GhostListResponse, error) {
	q := url.Values{}
	if locationID != "" {
		q.Set("locationId", locationID)
	}
	var out dto.GhostListResponse
	err := c.do(ctx, http.MethodGet, "/v1/ghosts", q, nil, &out)
	return out, err
}

func (c *Client) Encourage(ctx context.Context, sessionID, emoji string) (dto.EncouragementResponse, error) {
	var out dto.EncouragementResponse
	err := c.do(ctx, http.MethodPost, "/v1/ghosts/"+url.PathEscape(sessionID)+"/encouragements", nil,
		dto.EncouragementRequest{Emoji: emoji}, &out)
	return out, err
}

func (c *Client) Encouragements(ctx context.Context) (dto.EncouragementSummaryResponse, error) {
	var out dto.EncouragementSummaryResponse
	err := c.do(ctx, http.MethodGet, "/v1/ghosts/encouragements", nil, nil, &out)
	return out, err
}

func (c *Client) GhostSummary(ctx context.Context, sessionID string) (dto.GhostSessionSummaryResponse, error) {
	var out dto.GhostSessionSummaryResponse
	err := c.do(ctx, http.MethodGet, "/v1/ghosts/"+url.PathEscape(sessionID)+"/summary", nil, nil, &out)
	return out, err
}

func (c *Client) Location(ctx context.Context, locationID string) (dto.LocationDetailsResponse, error) {
	var out dto.LocationDetailsResponse
	err := c.do(ctx, http.MethodGet, "/v1/locations/"+url.PathEscape(locationID), nil, nil, &out)
	return out, err
}

func (c *Client) Locations(ctx context.Context, category string) (dto.LocationListResponse, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	var out dto.LocationListResponse
	err := c.do(ctx, http.MethodGet, "/v1/locations", q, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if jerr := json.Unmarshal(data, &apiErr.ErrorResponse); jerr != nil {
			apiErr.ErrorResponse.Error = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
