// Package store is the HTTP client for the whiteboard service. Each call is
// exactly one request: no retries, caching or batching.
package store

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

	"sketchive/internal/state"

	"github.com/google/uuid"
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient replaces the transport (useful for testing).
func (c *Client) SetHTTPClient(client HTTPDoer) {
	c.httpClient = client
}

func (c *Client) BaseURL() string { return c.baseURL }

// Result is the acknowledgement body returned by delete and clear calls.
type Result struct {
	Message string `json:"message"`
}

type createStrokeRequest struct {
	WhiteboardID int64         `json:"whiteboardID"`
	OwnerID      int64         `json:"ownerID"`
	Path         []state.Point `json:"path"`
	Color        string        `json:"color"`
	Width        float64       `json:"width"`
}

// DeleteByBoxRequest is the body of POST /strokes/delete.
type DeleteByBoxRequest struct {
	WhiteboardID int64   `json:"whiteboardID"`
	MinX         float64 `json:"minX"`
	MaxX         float64 `json:"maxX"`
	MinY         float64 `json:"minY"`
	MaxY         float64 `json:"maxY"`
}

func (c *Client) CreateWhiteboard(ctx context.Context) (*state.Whiteboard, error) {
	var wb state.Whiteboard
	if err := c.do(ctx, "create whiteboard", http.MethodPost, "/whiteboards", nil, nil, &wb); err != nil {
		return nil, err
	}
	return &wb, nil
}

func (c *Client) GetWhiteboard(ctx context.Context, id int64) (*state.Whiteboard, error) {
	var wb state.Whiteboard
	err := c.do(ctx, "get whiteboard", http.MethodGet, "/whiteboards", idQuery(id), nil, &wb)
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			// any failed lookup counts as a missing board
			reqErr.notFound = true
		}
		return nil, err
	}
	return &wb, nil
}

func (c *Client) UpdateWhiteboard(ctx context.Context, wb *state.Whiteboard) (*state.Whiteboard, error) {
	var updated state.Whiteboard
	if err := c.do(ctx, "update whiteboard", http.MethodPut, "/whiteboards", idQuery(wb.ID), wb, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteWhiteboard(ctx context.Context, id int64) (*Result, error) {
	var res Result
	if err := c.do(ctx, "delete whiteboard", http.MethodDelete, "/whiteboards", idQuery(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ClearWhiteboard deletes every stroke of the board.
func (c *Client) ClearWhiteboard(ctx context.Context, id int64) (*Result, error) {
	var res Result
	if err := c.do(ctx, "clear whiteboard", http.MethodDelete, "/whiteboards/clear", idQuery(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateStroke sends the stroke and returns it with the store-assigned id
// and creation time.
func (c *Client) CreateStroke(ctx context.Context, s state.Stroke) (*state.Stroke, error) {
	body := createStrokeRequest{
		WhiteboardID: s.WhiteboardID,
		OwnerID:      s.OwnerID,
		Path:         s.Path,
		Color:        s.Color,
		Width:        s.Width,
	}
	var created state.Stroke
	if err := c.do(ctx, "create stroke", http.MethodPost, "/strokes", nil, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetStrokes returns the board's strokes in store order, which is draw order.
func (c *Client) GetStrokes(ctx context.Context, whiteboardID int64) ([]state.Stroke, error) {
	var strokes []state.Stroke
	if err := c.do(ctx, "get strokes", http.MethodGet, "/strokes", idQuery(whiteboardID), nil, &strokes); err != nil {
		return nil, err
	}
	if strokes == nil {
		strokes = []state.Stroke{}
	}
	return strokes, nil
}

// DeleteStrokesByBox deletes every stroke with a path point inside box.
func (c *Client) DeleteStrokesByBox(ctx context.Context, whiteboardID int64, box state.BoundingBox) (*Result, error) {
	body := DeleteByBoxRequest{
		WhiteboardID: whiteboardID,
		MinX:         box.MinX,
		MaxX:         box.MaxX,
		MinY:         box.MinY,
		MaxY:         box.MaxY,
	}
	var res Result
	if err := c.do(ctx, "delete strokes", http.MethodPost, "/strokes/delete", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func idQuery(id int64) url.Values {
	return url.Values{"id": []string{strconv.FormatInt(id, 10)}}
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, query url.Values, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request body: %w", op, err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	reqURL := c.baseURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("X-Client-Session", state.SessionID())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: failed to read response body: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newRequestError(op, resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: failed to parse response: %w", op, err)
	}
	return nil
}
