// Package client provides a Go SDK for the biztime-server HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client calls the biztime-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new biztime API client. baseURL is the server root,
// e.g. "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// BusinessDay describes one calendar date as the server sees it.
type BusinessDay struct {
	Date        string `json:"date"`
	Weekday     string `json:"weekday"`
	BusinessDay bool   `json:"business_day"`
	Holiday     string `json:"holiday,omitempty"`
}

// Holiday is a single configured holiday.
type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name,omitempty"`
}

// Window describes the server's business window and working week.
type Window struct {
	DayStart    string   `json:"day_start"`
	DayEnd      string   `json:"day_end"`
	WorkingWeek []string `json:"working_week"`
	Timezone    string   `json:"timezone"`
}

type shiftRequest struct {
	Time         string `json:"time"`
	Duration     string `json:"duration,omitempty"`
	BusinessDays *int   `json:"business_days,omitempty"`
}

type normalizeRequest struct {
	Time string `json:"time"`
}

type timeResponse struct {
	Result string `json:"result"`
}

type holidaysResponse struct {
	Holidays []Holiday `json:"holidays"`
}

// Shift displaces t by d of business time and returns the resulting instant.
func (c *Client) Shift(ctx context.Context, t time.Time, d time.Duration) (time.Time, error) {
	req := shiftRequest{
		Time:     t.Format(time.RFC3339Nano),
		Duration: d.String(),
	}
	var resp timeResponse
	if err := c.post(ctx, "/api/v1/shift", req, &resp); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, resp.Result)
}

// ShiftBusinessDays displaces t by n whole business days and returns the
// resulting instant.
func (c *Client) ShiftBusinessDays(ctx context.Context, t time.Time, n int) (time.Time, error) {
	req := shiftRequest{
		Time:         t.Format(time.RFC3339Nano),
		BusinessDays: &n,
	}
	var resp timeResponse
	if err := c.post(ctx, "/api/v1/shift", req, &resp); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, resp.Result)
}

// Normalize snaps t onto the server's business timeline.
func (c *Client) Normalize(ctx context.Context, t time.Time) (time.Time, error) {
	req := normalizeRequest{Time: t.Format(time.RFC3339Nano)}
	var resp timeResponse
	if err := c.post(ctx, "/api/v1/normalize", req, &resp); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, resp.Result)
}

// BusinessDay reports whether date is a business day, with the holiday name
// when the date is one.
func (c *Client) BusinessDay(ctx context.Context, date time.Time) (BusinessDay, error) {
	q := url.Values{"date": {date.Format("2006-01-02")}}
	var resp BusinessDay
	err := c.get(ctx, "/api/v1/business-day", q, &resp)
	return resp, err
}

// Holidays lists the configured holidays within [from, to].
func (c *Client) Holidays(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	q := url.Values{
		"from": {from.Format("2006-01-02")},
		"to":   {to.Format("2006-01-02")},
	}
	var resp holidaysResponse
	if err := c.get(ctx, "/api/v1/holidays", q, &resp); err != nil {
		return nil, err
	}
	return resp.Holidays, nil
}

// Window returns the configured business window and working week.
func (c *Client) Window(ctx context.Context) (Window, error) {
	var resp Window
	err := c.get(ctx, "/api/v1/window", nil, &resp)
	return resp, err
}

// ---------------------------------------------------------------------------
// HTTP plumbing
// ---------------------------------------------------------------------------

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		body, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", req.Method, req.URL.Path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
