// Package backend talks to the household registration API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/indirex/touchmeter/internal/logger"
)

// ErrNotConfigured is returned when no base URL is set.
var ErrNotConfigured = errors.New("backend base URL not configured")

// StatusError is a non-2xx response.
type StatusError struct {
	Op     string // "initiate", "verify" or "members"
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %d %s", e.Op, e.Status, http.StatusText(e.Status))
}

// Member is a household member as the API returns it.
type Member struct {
	MemberCode string `json:"member_code"`
	DOB        string `json:"dob"`
	Gender     string `json:"gender"`
	CreatedAt  string `json:"created_at"`
}

type assignmentRequest struct {
	MeterID string `json:"meter_id"`
	HHID    string `json:"hhid"`
	OTP     string `json:"otp,omitempty"`
}

type membersResponse struct {
	Members []Member `json:"members"`
}

// Client calls the registration API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for baseURL with a per-request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// InitiateAssignment asks the backend to send an OTP for hhid to the
// household's registered phone.
func (c *Client) InitiateAssignment(ctx context.Context, meterID, hhid string) error {
	return c.post(ctx, "initiate", "/initiate-assignment", assignmentRequest{MeterID: meterID, HHID: hhid})
}

// VerifyOTP confirms the OTP the household received.
func (c *Client) VerifyOTP(ctx context.Context, meterID, hhid, otp string) error {
	return c.post(ctx, "verify", "/verify-otp", assignmentRequest{MeterID: meterID, HHID: hhid, OTP: otp})
}

// Members fetches the household roster.
func (c *Client) Members(ctx context.Context, meterID, hhid string) ([]Member, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("meter_id", meterID)
	q.Set("hhid", hhid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/members?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building members request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, "members")
	if err != nil {
		return nil, err
	}

	var resp membersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding members: %w", err)
	}
	if resp.Members == nil {
		return nil, errors.New("no members array in response")
	}
	return resp.Members, nil
}

func (c *Client) post(ctx context.Context, op, path string, payload assignmentRequest) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req, op)
	return err
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	logger.Debug("backend: %s %s", req.Method, req.URL.Path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("backend: %s returned %d", op, resp.StatusCode)
		return nil, &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
