// Package client is the device-side HTTP client for the telemedicine
// backend. Every call takes a context and rides a hard request timeout:
// a hung request would otherwise hold the sync guard and starve the
// engine.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/ruralcare/telemed/internal/model"
	apperrors "github.com/ruralcare/telemed/pkg/errors"
)

// DefaultTimeout bounds every backend request.
const DefaultTimeout = 30 * time.Second

// API is the backend surface the sync engine and role screens consume.
// Split out as an interface so engine tests can fail calls on purpose.
type API interface {
	DeltaSync(ctx context.Context, req model.DeltaSyncRequest) (model.DeltaSyncResponse, error)
	VisualTriage(ctx context.Context, req model.VisualTriageRequest) (model.VisualTriageResponse, error)
	FetchSyncPackets(ctx context.Context, specialty, lastPacketID string) (model.FetchPacketsResponse, error)
	MarkPacketProcessed(ctx context.Context, req model.MarkPacketProcessedRequest) error
	SendDoctorMessage(ctx context.Context, req model.SendDoctorMessageRequest) (model.DoctorMessage, error)
	PatientMessages(ctx context.Context, patientID string) ([]model.DoctorMessage, error)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout, Transport: transport},
	}
}

func (c *Client) DeltaSync(ctx context.Context, req model.DeltaSyncRequest) (model.DeltaSyncResponse, error) {
	var resp model.DeltaSyncResponse
	err := c.post(ctx, "/api/delta-sync", req, &resp)
	return resp, err
}

func (c *Client) VisualTriage(ctx context.Context, req model.VisualTriageRequest) (model.VisualTriageResponse, error) {
	var resp model.VisualTriageResponse
	err := c.post(ctx, "/api/visual-triage", req, &resp)
	return resp, err
}

func (c *Client) FetchSyncPackets(ctx context.Context, specialty, lastPacketID string) (model.FetchPacketsResponse, error) {
	q := url.Values{}
	if specialty != "" {
		q.Set("specialty", specialty)
	}
	if lastPacketID != "" {
		q.Set("lastPacketId", lastPacketID)
	}
	var resp model.FetchPacketsResponse
	err := c.get(ctx, "/api/fetch-sync-packets", q, &resp)
	return resp, err
}

func (c *Client) MarkPacketProcessed(ctx context.Context, req model.MarkPacketProcessedRequest) error {
	return c.post(ctx, "/api/mark-packet-processed", req, nil)
}

func (c *Client) SendDoctorMessage(ctx context.Context, req model.SendDoctorMessageRequest) (model.DoctorMessage, error) {
	var resp model.DoctorMessage
	err := c.post(ctx, "/api/send-doctor-message", req, &resp)
	return resp, err
}

func (c *Client) PatientMessages(ctx context.Context, patientID string) ([]model.DoctorMessage, error) {
	q := url.Values{}
	q.Set("patientId", patientID)
	var resp model.PatientMessagesResponse
	if err := c.get(ctx, "/api/get-patient-messages", q, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Network(fmt.Sprintf("%s %s failed", req.Method, req.URL.Path), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Network("failed to read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		// Validation rejections are not retryable: the profile has to
		// be completed before syncing again.
		return apperrors.Validation(errorMessage(body), nil)
	case resp.StatusCode >= 400:
		return apperrors.Network(fmt.Sprintf("%s %s returned %d", req.Method, req.URL.Path, resp.StatusCode), nil)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Network("failed to decode response", err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return "request rejected"
}
