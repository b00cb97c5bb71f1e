package predict

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

	"github.com/sirupsen/logrus"

	"prediction-form/internal/util"
)

// Config holds prediction endpoint configuration.
type Config struct {
	Endpoint string
	// Timeout bounds a whole request. Zero leaves the transport defaults in place.
	Timeout time.Duration
}

// Client posts feature vectors to the prediction endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// ErrMissingEndpoint is returned when no endpoint URL is configured.
var ErrMissingEndpoint = errors.New("prediction endpoint not configured")

// StatusError reports a non-2xx response from the prediction service.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %d", e.Code)
}

type predictRequest struct {
	InputData []float64 `json:"input_data"`
}

// NewClient constructs a Client if the supplied configuration is valid.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q must be an http or https URL", endpoint)
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   endpoint,
	}, nil
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Predict sends one feature vector and decodes the service's answer.
func (c *Client) Predict(ctx context.Context, features []float64) (*Result, error) {
	body, err := json.Marshal(predictRequest{InputData: features})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	timer := util.StartTimer()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		logrus.WithFields(timer.Fields()).WithField("status", resp.StatusCode).Warn("prediction service returned error status")
		return nil, &StatusError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	result, err := ParseResult(data)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(timer.Fields()).WithField("bytes", len(data)).Debug("prediction received")
	return result, nil
}
