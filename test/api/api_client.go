/*
Copyright 2024-2025 the Unikorn Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

//nolint:revive // naming conventions acceptable in test code
package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

// Doer is the subset of *http.Client the client needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type APIClient struct {
	baseURL   string
	client    Doer
	apiKey    string
	config    *TestConfig
	endpoints *Endpoints
	logger    logr.Logger
}

// Option customizes a client.
type Option func(*APIClient)

// WithHTTPClient replaces the default *http.Client, e.g. with a mock.
func WithHTTPClient(client Doer) Option {
	return func(c *APIClient) {
		c.client = client
	}
}

func WithLogger(logger logr.Logger) Option {
	return func(c *APIClient) {
		c.logger = logger
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *APIClient) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// NewAPIClient loads configuration from the environment.  An empty baseURL
// uses the configured one.
func NewAPIClient(baseURL string) (*APIClient, error) {
	config, err := LoadTestConfig()
	if err != nil {
		return nil, err
	}

	var options []Option
	if baseURL != "" {
		options = append(options, WithBaseURL(baseURL))
	}

	return NewAPIClientWithConfig(config, options...), nil
}

func NewAPIClientWithConfig(config *TestConfig, options ...Option) *APIClient {
	c := &APIClient{
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		client: &http.Client{
			Timeout: config.RequestTimeout,
		},
		apiKey:    config.APIKey,
		config:    config,
		endpoints: NewEndpoints(),
		logger:    logr.Discard(),
	}

	for _, o := range options {
		o(c)
	}

	return c
}

func (c *APIClient) Endpoints() *Endpoints {
	return c.endpoints
}

// generateTraceID creates a new W3C trace ID.
// A fresh trace per request lets a failure be found in the server logs.
func generateTraceID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// generateSpanID creates a new W3C span ID.
func generateSpanID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// createTraceParent creates a W3C traceparent header value.
func createTraceParent() string {
	return fmt.Sprintf("00-%s-%s-01", generateTraceID(), generateSpanID())
}

// extractTraceID extracts the trace ID from a traceparent header value.
func extractTraceID(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) >= 2 {
		return parts[1]
	}

	return traceParent
}

// doRequest issues a single request.  Any status code is a successful
// round trip; only transport and encoding failures are errors.
func (c *APIClient) doRequest(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Add W3C Trace Context headers
	traceParent := createTraceParent()
	req.Header.Set("Traceparent", traceParent)
	req.Header.Set("Tracestate", "test-automation=petstore")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api_key", c.apiKey)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	traceID := extractTraceID(traceParent)
	log := c.logger.WithValues("method", method, "path", path, "traceID", traceID)

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		log.Error(err, "http request failed", "duration", duration)
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error(err, "reading response body", "duration", duration, "status", resp.StatusCode)
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.config.LogRequests {
		log.Info("request complete", "status", resp.StatusCode, "duration", duration)
	}

	if c.config.LogResponses && len(respBody) > 0 {
		log.Info("response body", "body", string(respBody))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
		TraceID:    traceID,
	}, nil
}

// Create issues a POST with a JSON body.
func (c *APIClient) Create(ctx context.Context, path string, body any) (*Response, error) {
	return c.doRequest(ctx, http.MethodPost, path, body)
}

// Read issues a GET.
func (c *APIClient) Read(ctx context.Context, path string) (*Response, error) {
	return c.doRequest(ctx, http.MethodGet, path, nil)
}

// Replace issues a PUT with a JSON body.
func (c *APIClient) Replace(ctx context.Context, path string, body any) (*Response, error) {
	return c.doRequest(ctx, http.MethodPut, path, body)
}

// Remove issues a DELETE.
func (c *APIClient) Remove(ctx context.Context, path string) (*Response, error) {
	return c.doRequest(ctx, http.MethodDelete, path, nil)
}

func (c *APIClient) CreatePet(ctx context.Context, pet *Pet) (*Response, error) {
	resp, err := c.Create(ctx, c.endpoints.Pets(), pet)
	if err != nil {
		return nil, fmt.Errorf("creating pet: %w", err)
	}

	return resp, nil
}

// GetPet retrieves a pet by ID.
// This is what the pollers call repeatedly to wait for convergence.
func (c *APIClient) GetPet(ctx context.Context, petID int64) (*Response, error) {
	path, err := c.endpoints.Pet(petID)
	if err != nil {
		return nil, err
	}

	resp, err := c.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("getting pet: %w", err)
	}

	return resp, nil
}

func (c *APIClient) UpdatePet(ctx context.Context, pet *Pet) (*Response, error) {
	resp, err := c.Replace(ctx, c.endpoints.Pets(), pet)
	if err != nil {
		return nil, fmt.Errorf("updating pet: %w", err)
	}

	return resp, nil
}

func (c *APIClient) DeletePet(ctx context.Context, petID int64) (*Response, error) {
	path, err := c.endpoints.Pet(petID)
	if err != nil {
		return nil, err
	}

	resp, err := c.Remove(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("deleting pet: %w", err)
	}

	return resp, nil
}

func (c *APIClient) FindPetsByStatus(ctx context.Context, status ...string) (*Response, error) {
	path, err := c.endpoints.FindPetsByStatus(status...)
	if err != nil {
		return nil, err
	}

	resp, err := c.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("finding pets by status: %w", err)
	}

	return resp, nil
}

// PetFetcher returns a FetchFunc that reads the given pet, for use with a Poller.
func (c *APIClient) PetFetcher(petID int64) FetchFunc {
	return func(ctx context.Context) (*Response, error) {
		return c.GetPet(ctx, petID)
	}
}
