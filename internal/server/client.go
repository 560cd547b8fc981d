/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"geoproof/internal/model"
)

// Client is a minimal HTTP client for the proof server API.
type Client struct {
	BaseURL string
	client  *http.Client
}

// NewClient creates a new client. baseURL may include a trailing slash; it will be normalized.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	Body   ErrorBody
}

func (e *APIError) Error() string {
	if e.Body.Error == "" {
		return fmt.Sprintf("server: %s", http.StatusText(e.Status))
	}
	return fmt.Sprintf("server: %d: %s", e.Status, e.Body.Error)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&apiErr.Body)
		return nil, apiErr
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, contentType string, body io.Reader, dest any) error {
	resp, err := c.do(ctx, method, path, contentType, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// Compile sends .yc markup and returns the geometry description.
func (c *Client) Compile(ctx context.Context, source string) (model.Document, error) {
	var doc model.Document
	err := c.doJSON(ctx, http.MethodPost, "/api/compile", "text/plain; charset=utf-8", strings.NewReader(source), &doc)
	return doc, err
}

// ListProofs returns the stored proofs without documents.
func (c *Client) ListProofs(ctx context.Context) ([]ProofJSON, error) {
	var list []ProofJSON
	if err := c.doJSON(ctx, http.MethodGet, "/api/proofs", "", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetProof fetches a proof by id or name.
func (c *Client) GetProof(ctx context.Context, ref string) (ProofJSON, error) {
	var p ProofJSON
	err := c.doJSON(ctx, http.MethodGet, "/api/proofs/"+url.PathEscape(ref), "", nil, &p)
	return p, err
}

// SaveProof stores a proof on the server.
func (c *Client) SaveProof(ctx context.Context, req SaveRequest) (ProofJSON, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return ProofJSON{}, err
	}
	var p ProofJSON
	err = c.doJSON(ctx, http.MethodPost, "/api/proofs", "application/json", bytes.NewReader(b), &p)
	return p, err
}

// DeleteProof removes a proof by id or name.
func (c *Client) DeleteProof(ctx context.Context, ref string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/proofs/"+url.PathEscape(ref), "", nil, nil)
}

// StepImage downloads one step rendered as "svg" or "png".
func (c *Client) StepImage(ctx context.Context, ref string, step int, format string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/proofs/%s/steps/%d.%s", url.PathEscape(ref), step, format), "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
