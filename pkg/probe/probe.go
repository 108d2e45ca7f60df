/*
 * Copyright 2025 The Daemondex Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package probe speaks just enough JSON-RPC to ask a daemon endpoint
// for its tool inventory. It backs both on-demand capability discovery
// and the boolean MCP probe inside health checks.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/daemondex/daemondex/pkg/logger"
	"github.com/daemondex/daemondex/pkg/models"
)

const (
	defaultTimeout  = 10 * time.Second
	toolsListMethod = "tools/list"
	maxResponseSize = 1 << 20
)

var (
	errUnexpectedStatus = errors.New("unexpected response status")
	errMissingResult    = errors.New("response has no result")
)

type rpcRequest struct {
	JSONRPC string                 `json:"jsonrpc"`
	ID      int                    `json:"id"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type toolsListResult struct {
	Tools []models.ToolInfo `json:"tools"`
}

// ClientConfig controls probe behavior.
type ClientConfig struct {
	Timeout time.Duration
	HTTP    *http.Client
	Logger  logger.Logger
}

// Client issues tools/list probes with a bounded timeout. A single
// failure is definitive for that call; there are no retries.
type Client struct {
	client *http.Client
	logger logger.Logger
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Client{
		client: httpClient,
		logger: log,
	}
}

// ListTools POSTs a tools/list request to the endpoint and returns the
// advertised tool inventory. Protocol-level error payloads are returned
// as errors, same as transport failures.
func (c *Client) ListTools(ctx context.Context, endpoint string) ([]models.ToolInfo, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  toolsListMethod,
		Params:  map[string]interface{}{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tools/list request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSpace(endpoint), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create tools/list request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tools/list request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: %d: %s", errUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var decoded rpcResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode tools/list response: %w", err)
	}

	if decoded.Error != nil {
		return nil, fmt.Errorf("tools/list error %d: %s", decoded.Error.Code, decoded.Error.Message)
	}

	if len(decoded.Result) == 0 {
		return nil, errMissingResult
	}

	var result toolsListResult
	if err := json.Unmarshal(decoded.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to decode tools list: %w", err)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("tool_count", len(result.Tools)).
		Msg("tools/list probe succeeded")

	return result.Tools, nil
}

// ProbeMCP reduces ListTools to a boolean for health checks. No error
// ever escapes.
func (c *Client) ProbeMCP(ctx context.Context, endpoint string) bool {
	_, err := c.ListTools(ctx, endpoint)

	return err == nil
}

// Discover reports the endpoint's capabilities. The probe goes to
// mcpURLOverride when set, otherwise to the daemon URL itself. Failures
// are folded into the result, never returned.
func (c *Client) Discover(ctx context.Context, rawURL, mcpURLOverride string) models.DaemonCapabilities {
	endpoint := rawURL
	if strings.TrimSpace(mcpURLOverride) != "" {
		endpoint = mcpURLOverride
	}

	caps := models.DaemonCapabilities{
		URL:       rawURL,
		CheckedAt: time.Now(),
	}

	tools, err := c.ListTools(ctx, endpoint)
	if err != nil {
		caps.Error = err.Error()

		return caps
	}

	caps.SupportsMCP = true
	caps.Tools = tools

	return caps
}
