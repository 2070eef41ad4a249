// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lightrag is a client for a LightRAG server, used as the external
// retrieval backend. Documents are inserted as text and queries return the
// server's generated context.
package lightrag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/talent-engine/internal/httputil"
	"github.com/pdiddy/talent-engine/internal/logger"
	"github.com/pdiddy/talent-engine/pkg/types"
)

// DefaultURL is the address of a locally running LightRAG server.
const DefaultURL = "http://localhost:9621"

// Client talks to the LightRAG REST API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Log     *zap.Logger
}

// New returns a Client for baseURL. An empty baseURL selects DefaultURL.
func New(baseURL, apiKey string, timeout time.Duration, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
		Log:     logger.OrNop(log),
	}
}

type queryRequest struct {
	Query string `json:"query"`
	Mode  string `json:"mode"`
	TopK  int    `json:"top_k,omitempty"`
}

type queryResponse struct {
	Response string `json:"response"`
}

type insertRequest struct {
	Text       string `json:"text"`
	FileSource string `json:"file_source,omitempty"`
}

// Retrieve sends query to /query and returns the response text.
func (c *Client) Retrieve(ctx context.Context, query string, opts types.RetrieveOptions) (string, error) {
	mode := opts.Mode
	if mode == "" {
		mode = "mix"
	}
	var out queryResponse
	if err := c.post(ctx, "/query", queryRequest{Query: query, Mode: mode, TopK: opts.TopK}, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Response), nil
}

// Index inserts doc through /documents/text. The document id is sent as the
// file source so it shows up in the server's document list.
func (c *Client) Index(ctx context.Context, doc types.Document) error {
	text := fmt.Sprintf("[%s %s | weight %.1f]\n%s", doc.Kind, doc.ID, doc.Weight, doc.Text)
	return c.post(ctx, "/documents/text", insertRequest{Text: text, FileSource: doc.ID}, nil)
}

// Remove is not supported by the text insertion API; stale documents stay
// on the server until it is rebuilt out of band.
func (c *Client) Remove(_ context.Context, candidateID string) error {
	c.Log.Warn("lightrag backend cannot remove documents", zap.String("candidate_id", candidateID))
	return nil
}

// Health checks that the server answers /health.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("lightrag health: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lightrag health: HTTP %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 3)
	if err != nil {
		return fmt.Errorf("lightrag %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lightrag %s: HTTP %d: %s", path, resp.StatusCode, logger.TruncateForLog(string(data), 200))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}
}
