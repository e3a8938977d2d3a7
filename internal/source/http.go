package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JonMunkholm/productview/internal/core"
)

// HTTP fetches a JSON array document with a single GET request.
type HTTP struct {
	url      string
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

// NewHTTP returns a source for the document at url. A zero timeout leaves
// the request bounded only by the caller's context.
func NewHTTP(url string, timeout time.Duration, maxBytes int64) *HTTP {
	return &HTTP{
		url:      url,
		client:   &http.Client{},
		timeout:  timeout,
		maxBytes: maxBytes,
	}
}

func (h *HTTP) Name() string { return Redact(h.url) }

// Fetch performs the GET request and decodes the response body.
func (h *HTTP) Fetch(ctx context.Context) ([]core.RecordInput, error) {
	ctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build source request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, Redact(h.url))
	}

	return DecodeRecords(resp.Body, h.maxBytes)
}

func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
