package mdv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrBodyTooLarge reports a response body over the configured limit.
var ErrBodyTooLarge = errors.New("response body too large")

type getRequest struct {
	URL       string
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
	Limit     int64
}

// httpGet performs a single bounded GET and returns the whole body.
func httpGet(ctx context.Context, req getRequest) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}
	client := req.Client
	if client == nil {
		client = http.DefaultClient
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if httpReq.URL.Scheme != "http" && httpReq.URL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", httpReq.URL.Scheme)
	}
	if req.UserAgent != "" {
		httpReq.Header.Set("User-Agent", req.UserAgent)
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %s", resp.Status)
	}
	var body io.Reader = resp.Body
	if req.Limit > 0 {
		body = io.LimitReader(resp.Body, req.Limit+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if req.Limit > 0 && int64(len(data)) > req.Limit {
		return nil, ErrBodyTooLarge
	}
	return data, nil
}
