package physical

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
)

// HTTPAdapter is a physical backend for HTTP APIs.
//
// One adapter owns one *http.Client and is meant to live for exactly one
// test run. It serves get/post/put/delete and nothing else.
//
// Recognized op args:
//   - "url" (string, required)
//   - "params" (map[string]any, optional query parameters)
//   - "headers" (map[string]any, optional)
//   - "body" (map[string]any, optional JSON payload for post/put)
type HTTPAdapter struct {
	client *http.Client
}

// HTTPOption configures an HTTPAdapter.
type HTTPOption func(*HTTPAdapter)

// WithTimeout sets the per-call timeout. Default is 30s.
func WithTimeout(d time.Duration) HTTPOption {
	return func(a *HTTPAdapter) {
		a.client.Timeout = d
	}
}

// WithTransport overrides the HTTP transport (used by tests to point at
// an httptest server or a failing round tripper).
func WithTransport(rt http.RoundTripper) HTTPOption {
	return func(a *HTTPAdapter) {
		a.client.Transport = rt
	}
}

// NewHTTPAdapter creates a fresh adapter with its own client.
func NewHTTPAdapter(opts ...HTTPOption) *HTTPAdapter {
	a := &HTTPAdapter{
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements Adapter.
func (a *HTTPAdapter) Name() string { return "http" }

// Perform implements Adapter. Any HTTP status is a successful
// observation; only transport problems become faults.
func (a *HTTPAdapter) Perform(ctx context.Context, op Op) (*Observation, error) {
	var method string
	switch op.Name {
	case OpGet:
		method = http.MethodGet
	case OpPost:
		method = http.MethodPost
	case OpPut:
		method = http.MethodPut
	case OpDelete:
		method = http.MethodDelete
	default:
		return nil, NewFault(KindProtocol, op, fmt.Errorf("http adapter does not serve %q", op.Name))
	}

	target, ok := op.Args["url"].(string)
	if !ok || target == "" {
		return nil, NewFault(KindProtocol, op, errors.New("missing url argument"))
	}
	target, err := withParams(target, op.Args)
	if err != nil {
		return nil, NewFault(KindProtocol, op, err)
	}

	var reqBody io.Reader
	if payload, ok := op.Args["body"]; ok && payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, NewFault(KindProtocol, op, fmt.Errorf("encoding body: %w", err))
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, NewFault(KindProtocol, op, err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if headers, ok := op.Args["headers"].(map[string]any); ok {
		for k, v := range headers {
			req.Header.Set(k, fmt.Sprintf("%v", v))
		}
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, classifyHTTPError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyHTTPError(op, err)
	}

	values := map[string]any{
		"status": int64(resp.StatusCode),
		"body":   string(raw),
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") && len(raw) > 0 {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err == nil {
			values["json"] = decoded
		}
	}
	return &Observation{Values: values}, nil
}

// withParams appends query parameters from args["params"] to target.
func withParams(target string, args map[string]any) (string, error) {
	params, ok := args["params"].(map[string]any)
	if !ok || len(params) == 0 {
		return target, nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", target, err)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, fmt.Sprintf("%v", v))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// classifyHTTPError maps client errors onto the fault taxonomy.
// Cancellation wins over timeout so an aborted run is never misreported
// as a slow backend.
func classifyHTTPError(op Op, err error) *Fault {
	if errors.Is(err, context.Canceled) {
		return NewFault(KindCanceled, op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewFault(KindTimeout, op, err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return NewFault(KindTimeout, op, err)
	}
	return NewFault(KindConnection, op, err)
}
