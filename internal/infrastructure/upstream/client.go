// Package upstream mirrors customer records to the legacy billing backend.
//
// The backend's supported update verb was never pinned down: some deployments
// accept PUT, some only PATCH, and the oldest ones expose a POST-only
// /update/ sub-resource. Until the contract is confirmed server-side the
// client walks a fixed verb-fallback sequence, stepping forward only on a
// method-not-allowed response.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/telcocrm/crm-system/internal/api/metrics"
	"github.com/telcocrm/crm-system/internal/core/domain"
)

const defaultTimeout = 15 * time.Second

// Error is a non-2xx response from the upstream backend.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream: status %d: %s", e.StatusCode, e.Body)
}

// isMethodNotAllowed is the single predicate deciding whether the next verb
// in the sequence is tried.
func isMethodNotAllowed(err error) bool {
	ue, ok := err.(*Error)
	return ok && ue.StatusCode == http.StatusMethodNotAllowed
}

// attempt is one step of the fallback sequence: a verb and the path pattern
// it targets.
type attempt struct {
	method  string
	pathFmt string
}

// updateAttempts is ordered and fixed; attempts run strictly sequentially and
// only a 405 moves to the next one.
var updateAttempts = []attempt{
	{http.MethodPut, "/customers/%s/"},
	{http.MethodPatch, "/customers/%s/"},
	{http.MethodPost, "/customers/%s/update/"},
}

// Client talks to the legacy billing backend. The access token is injected
// from configuration; it is sent in the backend's bespoke Token header.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

func New(baseURL, token string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// UpdateCustomer pushes the full customer record upstream. On a 405 the next
// verb in the sequence is tried; any other failure (transport error or a
// different status) surfaces immediately with no further attempts. The last
// attempt's error, whatever it is, surfaces as-is.
func (c *Client) UpdateCustomer(ctx context.Context, id string, customer *domain.Customer) (*domain.Customer, error) {
	start := time.Now()
	updated, err := c.update(ctx, id, customer)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.UpstreamSyncDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	return updated, err
}

func (c *Client) update(ctx context.Context, id string, customer *domain.Customer) (*domain.Customer, error) {
	body, err := json.Marshal(customer)
	if err != nil {
		return nil, fmt.Errorf("upstream: encode customer: %w", err)
	}

	var lastErr error
	for i, a := range updateAttempts {
		updated, err := c.send(ctx, a.method, fmt.Sprintf(a.pathFmt, id), body)
		if err == nil {
			metrics.UpstreamSyncAttemptsTotal.WithLabelValues(a.method, "ok").Inc()
			return updated, nil
		}

		if isMethodNotAllowed(err) && i < len(updateAttempts)-1 {
			metrics.UpstreamSyncAttemptsTotal.WithLabelValues(a.method, "method_not_allowed").Inc()
			c.log.Debug().Str("method", a.method).Str("customer_id", id).Msg("upstream verb not allowed, trying next")
			lastErr = err
			continue
		}

		metrics.UpstreamSyncAttemptsTotal.WithLabelValues(a.method, "error").Inc()
		return nil, err
	}
	return nil, lastErr
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (*domain.Customer, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("upstream: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var customer domain.Customer
	if err := json.Unmarshal(raw, &customer); err != nil {
		return nil, fmt.Errorf("upstream: decode customer: %w", err)
	}
	return &customer, nil
}
