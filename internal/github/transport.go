package github

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RateLimitHandler is called when a request hits the primary rate limit and
// another attempt is still available. attempt is zero for the first try of a
// request. Returning true retries the request once retryAfter has elapsed.
type RateLimitHandler func(retryAfter time.Duration, req *http.Request, attempt int) bool

// AbuseLimitHandler is called when a request hits a secondary (abuse) rate limit.
// Secondary limits are never retried by the transport.
type AbuseLimitHandler func(retryAfter time.Duration, req *http.Request, attempt int)

// defaultAbuseRetryAfter is used when a secondary limit response carries no Retry-After
const defaultAbuseRetryAfter = 60 * time.Second

var errRetryableStatus = errors.New("retryable status")

// RetryTransport retries transient failures with exponential backoff and
// applies the rate limit and abuse limit policy.
type RetryTransport struct {
	Base         http.RoundTripper
	MaxAttempts  int
	NewBackOff   func() backoff.BackOff
	OnRateLimit  RateLimitHandler
	OnAbuseLimit AbuseLimitHandler
	Logger       Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

type limitKind int

const (
	limitNone limitKind = iota
	limitPrimary
	limitSecondary
)

// RoundTrip implements http.RoundTripper
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var (
		attempt  int
		lastResp *http.Response
	)

	operation := func() (*http.Response, error) {
		n := attempt
		attempt++
		lastResp = nil

		resp, err := t.do(req, n)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}

		switch kind, retryAfter := t.classify(resp); kind {
		case limitPrimary:
			if n+1 >= t.maxAttempts() {
				if t.Logger != nil {
					t.Logger.Warn("Request quota exhausted for request %s %s", req.Method, req.URL.Path)
				}
				return resp, nil
			}
			if !t.onRateLimit(retryAfter, req, n) {
				return resp, nil
			}
			if err := t.wait(req.Context(), retryAfter); err != nil {
				_ = resp.Body.Close()
				return nil, backoff.Permanent(err)
			}
			lastResp = resp
			// Already waited the server delay, retry right away
			return nil, backoff.RetryAfter(0)
		case limitSecondary:
			t.onAbuseLimit(retryAfter, req, n)
			return resp, nil
		}

		if isRetryableStatus(resp.StatusCode) {
			lastResp = resp
			return nil, errRetryableStatus
		}
		return resp, nil
	}

	resp, err := backoff.Retry(req.Context(), operation,
		backoff.WithBackOff(t.newBackOff()),
		backoff.WithMaxTries(uint(t.maxAttempts())),
		// Rate limit resets can be an hour away; attempts are bounded by MaxTries alone
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			if t.Logger != nil {
				t.Logger.Debug("Retrying %s %s in %s: %v", req.Method, req.URL.Redacted(), next, err)
			}
		}),
	)
	if err != nil && lastResp != nil && req.Context().Err() == nil {
		// Out of attempts: hand the last response to go-github so it can build a typed error
		return lastResp, nil
	}
	return resp, err
}

func (t *RetryTransport) do(req *http.Request, attempt int) (*http.Response, error) {
	r := req.Clone(req.Context())
	if attempt > 0 && req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			return nil, backoff.Permanent(errors.New("request body cannot be replayed"))
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		r.Body = body
	}

	resp, err := t.base().RoundTrip(r)
	if err != nil {
		return nil, err
	}

	// Buffer error bodies so the response can be inspected and still returned
	if resp.StatusCode >= http.StatusBadRequest {
		data, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		resp.Body = io.NopCloser(bytes.NewReader(data))
	}
	return resp, nil
}

// classify detects primary and secondary rate limit responses
func (t *RetryTransport) classify(resp *http.Response) (limitKind, time.Duration) {
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return limitNone, 0
	}

	retryAfter, hasRetryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))

	if resp.Header.Get("X-RateLimit-Remaining") == "0" {
		if hasRetryAfter {
			return limitPrimary, retryAfter
		}
		if reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
			delay := time.Unix(reset, 0).Sub(t.clock())
			if delay < 0 {
				delay = 0
			}
			return limitPrimary, delay
		}
		return limitPrimary, 0
	}

	if hasRetryAfter || mentionsSecondaryLimit(resp) {
		if !hasRetryAfter {
			retryAfter = defaultAbuseRetryAfter
		}
		return limitSecondary, retryAfter
	}
	return limitNone, 0
}

func mentionsSecondaryLimit(resp *http.Response) bool {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	body := strings.ToLower(string(data))
	return strings.Contains(body, "secondary rate limit") || strings.Contains(body, "abuse")
}

func parseRetryAfter(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (t *RetryTransport) onRateLimit(retryAfter time.Duration, req *http.Request, attempt int) bool {
	if t.OnRateLimit == nil {
		return false
	}
	return t.OnRateLimit(retryAfter, req, attempt)
}

func (t *RetryTransport) onAbuseLimit(retryAfter time.Duration, req *http.Request, attempt int) {
	if t.OnAbuseLimit != nil {
		t.OnAbuseLimit(retryAfter, req, attempt)
	}
}

func (t *RetryTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *RetryTransport) maxAttempts() int {
	if t.MaxAttempts < 1 {
		return 1
	}
	return t.MaxAttempts
}

func (t *RetryTransport) newBackOff() backoff.BackOff {
	if t.NewBackOff != nil {
		return t.NewBackOff()
	}
	return backoff.NewExponentialBackOff()
}

// wait blocks for d or until ctx is done
func (t *RetryTransport) wait(ctx context.Context, d time.Duration) error {
	if t.sleep != nil {
		return t.sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *RetryTransport) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

// DefaultRateLimitHandler warns about the exhausted quota and retries only the first attempt
func DefaultRateLimitHandler(logger Logger) RateLimitHandler {
	return func(retryAfter time.Duration, req *http.Request, attempt int) bool {
		logger.Warn("Request quota exhausted for request %s %s", req.Method, req.URL.Path)
		if attempt == 0 {
			logger.Info("Retrying after %d seconds!", int(math.Ceil(retryAfter.Seconds())))
			return true
		}
		return false
	}
}

// DefaultAbuseLimitHandler warns about the secondary limit
func DefaultAbuseLimitHandler(logger Logger) AbuseLimitHandler {
	return func(_ time.Duration, req *http.Request, _ int) {
		logger.Warn("Abuse detected for request %s %s", req.Method, req.URL.Path)
	}
}

var _ http.RoundTripper = (*RetryTransport)(nil)
