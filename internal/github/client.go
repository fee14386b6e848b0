// Package github builds authenticated GitHub API clients with the retry and
// rate limit policy used by every actions-runner-manager command.
package github

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// DefaultRetries bounds the number of attempts per request
const DefaultRetries = 3

// Logger is the subset of the console logger the clients report through
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// Options configures client construction. Zero values fall back to defaults.
type Options struct {
	// BaseURL is the REST API root, e.g. https://api.github.com/
	BaseURL *url.URL
	// Retries is the maximum number of attempts per request
	Retries int
	// NewBackOff creates the backoff policy for transient failures
	NewBackOff func() backoff.BackOff
	// Transport is the underlying transport, http.DefaultTransport when nil
	Transport    http.RoundTripper
	Logger       Logger
	OnRateLimit  RateLimitHandler
	OnAbuseLimit AbuseLimitHandler
}

// AppCredentials identify a GitHub App installation
type AppCredentials struct {
	AppID          int64
	InstallationID int64
	ClientID       string
	ClientSecret   string
	PrivateKeyPath string
	PrivateKey     []byte
}

// NewTokenClient creates a client authenticated with a personal access token
func NewTokenClient(token string, opts Options) (*github.Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("empty GitHub token")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	auth := &oauth2.Transport{Source: ts, Base: baseTransport(opts)}

	return newClient(auth, opts)
}

// NewAppClient creates a client authenticated as a GitHub App installation.
// ClientID and ClientSecret are carried for OAuth flows and are not needed
// to mint installation tokens.
func NewAppClient(creds AppCredentials, opts Options) (*github.Client, error) {
	var (
		itr *ghinstallation.Transport
		err error
	)
	switch {
	case len(creds.PrivateKey) > 0:
		itr, err = ghinstallation.New(baseTransport(opts), creds.AppID, creds.InstallationID, creds.PrivateKey)
	case creds.PrivateKeyPath != "":
		itr, err = ghinstallation.NewKeyFromFile(baseTransport(opts), creds.AppID, creds.InstallationID, creds.PrivateKeyPath)
	default:
		return nil, fmt.Errorf("no private key provided for app %d", creds.AppID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create app transport: %w", err)
	}

	if opts.BaseURL != nil {
		itr.BaseURL = strings.TrimSuffix(opts.BaseURL.String(), "/")
	}

	return newClient(itr, opts)
}

func newClient(auth http.RoundTripper, opts Options) (*github.Client, error) {
	retries := opts.Retries
	if retries == 0 {
		retries = DefaultRetries
	}

	transport := &RetryTransport{
		Base:         auth,
		MaxAttempts:  retries,
		NewBackOff:   opts.NewBackOff,
		OnRateLimit:  opts.OnRateLimit,
		OnAbuseLimit: opts.OnAbuseLimit,
		Logger:       opts.Logger,
	}
	if opts.Logger != nil {
		if transport.OnRateLimit == nil {
			transport.OnRateLimit = DefaultRateLimitHandler(opts.Logger)
		}
		if transport.OnAbuseLimit == nil {
			transport.OnAbuseLimit = DefaultAbuseLimitHandler(opts.Logger)
		}
	}

	client := github.NewClient(&http.Client{Transport: transport})

	if opts.BaseURL != nil {
		baseURL := *opts.BaseURL
		if !strings.HasSuffix(baseURL.Path, "/") {
			baseURL.Path += "/"
		}
		client.BaseURL = &baseURL
		client.UploadURL = &baseURL
	}

	return client, nil
}

func baseTransport(opts Options) http.RoundTripper {
	if opts.Transport != nil {
		return opts.Transport
	}
	return http.DefaultTransport
}

// IsNotFound reports whether err is a 404 response from the API
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode returns the HTTP status carried by an API error, or 0
func StatusCode(err error) int {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return rateErr.Response.StatusCode
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.Response != nil {
		return abuseErr.Response.StatusCode
	}
	return 0
}
