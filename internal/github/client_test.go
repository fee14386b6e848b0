package github

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/require"
)

func TestNewTokenClient(t *testing.T) {
	t.Run("sends the token as a bearer credential", func(t *testing.T) {
		var auth atomic.Value
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth.Store(r.Header.Get("Authorization"))
			okUser(w, r)
		}))
		t.Cleanup(server.Close)

		baseURL, err := url.Parse(server.URL)
		require.NoError(t, err)

		client, err := NewTokenClient("ghp_secret", Options{BaseURL: baseURL})
		require.NoError(t, err)
		require.Equal(t, server.URL+"/", client.BaseURL.String())

		_, _, err = client.Users.Get(context.Background(), "")
		require.NoError(t, err)
		require.Equal(t, "Bearer ghp_secret", auth.Load())
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := NewTokenClient("  ", Options{})
		require.Error(t, err)
	})

	t.Run("defaults to the public API", func(t *testing.T) {
		client, err := NewTokenClient("ghp_secret", Options{})
		require.NoError(t, err)
		require.Equal(t, "https://api.github.com/", client.BaseURL.String())
	})
}

func TestNewAppClient(t *testing.T) {
	t.Run("requires a private key", func(t *testing.T) {
		_, err := NewAppClient(AppCredentials{AppID: 1, InstallationID: 2}, Options{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "no private key provided for app 1")
	})

	t.Run("missing key file", func(t *testing.T) {
		_, err := NewAppClient(AppCredentials{AppID: 1, InstallationID: 2, PrivateKeyPath: t.TempDir() + "/missing.pem"}, Options{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create app transport")
	})

	t.Run("authenticates with an installation token", func(t *testing.T) {
		var tokenRequests atomic.Int32
		var auth atomic.Value
		mux := http.NewServeMux()
		mux.HandleFunc("POST /app/installations/2/access_tokens", func(w http.ResponseWriter, _ *http.Request) {
			tokenRequests.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"token":      "ghs_installation",
				"expires_at": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
			})
		})
		mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
			auth.Store(r.Header.Get("Authorization"))
			okUser(w, r)
		})
		server := httptest.NewServer(mux)
		t.Cleanup(server.Close)

		baseURL, err := url.Parse(server.URL + "/")
		require.NoError(t, err)

		client, err := NewAppClient(AppCredentials{AppID: 1, InstallationID: 2, PrivateKey: testPrivateKey(t)}, Options{BaseURL: baseURL})
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			_, _, err = client.Users.Get(context.Background(), "")
			require.NoError(t, err)
		}
		require.Equal(t, "token ghs_installation", auth.Load())
		require.Equal(t, int32(1), tokenRequests.Load())
	})
}

func TestStatusCode(t *testing.T) {
	resp := func(code int) *http.Response { return &http.Response{StatusCode: code} }

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"error response", &github.ErrorResponse{Response: resp(http.StatusNotFound)}, http.StatusNotFound},
		{"wrapped", errors.Join(errors.New("context"), &github.ErrorResponse{Response: resp(http.StatusUnauthorized)}), http.StatusUnauthorized},
		{"rate limit", &github.RateLimitError{Response: resp(http.StatusForbidden)}, http.StatusForbidden},
		{"abuse", &github.AbuseRateLimitError{Response: resp(http.StatusForbidden)}, http.StatusForbidden},
		{"plain error", errors.New("boom"), 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, StatusCode(tt.err))
		})
	}

	require.True(t, IsNotFound(&github.ErrorResponse{Response: resp(http.StatusNotFound)}))
	require.False(t, IsNotFound(&github.ErrorResponse{Response: resp(http.StatusForbidden)}))
}

func TestListAll(t *testing.T) {
	pages := [][]int{{1, 2}, {3, 4}, {5}}
	fetch := func(_ context.Context, opts *github.ListOptions) ([]int, *github.Response, error) {
		require.Equal(t, PerPage, opts.PerPage)
		page := opts.Page
		if page == 0 {
			page = 1
		}
		resp := &github.Response{}
		if page < len(pages) {
			resp.NextPage = page + 1
		}
		return pages[page-1], resp, nil
	}

	all, err := ListAll(context.Background(), fetch)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4, 5}, all)

	t.Run("errors stop the listing", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := ListAll(context.Background(), func(context.Context, *github.ListOptions) ([]int, *github.Response, error) {
			return nil, nil, boom
		})
		require.ErrorIs(t, err, boom)
	})
}

func TestFindFirst(t *testing.T) {
	var calls int
	pages := [][]string{{"a", "b"}, {"c", "d"}, {"e"}}
	fetch := func(_ context.Context, opts *github.ListOptions) ([]string, *github.Response, error) {
		calls++
		page := opts.Page
		if page == 0 {
			page = 1
		}
		resp := &github.Response{}
		if page < len(pages) {
			resp.NextPage = page + 1
		}
		return pages[page-1], resp, nil
	}

	t.Run("stops at the first match", func(t *testing.T) {
		calls = 0
		got, ok, err := FindFirst(context.Background(), fetch, func(s string) bool { return s == "c" || s == "e" })
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "c", got)
		require.Equal(t, 2, calls)
	})

	t.Run("exhausted without a match", func(t *testing.T) {
		calls = 0
		got, ok, err := FindFirst(context.Background(), fetch, func(s string) bool { return s == "z" })
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, got)
		require.Equal(t, 3, calls)
	})
}

func testPrivateKey(t *testing.T) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
}
