// Package testhelpers provides an in-memory GitHub API fake for tests.
package testhelpers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
)

// FakeRunnerGroup is a runner group held by the fake
type FakeRunnerGroup struct {
	ID      int64
	Name    string
	RepoIDs []int64
	Runners []string
}

// RecordedRequest is a request received by the fake
type RecordedRequest struct {
	Method string
	Path   string
	Body   string
}

// FakeGitHub is an httptest server implementing the runner group, team
// membership, repository and runner token endpoints for a single organization.
type FakeGitHub struct {
	Server *httptest.Server

	Org   string
	Login string
	// Memberships maps team slug to the role of Login on that team
	Memberships map[string]string
	// Repos maps repository name to ID
	Repos  map[string]int64
	Groups []*FakeRunnerGroup
	// Failures maps "METHOD /path" to a status code returned instead of the normal response
	Failures map[string]int

	RegistrationToken string
	RemoveToken       string

	mu       sync.Mutex
	nextID   int64
	requests []RecordedRequest
}

// NewFakeGitHub starts a fake for org with an authenticated user named octocat
func NewFakeGitHub(t *testing.T, org string) *FakeGitHub {
	t.Helper()

	f := &FakeGitHub{
		Org:               org,
		Login:             "octocat",
		Memberships:       make(map[string]string),
		Repos:             make(map[string]int64),
		Failures:          make(map[string]int),
		RegistrationToken: "AABBREGISTRATION",
		RemoveToken:       "AABBREMOVAL",
		nextID:            1000,
	}

	mux := http.NewServeMux()
	prefix := "/orgs/" + org

	mux.HandleFunc("GET /user", f.handleUser)
	mux.HandleFunc("GET "+prefix+"/teams/{team}/memberships/{user}", f.handleMembership)
	mux.HandleFunc("GET /repos/{owner}/{repo}", f.handleGetRepo)
	mux.HandleFunc("GET "+prefix+"/actions/runner-groups", f.handleListGroups)
	mux.HandleFunc("POST "+prefix+"/actions/runner-groups", f.handleCreateGroup)
	mux.HandleFunc("DELETE "+prefix+"/actions/runner-groups/{id}", f.handleDeleteGroup)
	mux.HandleFunc("GET "+prefix+"/actions/runner-groups/{id}/repositories", f.handleListGroupRepos)
	mux.HandleFunc("PUT "+prefix+"/actions/runner-groups/{id}/repositories", f.handleSetGroupRepos)
	mux.HandleFunc("PUT "+prefix+"/actions/runner-groups/{id}/repositories/{repo}", f.handleAddGroupRepo)
	mux.HandleFunc("DELETE "+prefix+"/actions/runner-groups/{id}/repositories/{repo}", f.handleRemoveGroupRepo)
	mux.HandleFunc("GET "+prefix+"/actions/runner-groups/{id}/runners", f.handleListGroupRunners)
	mux.HandleFunc("POST "+prefix+"/actions/runners/registration-token", f.handleToken(func() string { return f.RegistrationToken }))
	mux.HandleFunc("POST "+prefix+"/actions/runners/remove-token", f.handleToken(func() string { return f.RemoveToken }))

	f.Server = httptest.NewServer(f.record(mux))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the API base URL of the fake with a trailing slash
func (f *FakeGitHub) URL() *url.URL {
	u, _ := url.Parse(f.Server.URL + "/")
	return u
}

// Client returns a plain go-github client pointed at the fake
func (f *FakeGitHub) Client() *github.Client {
	client := github.NewClient(nil)
	client.BaseURL = f.URL()
	client.UploadURL = f.URL()
	return client
}

// AddGroup adds a runner group and returns it
func (f *FakeGitHub) AddGroup(name string, repoIDs []int64, runners ...string) *FakeRunnerGroup {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	g := &FakeRunnerGroup{ID: f.nextID, Name: name, RepoIDs: repoIDs, Runners: runners}
	f.Groups = append(f.Groups, g)
	return g
}

// Group returns the group with the given ID
func (f *FakeGitHub) Group(id int64) *FakeRunnerGroup {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groupLocked(id)
}

// Fail makes requests matching method and path return status
func (f *FakeGitHub) Fail(method, path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Failures[method+" "+path] = status
}

// Requests returns a copy of every request received so far
func (f *FakeGitHub) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// MutatingRequests returns the POST, PUT, PATCH and DELETE requests received so far
func (f *FakeGitHub) MutatingRequests() []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if r.Method != http.MethodGet {
			out = append(out, r)
		}
	}
	return out
}

// GroupPath returns the API path of a runner group
func (f *FakeGitHub) GroupPath(id int64) string {
	return fmt.Sprintf("/orgs/%s/actions/runner-groups/%d", f.Org, id)
}

func (f *FakeGitHub) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		status, fail := f.Failures[r.Method+" "+r.URL.Path]
		f.mu.Unlock()

		if fail {
			writeError(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeGitHub) handleUser(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, &github.User{Login: github.String(f.Login)})
}

func (f *FakeGitHub) handleMembership(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	role, ok := f.Memberships[r.PathValue("team")]
	f.mu.Unlock()
	if !ok || r.PathValue("user") != f.Login {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	writeJSON(w, http.StatusOK, &github.Membership{Role: github.String(role), State: github.String("active")})
}

func (f *FakeGitHub) handleGetRepo(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	id, ok := f.Repos[r.PathValue("repo")]
	f.mu.Unlock()
	if !ok || r.PathValue("owner") != f.Org {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	writeJSON(w, http.StatusOK, &github.Repository{ID: github.Int64(id), Name: github.String(r.PathValue("repo"))})
}

func (f *FakeGitHub) handleListGroups(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	groups := make([]*github.RunnerGroup, 0, len(f.Groups))
	for _, g := range f.Groups {
		groups = append(groups, &github.RunnerGroup{ID: github.Int64(g.ID), Name: github.String(g.Name), Visibility: github.String("selected")})
	}
	f.mu.Unlock()

	page := paginate(w, r, groups)
	writeJSON(w, http.StatusOK, &github.RunnerGroups{TotalCount: len(groups), RunnerGroups: page})
}

func (f *FakeGitHub) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req github.CreateRunnerGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == nil {
		writeError(w, http.StatusUnprocessableEntity, "Validation Failed")
		return
	}
	g := f.AddGroup(*req.Name, req.SelectedRepositoryIDs)
	writeJSON(w, http.StatusCreated, &github.RunnerGroup{ID: github.Int64(g.ID), Name: github.String(g.Name), Visibility: req.Visibility})
}

func (f *FakeGitHub) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	f.withGroup(w, r, func(g *FakeRunnerGroup) {
		for i, candidate := range f.Groups {
			if candidate == g {
				f.Groups = append(f.Groups[:i], f.Groups[i+1:]...)
				break
			}
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (f *FakeGitHub) handleListGroupRepos(w http.ResponseWriter, r *http.Request) {
	var repos []*github.Repository
	found := f.withGroup(w, r, func(g *FakeRunnerGroup) {
		for _, id := range g.RepoIDs {
			repos = append(repos, &github.Repository{ID: github.Int64(id), Name: github.String(f.repoNameLocked(id))})
		}
	})
	if !found {
		return
	}
	page := paginate(w, r, repos)
	writeJSON(w, http.StatusOK, &github.ListRepositories{TotalCount: github.Int(len(repos)), Repositories: page})
}

func (f *FakeGitHub) handleSetGroupRepos(w http.ResponseWriter, r *http.Request) {
	var req github.SetRepoAccessRunnerGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Problems parsing JSON")
		return
	}
	f.withGroup(w, r, func(g *FakeRunnerGroup) {
		g.RepoIDs = append([]int64(nil), req.SelectedRepositoryIDs...)
		w.WriteHeader(http.StatusNoContent)
	})
}

func (f *FakeGitHub) handleAddGroupRepo(w http.ResponseWriter, r *http.Request) {
	repoID, err := strconv.ParseInt(r.PathValue("repo"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	f.withGroup(w, r, func(g *FakeRunnerGroup) {
		for _, id := range g.RepoIDs {
			if id == repoID {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		g.RepoIDs = append(g.RepoIDs, repoID)
		w.WriteHeader(http.StatusNoContent)
	})
}

func (f *FakeGitHub) handleRemoveGroupRepo(w http.ResponseWriter, r *http.Request) {
	repoID, err := strconv.ParseInt(r.PathValue("repo"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	f.withGroup(w, r, func(g *FakeRunnerGroup) {
		kept := g.RepoIDs[:0]
		for _, id := range g.RepoIDs {
			if id != repoID {
				kept = append(kept, id)
			}
		}
		g.RepoIDs = kept
		w.WriteHeader(http.StatusNoContent)
	})
}

func (f *FakeGitHub) handleListGroupRunners(w http.ResponseWriter, r *http.Request) {
	var runners []*github.Runner
	found := f.withGroup(w, r, func(g *FakeRunnerGroup) {
		for i, name := range g.Runners {
			runners = append(runners, &github.Runner{
				ID:     github.Int64(int64(i + 1)),
				Name:   github.String(name),
				OS:     github.String("linux"),
				Status: github.String("online"),
			})
		}
	})
	if !found {
		return
	}
	page := paginate(w, r, runners)
	writeJSON(w, http.StatusOK, &github.Runners{TotalCount: len(runners), Runners: page})
}

func (f *FakeGitHub) handleToken(token func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]string{
			"token":      token(),
			"expires_at": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		})
	}
}

// withGroup runs fn with the lock held on the group named by the {id} path value.
// It writes a 404 and returns false when the group does not exist.
func (f *FakeGitHub) withGroup(w http.ResponseWriter, r *http.Request, fn func(*FakeRunnerGroup)) bool {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	g := f.groupLocked(id)
	if g == nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return false
	}
	fn(g)
	return true
}

func (f *FakeGitHub) groupLocked(id int64) *FakeRunnerGroup {
	for _, g := range f.Groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (f *FakeGitHub) repoNameLocked(id int64) string {
	for name, repoID := range f.Repos {
		if repoID == id {
			return name
		}
	}
	return fmt.Sprintf("repo-%d", id)
}

// paginate slices items according to the page and per_page query parameters
// and sets a Link header when more pages remain.
func paginate[T any](w http.ResponseWriter, r *http.Request, items []T) []T {
	query := r.URL.Query()
	perPage, err := strconv.Atoi(query.Get("per_page"))
	if err != nil || perPage <= 0 {
		perPage = 30
	}
	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}

	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}
	}
	end := start + perPage
	if end < len(items) {
		next := *r.URL
		q := next.Query()
		q.Set("page", strconv.Itoa(page+1))
		q.Set("per_page", strconv.Itoa(perPage))
		next.RawQuery = q.Encode()
		w.Header().Set("Link", fmt.Sprintf(`<http://%s%s>; rel="next"`, r.Host, next.RequestURI()))
	} else {
		end = len(items)
	}
	return items[start:end]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
