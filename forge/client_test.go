package forge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legichart/logger"
)

func init() {
	// Initialize logger for tests
	_ = logger.Initialize("debug")
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient(Options{
		BaseURL:        serverURL,
		RateLimitDelay: 0,
		Retries:        3,
		RepoPageSize:   50,
		CommitPageSize: 100,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(Options{BaseURL: "https://git.tricoteuses.fr/api/v1"})
	require.NoError(t, err)

	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 3, client.retries)
	assert.Equal(t, 50, client.repoPageSize)
	assert.Equal(t, 100, client.commitPageSize)
	assert.Equal(t, 0, client.RequestCount())
}

func TestNewClientInvalidURL(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "://not-a-url"})
	assert.Error(t, err)
}

func TestFetchReposPagination(t *testing.T) {
	pages := map[string][]Repository{
		"1": {
			{Name: "code-civil", Description: "Code civil", HTMLURL: "https://forge/codes/code-civil"},
			{Name: "code-penal", Description: "Code pénal", HTMLURL: "https://forge/codes/code-penal"},
		},
		"2": {
			{Name: "code-du-travail", Description: "Code du travail", HTMLURL: "https://forge/codes/code-du-travail"},
		},
		"3": {},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orgs/codes/repos", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))

		page := r.URL.Query().Get("page")
		json.NewEncoder(w).Encode(pages[page])
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	repos, err := client.FetchRepos(context.Background(), "codes")
	require.NoError(t, err)
	assert.Len(t, repos, 3)
	assert.Equal(t, "code-civil", repos[0].Name)
	assert.Equal(t, "Code du travail", repos[2].Description)
	assert.Equal(t, 3, client.RequestCount())
}

func TestFetchCommitsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	commits, err := client.FetchCommits(context.Background(), "codes", "missing-repo")
	require.NoError(t, err)
	assert.Empty(t, commits)
	assert.Equal(t, 1, client.RequestCount())
}

func TestFetchCommitsStatsParsing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/codes/code-civil/commits", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))

		if r.URL.Query().Get("page") != "1" {
			w.Write([]byte("[]"))
			return
		}
		w.Write([]byte(`[
			{"sha":"abc","commit":{"message":"With stats","author":{"name":"a","date":"2020-01-05T10:00:00Z"}},"html_url":"u1","stats":{"additions":10,"deletions":3}},
			{"sha":"def","commit":{"message":"No stats","author":{"name":"b","date":"2020-01-06T10:00:00Z"}},"html_url":"u2"}
		]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	commits, err := client.FetchCommits(context.Background(), "codes", "code-civil")
	require.NoError(t, err)
	require.Len(t, commits, 2)

	require.NotNil(t, commits[0].Stats)
	assert.Equal(t, 10, commits[0].Stats.Additions)
	assert.Equal(t, 3, commits[0].Stats.Deletions)
	assert.Nil(t, commits[1].Stats)
}

func TestCommitPagesNotFoundMidPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(`[{"sha":"abc","commit":{"message":"m","author":{"name":"a","date":"2020-01-05T10:00:00Z"}},"html_url":"u"}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	commits, err := client.FetchCommits(context.Background(), "codes", "code-civil")
	require.NoError(t, err)
	assert.Len(t, commits, 1)
}

func TestGetJSONRetriesTransientError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"name":"code-civil","description":"Code civil","html_url":"u"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	var repos []Repository
	found, err := client.getJSON(context.Background(), client.pageURL(50, 1, "orgs", "codes", "repos"), &repos)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, repos, 1)
	assert.Equal(t, 2, attempts)
}

func TestFetchReposDegradesAfterRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	// Retries exhausted: no data, but the walk ends without an error.
	repos, err := client.FetchRepos(context.Background(), "codes")
	require.NoError(t, err)
	assert.Empty(t, repos)
	assert.Equal(t, 3, attempts)
}

func TestPageURL(t *testing.T) {
	client, err := NewClient(Options{BaseURL: "https://git.tricoteuses.fr/api/v1"})
	require.NoError(t, err)

	u := client.pageURL(50, 2, "orgs", "codes", "repos")
	assert.Equal(t, "https://git.tricoteuses.fr/api/v1/orgs/codes/repos?limit=50&page=2", u)

	u = client.pageURL(100, 1, "repos", "codes", "code-civil", "commits")
	assert.Contains(t, u, "/api/v1/repos/codes/code-civil/commits")
	assert.Contains(t, u, "limit="+strconv.Itoa(100))
}
