// Package forge implements a client for the Forgejo REST API exposed by
// git.tricoteuses.fr, covering the organization repository listing and the
// per-repository commit listing used by the collector.
package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"legichart/logger"
)

// Options configures a Client for one collection run.
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	RateLimitDelay time.Duration
	Retries        int
	RepoPageSize   int
	CommitPageSize int
}

// Client represents a Forgejo API client. All calls are serialized through
// an internal rate limiter; the forge publishes no rate-limit headers, so
// the client paces itself.
type Client struct {
	httpClient     *http.Client
	baseURL        *url.URL
	limiter        *rate.Limiter
	retries        int
	repoPageSize   int
	commitPageSize int
	requestCount   int
}

// Repository is the subset of the repository listing consumed downstream.
type Repository struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	HTMLURL     string `json:"html_url"`
}

// CommitStats carries line-change counts; absent from some responses.
type CommitStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

// CommitResponse is one raw commit object from the commit listing. The
// author date is kept as a string so the normalizer owns date parsing.
type CommitResponse struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	HTMLURL string       `json:"html_url"`
	Stats   *CommitStats `json:"stats"`
}

// NewClient creates a Forgejo API client from the given options.
func NewClient(opts Options) (*Client, error) {
	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	retries := opts.Retries
	if retries < 1 {
		retries = 3
	}
	repoPageSize := opts.RepoPageSize
	if repoPageSize < 1 {
		repoPageSize = 50
	}
	commitPageSize := opts.CommitPageSize
	if commitPageSize < 1 {
		commitPageSize = 100
	}

	logger.Info("Initializing forge client",
		zap.String("base_url", baseURL.String()),
		zap.Duration("rate_limit_delay", opts.RateLimitDelay),
		zap.Int("retries", retries))

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:        baseURL,
		limiter:        rate.NewLimiter(rate.Every(opts.RateLimitDelay), 1),
		retries:        retries,
		repoPageSize:   repoPageSize,
		commitPageSize: commitPageSize,
	}, nil
}

// RequestCount returns the number of HTTP requests issued so far.
func (c *Client) RequestCount() int {
	return c.requestCount
}

// getJSON performs one GET with retry and exponential backoff. It returns
// found=false without error on a 404, which terminates pagination. After
// exhausting all attempts the last error is returned.
func (c *Client) getJSON(ctx context.Context, reqURL string, v any) (bool, error) {
	var lastErr error

	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Second << (attempt - 1)
			logger.Warn("Retrying request",
				zap.String("url", reqURL),
				zap.Int("attempt", attempt+1),
				zap.Int("retries", c.retries),
				zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return false, err
		}

		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return false, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		c.requestCount++
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			return false, nil
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status code %d", resp.StatusCode)
			continue
		}

		err = json.NewDecoder(resp.Body).Decode(v)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to decode response: %w", err)
			continue
		}

		return true, nil
	}

	return false, fmt.Errorf("request failed after %d attempts: %w", c.retries, lastErr)
}

// pageURL builds a paginated request URL under the client base.
func (c *Client) pageURL(limit, page int, elems ...string) string {
	u := c.baseURL.JoinPath(elems...)
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// RepoPages walks the organization repository listing one page at a time,
// calling fn for every non-empty page. A page that still fails after all
// retries ends the walk with a warning; repositories already delivered
// stay delivered.
func (c *Client) RepoPages(ctx context.Context, org string, fn func(page []Repository) error) error {
	for page := 1; ; page++ {
		reqURL := c.pageURL(c.repoPageSize, page, "orgs", org, "repos")

		var repos []Repository
		found, err := c.getJSON(ctx, reqURL, &repos)
		if err != nil {
			logger.Warn("Giving up on repository page",
				zap.String("org", org),
				zap.Int("page", page),
				zap.Error(err))
			return nil
		}
		if !found || len(repos) == 0 {
			return nil
		}

		logger.Info("Fetched repository page",
			zap.String("org", org),
			zap.Int("page", page),
			zap.Int("count", len(repos)))

		if err := fn(repos); err != nil {
			return err
		}
	}
}

// CommitPages walks the commit listing of one repository one page at a
// time, calling fn for every non-empty page. Failure semantics match
// RepoPages: retries exhausted ends the walk without error.
func (c *Client) CommitPages(ctx context.Context, org, repo string, fn func(page []CommitResponse) error) error {
	for page := 1; ; page++ {
		reqURL := c.pageURL(c.commitPageSize, page, "repos", org, repo, "commits")

		var commits []CommitResponse
		found, err := c.getJSON(ctx, reqURL, &commits)
		if err != nil {
			logger.Warn("Giving up on commit page",
				zap.String("org", org),
				zap.String("repo", repo),
				zap.Int("page", page),
				zap.Error(err))
			return nil
		}
		if !found || len(commits) == 0 {
			return nil
		}

		if err := fn(commits); err != nil {
			return err
		}
	}
}

// FetchRepos accumulates every page of the organization listing.
func (c *Client) FetchRepos(ctx context.Context, org string) ([]Repository, error) {
	var all []Repository
	err := c.RepoPages(ctx, org, func(page []Repository) error {
		all = append(all, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// FetchCommits accumulates every page of one repository's commit listing.
func (c *Client) FetchCommits(ctx context.Context, org, repo string) ([]CommitResponse, error) {
	var all []CommitResponse
	err := c.CommitPages(ctx, org, repo, func(page []CommitResponse) error {
		all = append(all, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}
