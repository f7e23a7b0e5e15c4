// Package collector walks the forge API, normalizes the commit history of
// every repository of the legal-code organization and assembles the corpus
// persisted as the interchange dataset.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"legichart/forge"
	"legichart/logger"
	"legichart/models"
)

// ErrNoRepositories is returned when the organization listing yields no
// repositories at all; the run aborts since there is nothing to collect.
var ErrNoRepositories = fmt.Errorf("no repositories found")

// ForgeClient abstracts the forge API operations needed by the collector
// (for testability)
type ForgeClient interface {
	RepoPages(ctx context.Context, org string, fn func(page []forge.Repository) error) error
	CommitPages(ctx context.Context, org, repo string, fn func(page []forge.CommitResponse) error) error
	RequestCount() int
}

// Collector builds a corpus from one organization on one forge.
type Collector struct {
	client ForgeClient
	org    string
	now    func() time.Time
}

// New creates a collector for the given organization.
func New(client ForgeClient, org string) *Collector {
	return &Collector{
		client: client,
		org:    org,
		now:    time.Now,
	}
}

// Run performs one full collection pass: list every repository of the
// organization, stream every commit page through the normalizer, and
// assemble the corpus. Malformed commits are skipped with a warning;
// repositories without commits are dropped.
func (c *Collector) Run(ctx context.Context) (*models.Corpus, error) {
	var repos []forge.Repository
	err := c.client.RepoPages(ctx, c.org, func(page []forge.Repository) error {
		repos = append(repos, page...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	if len(repos) == 0 {
		return nil, fmt.Errorf("%w: organization %s", ErrNoRepositories, c.org)
	}

	logger.Info("Repository listing complete",
		zap.String("org", c.org),
		zap.Int("count", len(repos)))

	var codes []models.Code
	for i, repo := range repos {
		logger.Info("Collecting commits",
			zap.String("repo", repo.Name),
			zap.Int("index", i+1),
			zap.Int("total", len(repos)))

		commits, err := c.collectCommits(ctx, repo.Name)
		if err != nil {
			return nil, err
		}
		if len(commits) == 0 {
			continue
		}

		sort.Slice(commits, func(a, b int) bool {
			return commits[a].Timestamp < commits[b].Timestamp
		})

		name := repo.Description
		if name == "" {
			name = repo.Name
		}

		codes = append(codes, models.Code{
			Name:         name,
			Slug:         repo.Name,
			RepoURL:      repo.HTMLURL,
			TotalCommits: len(commits),
			Commits:      commits,
		})
	}

	sort.Slice(codes, func(a, b int) bool {
		return codes[a].Name < codes[b].Name
	})

	corpus := &models.Corpus{
		Metadata: buildMetadata(codes, c.now().UTC()),
		Codes:    codes,
	}

	logger.Info("Collection complete",
		zap.Int("codes", corpus.Metadata.TotalCodes),
		zap.Int("commits", corpus.Metadata.TotalCommits),
		zap.Int("requests", c.client.RequestCount()))

	return corpus, nil
}

// collectCommits streams every commit page of one repository through the
// normalizer.
func (c *Collector) collectCommits(ctx context.Context, repo string) ([]models.Commit, error) {
	var commits []models.Commit
	err := c.client.CommitPages(ctx, c.org, repo, func(page []forge.CommitResponse) error {
		for _, raw := range page {
			commit, err := NormalizeCommit(raw)
			if err != nil {
				logger.Warn("Skipping malformed commit",
					zap.String("repo", repo),
					zap.String("sha", raw.SHA),
					zap.Error(err))
				continue
			}
			commits = append(commits, commit)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect commits for %s: %w", repo, err)
	}
	return commits, nil
}

// buildMetadata computes the corpus-wide statistics over all kept commits.
func buildMetadata(codes []models.Code, generatedAt time.Time) models.Metadata {
	meta := models.Metadata{
		GeneratedAt: generatedAt.Format("2006-01-02T15:04:05") + "Z",
		TotalCodes:  len(codes),
	}

	first := true
	for _, code := range codes {
		meta.TotalCommits += len(code.Commits)
		for _, commit := range code.Commits {
			if first || commit.Timestamp < meta.EarliestCommit {
				meta.EarliestCommit = commit.Timestamp
			}
			if first || commit.Timestamp > meta.LatestCommit {
				meta.LatestCommit = commit.Timestamp
			}
			first = false
			if commit.Additions > meta.MaxAdditions {
				meta.MaxAdditions = commit.Additions
			}
			if commit.Deletions > meta.MaxDeletions {
				meta.MaxDeletions = commit.Deletions
			}
		}
	}

	return meta
}

// WriteCorpus persists the corpus as compact UTF-8 JSON, creating parent
// directories as needed.
func WriteCorpus(path string, corpus *models.Corpus) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(corpus); err != nil {
		return fmt.Errorf("failed to encode corpus: %w", err)
	}

	logger.Info("Corpus written", zap.String("path", path))
	return nil
}
