// Package service wires configuration, forge client, collector, archive
// and reporter into the two batch pipelines exposed by the CLI.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"legichart/archive"
	"legichart/collector"
	"legichart/config"
	"legichart/forge"
	"legichart/logger"
	"legichart/models"
	"legichart/report"
)

// CorpusCollector abstracts the collection pass (for testability)
type CorpusCollector interface {
	Run(ctx context.Context) (*models.Corpus, error)
}

// CorpusArchiver abstracts the optional database sink (for testability)
type CorpusArchiver interface {
	SaveCorpus(ctx context.Context, corpus *models.Corpus) error
	Close() error
}

// Service errors
var (
	ErrServiceInit = fmt.Errorf("service initialization error")
)

// Service represents one batch run of either pipeline.
type Service struct {
	cfg       *config.Config
	collector CorpusCollector
	archiver  CorpusArchiver
}

// NewService creates a service instance from loaded configuration. The
// archive sink is attached only when ARCHIVE_DSN is set.
func NewService(cfg *config.Config) (*Service, error) {
	client, err := forge.NewClient(forge.Options{
		BaseURL:        cfg.ForgeBaseURL,
		Timeout:        cfg.HTTPTimeout,
		RateLimitDelay: cfg.RateLimitDelay,
		Retries:        cfg.Retries,
		RepoPageSize:   cfg.RepoPageSize,
		CommitPageSize: cfg.CommitPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize forge client: %v", ErrServiceInit, err)
	}

	svc := &Service{
		cfg:       cfg,
		collector: collector.New(client, cfg.Organization),
	}

	if cfg.ArchiveDSN != "" {
		store, err := archive.New(cfg.ArchiveDSN)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to initialize archive: %v", ErrServiceInit, err)
		}
		svc.archiver = store
	}

	logger.Info("Service initialized",
		zap.String("forge", cfg.ForgeBaseURL),
		zap.String("org", cfg.Organization),
		zap.Bool("archive", svc.archiver != nil))

	return svc, nil
}

// Collect runs the collection pipeline: fetch and normalize every
// repository of the organization, archive the corpus when a sink is
// configured, and persist the interchange JSON.
func (s *Service) Collect(ctx context.Context) error {
	return collectCorpus(ctx, s.collector, s.archiver, s.cfg.DataPath)
}

// collectCorpus is the testable core of Collect. Archiving is best-effort:
// a failed sink degrades to a warning, the JSON dataset still gets written.
func collectCorpus(ctx context.Context, col CorpusCollector, arch CorpusArchiver, dataPath string) error {
	corpus, err := col.Run(ctx)
	if err != nil {
		return fmt.Errorf("collection failed: %w", err)
	}

	if arch != nil {
		if err := arch.SaveCorpus(ctx, corpus); err != nil {
			logger.Warn("Failed to archive corpus", zap.Error(err))
		}
	}

	return collector.WriteCorpus(dataPath, corpus)
}

// Render runs the reporting pipeline: load the corpus, aggregate it into
// buckets and write the rendered HTML artifact. A missing corpus renders
// the placeholder page instead of failing.
func (s *Service) Render() error {
	corpus, err := report.LoadCorpus(s.cfg.DataPath)
	if err != nil {
		if !errors.Is(err, report.ErrNoData) {
			return err
		}
		logger.Warn("No corpus data found, rendering placeholder",
			zap.String("path", s.cfg.DataPath))
		corpus = &models.Corpus{}
	}

	buckets := report.Aggregate(corpus, s.cfg.Granularity, s.cfg.SortPolicy)

	renderer, err := report.NewRenderer(s.cfg.Strategy, s.cfg.Granularity)
	if err != nil {
		return err
	}

	logger.Info("Rendering report",
		zap.String("strategy", s.cfg.Strategy),
		zap.String("granularity", string(s.cfg.Granularity)),
		zap.Int("buckets", len(buckets)))

	html := renderer.Render(buckets, corpus.Metadata)
	return report.WriteReport(s.cfg.OutputPath, html)
}

// Close performs cleanup operations
func (s *Service) Close() error {
	if s.archiver != nil {
		return s.archiver.Close()
	}
	return nil
}
