// Package archive is an optional Postgres sink for collected corpora. It
// mirrors the JSON dataset into codes and commits tables so past
// collection runs stay queryable; the reporter never reads from it.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"legichart/logger"
	"legichart/models"
)

// Store represents an archive database connection
type Store struct {
	conn *sqlx.DB
}

// CodeRow is one persisted legal code.
type CodeRow struct {
	ID           int    `db:"id"`
	Slug         string `db:"slug"`
	Name         string `db:"name"`
	RepoURL      string `db:"repo_url"`
	TotalCommits int    `db:"total_commits"`
}

// CorpusStats summarizes the archived dataset.
type CorpusStats struct {
	TotalCodes   int           `db:"total_codes"`
	TotalCommits int           `db:"total_commits"`
	EarliestTS   sql.NullInt64 `db:"earliest_ts"`
	LatestTS     sql.NullInt64 `db:"latest_ts"`
}

// New opens an archive store for the given DSN.
func New(dsn string) (*Store, error) {
	conn, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseConnection, err)
	}

	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	logger.Info("Archive connection established")
	return &Store{conn: conn}, nil
}

// NewWithDB wraps an existing connection (for tests).
func NewWithDB(conn *sqlx.DB) *Store {
	return &Store{conn: conn}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// SaveCorpus archives every code and its commits. Codes are upserted by
// slug; commits by sha.
func (s *Store) SaveCorpus(ctx context.Context, corpus *models.Corpus) error {
	if corpus == nil {
		return fmt.Errorf("%w: corpus cannot be nil", ErrInvalidInput)
	}

	logger.Info("Archiving corpus",
		zap.Int("codes", len(corpus.Codes)),
		zap.Int("commits", corpus.Metadata.TotalCommits))

	for _, code := range corpus.Codes {
		if err := s.upsertCode(ctx, code); err != nil {
			return err
		}

		row, err := s.GetCodeBySlug(ctx, code.Slug)
		if err != nil {
			return err
		}

		if err := s.insertCommits(ctx, row.ID, code.Commits); err != nil {
			return err
		}
	}

	return nil
}

// upsertCode stores one code row, updating it in place on conflict.
func (s *Store) upsertCode(ctx context.Context, code models.Code) error {
	if code.Slug == "" {
		return fmt.Errorf("%w: code slug cannot be empty", ErrInvalidInput)
	}

	query := `
		INSERT INTO codes (slug, name, repo_url, total_commits)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			repo_url = EXCLUDED.repo_url,
			total_commits = EXCLUDED.total_commits
	`

	if _, err := s.conn.ExecContext(ctx, query, code.Slug, code.Name, code.RepoURL, code.TotalCommits); err != nil {
		return fmt.Errorf("failed to store code %s: %w", code.Slug, err)
	}
	return nil
}

// GetCodeBySlug retrieves one archived code by its slug.
func (s *Store) GetCodeBySlug(ctx context.Context, slug string) (*CodeRow, error) {
	if slug == "" {
		return nil, fmt.Errorf("%w: slug cannot be empty", ErrInvalidInput)
	}

	var row CodeRow
	query := `
		SELECT id, slug, name, repo_url, total_commits
		FROM codes
		WHERE slug = $1
	`

	if err := s.conn.GetContext(ctx, &row, query, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrCodeNotFound, slug)
		}
		return nil, fmt.Errorf("failed to get code %s: %w", slug, err)
	}
	return &row, nil
}

// insertCommits stores one code's commits inside a single transaction.
func (s *Store) insertCommits(ctx context.Context, codeID int, commits []models.Commit) error {
	if len(commits) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO commits (sha, code_id, date, ts, message, additions, deletions, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (sha) DO UPDATE SET
			date = EXCLUDED.date,
			ts = EXCLUDED.ts,
			message = EXCLUDED.message,
			additions = EXCLUDED.additions,
			deletions = EXCLUDED.deletions,
			url = EXCLUDED.url
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare commit insert statement: %w", err)
	}
	defer stmt.Close()

	for _, commit := range commits {
		if _, err := stmt.ExecContext(ctx,
			commit.SHA,
			codeID,
			commit.Date,
			commit.Timestamp,
			commit.Message,
			commit.Additions,
			commit.Deletions,
			commit.URL,
		); err != nil {
			return fmt.Errorf("failed to insert commit %s: %w", commit.SHA, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", ErrTransactionFailed, err)
	}

	logger.Info("Archived commits",
		zap.Int("code_id", codeID),
		zap.Int("count", len(commits)))
	return nil
}

// Stats returns aggregate statistics over the archived commits.
func (s *Store) Stats(ctx context.Context) (*CorpusStats, error) {
	stats := &CorpusStats{}
	query := `
		SELECT
			COUNT(DISTINCT code_id) as total_codes,
			COUNT(*) as total_commits,
			MIN(ts) as earliest_ts,
			MAX(ts) as latest_ts
		FROM commits
	`

	if err := s.conn.GetContext(ctx, stats, query); err != nil {
		return nil, fmt.Errorf("failed to get archive statistics: %w", err)
	}
	return stats, nil
}
