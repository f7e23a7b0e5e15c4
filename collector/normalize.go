package collector

import (
	"fmt"
	"strings"
	"time"

	"legichart/forge"
	"legichart/models"
)

const (
	titleMaxLen = 150
	titleCutLen = 147
	shortSHALen = 12
)

// NormalizeCommit converts one raw API commit object into a corpus Commit
// record. The commit title is the first line of the message, truncated to
// 150 characters with a "..." suffix; the author date must parse as
// ISO-8601 (a trailing Z is accepted) and is converted to a millisecond
// epoch timestamp; line stats default to zero when the stats sub-object is
// absent.
func NormalizeCommit(raw forge.CommitResponse) (models.Commit, error) {
	title := raw.Commit.Message
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	if runes := []rune(title); len(runes) > titleMaxLen {
		title = string(runes[:titleCutLen]) + "..."
	}

	dateStr := raw.Commit.Author.Date
	ts, err := parseISODate(dateStr)
	if err != nil {
		return models.Commit{}, fmt.Errorf("invalid author date %q: %w", dateStr, err)
	}

	var additions, deletions int
	if raw.Stats != nil {
		additions = raw.Stats.Additions
		deletions = raw.Stats.Deletions
	}

	sha := raw.SHA
	if len(sha) > shortSHALen {
		sha = sha[:shortSHALen]
	}

	return models.Commit{
		SHA:       sha,
		Date:      dateStr,
		Timestamp: ts,
		Message:   title,
		Additions: additions,
		Deletions: deletions,
		URL:       raw.HTMLURL,
	}, nil
}

// parseISODate parses an ISO-8601 date with or without a zone designator
// and returns milliseconds since the Unix epoch.
func parseISODate(s string) (int64, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UnixMilli(), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}
