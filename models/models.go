// Package models defines the core data structures used throughout the application.
package models

// Commit is one normalized commit record as persisted in the corpus.
// Timestamp is the author date in milliseconds since the Unix epoch.
type Commit struct {
	SHA       string `json:"sha"`
	Date      string `json:"date"`
	Timestamp int64  `json:"ts"`
	Message   string `json:"msg"`
	Additions int    `json:"add"`
	Deletions int    `json:"del"`
	URL       string `json:"url"`
}

// Code is the full commit history of one legal code, commits sorted
// ascending by timestamp.
type Code struct {
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	RepoURL      string   `json:"repo_url"`
	TotalCommits int      `json:"total_commits"`
	Commits      []Commit `json:"commits"`
}

// Metadata holds corpus-wide statistics computed at collection time.
type Metadata struct {
	GeneratedAt    string `json:"generated_at"`
	TotalCodes     int    `json:"total_codes"`
	TotalCommits   int    `json:"total_commits"`
	EarliestCommit int64  `json:"earliest_commit"`
	LatestCommit   int64  `json:"latest_commit"`
	MaxAdditions   int    `json:"max_additions"`
	MaxDeletions   int    `json:"max_deletions"`
}

// Corpus is the persisted interchange format between the collector and the
// reporter. Codes are sorted by display name.
type Corpus struct {
	Metadata Metadata `json:"metadata"`
	Codes    []Code   `json:"codes"`
}

// Granularity selects the calendar unit used for bucketing.
type Granularity string

const (
	ByMonth Granularity = "month"
	ByYear  Granularity = "year"
)

// Valid reports whether g is a known granularity.
func (g Granularity) Valid() bool {
	return g == ByMonth || g == ByYear
}

// SortPolicy selects the key used to order the per-code breakdown inside a
// bucket. Volume orders by additions+deletions, Net by additions-deletions.
type SortPolicy string

const (
	SortByVolume SortPolicy = "volume"
	SortByNet    SortPolicy = "net"
)

// Valid reports whether p is a known sort policy.
func (p SortPolicy) Valid() bool {
	return p == SortByVolume || p == SortByNet
}

// CodeBreakdown is the per-code share of one bucket.
type CodeBreakdown struct {
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Additions int      `json:"add"`
	Deletions int      `json:"del"`
	Commits   []Commit `json:"commits"`
}

// Bucket is one time-keyed aggregation unit. Key is "2006" for yearly
// buckets and "2006-01" for monthly ones; Month is 0 for yearly buckets.
// CumulativeStart and CumulativeEnd delimit the running net total before
// and after this bucket in chronological order.
type Bucket struct {
	Key             string          `json:"key"`
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	Additions       int             `json:"add"`
	Deletions       int             `json:"del"`
	Net             int             `json:"net"`
	CommitCount     int             `json:"commit_count"`
	CumulativeStart int             `json:"cum_start"`
	CumulativeEnd   int             `json:"cum_end"`
	Codes           []CodeBreakdown `json:"codes"`
}

// TotalChange returns additions+deletions for the bucket.
func (b Bucket) TotalChange() int {
	return b.Additions + b.Deletions
}
