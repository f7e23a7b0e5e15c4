package report

import (
	"sort"
	"strconv"
	"time"

	"legichart/models"
)

// epochArtifactYear marks buckets produced by missing or defaulted commit
// dates (timestamp 0); they are dropped before rendering.
const epochArtifactYear = 1970

type codeAcc struct {
	name    string
	slug    string
	add     int
	del     int
	commits []models.Commit
}

type bucketAcc struct {
	add   int
	del   int
	count int
	codes map[string]*codeAcc
	order []string
}

// Aggregate groups every commit of the corpus into calendar buckets in
// local time and returns them sorted ascending by key. Within a bucket the
// per-code breakdown is sorted descending by the given policy; cumulative
// net totals are threaded through the buckets in chronological order.
func Aggregate(corpus *models.Corpus, granularity models.Granularity, policy models.SortPolicy) []models.Bucket {
	accs := make(map[string]*bucketAcc)

	for _, code := range corpus.Codes {
		for _, commit := range code.Commits {
			key := bucketKey(commit.Timestamp, granularity)

			acc, ok := accs[key]
			if !ok {
				acc = &bucketAcc{codes: make(map[string]*codeAcc)}
				accs[key] = acc
			}
			acc.add += commit.Additions
			acc.del += commit.Deletions
			acc.count++

			ca, ok := acc.codes[code.Slug]
			if !ok {
				ca = &codeAcc{name: code.Name, slug: code.Slug}
				acc.codes[code.Slug] = ca
				acc.order = append(acc.order, code.Slug)
			}
			ca.add += commit.Additions
			ca.del += commit.Deletions
			ca.commits = append(ca.commits, commit)
		}
	}

	keys := make([]string, 0, len(accs))
	for key := range accs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	buckets := make([]models.Bucket, 0, len(keys))
	for _, key := range keys {
		acc := accs[key]

		year, month := splitKey(key)
		if year == epochArtifactYear {
			continue
		}

		codes := make([]models.CodeBreakdown, 0, len(acc.order))
		for _, slug := range acc.order {
			ca := acc.codes[slug]
			codes = append(codes, models.CodeBreakdown{
				Name:      ca.name,
				Slug:      ca.slug,
				Additions: ca.add,
				Deletions: ca.del,
				Commits:   ca.commits,
			})
		}
		sortBreakdown(codes, policy)

		buckets = append(buckets, models.Bucket{
			Key:         key,
			Year:        year,
			Month:       month,
			Additions:   acc.add,
			Deletions:   acc.del,
			Net:         acc.add - acc.del,
			CommitCount: acc.count,
			Codes:       codes,
		})
	}

	cumulative := 0
	for i := range buckets {
		buckets[i].CumulativeStart = cumulative
		cumulative += buckets[i].Net
		buckets[i].CumulativeEnd = cumulative
	}

	return buckets
}

// bucketKey derives the bucket key from a millisecond timestamp converted
// to the local calendar date.
func bucketKey(ts int64, granularity models.Granularity) string {
	t := time.UnixMilli(ts)
	if granularity == models.ByYear {
		return t.Format("2006")
	}
	return t.Format("2006-01")
}

// splitKey parses a bucket key back into year and month; month is 0 for
// yearly keys.
func splitKey(key string) (year, month int) {
	if len(key) >= 7 {
		year, _ = strconv.Atoi(key[:4])
		month, _ = strconv.Atoi(key[5:7])
		return year, month
	}
	year, _ = strconv.Atoi(key)
	return year, 0
}

// sortBreakdown orders the per-code breakdown descending by the policy
// key, breaking ties by name so the order is deterministic.
func sortBreakdown(codes []models.CodeBreakdown, policy models.SortPolicy) {
	keyOf := func(c models.CodeBreakdown) int {
		if policy == models.SortByNet {
			return c.Additions - c.Deletions
		}
		return c.Additions + c.Deletions
	}
	sort.Slice(codes, func(a, b int) bool {
		ka, kb := keyOf(codes[a]), keyOf(codes[b])
		if ka != kb {
			return ka > kb
		}
		return codes[a].Name < codes[b].Name
	})
}
