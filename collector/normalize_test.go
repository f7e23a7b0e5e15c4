package collector

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legichart/forge"
)

func rawCommit(sha, message, date string, stats *forge.CommitStats) forge.CommitResponse {
	var raw forge.CommitResponse
	raw.SHA = sha
	raw.Commit.Message = message
	raw.Commit.Author.Name = "author"
	raw.Commit.Author.Date = date
	raw.HTMLURL = "https://forge/codes/code-civil/commit/" + sha
	raw.Stats = stats
	return raw
}

func TestNormalizeCommit(t *testing.T) {
	testCases := []struct {
		name          string
		raw           forge.CommitResponse
		expectedSHA   string
		expectedMsg   string
		expectedTS    int64
		expectedAdd   int
		expectedDel   int
		expectedError bool
	}{
		{
			name:        "first line becomes the title",
			raw:         rawCommit("abc123def456789", "Fix\nmore detail", "2020-01-05T10:00:00Z", &forge.CommitStats{Additions: 1, Deletions: 2}),
			expectedSHA: "abc123def456",
			expectedMsg: "Fix",
			expectedTS:  time.Date(2020, 1, 5, 10, 0, 0, 0, time.UTC).UnixMilli(),
			expectedAdd: 1,
			expectedDel: 2,
		},
		{
			name:        "missing stats default to zero",
			raw:         rawCommit("abc123def456789", "Update", "2020-01-05T10:00:00Z", nil),
			expectedSHA: "abc123def456",
			expectedMsg: "Update",
			expectedTS:  time.Date(2020, 1, 5, 10, 0, 0, 0, time.UTC).UnixMilli(),
		},
		{
			name:        "date without zone designator",
			raw:         rawCommit("abc123def456789", "Update", "2020-01-05T10:00:00", nil),
			expectedSHA: "abc123def456",
			expectedMsg: "Update",
			expectedTS:  time.Date(2020, 1, 5, 10, 0, 0, 0, time.UTC).UnixMilli(),
		},
		{
			name:        "short sha kept as is",
			raw:         rawCommit("abc", "Update", "2020-01-05T10:00:00Z", nil),
			expectedSHA: "abc",
			expectedMsg: "Update",
			expectedTS:  time.Date(2020, 1, 5, 10, 0, 0, 0, time.UTC).UnixMilli(),
		},
		{
			name:          "unparseable date is rejected",
			raw:           rawCommit("abc123def456789", "Update", "pas une date", nil),
			expectedError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			commit, err := NormalizeCommit(tc.raw)

			if tc.expectedError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedSHA, commit.SHA)
			assert.Equal(t, tc.expectedMsg, commit.Message)
			assert.Equal(t, tc.expectedTS, commit.Timestamp)
			assert.Equal(t, tc.expectedAdd, commit.Additions)
			assert.Equal(t, tc.expectedDel, commit.Deletions)
			assert.Equal(t, tc.raw.Commit.Author.Date, commit.Date)
			assert.Equal(t, tc.raw.HTMLURL, commit.URL)
		})
	}
}

func TestNormalizeCommitTruncatesLongTitle(t *testing.T) {
	long := strings.Repeat("é", 200)
	commit, err := NormalizeCommit(rawCommit("abc123def456789", long, "2020-01-05T10:00:00Z", nil))
	require.NoError(t, err)

	runes := []rune(commit.Message)
	assert.Len(t, runes, 150)
	assert.Equal(t, strings.Repeat("é", 147)+"...", commit.Message)
}

func TestNormalizeCommitExactLimitNotTruncated(t *testing.T) {
	exact := strings.Repeat("a", 150)
	commit, err := NormalizeCommit(rawCommit("abc123def456789", exact, "2020-01-05T10:00:00Z", nil))
	require.NoError(t, err)
	assert.Equal(t, exact, commit.Message)
}
