package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"legichart/collector"
	"legichart/logger"
	"legichart/models"
)

func init() {
	// Initialize logger for tests
	_ = logger.Initialize("debug")
}

// MockCollector is a mock implementation of the collection pass
type MockCollector struct {
	mock.Mock
}

func (m *MockCollector) Run(ctx context.Context) (*models.Corpus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Corpus), args.Error(1)
}

// MockArchiver is a mock implementation of the database sink
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) SaveCorpus(ctx context.Context, corpus *models.Corpus) error {
	args := m.Called(ctx, corpus)
	return args.Error(0)
}

func (m *MockArchiver) Close() error {
	args := m.Called()
	return args.Error(0)
}

func sampleCorpus() *models.Corpus {
	return &models.Corpus{
		Metadata: models.Metadata{TotalCodes: 1, TotalCommits: 1},
		Codes: []models.Code{{
			Name:         "Code civil",
			Slug:         "code-civil",
			TotalCommits: 1,
			Commits: []models.Commit{{
				SHA:       "abc123def456",
				Timestamp: 1578218400000,
				Message:   "First",
				Additions: 100,
				Deletions: 10,
			}},
		}},
	}
}

func TestCollectCorpus(t *testing.T) {
	corpus := sampleCorpus()
	dataPath := filepath.Join(t.TempDir(), "data", "codes_data.json")

	col := new(MockCollector)
	col.On("Run", mock.Anything).Return(corpus, nil)

	arch := new(MockArchiver)
	arch.On("SaveCorpus", mock.Anything, corpus).Return(nil)

	err := collectCorpus(context.Background(), col, arch, dataPath)
	require.NoError(t, err)

	data, err := os.ReadFile(dataPath)
	require.NoError(t, err)

	var loaded models.Corpus
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, *corpus, loaded)

	col.AssertExpectations(t)
	arch.AssertExpectations(t)
}

func TestCollectCorpusWithoutArchiver(t *testing.T) {
	dataPath := filepath.Join(t.TempDir(), "codes_data.json")

	col := new(MockCollector)
	col.On("Run", mock.Anything).Return(sampleCorpus(), nil)

	err := collectCorpus(context.Background(), col, nil, dataPath)
	require.NoError(t, err)

	_, err = os.Stat(dataPath)
	assert.NoError(t, err)
}

func TestCollectCorpusCollectionFails(t *testing.T) {
	dataPath := filepath.Join(t.TempDir(), "codes_data.json")

	col := new(MockCollector)
	col.On("Run", mock.Anything).Return(nil, collector.ErrNoRepositories)

	err := collectCorpus(context.Background(), col, nil, dataPath)
	assert.True(t, errors.Is(err, collector.ErrNoRepositories))

	_, statErr := os.Stat(dataPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCollectCorpusArchiveFailureIsNotFatal(t *testing.T) {
	corpus := sampleCorpus()
	dataPath := filepath.Join(t.TempDir(), "codes_data.json")

	col := new(MockCollector)
	col.On("Run", mock.Anything).Return(corpus, nil)

	arch := new(MockArchiver)
	arch.On("SaveCorpus", mock.Anything, corpus).Return(errors.New("connection refused"))

	// The JSON dataset is still written when the sink fails.
	err := collectCorpus(context.Background(), col, arch, dataPath)
	require.NoError(t, err)

	_, err = os.Stat(dataPath)
	assert.NoError(t, err)
}
