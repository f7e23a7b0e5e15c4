// Package report turns a collected corpus into static chart artifacts:
// it buckets commits by calendar period, computes axis scales and renders
// the result as a self-contained HTML page.
package report

import (
	"encoding/json"
	"fmt"
	"os"

	"legichart/models"
)

// ErrNoData is returned when the corpus file does not exist. Callers render
// an explicit placeholder instead of failing the run.
var ErrNoData = fmt.Errorf("no corpus data")

// LoadCorpus reads the persisted corpus from path.
func LoadCorpus(path string) (*models.Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoData, path)
		}
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	var corpus models.Corpus
	if err := json.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("failed to parse corpus: %w", err)
	}

	return &corpus, nil
}
