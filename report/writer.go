package report

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"legichart/logger"
)

// WriteReport persists the rendered HTML document, creating parent
// directories as needed.
func WriteReport(path, html string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Info("Report written",
		zap.String("path", path),
		zap.Int("bytes", len(html)))
	return nil
}
