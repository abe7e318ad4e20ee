package storage

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/turn-engine/pkg/scenario"
)

// ScenarioCatalog serves scenario YAML files from a directory.
type ScenarioCatalog struct {
	dir    string
	logger *slog.Logger
}

func NewScenarioCatalog(dir string, logger *slog.Logger) *ScenarioCatalog {
	if dir == "" {
		dir = "./data/scenarios"
	}
	return &ScenarioCatalog{dir: dir, logger: logger}
}

func isScenarioFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

// ListScenarios maps scenario names to their file names. Files that fail to
// load are logged and skipped.
func (c *ScenarioCatalog) ListScenarios(ctx context.Context) (map[string]string, error) {
	scenarios := make(map[string]string)

	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isScenarioFile(path) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		s, err := scenario.Load(path)
		if err != nil {
			c.logger.Warn("Skipping invalid scenario file", "path", path, "error", err)
			return nil
		}

		rel, _ := filepath.Rel(c.dir, path)
		scenarios[s.Name] = filepath.ToSlash(rel)
		return nil
	})
	if err != nil {
		c.logger.Error("Failed to walk scenarios directory", "dir", c.dir, "error", err)
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	return scenarios, nil
}

// GetScenario loads and validates one scenario file relative to the
// catalog directory.
func (c *ScenarioCatalog) GetScenario(ctx context.Context, filename string) (*scenario.Scenario, error) {
	clean := filepath.Clean(filepath.FromSlash(filename))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("invalid scenario file name: %s", filename)
	}
	if !isScenarioFile(clean) {
		return nil, fmt.Errorf("not a scenario file: %s", filename)
	}

	path := filepath.Join(c.dir, clean)
	c.logger.Debug("Loading scenario", "filename", filename, "full_path", path)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("scenario not found: %s", filename)
		}
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := scenario.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario %s: %w", filename, err)
	}
	return s, nil
}
