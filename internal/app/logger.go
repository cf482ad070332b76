package app

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// NewLogger builds a production JSON logger writing to the given file.
// Stdout belongs to the TUI, so an empty path disables logging entirely.
func NewLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}
