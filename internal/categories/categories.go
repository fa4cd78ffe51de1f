// Package categories serves the expense category list as a JSON document
// on disk. The file is read fresh on every request so manual edits take
// effect without a restart.
package categories

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultCategories is written on first access when no document exists.
var DefaultCategories = []string{
	"Food & Dining",
	"Transportation",
	"Shopping",
	"Entertainment",
	"Bills & Utilities",
	"Healthcare",
	"Travel",
	"Education",
	"Business",
	"Other",
}

type document struct {
	Categories []string `json:"categories"`
}

type Provider struct {
	path string
}

func NewProvider(path string) *Provider {
	return &Provider{path: path}
}

// Read returns the raw categories document, creating it with the default
// category set if it does not exist yet.
func (p *Provider) Read() (string, error) {
	if _, err := os.Stat(p.path); os.IsNotExist(err) {
		if err := p.writeDefault(); err != nil {
			return "", err
		}
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return "", fmt.Errorf("read categories document: %w", err)
	}

	return string(data), nil
}

func (p *Provider) writeDefault() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("create categories directory: %w", err)
	}

	data, err := json.MarshalIndent(document{Categories: DefaultCategories}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default categories: %w", err)
	}

	if err := os.WriteFile(p.path, data, 0644); err != nil {
		return fmt.Errorf("write default categories: %w", err)
	}

	return nil
}
