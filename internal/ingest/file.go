// ABOUTME: File-level entry point that picks a parser by extension.
// ABOUTME: Supports .csv training logs and .fit device files.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ParseFile opens path and parses it as CSV or FIT based on its extension.
func ParseFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".fit":
		return ParseFIT(f, opts)
	case ".csv", ".txt", "":
		return ParseCSV(f, opts)
	default:
		return nil, fmt.Errorf("unsupported file type: %s (use .csv or .fit)", filepath.Ext(path))
	}
}
