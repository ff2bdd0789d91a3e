package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/scanforge/docprep/internal/pipeline"
)

// fileReport is the per-input JSON summary printed by normalize and capture.
type fileReport struct {
	File    string           `json:"file"`
	Error   string           `json:"error,omitempty"`
	Outputs []string         `json:"outputs,omitempty"`
	Result  *pipeline.Result `json:"result,omitempty"`
}

// writeDocuments writes each normalized document next to the input (or into
// outputDir when set) and returns the written paths.
func writeDocuments(input, outputDir string, docs []pipeline.Document) ([]string, error) {
	dir := filepath.Dir(input)
	if outputDir != "" {
		dir = outputDir
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	paths := make([]string, 0, len(docs))
	for i, doc := range docs {
		name := stem + "_normalized.jpg"
		if len(docs) > 1 {
			name = fmt.Sprintf("%s_normalized_%d.jpg", stem, i+1)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// runBatch reads the inputs, runs them through the given batch entry point
// and prints one fileReport per input.
func runBatch(
	out io.Writer,
	files []string,
	outputDir string,
	batch func([][]byte) ([]pipeline.BatchItem, error),
) error {
	inputs := make([][]byte, len(files))
	reports := make([]fileReport, len(files))
	for i, f := range files {
		reports[i] = fileReport{File: f}
		data, err := os.ReadFile(f) //nolint:gosec // processing user-provided files is the point
		if err != nil {
			reports[i].Error = err.Error()
			continue
		}
		inputs[i] = data
	}

	items, err := batch(inputs)
	if err != nil {
		return err
	}

	var firstErr error
	for i, item := range items {
		if reports[i].Error != "" {
			continue
		}
		if item.Err != nil {
			reports[i].Error = item.Err.Error()
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", files[i], item.Err)
			}
			continue
		}
		paths, werr := writeDocuments(files[i], outputDir, item.Result.Documents)
		if werr != nil {
			reports[i].Error = werr.Error()
			if firstErr == nil {
				firstErr = werr
			}
			continue
		}
		reports[i].Outputs = paths
		reports[i].Result = item.Result
	}

	if err := printJSON(out, reports); err != nil {
		return err
	}
	return firstErr
}
