package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanforge/docprep/internal/pipeline"
	"github.com/scanforge/docprep/internal/testutil"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := GetRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.png")
	data := testutil.EncodePNG(t, testutil.TextPage(320, 240))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "docprep")
}

func TestAssessCommand(t *testing.T) {
	path := writeTestImage(t)

	out, err := execute(t, "assess", path)
	require.NoError(t, err)

	var reports []struct {
		File   string         `json:"file"`
		Error  string         `json:"error"`
		Report map[string]any `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, path, reports[0].File)
	assert.Empty(t, reports[0].Error)
	assert.NotEmpty(t, reports[0].Report)
}

func TestAssessCommand_NoFiles(t *testing.T) {
	_, err := execute(t, "assess")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestNormalizeCommand_WritesOutput(t *testing.T) {
	path := writeTestImage(t)
	outDir := t.TempDir()

	out, err := execute(t, "normalize", path, "-o", outDir)
	require.NoError(t, err)

	var reports []fileReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Empty(t, reports[0].Error)
	require.Len(t, reports[0].Outputs, 1)

	written, err := os.ReadFile(reports[0].Outputs[0])
	require.NoError(t, err)
	assert.NotEmpty(t, written)
	assert.Equal(t, filepath.Join(outDir, "scan_normalized.jpg"), reports[0].Outputs[0])
}

func TestWriteDocuments_Naming(t *testing.T) {
	dir := t.TempDir()
	docs := []pipeline.Document{
		{Data: []byte("a")},
		{Data: []byte("b")},
	}

	paths, err := writeDocuments(filepath.Join("in", "photo.jpg"), dir, docs)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "photo_normalized_1.jpg"), paths[0])
	assert.Equal(t, filepath.Join(dir, "photo_normalized_2.jpg"), paths[1])

	single, err := writeDocuments(filepath.Join("in", "photo.jpg"), dir, docs[:1])
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, filepath.Join(dir, "photo_normalized.jpg"), single[0])
}
