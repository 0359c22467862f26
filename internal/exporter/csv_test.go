package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firmpanel/internal/shared/testutil"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func writeCSV(t *testing.T, writer *CSVWriter, path string, headers []string, records [][]string) {
	t.Helper()
	staged, err := writer.StageCSV(path, headers, records)
	require.NoError(t, err)
	require.NoError(t, staged.Commit())
}

func TestCSVWriter_StageCSV(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	writer := NewCSVWriter(logger)

	tests := []struct {
		name     string
		headers  []string
		records  [][]string
		validate func(t *testing.T, path string)
	}{
		{
			name:    "headers and records",
			headers: []string{"CIK", "year"},
			records: [][]string{{"1", "2020"}, {"2", "2021"}},
			validate: func(t *testing.T, path string) {
				assert.Equal(t, [][]string{{"CIK", "year"}, {"1", "2020"}, {"2", "2021"}}, readCSV(t, path))
			},
		},
		{
			name:    "headers only",
			headers: []string{"CIK", "year"},
			validate: func(t *testing.T, path string) {
				assert.Equal(t, [][]string{{"CIK", "year"}}, readCSV(t, path))
			},
		},
		{
			name:    "special characters are quoted",
			headers: []string{"NAME", "NOTE"},
			records: [][]string{{"Acme, Inc.", "said \"hello\"\nthen left"}},
			validate: func(t *testing.T, path string) {
				records := readCSV(t, path)
				require.Len(t, records, 2)
				assert.Equal(t, "Acme, Inc.", records[1][0])
				assert.Equal(t, "said \"hello\"\nthen left", records[1][1])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "out.csv")

			staged, err := writer.StageCSV(path, tt.headers, tt.records)
			require.NoError(t, err)
			assert.NoFileExists(t, path, "staged output is not visible")
			assert.Equal(t, path, staged.Path())

			require.NoError(t, staged.Commit())
			tt.validate(t, path)
			assert.Equal(t, []string{"out.csv"}, listDir(t, dir), "no temp files left behind")

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
		})
	}
}

func TestCSVWriter_DiscardLeavesNothing(t *testing.T) {
	writer := NewCSVWriter(nil)
	dir := t.TempDir()

	staged, err := writer.StageCSV(filepath.Join(dir, "out.csv"), []string{"a"}, [][]string{{"1"}})
	require.NoError(t, err)

	staged.Discard()
	assert.Empty(t, listDir(t, dir))

	// commit after discard is a no-op
	assert.NoError(t, staged.Commit())
	assert.Empty(t, listDir(t, dir))
}

func TestCSVWriter_CreatesDirectory(t *testing.T) {
	writer := NewCSVWriter(nil)
	path := filepath.Join(t.TempDir(), "nested", "deeper", "out.csv")

	writeCSV(t, writer, path, []string{"a"}, [][]string{{"1"}})
	assert.FileExists(t, path)
}

func TestCSVWriter_ReplacesExistingFile(t *testing.T) {
	writer := NewCSVWriter(nil)
	path := testutil.WriteFile(t, "out.csv", "old,content\n")

	writeCSV(t, writer, path, []string{"new"}, [][]string{{"1"}})
	assert.Equal(t, [][]string{{"new"}, {"1"}}, readCSV(t, path))
}

func TestCSVWriter_ErrorScenarios(t *testing.T) {
	writer := NewCSVWriter(nil)
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := writer.StageCSV(filepath.Join(blocker, "out.csv"), []string{"a"}, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to create directory"))
}
