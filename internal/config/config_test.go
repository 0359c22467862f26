package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "firmpanel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 2019, cfg.Sample.StartYear)
				assert.Equal(t, 2023, cfg.Sample.EndYear)
				assert.Equal(t, DateModeLenient, cfg.Sample.DateMode)
				assert.Equal(t, 5, cfg.Sample.SampleRows)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, "none", cfg.Tracing.Exporter)
				assert.Empty(t, cfg.Files.Input)
			},
		},
		{
			name: "file overrides defaults",
			file: "sample:\n  start_year: 2010\n  end_year: 2012\nfiles:\n  input: raw.csv\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 2010, cfg.Sample.StartYear)
				assert.Equal(t, 2012, cfg.Sample.EndYear)
				assert.Equal(t, "raw.csv", cfg.Files.Input)
				assert.Equal(t, DateModeLenient, cfg.Sample.DateMode)
			},
		},
		{
			name: "env overrides file",
			env: map[string]string{
				"FIRMPANEL_SAMPLE_END_YEAR":  "2015",
				"FIRMPANEL_SAMPLE_DATE_MODE": "strict",
				"FIRMPANEL_LOGGING_LEVEL":    "debug",
			},
			file: "sample:\n  start_year: 2010\n  end_year: 2012\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 2010, cfg.Sample.StartYear)
				assert.Equal(t, 2015, cfg.Sample.EndYear)
				assert.True(t, cfg.Sample.StrictDates())
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"FIRMPANEL_SAMPLE_START_YEAR": "twenty"},
			wantErr: true,
		},
		{
			name:    "unknown key in file",
			file:    "sample:\n  first_year: 2010\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestResolveOutputPaths(t *testing.T) {
	tests := []struct {
		name       string
		files      FilesConfig
		wantOutput string
		wantXLSX   string
	}{
		{
			name:       "output defaults next to input",
			files:      FilesConfig{Input: filepath.Join("data", "raw.csv")},
			wantOutput: filepath.Join("data", "firm_year_10K_panel_2019_2023_nonfin_nonutil.csv"),
		},
		{
			name:       "explicit output kept",
			files:      FilesConfig{Input: "raw.csv", Output: "out/panel.csv"},
			wantOutput: "out/panel.csv",
		},
		{
			name:       "xlsx mirrors output name",
			files:      FilesConfig{Input: "raw.csv", Output: "out/panel.csv", XLSXOutput: ".xlsx"},
			wantOutput: "out/panel.csv",
			wantXLSX:   "out/panel.xlsx",
		},
		{
			name:       "explicit xlsx kept",
			files:      FilesConfig{Input: "raw.csv", Output: "panel.csv", XLSXOutput: "book.xlsx"},
			wantOutput: "panel.csv",
			wantXLSX:   "book.xlsx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Files = tt.files
			cfg.ResolveOutputPaths()
			assert.Equal(t, tt.wantOutput, cfg.Files.Output)
			assert.Equal(t, tt.wantXLSX, cfg.Files.XLSXOutput)
		})
	}
}

func TestDefaultOutputName(t *testing.T) {
	assert.Equal(t, "firm_year_10K_panel_2005_2007_nonfin_nonutil.csv", DefaultOutputName(2005, 2007))
}

func TestUsage(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Usage(&buf))

	out := buf.String()
	assert.Contains(t, out, "FIRMPANEL_SAMPLE_START_YEAR")
	assert.Contains(t, out, "FIRMPANEL_FILES_INPUT")
	assert.Contains(t, out, "FIRMPANEL_TRACING_EXPORTER")
}
