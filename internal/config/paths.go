package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultOutputName returns the panel file name used when no output path is
// configured, e.g. firm_year_10K_panel_2019_2023_nonfin_nonutil.csv.
func DefaultOutputName(startYear, endYear int) string {
	return fmt.Sprintf("firm_year_10K_panel_%d_%d_nonfin_nonutil.csv", startYear, endYear)
}

// ResolveOutputPaths fills in missing output locations. The panel defaults to
// a file next to the input; an XLSX path given as a bare extension (".xlsx")
// mirrors the CSV output name.
func (c *Config) ResolveOutputPaths() {
	if c.Files.Output == "" && c.Files.Input != "" {
		c.Files.Output = filepath.Join(filepath.Dir(c.Files.Input),
			DefaultOutputName(c.Sample.StartYear, c.Sample.EndYear))
	}
	if strings.EqualFold(c.Files.XLSXOutput, ".xlsx") && c.Files.Output != "" {
		c.Files.XLSXOutput = strings.TrimSuffix(c.Files.Output, filepath.Ext(c.Files.Output)) + ".xlsx"
	}
}
