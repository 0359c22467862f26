package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"firmpanel/pkg/contracts/domain"
)

// Filing builds a raw filing as the loader would produce it, before any
// stage has run.
func Filing(cik, filingDate int64, formType, sic string) domain.Filing {
	return domain.Filing{
		EntityID:    cik,
		FilingDate:  filingDate,
		FormType:    formType,
		IndustryRaw: sic,
		Values: []string{
			strconv.FormatInt(cik, 10),
			strconv.FormatInt(filingDate, 10),
			formType,
			sic,
		},
	}
}

// Table wraps filings in a table with the required columns and assigns
// ordinals in argument order.
func Table(filings ...domain.Filing) domain.FilingTable {
	rows := make([]domain.Filing, len(filings))
	for i, f := range filings {
		f.Ordinal = i
		rows[i] = f
	}
	return domain.FilingTable{
		Columns: append([]string(nil), domain.RequiredColumns...),
		Rows:    rows,
	}
}

// WriteFile writes content to name inside a fresh temp dir and returns its path
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
