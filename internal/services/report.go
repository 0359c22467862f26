package services

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"firmpanel/internal/panel"
)

// ReportWriter renders a run summary as plain text
type ReportWriter struct {
	out io.Writer
}

// NewReportWriter creates a report writer that prints to out
func NewReportWriter(out io.Writer) *ReportWriter {
	return &ReportWriter{out: out}
}

// Write prints the stage table, the before and after diagnostics, the sample
// rows and the final row count.
func (r *ReportWriter) Write(summary *RunSummary) error {
	result := summary.Result
	if result == nil {
		_, err := fmt.Fprintf(r.out, "No panel built from %s\n", summary.Input)
		return err
	}

	w := &errWriter{w: r.out}

	w.printf("Loaded %s filings from %s\n\n", humanize.Comma(int64(summary.Loaded)), summary.Input)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "stage\trows in\trows out\tdropped\t")
	for _, s := range result.Stages {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", s.Name,
			humanize.Comma(int64(s.RowsIn)),
			humanize.Comma(int64(s.RowsOut)),
			humanize.Comma(int64(s.Dropped())))
	}
	tw.Flush()
	w.printf("\n")

	r.writeDiagnostics(w, "Before deduplication", result.Before)
	if result.Before.DuplicateGroups > 0 {
		w.printf("  firm-years with several filings that also file the next year: %s\n",
			humanize.Comma(int64(result.Before.DuplicatesWithNextYear)))
	}
	r.writeDiagnostics(w, "After deduplication", result.After)

	if result.Coercion.Failed > 0 {
		w.printf("Industry codes treated as missing: %s (%d distinct values)\n",
			humanize.Comma(int64(result.Coercion.Failed)), len(result.Coercion.Values))
	}

	if len(result.Sample) > 0 {
		w.printf("\nSample rows:\n")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CIK\tyear\tperf_year\tentity_id_str")
		for _, f := range result.Sample {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n",
				strconv.FormatInt(f.EntityID, 10), f.Year, f.PerfYear(), f.EntityIDString())
		}
		tw.Flush()
	}

	w.printf("\nSample built: %s firm-years (%d-%d) written to %s\n",
		humanize.Comma(int64(result.Panel.Len())), result.Years.Start, result.Years.End, summary.Output)
	if summary.XLSXOutput != "" {
		w.printf("Workbook copy: %s\n", summary.XLSXOutput)
	}

	return w.err
}

func (r *ReportWriter) writeDiagnostics(w *errWriter, title string, d panel.Diagnostics) {
	w.printf("%s: %s filings, %s entities, %s firm-years, %s duplicated firm-years\n",
		title,
		humanize.Comma(int64(d.Filings)),
		humanize.Comma(int64(d.Entities)),
		humanize.Comma(int64(d.FirmYears)),
		humanize.Comma(int64(d.DuplicateGroups)))
}

// errWriter remembers the first write error so the report can be written
// without checking every line.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	fmt.Fprintf(e, format, args...)
}
