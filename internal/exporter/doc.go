// Package exporter writes firm-year panels to flat files.
//
// CSVWriter and XLSXWriter stage their output in a temporary file in the
// target directory. PanelExporter renders a panel into output records, stages
// every configured sink concurrently with errgroup and renames the staged
// files into place only when all of them succeeded, so a failed run leaves
// no new output behind.
//
// Output columns are the input columns in input order, with the SIC column
// replaced by its coerced numeric form, followed by year, perf_year and
// entity_id_str. Derived columns already present in the input are
// overwritten in place rather than repeated:
//
//	exp := exporter.NewPanelExporter(logger)
//	err := exp.Export(ctx, result.Panel, exporter.Targets{
//	    CSV:  "out/firm_year_10K_panel_2019_2023_nonfin_nonutil.csv",
//	    XLSX: "out/firm_year_10K_panel_2019_2023_nonfin_nonutil.xlsx",
//	})
package exporter
