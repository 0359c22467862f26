// Package dataprocessing reads raw filing-metadata tables into a
// domain.FilingTable.
//
// Loader accepts CSV files and the first worksheet of XLSX workbooks. The
// header must contain CIK, FILING_DATE, FORM_TYPE and SIC; other columns are
// carried through untouched. CIK and FILING_DATE are parsed while loading, so
// a malformed value aborts the whole load with a DATA_FORMAT error naming the
// file and line:
//
//	loader := dataprocessing.NewLoader(logger, dataprocessing.LoaderOptions{StrictDates: true})
//	table, err := loader.LoadFile(ctx, "data/filings.csv")
//	if err != nil {
//	    return err
//	}
//
// In the default lenient mode FILING_DATE may be any integral number,
// including float renderings such as 20200301.0. Strict mode additionally
// requires an eight-digit YYYYMMDD calendar date.
package dataprocessing
