// Package panel turns a raw filing-metadata table into a firm-year panel.
//
// The pipeline is a fixed sequence of pure stages, each taking a
// domain.FilingTable and returning a new one:
//
//	DeriveYear          year = FILING_DATE div 10000
//	YearRange.Filter    start_year <= year <= end_year
//	FilterFormTypes     FORM_TYPE in the annual-report allow-list
//	CoerceIndustryCodes SIC to numeric, null on failure
//	ExcludeIndustries   drop financial (6000-6999) and utility (4900-4999) codes
//	Deduplicate         keep the latest filing per (CIK, year)
//
// Builder runs the stages in order, wraps each in a trace span, and computes
// Diagnostics before and after deduplication. Diagnostics never touch the
// table they inspect.
//
//	builder := panel.NewBuilder(panel.DefaultOptions(), logger, tracer, metrics)
//	result, err := builder.Build(ctx, table)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.After.FirmYears)
package panel
