// Package services wires the firmpanel components into a single run.
//
// PanelService validates the configured locations, loads the filing table,
// builds the firm-year panel, exports it and writes the metrics snapshot.
// ReportWriter renders a finished run for the console.
//
//	svc := services.NewPanelService(cfg, telemetry, logger)
//	summary, err := svc.Run(ctx)
//	if err != nil {
//	    return err
//	}
//	services.NewReportWriter(os.Stdout).Write(summary)
package services
