package app

import (
	"log"
	"time"
)

// runAnalysisLoop recomputes the trajectory report on a fixed interval,
// decoupled from frame ingestion. Reports are skipped while processing
// is disabled or before any frame has arrived.
func (a *App) runAnalysisLoop(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := time.Duration(a.config.AnalysisIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}
			if a.FrameCount() == 0 {
				continue
			}

			report := a.Analyze()
			if a.onReport != nil {
				a.onReport(report)
			}
			if len(report.Anomalies) > 0 {
				log.Printf("Trajectory report: %d joints, %d anomalies", len(report.Statistics), len(report.Anomalies))
			}
		}
	}
}
