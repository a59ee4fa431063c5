package main

import (
	"fmt"
	"time"

	"github.com/heliosite/engine/internal/analysis"
	"github.com/heliosite/engine/internal/storage"
	"github.com/heliosite/engine/pkg/core"
)

// printSummary writes the human-readable run summary to stdout. Everything
// here is also in the stored result; this is just the operator's view.
func printSummary(svc *analysis.Service, session core.SessionInfo, result *core.AnalysisResult, elapsed time.Duration, date time.Time) {
	fmt.Printf("Session %s (%s mode) finished in %s\n", session.ID, session.Mode, elapsed.Round(time.Millisecond))
	fmt.Printf("Grid: %dx%d cells at %.1f m\n", result.GridWidth, result.GridHeight, result.CellSize)

	if session.Mode == "instant" {
		fmt.Printf("Shaded: %.1f%% (%d of %d cells)\n",
			result.PercentShaded, result.Stats.ShadedCells, result.Stats.TotalCells)
	} else {
		fmt.Printf("Never lit: %d of %d cells\n", result.Stats.ShadedCells, result.Stats.TotalCells)
	}

	report := svc.MassingReport()
	fmt.Printf("Buildings: %d extracted, %d with defaulted height (avg %.1f m, max %.1f m)\n",
		report.Total, report.DefaultedHeight, report.AverageHeightM, report.MaxHeightM)

	byID := make(map[string]core.Massing, len(svc.Massings()))
	for _, m := range svc.Massings() {
		byID[m.ID] = m
	}
	for _, id := range report.VerifyIDs {
		c := byID[id].Centroid()
		fmt.Printf("  verify data: %s exceeds 100 m (near E %.0f m, N %.0f m)\n", id, c.X, c.Y)
	}

	events := svc.Events(date)
	fmt.Printf("Sunrise %s, solar noon %s, sunset %s\n",
		events.Sunrise.Format("15:04"), events.SolarNoon.Format("15:04"), events.Sunset.Format("15:04"))

	if len(result.Warnings) > 0 {
		fmt.Printf("Warnings (%d):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Printf("  [%s] %s\n", w.Stage, w.Message)
		}
	}

	if exp, ok := storageBackend.(storage.Exportable); ok {
		if path := exp.ExportedFilePath(); path != "" {
			fmt.Printf("Results written to %s\n", path)
		}
	}
}
