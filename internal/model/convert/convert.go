// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"database/sql"
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/heliosite/engine/internal/model"
	"github.com/heliosite/engine/pkg/core"
)

// toJSON marshals v to a datatypes.JSON column, defaulting empty
// collections to an empty JSON array.
func toJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil || len(data) == 0 || string(data) == "null" {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}

// ResultToRun converts an analysis result to a GORM AnalysisRun row.
func ResultToRun(session core.SessionInfo, result *core.AnalysisResult) model.AnalysisRun {
	var sunTime sql.NullTime
	if result.Timestamp != nil {
		sunTime = sql.NullTime{Time: *result.Timestamp, Valid: true}
	}

	return model.AnalysisRun{
		SessionID:     session.ID,
		Mode:          session.Mode,
		Latitude:      session.Latitude,
		Longitude:     session.Longitude,
		CellSize:      result.CellSize,
		GridWidth:     result.GridWidth,
		GridHeight:    result.GridHeight,
		PercentShaded: result.PercentShaded,
		SunTime:       sunTime,
		TotalCells:    result.Stats.TotalCells,
		ShadedCells:   result.Stats.ShadedCells,
		LitCells:      result.Stats.LitCells,
		Cells:         toJSON(result.Cells),
		Warnings:      toJSON(result.Warnings),
	}
}

// RunToResult converts a GORM AnalysisRun row back to a core result.
func RunToResult(run model.AnalysisRun) (*core.AnalysisResult, error) {
	result := &core.AnalysisResult{
		GridWidth:     run.GridWidth,
		GridHeight:    run.GridHeight,
		CellSize:      run.CellSize,
		PercentShaded: run.PercentShaded,
		Stats: core.Stats{
			TotalCells:  run.TotalCells,
			ShadedCells: run.ShadedCells,
			LitCells:    run.LitCells,
		},
	}
	if run.SunTime.Valid {
		t := run.SunTime.Time
		result.Timestamp = &t
	}
	if len(run.Cells) > 0 {
		if err := json.Unmarshal(run.Cells, &result.Cells); err != nil {
			return nil, err
		}
	}
	if len(run.Warnings) > 0 {
		if err := json.Unmarshal(run.Warnings, &result.Warnings); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ExposureToRow converts a core facade exposure to a GORM row.
func ExposureToRow(session core.SessionInfo, e core.FacadeExposure) model.FacadeExposure {
	return model.FacadeExposure{
		SessionID:  session.ID,
		BuildingID: e.BuildingID,
		NorthHours: e.North,
		EastHours:  e.East,
		SouthHours: e.South,
		WestHours:  e.West,
	}
}

// RowToExposure converts a GORM facade exposure row back to a core value.
func RowToExposure(row model.FacadeExposure) core.FacadeExposure {
	return core.FacadeExposure{
		BuildingID: row.BuildingID,
		North:      row.NorthHours,
		East:       row.EastHours,
		South:      row.SouthHours,
		West:       row.WestHours,
	}
}

// MassingReportToRow converts a core massing report to a GORM row.
func MassingReportToRow(session core.SessionInfo, r core.MassingReport) model.MassingReport {
	return model.MassingReport{
		SessionID:       session.ID,
		Total:           r.Total,
		DefaultedHeight: r.DefaultedHeight,
		AverageHeightM:  r.AverageHeightM,
		MaxHeightM:      r.MaxHeightM,
		VerifyIDs:       toJSON(r.VerifyIDs),
		Warnings:        toJSON(r.Warnings),
	}
}

// RowToMassingReport converts a GORM massing report row back to a core value.
func RowToMassingReport(row model.MassingReport) (core.MassingReport, error) {
	report := core.MassingReport{
		Total:           row.Total,
		DefaultedHeight: row.DefaultedHeight,
		AverageHeightM:  row.AverageHeightM,
		MaxHeightM:      row.MaxHeightM,
	}
	if len(row.VerifyIDs) > 0 {
		if err := json.Unmarshal(row.VerifyIDs, &report.VerifyIDs); err != nil {
			return core.MassingReport{}, err
		}
	}
	if len(row.Warnings) > 0 {
		if err := json.Unmarshal(row.Warnings, &report.Warnings); err != nil {
			return core.MassingReport{}, err
		}
	}
	return report, nil
}
