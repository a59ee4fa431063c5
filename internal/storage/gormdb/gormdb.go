// Package gormdb persists analysis sessions through a GORM connection.
// The same backend serves both SQLite and Postgres; the dialector is
// chosen by the caller.
package gormdb

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/heliosite/engine/internal/model"
	"github.com/heliosite/engine/internal/model/convert"
	"github.com/heliosite/engine/pkg/core"
)

// Backend writes results to a relational database via GORM.
type Backend struct {
	db      *gorm.DB
	log     zerolog.Logger
	session core.SessionInfo
	active  bool
}

// New creates a backend over an already-open GORM connection.
func New(db *gorm.DB, log zerolog.Logger) *Backend {
	return &Backend{db: db, log: log}
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Close shuts down the underlying connection pool.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// BeginSession records the session all subsequent saves belong to.
func (b *Backend) BeginSession(session core.SessionInfo) error {
	b.session = session
	b.active = true
	b.log.Info().Str("session", session.ID).Str("mode", session.Mode).Msg("Session started")
	return nil
}

// EndSession closes out the current session.
func (b *Backend) EndSession() error {
	if !b.active {
		return fmt.Errorf("no active session")
	}
	b.active = false
	b.log.Info().Str("session", b.session.ID).Msg("Session ended")
	return nil
}

// SaveResult persists one analysis run.
func (b *Backend) SaveResult(result *core.AnalysisResult) error {
	if !b.active {
		return fmt.Errorf("no active session")
	}
	run := convert.ResultToRun(b.session, result)
	if err := b.db.Create(&run).Error; err != nil {
		return fmt.Errorf("saving analysis run: %w", err)
	}
	return nil
}

// SaveExposures persists the per-building facade exposure table.
func (b *Backend) SaveExposures(exposures []core.FacadeExposure) error {
	if !b.active {
		return fmt.Errorf("no active session")
	}
	if len(exposures) == 0 {
		return nil
	}
	rows := make([]model.FacadeExposure, 0, len(exposures))
	for _, e := range exposures {
		rows = append(rows, convert.ExposureToRow(b.session, e))
	}
	if err := b.db.Create(&rows).Error; err != nil {
		return fmt.Errorf("saving facade exposures: %w", err)
	}
	return nil
}

// SaveMassingReport persists the massing validation report.
func (b *Backend) SaveMassingReport(report core.MassingReport) error {
	if !b.active {
		return fmt.Errorf("no active session")
	}
	row := convert.MassingReportToRow(b.session, report)
	if err := b.db.Create(&row).Error; err != nil {
		return fmt.Errorf("saving massing report: %w", err)
	}
	return nil
}
