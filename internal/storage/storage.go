// internal/storage/storage.go
package storage

import "github.com/heliosite/engine/pkg/core"

// Backend is the interface all result sinks must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	BeginSession(session core.SessionInfo) error
	EndSession() error

	// Result recording
	SaveResult(result *core.AnalysisResult) error
	SaveExposures(exposures []core.FacadeExposure) error
	SaveMassingReport(report core.MassingReport) error
}

// Exportable is an optional interface for backends that write session
// results to a file consumers can pick up (renderers, report writers).
type Exportable interface {
	ExportedFilePath() string
}
