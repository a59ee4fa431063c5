// internal/storage/memory/memory.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/heliosite/engine/internal/config"
	"github.com/heliosite/engine/internal/queue"
	"github.com/heliosite/engine/pkg/core"
)

// flushBatchSize bounds how many pending records are drained per pass
// during export.
const flushBatchSize = 16

// record is one pending write. Exactly one field is set.
type record struct {
	result    *core.AnalysisResult
	exposures []core.FacadeExposure
	report    *core.MassingReport
}

// Export is the root JSON structure written per session.
type Export struct {
	Session       core.SessionInfo       `json:"session"`
	Results       []*core.AnalysisResult `json:"results"`
	Exposures     []core.FacadeExposure  `json:"exposures,omitempty"`
	MassingReport *core.MassingReport    `json:"massingReport,omitempty"`
}

// Backend buffers session results in memory and exports them to a JSON
// file when the session ends.
type Backend struct {
	cfg config.MemoryConfig

	mu           sync.Mutex
	session      core.SessionInfo
	active       bool
	pending      *queue.Queue[record]
	exportedPath string
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:     cfg,
		pending: queue.New[record](),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// BeginSession starts buffering results for a new session
func (b *Backend) BeginSession(session core.SessionInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.session = session
	b.active = true
	b.pending.Clear()
	return nil
}

// SaveResult buffers an analysis result for export
func (b *Backend) SaveResult(result *core.AnalysisResult) error {
	if err := b.requireSession(); err != nil {
		return err
	}
	b.pending.Push(record{result: result})
	return nil
}

// SaveExposures buffers facade exposures for export
func (b *Backend) SaveExposures(exposures []core.FacadeExposure) error {
	if err := b.requireSession(); err != nil {
		return err
	}
	b.pending.Push(record{exposures: exposures})
	return nil
}

// SaveMassingReport buffers a massing validation report for export
func (b *Backend) SaveMassingReport(report core.MassingReport) error {
	if err := b.requireSession(); err != nil {
		return err
	}
	b.pending.Push(record{report: &report})
	return nil
}

// EndSession drains the buffer and writes the session export file
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.active {
		return fmt.Errorf("no active session")
	}
	b.active = false
	return b.exportJSON()
}

// ExportedFilePath returns the path of the last written export, empty if
// none has been written yet.
func (b *Backend) ExportedFilePath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exportedPath
}

func (b *Backend) requireSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return fmt.Errorf("no active session")
	}
	return nil
}

// exportJSON writes the buffered session data to a JSON file
func (b *Backend) exportJSON() error {
	export := Export{Session: b.session}
	for {
		batch := b.pending.PopBatch(flushBatchSize)
		if len(batch) == 0 {
			break
		}
		for _, rec := range batch {
			switch {
			case rec.result != nil:
				export.Results = append(export.Results, rec.result)
			case rec.exposures != nil:
				export.Exposures = append(export.Exposures, rec.exposures...)
			case rec.report != nil:
				export.MassingReport = rec.report
			}
		}
	}

	// Build filename
	sessionID := strings.ReplaceAll(b.session.ID, " ", "_")
	sessionID = strings.ReplaceAll(sessionID, ":", "_")
	timestamp := b.session.StartedAt.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", sessionID, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", sessionID, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if b.cfg.CompressOutput {
		gz := gzip.NewWriter(f)
		if err := json.NewEncoder(gz).Encode(export); err != nil {
			gz.Close()
			return fmt.Errorf("failed to encode export: %w", err)
		}
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	} else {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(export); err != nil {
			return fmt.Errorf("failed to encode export: %w", err)
		}
	}

	b.exportedPath = outputPath
	return nil
}
