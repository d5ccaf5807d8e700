package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/supermatter/config"
)

// Output file names inside the output directory.
const (
	ReactorFile  = "reactor.csv"
	EventsFile   = "events.csv"
	BookmarkFile = "bookmarks.csv"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir          string
	reactorFile  *os.File
	eventsFile   *os.File
	bookmarkFile *os.File

	// Track if headers have been written
	reactorHeaderWritten  bool
	eventsHeaderWritten   bool
	bookmarkHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  **os.File
	}{
		{ReactorFile, &om.reactorFile},
		{EventsFile, &om.eventsFile},
		{BookmarkFile, &om.bookmarkFile},
	}
	for _, f := range files {
		fh, err := os.Create(filepath.Join(dir, f.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", f.name, err)
		}
		*f.dst = fh
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// writeRecords appends records to f, writing the header on first use.
func writeRecords[T any](f *os.File, headerWritten *bool, records []T) error {
	if len(records) == 0 {
		return nil
	}
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// WriteTelemetry writes window stats records to reactor.csv.
func (om *OutputManager) WriteTelemetry(stats []WindowStats) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(om.reactorFile, &om.reactorHeaderWritten, stats); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WriteEvents writes effect records to events.csv.
func (om *OutputManager) WriteEvents(events []Event) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(om.eventsFile, &om.eventsHeaderWritten, events); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}
	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(om.bookmarkFile, &om.bookmarkHeaderWritten, []Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.reactorFile, om.eventsFile, om.bookmarkFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ReadTelemetry loads reactor.csv records written by WriteTelemetry.
func ReadTelemetry(path string) ([]WindowStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening telemetry: %w", err)
	}
	defer f.Close()

	var stats []WindowStats
	if err := gocsv.UnmarshalFile(f, &stats); err != nil {
		return nil, fmt.Errorf("reading telemetry: %w", err)
	}
	return stats, nil
}
