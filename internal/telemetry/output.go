package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// FileName is the CSV file written inside the output directory.
const FileName = "frames.csv"

// Output appends windows to a CSV file. A nil *Output discards everything.
type Output struct {
	path          string
	file          *os.File
	headerWritten bool
}

// NewOutput creates the output directory and file. Returns nil if dir is
// empty (output disabled).
func NewOutput(dir string) (*Output, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating telemetry directory: %w", err)
	}
	path := filepath.Join(dir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", FileName, err)
	}
	return &Output{path: path, file: f}, nil
}

// Write appends one window record.
func (o *Output) Write(w Window) error {
	if o == nil {
		return nil
	}
	records := []Window{w}
	if !o.headerWritten {
		if err := gocsv.Marshal(records, o.file); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		o.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, o.file); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// Path returns the CSV path.
func (o *Output) Path() string {
	if o == nil {
		return ""
	}
	return o.path
}

// Close closes the CSV file.
func (o *Output) Close() error {
	if o == nil || o.file == nil {
		return nil
	}
	err := o.file.Close()
	o.file = nil
	return err
}
