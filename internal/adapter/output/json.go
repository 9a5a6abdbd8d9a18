package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/pipontop/internal/watcher"
)

// JSONFormatter formats output as indented JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// FormatStatus writes the status as a JSON object.
func (f *JSONFormatter) FormatStatus(w io.Writer, status watcher.Status) error {
	status.Windows = filterWindows(f.opts, status.Windows)
	if !f.opts.ShowWindows {
		status.Windows = nil
	}
	return encodeJSON(w, status)
}

// FormatWindows writes windows as a JSON array.
func (f *JSONFormatter) FormatWindows(w io.Writer, windows []watcher.WindowStatus) error {
	windows = filterWindows(f.opts, windows)
	if windows == nil {
		windows = []watcher.WindowStatus{}
	}
	return encodeJSON(w, windows)
}

// FormatChecks writes checks as a JSON array.
func (f *JSONFormatter) FormatChecks(w io.Writer, checks []Check) error {
	if checks == nil {
		checks = []Check{}
	}
	return encodeJSON(w, checks)
}

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
