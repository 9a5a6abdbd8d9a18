package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/pipontop/internal/watcher"
)

// YAMLFormatter formats output as YAML.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// FormatStatus writes the status as a YAML document.
func (f *YAMLFormatter) FormatStatus(w io.Writer, status watcher.Status) error {
	status.Windows = filterWindows(f.opts, status.Windows)
	if !f.opts.ShowWindows {
		status.Windows = nil
	}
	return encodeYAML(w, status)
}

// FormatWindows writes windows as a YAML sequence.
func (f *YAMLFormatter) FormatWindows(w io.Writer, windows []watcher.WindowStatus) error {
	windows = filterWindows(f.opts, windows)
	if windows == nil {
		windows = []watcher.WindowStatus{}
	}
	return encodeYAML(w, windows)
}

// FormatChecks writes checks as a YAML sequence.
func (f *YAMLFormatter) FormatChecks(w io.Writer, checks []Check) error {
	if checks == nil {
		checks = []Check{}
	}
	return encodeYAML(w, checks)
}

func encodeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
