// Package output provides output formatters for daemon status, tracked
// windows and title checks.
package output

import (
	"io"

	"github.com/jmylchreest/pipontop/internal/classify"
	"github.com/jmylchreest/pipontop/internal/watcher"
)

// Check is the result of classifying one title.
type Check struct {
	Title   string           `json:"title" yaml:"title"`
	Verdict classify.Verdict `json:"verdict" yaml:"verdict"`
	Pip     bool             `json:"pip" yaml:"pip"`
}

// NewCheck classifies title against exact.
func NewCheck(title string, exact *classify.ExactTitles) Check {
	verdict := classify.Evaluate(title, exact)
	return Check{Title: title, Verdict: verdict, Pip: verdict.Pip()}
}

// Formatter formats pipontop data for output.
type Formatter interface {
	FormatStatus(w io.Writer, status watcher.Status) error
	FormatWindows(w io.Writer, windows []watcher.WindowStatus) error
	FormatChecks(w io.Writer, checks []Check) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// FormatTypes returns all valid format types.
func FormatTypes() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	ShowWindows bool // Include the window list in status output
	TitleMaxLen int  // Maximum title length in plain output (0 = unlimited)
	OnlyPip     bool // Only list windows classified as PiP
}

// DefaultFormatterOptions returns sensible defaults.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowWindows: true,
		TitleMaxLen: 60,
	}
}

// filterWindows applies OnlyPip.
func filterWindows(opts FormatterOptions, windows []watcher.WindowStatus) []watcher.WindowStatus {
	if !opts.OnlyPip {
		return windows
	}
	filtered := make([]watcher.WindowStatus, 0, len(windows))
	for _, win := range windows {
		if win.Pip {
			filtered = append(filtered, win)
		}
	}
	return filtered
}
