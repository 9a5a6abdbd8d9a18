package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/pipontop/internal/host"
	"github.com/jmylchreest/pipontop/internal/watcher"
)

// PlainFormatter formats output as human-readable text.
type PlainFormatter struct {
	opts FormatterOptions
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	return &PlainFormatter{opts: opts}
}

// FormatStatus writes a status summary followed by the window table.
func (f *PlainFormatter) FormatStatus(w io.Writer, status watcher.Status) error {
	var sb strings.Builder

	if status.Enabled {
		sb.WriteString("Watcher:      enabled")
		if !status.EnabledAt.IsZero() {
			sb.WriteString(fmt.Sprintf(" (since %s)", humanize.Time(status.EnabledAt)))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("Watcher:      disabled\n")
	}
	sb.WriteString(fmt.Sprintf("Stick:        %s\n", onOff(status.Stick)))
	sb.WriteString(fmt.Sprintf("Workspace:    %s\n", WorkspaceName(status.Workspace)))
	sb.WriteString(fmt.Sprintf("Exact titles: %s\n", humanize.Comma(int64(status.ExactTitles))))
	sb.WriteString(fmt.Sprintf("Windows:      %d tracked, %d PiP\n", len(status.Windows), status.PipCount()))

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}

	if !f.opts.ShowWindows || len(status.Windows) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return f.FormatWindows(w, status.Windows)
}

// FormatWindows writes a table of windows.
func (f *PlainFormatter) FormatWindows(w io.Writer, windows []watcher.WindowStatus) error {
	windows = filterWindows(f.opts, windows)
	if len(windows) == 0 {
		_, err := io.WriteString(w, "No windows\n")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPIP\tTITLE")
	for _, win := range windows {
		fmt.Fprintf(tw, "0x%08x\t%s\t%s\n", uint32(win.ID), yesNo(win.Pip), truncate(win.Title, f.opts.TitleMaxLen))
	}
	return tw.Flush()
}

// FormatChecks writes one line per checked title.
func (f *PlainFormatter) FormatChecks(w io.Writer, checks []Check) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PIP\tSTATIC\tEXACT\tTITLE")
	for _, c := range checks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%q\n",
			yesNo(c.Pip), yesNo(c.Verdict.Static), yesNo(c.Verdict.Exact),
			truncate(c.Verdict.Normalized, f.opts.TitleMaxLen))
	}
	return tw.Flush()
}

// WorkspaceName returns a display name for ws.
func WorkspaceName(ws host.WorkspaceID) string {
	if ws == host.AllWorkspaces {
		return "all"
	}
	return fmt.Sprintf("%d", ws)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// truncate shortens s to maxLen runes.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if maxLen <= 0 || len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
