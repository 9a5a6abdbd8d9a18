// Package classify decides from a window title alone whether the window is
// a Picture-in-Picture style overlay.
package classify

import (
	"regexp"
	"strings"
)

// pipPhrases are titles browsers and players give their PiP windows.
var pipPhrases = map[string]struct{}{
	"Picture-in-Picture":            {},
	"Picture in picture":            {},
	"Picture-in-picture":            {},
	"Mode PIP (Picture-in-Picture)": {},
	"PIP mode (Picture-in-Picture)": {},
}

// Google Meet's floating call window. The main browser window for a Meet tab
// carries the browser name as suffix and is excluded.
var (
	meetPattern     = regexp.MustCompile(`^Meet\s*[-–—]\s*`)
	browserSuffixes = []string{
		" Chromium",
		" Firefox",
		" Brave Web Browser",
		" Google Chrome",
	}
)

// Matches what browsers treat as whitespace, not only ASCII.
var whitespaceRun = regexp.MustCompile(`[\s\v\x{0085}\p{Zs}\x{FEFF}\x{2028}\x{2029}]+`)

// Normalize converts non-breaking spaces to spaces, collapses whitespace runs
// to a single space and trims the result.
func Normalize(title string) string {
	title = strings.ReplaceAll(title, "\u00a0", " ")
	title = whitespaceRun.ReplaceAllString(title, " ")
	return strings.TrimSpace(title)
}

// Verdict is the outcome of classifying one title.
type Verdict struct {
	Normalized string `json:"normalized" yaml:"normalized"`
	Static     bool   `json:"static" yaml:"static"`
	Exact      bool   `json:"exact" yaml:"exact"`
}

// Pip reports whether any rule matched.
func (v Verdict) Pip() bool {
	return v.Static || v.Exact
}

// Evaluate classifies rawTitle against the built-in rules and exact.
// An empty title yields a zero Verdict.
func Evaluate(rawTitle string, exact *ExactTitles) Verdict {
	if rawTitle == "" {
		return Verdict{}
	}

	normalized := Normalize(rawTitle)
	return Verdict{
		Normalized: normalized,
		Static:     StaticMatch(normalized),
		Exact:      exact.Has(normalized),
	}
}

// Classify reports whether rawTitle belongs to a PiP window.
func Classify(rawTitle string, exact *ExactTitles) bool {
	return Evaluate(rawTitle, exact).Pip()
}

// StaticMatch applies the built-in rules to an already normalized title.
func StaticMatch(title string) bool {
	if _, ok := pipPhrases[title]; ok {
		return true
	}

	switch {
	case strings.HasSuffix(title, " - PiP"):
		return true
	case isMeetOverlay(title):
		return true
	case title == "TelegramDesktop":
		return true
	case strings.HasSuffix(title, " - YouTube"):
		// Yandex.Browser names its video popout after the page
		return true
	case title == "CollectorMainWindow":
		return true
	case strings.Contains(strings.ToLower(title), "kasasa"):
		return true
	}
	return false
}

func isMeetOverlay(title string) bool {
	if !meetPattern.MatchString(title) {
		return false
	}
	for _, suffix := range browserSuffixes {
		if strings.HasSuffix(title, suffix) {
			return false
		}
	}
	return true
}
