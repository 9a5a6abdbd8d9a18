package classify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/tidwall/jsonc"
)

// Browser is a key of the matchers document.
type Browser string

const (
	BrowserFirefox Browser = "firefox"
	// BrowserChrome covers every Chromium-based browser: Chromium, Chrome, Brave.
	BrowserChrome Browser = "chrome"
)

// Browsers returns all valid matchers document keys.
func Browsers() []Browser {
	return []Browser{BrowserFirefox, BrowserChrome}
}

// ExactTitles is the set of normalized titles that match exactly.
// A nil *ExactTitles is an empty set.
type ExactTitles struct {
	titles map[string]struct{}
}

// NewExactTitles creates a set holding the given titles.
func NewExactTitles(titles ...string) *ExactTitles {
	e := &ExactTitles{titles: make(map[string]struct{}, len(titles))}
	for _, title := range titles {
		e.Add(title)
	}
	return e
}

// Add normalizes title and inserts it. Empty titles are ignored.
func (e *ExactTitles) Add(title string) {
	normalized := Normalize(title)
	if normalized == "" {
		return
	}
	e.titles[normalized] = struct{}{}
}

// Has reports whether the normalized title is in the set. Matching is
// case-sensitive.
func (e *ExactTitles) Has(normalized string) bool {
	if e == nil {
		return false
	}
	_, ok := e.titles[normalized]
	return ok
}

// Len returns the number of titles in the set.
func (e *ExactTitles) Len() int {
	if e == nil {
		return 0
	}
	return len(e.titles)
}

// ParseMatchers builds an ExactTitles from a matchers document:
//
//	{"firefox": ["Picture-in-Picture"], "chrome": ["Picture in picture"]}
//
// Comments and trailing commas are allowed. Only a document that is not a
// JSON object is an error; keys outside Browsers, non-array values and
// non-string or empty entries are skipped.
func ParseMatchers(data []byte) (*ExactTitles, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, fmt.Errorf("matchers document is not a JSON object: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("matchers document is null")
	}

	exact := NewExactTitles()
	for _, browser := range Browsers() {
		node, ok := doc[string(browser)]
		if !ok {
			continue
		}

		var entries []json.RawMessage
		if err := json.Unmarshal(node, &entries); err != nil {
			continue
		}

		for _, entry := range entries {
			var title string
			if err := json.Unmarshal(entry, &title); err != nil {
				continue
			}
			exact.Add(title)
		}
	}
	return exact, nil
}

// ReadMatchers reads and parses the matchers document at path. A missing
// file is not an error and yields an empty set.
func ReadMatchers(path string) (*ExactTitles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewExactTitles(), nil
		}
		return nil, fmt.Errorf("failed to read title matchers: %w", err)
	}

	exact, err := ParseMatchers(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse title matchers %s: %w", path, err)
	}
	return exact, nil
}

// LoadMatchers reads the matchers document at path. It never fails: any
// read or parse error is logged and an empty set is returned so that only
// the built-in rules apply.
func LoadMatchers(path string, logger *slog.Logger) *ExactTitles {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("loading title matchers", "path", path)

	exact, err := ReadMatchers(path)
	if err != nil {
		logger.Warn("failed to load title matchers", "path", path, "error", err)
		return NewExactTitles()
	}

	logger.Debug("loaded title matchers", "path", path, "titles", exact.Len())
	return exact
}
