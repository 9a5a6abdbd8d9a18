package input

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
)

// StdinSource reads one title per line from standard input.
type StdinSource struct {
	reader io.Reader
}

// NewStdinSource creates a new StdinSource reading from os.Stdin.
func NewStdinSource() *StdinSource {
	return &StdinSource{reader: os.Stdin}
}

// NewStdinSourceWithReader creates a new StdinSource with a custom reader.
func NewStdinSourceWithReader(r io.Reader) *StdinSource {
	return &StdinSource{reader: r}
}

// Name returns the source identifier.
func (s *StdinSource) Name() string {
	return "stdin"
}

// Titles reads titles until EOF. Blank lines are skipped; other lines are
// passed on untouched apart from the line terminator, so the classifier
// sees the same whitespace a window title would carry.
func (s *StdinSource) Titles(ctx context.Context) ([]string, error) {
	scanner := bufio.NewScanner(s.reader)
	const maxSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxSize)

	var titles []string
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		titles = append(titles, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, &SourceError{
			Source:  "stdin",
			Message: "failed to read stdin",
			Err:     err,
		}
	}
	return titles, nil
}
