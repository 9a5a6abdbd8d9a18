// Package input provides title sources for the offline classifier check.
package input

import (
	"context"
	"fmt"
)

// TitleSource yields window titles to classify.
type TitleSource interface {
	// Name returns the source identifier (e.g., "args", "stdin").
	Name() string

	// Titles returns the titles in input order.
	Titles(ctx context.Context) ([]string, error)
}

// NewSource creates a TitleSource. A single "-" argument selects stdin.
func NewSource(args []string) TitleSource {
	if len(args) == 1 && args[0] == "-" {
		return NewStdinSource()
	}
	return NewArgsSource(args)
}

// ArgsSource returns titles given on the command line.
type ArgsSource struct {
	args []string
}

// NewArgsSource creates a source over args.
func NewArgsSource(args []string) *ArgsSource {
	return &ArgsSource{args: args}
}

// Name returns the source identifier.
func (s *ArgsSource) Name() string {
	return "args"
}

// Titles returns the arguments.
func (s *ArgsSource) Titles(ctx context.Context) ([]string, error) {
	if len(s.args) == 0 {
		return nil, &SourceError{Source: "args", Message: "no titles given"}
	}
	return s.args, nil
}

// SourceError represents a title source error.
type SourceError struct {
	Source  string
	Message string
	Err     error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Message, e.Err)
	}
	return e.Source + ": " + e.Message
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
