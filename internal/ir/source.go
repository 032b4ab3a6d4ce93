// Package ir defines the intermediate representation consumed by the
// emission pipeline: operands, instructions, directives and labels,
// plus the fixed table of conditional opcodes and their negations.
package ir

import "fmt"

// SourceInfo is carried through every transformation of an IrItem; it is
// never invented or dropped by any rule in internal/emit.
type SourceInfo struct {
	FileName     string
	LineNumber   int
	ColumnNumber int
	LineContent  string
}

// String renders the "<file>:<line>" form used in diagnostics.
func (s SourceInfo) String() string {
	return fmt.Sprintf("%s:%d", s.FileName, s.LineNumber)
}

// CompileError is a fatal compilation error carrying the SourceInfo of the
// item that triggered it, per spec §7.
type CompileError struct {
	Source  SourceInfo
	Message string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("[ERROR] %s: %s", e.Source, e.Message)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Errorf builds a CompileError located at src.
func Errorf(src SourceInfo, format string, args ...any) *CompileError {
	return &CompileError{Source: src, Message: fmt.Sprintf(format, args...)}
}
