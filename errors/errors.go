// Package errors defines the compile errors reported while turning a QML
// document into a compiled unit, and the tooling to display them.
package errors

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// SourceLocation represents a position in a QML document.
type SourceLocation struct {
	Filename string
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Source   string // The line of source code
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// List flattens err into its compile errors. Compile errors nested in a
// *multierror.Error or a *CompileErrors are returned in order; any other
// error becomes a CompileError without a location.
func List(err error) []*CompileError {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		var result []*CompileError
		for _, e := range merr.Errors {
			result = append(result, List(e)...)
		}
		return result
	}
	var list *CompileErrors
	if errors.As(err, &list) {
		return append([]*CompileError(nil), list.Errors...)
	}
	var single *CompileError
	if errors.As(err, &single) {
		return []*CompileError{single}
	}
	return []*CompileError{{Message: err.Error()}}
}

// As is errors.As from the standard library.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is is errors.Is from the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
