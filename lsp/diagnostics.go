// Package lsp reports compile errors as Language Server Protocol
// diagnostics.
package lsp

import (
	"fortio.org/safecast"
	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
)

// Source is the diagnostic source reported to clients.
const Source = "qmlc"

// Diagnostics converts the compile errors in err to diagnostics. Errors
// without a location are reported at the start of the document.
func Diagnostics(err error) []protocol.Diagnostic {
	list := errors.List(err)
	if len(list) == 0 {
		return nil
	}
	result := make([]protocol.Diagnostic, 0, len(list))
	for _, e := range list {
		result = append(result, Diagnostic(e))
	}
	return result
}

// Diagnostic converts one compile error.
func Diagnostic(e *errors.CompileError) protocol.Diagnostic {
	message := e.Message
	if hint := errors.FormatSuggestions(e.Suggestions); hint != "" {
		message += " " + hint
	}
	d := protocol.Diagnostic{
		Range:    errorRange(e),
		Severity: protocol.SeverityError,
		Source:   Source,
		Message:  message,
	}
	if e.Code != "" {
		d.Code = e.Code.String()
	}
	return d
}

// Publish returns the notification parameters for the document at uri.
// Errors that name another document are left out. A nil err clears the
// diagnostics of the document.
func Publish(uri string, version int32, err error) *protocol.PublishDiagnosticsParams {
	diagnostics := []protocol.Diagnostic{}
	for _, e := range errors.List(err) {
		if e.Filename != "" && e.Filename != uri {
			continue
		}
		diagnostics = append(diagnostics, Diagnostic(e))
	}
	return &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(uri),
		Version:     version,
		Diagnostics: diagnostics,
	}
}

// errorRange maps the 1-based error location to a 0-based range. Without
// an end column the range runs to the end of the source line.
func errorRange(e *errors.CompileError) protocol.Range {
	if e.Line < 1 {
		return protocol.Range{}
	}
	line := position(e.Line - 1)
	start := position(e.Column - 1)
	end := start
	switch {
	case e.EndColumn > e.Column:
		end = position(e.EndColumn - 1)
	case len(e.SourceLine) >= e.Column:
		end = position(len(e.SourceLine))
	}
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: start},
		End:   protocol.Position{Line: line, Character: end},
	}
}

func position(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0
	}
	return v
}
