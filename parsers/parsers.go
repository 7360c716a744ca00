// Package parsers contains the custom parsers for the QtQml types whose
// bindings do not follow the generic property rules.
package parsers

import "github.com/deepnoodle-ai/qmlc/compiler"

// Native class names the stock parsers are registered under.
const (
	ListModelClass   = "QQmlListModel"
	ListElementClass = "QQmlListElement"
	ConnectionsClass = "QQmlConnections"
)

// Stock returns the stock parsers keyed by native class name, ready to be
// used as compiler.Config.CustomParsers.
func Stock() map[string]compiler.CustomParser {
	return map[string]compiler.CustomParser{
		ListModelClass:   &ListModel{},
		ConnectionsClass: &Connections{},
	}
}
