package main

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/qmlc/internal/table"
	"github.com/deepnoodle-ai/qmlc/registry"
	"github.com/spf13/cobra"
)

func (a *app) typesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types [FILE...]",
		Short: "List the types described by .qmltypes files",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry(args...)
			if err != nil {
				return err
			}
			var rows [][]string
			for _, t := range reg.Types() {
				rows = append(rows, []string{t.Name, t.Prototype, formatExports(t)})
			}
			table.NewTable(cmd.OutOrStdout()).
				WithHeader([]string{"CLASS", "PROTOTYPE", "EXPORTS"}).
				WithRows(rows).
				Render()
			return nil
		},
	}
}

func formatExports(t *registry.Type) string {
	exports := make([]string, 0, len(t.Exports))
	for _, e := range t.Exports {
		s := fmt.Sprintf("%s/%s %d.%d", e.Module, e.Name, e.Major, e.Minor)
		if e.Revision != 0 {
			s += fmt.Sprintf(" (rev %d)", e.Revision)
		}
		exports = append(exports, s)
	}
	return strings.Join(exports, ", ")
}
