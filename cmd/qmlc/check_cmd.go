package main

import (
	"context"
	"fmt"
	"os"

	"github.com/deepnoodle-ai/qmlc"
	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/spf13/cobra"
)

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check DOC.json...",
		Short: "Compile documents and report their errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			docs, err := loadDocuments(cmd.Context(), args)
			if err != nil {
				return err
			}
			units, err := qmlc.CompileAll(cmd.Context(), docs, a.compileOptions(reg)...)
			for i, u := range units {
				if u != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[i])
				}
			}
			if err != nil {
				return a.reportErrors(cmd, err)
			}
			return nil
		},
	}
}

func loadDocuments(ctx context.Context, paths []string) ([]*ir.Document, error) {
	docs := make([]*ir.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := loadDocument(ctx, path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func loadDocument(ctx context.Context, path string) (*ir.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := ir.Load(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// reportErrors prints the compile errors in err and returns errCheckFailed.
// Other errors are returned unchanged.
func (a *app) reportErrors(cmd *cobra.Command, err error) error {
	if ctxErr := cmd.Context().Err(); ctxErr != nil {
		return ctxErr
	}
	list := errors.List(err)
	formatted := make([]*errors.FormattedError, 0, len(list))
	for _, e := range list {
		formatted = append(formatted, e.ToFormatted())
	}
	out := cmd.ErrOrStderr()
	fmt.Fprintln(out, errors.NewFormatter(a.useColor(out)).FormatMultiple(formatted))
	return errCheckFailed
}
