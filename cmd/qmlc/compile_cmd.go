package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/deepnoodle-ai/qmlc"
	"github.com/deepnoodle-ai/qmlc/dis"
	"github.com/deepnoodle-ai/qmlc/unit"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func (a *app) compileCommand() *cobra.Command {
	var noDis bool
	cmd := &cobra.Command{
		Use:   "compile DOC.json",
		Short: "Compile a document and print the compilation unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			doc, err := loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			u, err := qmlc.Compile(cmd.Context(), doc, a.compileOptions(reg)...)
			if err != nil {
				return a.reportErrors(cmd, err)
			}
			return printUnit(cmd.OutOrStdout(), u, !noDis)
		},
	}
	cmd.Flags().BoolVar(&noDis, "no-dis", false, "omit the disassembly of the compiled functions")
	return cmd
}

func printUnit(w io.Writer, u *unit.Unit, disassemble bool) error {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(w, "%s %s\n", bold("unit"), u.URL())
	fmt.Fprintf(w, "  id:        %s\n", u.ID())
	fmt.Fprintf(w, "  checksum:  %016x\n", u.Checksum())
	fmt.Fprintf(w, "  singleton: %t\n", u.IsSingleton())
	fmt.Fprintf(w, "  bindings:  %d\n", u.BindingCount())
	fmt.Fprintf(w, "  functions: %d\n", u.FunctionCount())

	fmt.Fprintln(w, bold("objects"))
	for i := 0; i < u.ObjectCount(); i++ {
		obj := u.Object(i)
		class := "-"
		if cache := u.PropertyCache(i); cache != nil {
			class = cache.ClassName()
		}
		typeName := u.String(obj.InheritedTypeName)
		if typeName == "" {
			typeName = "<group>"
		}
		line := fmt.Sprintf("  %d %s %s", i, typeName, class)
		if obj.IDName != 0 {
			line += " id=" + u.String(obj.IDName)
		}
		if i == u.RootIndex() {
			line += " (root)"
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w, bold("components"))
	for _, c := range u.Components() {
		fmt.Fprintf(w, "  root %d:", c.Root)
		names := make([]string, 0, len(c.Names))
		for name := range c.Names {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, " %s=%d", name, c.Names[name])
		}
		fmt.Fprintln(w)
	}

	if !disassemble {
		return nil
	}
	for i := 0; i < u.FunctionCount(); i++ {
		fmt.Fprintln(w)
		if err := dis.PrintFunction(u.Module().FunctionAt(i), w); err != nil {
			return err
		}
	}
	return nil
}
