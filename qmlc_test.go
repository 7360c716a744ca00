package qmlc

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/deepnoodle-ai/qmlc/compiler"
	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/internal/qmltest"
	"github.com/deepnoodle-ai/qmlc/ir"
	"github.com/deepnoodle-ai/qmlc/parsers"
	"github.com/deepnoodle-ai/qmlc/registry"
	"github.com/stretchr/testify/require"
)

func document(t *testing.T, url string, build func(root *qmltest.Object)) *ir.Document {
	d := qmltest.NewDocument(t, url).Import("QtQml", 2, 0).Import("QtQuick", 2, 0)
	build(d.Root("Item"))
	return d.Build()
}

func TestCompile(t *testing.T) {
	reg := qmltest.Registry(t)
	doc := document(t, "file:///app/Main.qml", func(root *qmltest.Object) {
		root.ID("root").Set("width", "200").Set("height", "root.width / 2")
	})
	u, err := Compile(context.Background(), doc, WithRegistry(reg))
	require.NoError(t, err)
	require.Equal(t, "file:///app/Main.qml", u.URL())
	require.Equal(t, 1, u.FunctionCount())
}

func TestCompileRequiresRegistry(t *testing.T) {
	doc := document(t, "file:///app/Main.qml", func(root *qmltest.Object) {})
	_, err := Compile(context.Background(), doc)
	require.ErrorContains(t, err, "no registry")

	_, err = Compile(context.Background(), nil)
	require.Error(t, err)
}

func TestCompileWithImports(t *testing.T) {
	reg := qmltest.Registry(t)
	doc := qmltest.NewDocument(t, "file:///app/Main.qml")
	doc.Root("Item")
	imports := reg.NewImports([]registry.Import{{Module: "QtQuick", Major: 2, Minor: 0}})
	_, err := Compile(context.Background(), doc.Build(), WithImports(imports))
	require.NoError(t, err)
}

func TestStockParsersByDefault(t *testing.T) {
	model := func(t *testing.T, element func(e *qmltest.Object)) *ir.Document {
		d := qmltest.NewDocument(t, "file:///app/Model.qml").Import("QtQml", 2, 0)
		element(d.Root("ListModel").Child("", "ListElement"))
		return d.Build()
	}
	reg := qmltest.Registry(t)
	empty := func(e *qmltest.Object) {}

	_, err := Compile(context.Background(), model(t, empty), WithRegistry(reg))
	require.NoError(t, err)

	_, err = Compile(context.Background(), model(t, func(e *qmltest.Object) { e.Set("cost", "1 + 1") }),
		WithRegistry(reg))
	var ce *errors.CompileError
	require.True(t, errors.As(err, &ce), "unexpected error: %v", err)
	require.Equal(t, "ListElement: cannot use script for property value", ce.Message)

	_, err = Compile(context.Background(), model(t, empty), WithRegistry(reg),
		WithCustomParser(parsers.ListModelClass, nil))
	require.True(t, errors.As(err, &ce), "unexpected error: %v", err)
	require.Equal(t, "Cannot assign to non-existent default property", ce.Message)
}

func TestOptions(t *testing.T) {
	o := collectOptions()
	require.True(t, o.simplify)
	require.Equal(t, compiler.DefaultMaxSimplifyBlocks, o.maxBlocks)
	require.Positive(t, o.concurrency)
	require.Len(t, o.parsers, 2)

	o = collectOptions(WithSimplification(false), WithMaxSimplifyBlocks(3), WithConcurrency(0), nil)
	cfg := o.compilerConfig(nil)
	require.True(t, cfg.DisableSimplification)
	require.Equal(t, 3, cfg.MaxSimplifyBlocks)
	require.Positive(t, o.concurrency)

	o = collectOptions(WithCustomParser(parsers.ConnectionsClass, nil))
	require.Len(t, o.parsers, 1)
	require.Contains(t, o.parsers, parsers.ListModelClass)
}

func TestCompileAll(t *testing.T) {
	reg := qmltest.Registry(t)
	var docs []*ir.Document
	for i := range 8 {
		url := fmt.Sprintf("file:///app/Page%d.qml", i)
		docs = append(docs, document(t, url, func(root *qmltest.Object) {
			if i%3 == 0 {
				root.Set("bogus", "1")
			} else {
				root.Set("width", "parent.width")
			}
		}))
	}
	units, err := CompileAll(context.Background(), docs, WithRegistry(reg), WithConcurrency(3))
	require.Error(t, err)
	require.Len(t, units, len(docs))

	list := errors.List(err)
	require.Len(t, list, 3)
	for i, want := range []int{0, 3, 6} {
		require.Nil(t, units[want])
		require.Equal(t, fmt.Sprintf("file:///app/Page%d.qml", want), list[i].Filename)
	}
	for _, i := range []int{1, 2, 4, 5, 7} {
		require.NotNil(t, units[i])
		require.Equal(t, docs[i].URL, units[i].URL())
	}
}

func TestCompileAllCancelled(t *testing.T) {
	reg := qmltest.Registry(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	docs := []*ir.Document{document(t, "file:///app/Main.qml", func(root *qmltest.Object) {})}
	_, err := CompileAll(ctx, docs, WithRegistry(reg))
	require.ErrorIs(t, err, context.Canceled)
}

func registerComposite(t *testing.T, reg *registry.Registry, name string) {
	t.Helper()
	_, err := reg.Register(&registry.Type{
		Name:        name,
		IsComposite: true,
		SourceURL:   "file:///app/" + name + ".qml",
		Exports:     []registry.Export{{Module: "app", Name: name, Major: 1, Minor: 0}},
	})
	require.NoError(t, err)
}

func TestResolver(t *testing.T) {
	reg := qmltest.Registry(t)
	registerComposite(t, reg, "Button")
	var loads atomic.Int32
	resolver := NewResolver(func(ctx context.Context, url string) (*ir.Document, error) {
		loads.Add(1)
		require.Equal(t, "file:///app/Button.qml", url)
		d := qmltest.NewDocument(t, url).Import("QtQuick", 2, 0)
		d.Root("Item").Property("string", "label")
		return d.Build(), nil
	}, WithRegistry(reg))

	main := func() *ir.Document {
		d := qmltest.NewDocument(t, "file:///app/Main.qml").
			Import("QtQuick", 2, 0).
			Import("app", 1, 0)
		d.Root("Item").Child("", "Button").SetString("label", "OK")
		return d.Build()
	}
	opts := []Option{WithRegistry(reg), WithCompositeResolver(resolver)}
	_, err := Compile(context.Background(), main(), opts...)
	require.NoError(t, err)
	_, err = Compile(context.Background(), main(), opts...)
	require.NoError(t, err)
	require.Equal(t, int32(1), loads.Load())

	u, ok := resolver.Unit("file:///app/Button.qml")
	require.True(t, ok)
	require.NotNil(t, u.RootCache().Property("label"))
}

func TestResolverCycle(t *testing.T) {
	reg := qmltest.Registry(t)
	registerComposite(t, reg, "Loop")
	resolver := NewResolver(func(ctx context.Context, url string) (*ir.Document, error) {
		d := qmltest.NewDocument(t, url).Import("QtQuick", 2, 0).Import("app", 1, 0)
		d.Root("Item").Child("", "Loop")
		return d.Build(), nil
	}, WithRegistry(reg))

	_, err := resolver.ResolveComposite(context.Background(), reg.Type("Loop"))
	var ce *errors.CompileError
	require.True(t, errors.As(err, &ce), "unexpected error: %v", err)
	require.Equal(t, "Type Loop unavailable", ce.Message)
	require.Equal(t, "file:///app/Loop.qml", ce.Filename)
	require.Equal(t, "cyclic dependency detected: file:///app/Loop.qml -> file:///app/Loop.qml", ce.Note)
	_, ok := resolver.Unit("file:///app/Loop.qml")
	require.False(t, ok)
}
