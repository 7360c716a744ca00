package qmltypes

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/qmlc/registry"
	"github.com/hashicorp/go-multierror"
)

// Parse parses the contents of a .qmltypes file.
func Parse(filename string, r io.Reader) (*File, error) {
	f, err := parser.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("qmltypes: %w", err)
	}
	return f, nil
}

// LoadFile parses the named file and registers its components with reg.
func LoadFile(reg *registry.Registry, path string) ([]*registry.Type, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Load(reg, path, fh)
}

// Load parses a .qmltypes document and registers every Component it
// describes. Components that fail to convert are reported together; the
// others are still registered.
func Load(reg *registry.Registry, filename string, r io.Reader) ([]*registry.Type, error) {
	f, err := Parse(filename, r)
	if err != nil {
		return nil, err
	}
	if f.Main.Name != "Module" {
		return nil, fmt.Errorf("qmltypes: %s: expected a Module, got %s", filename, f.Main.Name)
	}
	var (
		result *multierror.Error
		types  []*registry.Type
	)
	for _, obj := range f.Main.Children("Component") {
		t, err := convertComponent(obj)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s:%d: %w", filename, obj.Pos.Line, err))
			continue
		}
		registered, err := reg.Register(t)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s:%d: %w", filename, obj.Pos.Line, err))
			continue
		}
		types = append(types, registered)
	}
	return types, result.ErrorOrNil()
}

func convertComponent(obj *Object) (*registry.Type, error) {
	t := &registry.Type{}
	name, ok := stringField(obj, "name")
	if !ok {
		return nil, fmt.Errorf("component without a name")
	}
	t.Name = name
	t.Prototype, _ = stringField(obj, "prototype")
	t.DefaultProperty, _ = stringField(obj, "defaultProperty")
	t.AttachedType, _ = stringField(obj, "attachedType")
	t.SourceURL, _ = stringField(obj, "file")
	if v, ok := obj.Field("isCreatable"); ok {
		creatable, _ := v.Bool()
		t.Uncreatable = !creatable
	}
	t.Singleton = boolField(obj, "isSingleton")
	t.IsComposite = boolField(obj, "isComposite")
	t.ValueSource = boolField(obj, "isValueSource")
	t.Interceptor = boolField(obj, "isInterceptor")
	t.Interface = boolField(obj, "isInterface")
	t.FullyDynamic = boolField(obj, "isFullyDynamic")
	if v, ok := obj.Field("deferredNames"); ok {
		names, ok := v.Strings()
		if !ok {
			return nil, fmt.Errorf("%s: deferredNames must be a list of strings", name)
		}
		t.DeferredNames = names
	}

	exports, err := convertExports(obj)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	t.Exports = exports

	for _, p := range obj.Children("Property") {
		prop, err := convertProperty(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		t.Properties = append(t.Properties, prop)
	}
	for _, s := range obj.Children("Signal") {
		m, err := convertMethod(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		t.Signals = append(t.Signals, m)
	}
	for _, s := range obj.Children("Method") {
		m, err := convertMethod(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		t.Methods = append(t.Methods, m)
	}
	for _, e := range obj.Children("Enum") {
		en, err := convertEnum(e)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		t.Enums = append(t.Enums, en)
	}
	return t, nil
}

// convertExports reads "exports" entries of the form "Module/Name M.m"
// paired with the "exportMetaObjectRevisions" list.
func convertExports(obj *Object) ([]registry.Export, error) {
	v, ok := obj.Field("exports")
	if !ok {
		return nil, nil
	}
	specs, ok := v.Strings()
	if !ok {
		return nil, fmt.Errorf("exports must be a list of strings")
	}
	var revisions []int
	if rv, ok := obj.Field("exportMetaObjectRevisions"); ok {
		if revisions, ok = rv.Ints(); !ok {
			return nil, fmt.Errorf("exportMetaObjectRevisions must be a list of integers")
		}
		if len(revisions) != len(specs) {
			return nil, fmt.Errorf("%d exports but %d revisions", len(specs), len(revisions))
		}
	}
	exports := make([]registry.Export, 0, len(specs))
	for i, spec := range specs {
		e, err := parseExport(spec)
		if err != nil {
			return nil, err
		}
		if revisions != nil {
			e.Revision = revisions[i]
		}
		exports = append(exports, e)
	}
	return exports, nil
}

func parseExport(spec string) (registry.Export, error) {
	qualified, version, ok := strings.Cut(spec, " ")
	if !ok {
		return registry.Export{}, fmt.Errorf("export %q has no version", spec)
	}
	slash := strings.LastIndex(qualified, "/")
	if slash < 0 {
		return registry.Export{}, fmt.Errorf("export %q has no module", spec)
	}
	majorText, minorText, ok := strings.Cut(version, ".")
	if !ok {
		return registry.Export{}, fmt.Errorf("export %q: invalid version", spec)
	}
	major, err := strconv.Atoi(majorText)
	if err != nil {
		return registry.Export{}, fmt.Errorf("export %q: invalid major version", spec)
	}
	minor, err := strconv.Atoi(minorText)
	if err != nil {
		return registry.Export{}, fmt.Errorf("export %q: invalid minor version", spec)
	}
	return registry.Export{
		Module: qualified[:slash],
		Name:   qualified[slash+1:],
		Major:  major,
		Minor:  minor,
	}, nil
}

func convertProperty(obj *Object) (registry.Property, error) {
	name, ok := stringField(obj, "name")
	if !ok {
		return registry.Property{}, fmt.Errorf("property without a name")
	}
	typ, ok := stringField(obj, "type")
	if !ok {
		return registry.Property{}, fmt.Errorf("property %s has no type", name)
	}
	return registry.Property{
		Name:       name,
		Type:       typ,
		IsList:     boolField(obj, "isList"),
		IsPointer:  boolField(obj, "isPointer"),
		ReadOnly:   boolField(obj, "isReadonly"),
		Final:      boolField(obj, "isFinal"),
		Resettable: boolField(obj, "isResettable"),
		Revision:   intField(obj, "revision"),
	}, nil
}

func convertMethod(obj *Object) (registry.Method, error) {
	name, ok := stringField(obj, "name")
	if !ok {
		return registry.Method{}, fmt.Errorf("%s without a name", strings.ToLower(obj.Name))
	}
	m := registry.Method{Name: name, Revision: intField(obj, "revision")}
	for _, p := range obj.Children("Parameter") {
		pname, _ := stringField(p, "name")
		ptype, _ := stringField(p, "type")
		m.Params = append(m.Params, registry.Parameter{Name: pname, Type: ptype})
	}
	return m, nil
}

func convertEnum(obj *Object) (registry.Enum, error) {
	name, ok := stringField(obj, "name")
	if !ok {
		return registry.Enum{}, fmt.Errorf("enum without a name")
	}
	e := registry.Enum{Name: name, IsFlag: boolField(obj, "isFlag"), Values: map[string]int{}}
	v, ok := obj.Field("values")
	if !ok || v.Map == nil {
		return e, nil
	}
	for _, entry := range v.Map.Entries {
		n, ok := entry.Value.Int()
		if !ok {
			return registry.Enum{}, fmt.Errorf("enum %s: value of %s is not an integer", name, entry.Name)
		}
		e.Values[entry.Name] = n
	}
	return e, nil
}

func stringField(obj *Object, name string) (string, bool) {
	v, ok := obj.Field(name)
	if !ok {
		return "", false
	}
	return v.Str()
}

func boolField(obj *Object, name string) bool {
	v, ok := obj.Field(name)
	if !ok {
		return false
	}
	b, _ := v.Bool()
	return b
}

func intField(obj *Object, name string) int {
	v, ok := obj.Field(name)
	if !ok {
		return 0
	}
	n, _ := v.Int()
	return n
}
