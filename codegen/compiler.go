// Package codegen compiles the scripts of a QML document into bytecode
// functions. Binding expressions, signal handlers and methods are compiled
// against the object they belong to: names resolve to locals first, then
// to ids and properties of the component, and fall back to a lookup by
// name at runtime.
package codegen

import (
	"fmt"
	"math"
	"strings"

	"github.com/deepnoodle-ai/qmlc/ast"
	"github.com/deepnoodle-ai/qmlc/bytecode"
	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/internal/token"
	"github.com/deepnoodle-ai/qmlc/op"
	"github.com/deepnoodle-ai/qmlc/propcache"
)

// maxArgs is the largest argument or parameter count of a call.
const maxArgs = 255

// ObjectScope is what a script of one object can see besides its own
// locals.
type ObjectScope struct {
	// IDs maps the ids of the enclosing component to scope-local ids.
	IDs map[string]int
	// Object is the property cache of the object owning the script.
	Object *propcache.PropertyCache
	// Context is the property cache of the component root.
	Context *propcache.PropertyCache
	// DisableAcceleratedLookups compiles every free name as a runtime
	// lookup.
	DisableAcceleratedLookups bool
}

// Script is one unit of source to compile.
type Script struct {
	// Name of the function. Defaults to the declared name of a function
	// node.
	Name string
	Kind bytecode.Kind
	// Node is an *ast.Func for methods and handlers and an *ast.Program
	// for binding expressions.
	Node     ast.Node
	Source   string
	Location bytecode.SourceLocation
}

// Compiler compiles the scripts of one document into a shared function
// table. It is not safe for concurrent use.
type Compiler struct {
	filename  string
	source    string
	functions []*bytecode.Function
	current   *code
	scope     ObjectScope
}

// New returns a compiler for the document with the given URL and text.
func New(filename, source string) *Compiler {
	return &Compiler{filename: filename, source: source}
}

// FunctionCount returns the number of functions compiled so far,
// closures included.
func (c *Compiler) FunctionCount() int {
	return len(c.functions)
}

// Module returns the function table.
func (c *Compiler) Module() *bytecode.Module {
	return bytecode.NewModule(c.functions)
}

// CompileScript compiles s in the given scope and returns its index in the
// function table. Function expressions nested in s are added after it.
func (c *Compiler) CompileScript(s Script, scope ObjectScope) (int, error) {
	c.scope = scope
	c.current = nil
	switch node := s.Node.(type) {
	case *ast.Func:
		name := s.Name
		if name == "" && node.Name != nil {
			name = node.Name.Name
		}
		return c.compileFunction(name, s.Kind, node, s.Source, s.Location)
	case *ast.Program:
		return c.compileBinding(s, node)
	case nil:
		return 0, fmt.Errorf("codegen: %s has no script", s.Name)
	default:
		return 0, fmt.Errorf("codegen: unexpected script node %T", s.Node)
	}
}

func (c *Compiler) reserve() int {
	c.functions = append(c.functions, nil)
	return len(c.functions) - 1
}

func (c *Compiler) compileBinding(s Script, node *ast.Program) (int, error) {
	idx := c.reserve()
	c.current = newCode(s.Name, s.Source, nil, NewSymbolTable().NewChild())
	count := len(node.Stmts)
	var end token.Position
	for i, stmt := range node.Stmts {
		end = stmt.End()
		if i == count-1 {
			if expr, ok := stmt.(ast.Expr); ok && !isDeclaration(stmt) {
				if err := c.compileExpr(expr); err != nil {
					return 0, err
				}
				c.current.emit(stmt.Pos(), op.ReturnValue)
				return c.finish(idx, s.Name, s.Kind, nil, s.Location), nil
			}
		}
		if err := c.compileStmt(stmt); err != nil {
			return 0, err
		}
	}
	c.current.emit(end, op.Undefined)
	c.current.emit(end, op.ReturnValue)
	return c.finish(idx, s.Name, s.Kind, nil, s.Location), nil
}

func (c *Compiler) compileFunction(name string, kind bytecode.Kind, node *ast.Func, source string, loc bytecode.SourceLocation) (int, error) {
	if len(node.Params) > maxArgs {
		return 0, c.errorf(node.Pos(), "function exceeded parameter limit of %d", maxArgs)
	}
	idx := c.reserve()
	var symbols *SymbolTable
	if c.current == nil {
		symbols = NewSymbolTable().NewChild()
	} else {
		symbols = c.current.symbols.NewChild()
	}
	c.current = newCode(name, source, c.current, symbols)
	for _, p := range node.Params {
		if _, err := symbols.InsertVariable(p.Name); err != nil {
			return 0, c.errorf(p.Pos(), "%s", err)
		}
	}
	if node.Body != nil {
		if err := c.compileStmts(node.Body.Stmts); err != nil {
			return 0, err
		}
	}
	end := node.End()
	c.current.emit(end, op.Undefined)
	c.current.emit(end, op.ReturnValue)
	if loc.IsZero() {
		pos := node.Pos()
		loc = bytecode.SourceLocation{Line: pos.LineNumber(), Column: pos.ColumnNumber()}
	}
	return c.finish(idx, name, kind, node.ParamNames(), loc), nil
}

func (c *Compiler) finish(idx int, name string, kind bytecode.Kind, params []string, loc bytecode.SourceLocation) int {
	c.functions[idx] = bytecode.NewFunction(bytecode.FunctionParams{
		Name:       name,
		Kind:       kind,
		Parameters: params,
		Code:       c.current.build(c.filename),
		Location:   loc,
	})
	return idx
}

func isDeclaration(node ast.Node) bool {
	fn, ok := node.(*ast.Func)
	return ok && fn.Name != nil
}

func (c *Compiler) compileStmts(stmts []ast.Node) error {
	for _, stmt := range stmts {
		if err := c.compileStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileStmt(node ast.Node) error {
	switch node := node.(type) {
	case *ast.Var:
		return c.compileVar(node)
	case *ast.Return:
		return c.compileReturn(node)
	case *ast.Block:
		return c.compileBlock(node)
	case *ast.If:
		return c.compileIf(node)
	case *ast.Func:
		if node.Name != nil {
			return c.compileFuncDecl(node)
		}
		if err := c.compileExpr(node); err != nil {
			return err
		}
		c.current.emit(node.Pos(), op.PopTop)
		return nil
	case ast.Expr:
		if err := c.compileExpr(node); err != nil {
			return err
		}
		c.current.emit(node.Pos(), op.PopTop)
		return nil
	default:
		return c.errorf(node.Pos(), "unsupported statement %s", node)
	}
}

func (c *Compiler) compileVar(node *ast.Var) error {
	if node.Value != nil {
		if err := c.compileExpr(node.Value); err != nil {
			return err
		}
	} else {
		c.current.emit(node.Pos(), op.Undefined)
	}
	insert := c.current.symbols.InsertVariable
	if node.Keyword == "const" {
		insert = c.current.symbols.InsertConstant
	}
	sym, err := insert(node.Name.Name)
	if err != nil {
		return c.errorf(node.Name.Pos(), "%s", err)
	}
	c.current.emit(node.Pos(), op.StoreFast, sym.Index())
	return nil
}

func (c *Compiler) compileReturn(node *ast.Return) error {
	if node.Value == nil {
		c.current.emit(node.Pos(), op.Undefined)
	} else if err := c.compileExpr(node.Value); err != nil {
		return err
	}
	c.current.emit(node.Pos(), op.ReturnValue)
	return nil
}

func (c *Compiler) compileBlock(node *ast.Block) error {
	code := c.current
	code.symbols = code.symbols.NewBlock()
	defer func() {
		code.symbols = code.symbols.parent
	}()
	return c.compileStmts(node.Stmts)
}

func (c *Compiler) compileIf(node *ast.If) error {
	if err := c.compileExpr(node.Cond); err != nil {
		return err
	}
	jumpIfFalse := c.current.emit(node.Pos(), op.PopJumpForwardIfFalse, 0)
	if err := c.compileBlock(node.Consequence); err != nil {
		return err
	}
	if node.Alternative == nil {
		return c.patch(node, jumpIfFalse)
	}
	jumpForward := c.current.emit(node.Pos(), op.JumpForward, 0)
	if err := c.patch(node, jumpIfFalse); err != nil {
		return err
	}
	if err := c.compileStmt(node.Alternative); err != nil {
		return err
	}
	return c.patch(node, jumpForward)
}

func (c *Compiler) patch(node ast.Node, offset int) error {
	if err := c.current.patchJump(offset); err != nil {
		return c.errorf(node.Pos(), "%s", err)
	}
	return nil
}

func (c *Compiler) compileFuncDecl(node *ast.Func) error {
	sym, err := c.current.symbols.InsertConstant(node.Name.Name)
	if err != nil {
		return c.errorf(node.Name.Pos(), "%s", err)
	}
	if err := c.compileClosure(node); err != nil {
		return err
	}
	c.current.emit(node.Pos(), op.StoreFast, sym.Index())
	return nil
}

// compileClosure compiles a nested function and emits the instructions
// that create it, capturing its free variables in cells.
func (c *Compiler) compileClosure(node *ast.Func) error {
	parent := c.current
	var name string
	if node.Name != nil {
		name = node.Name.Name
	}
	idx, err := c.compileFunction(name, bytecode.KindClosure, node, node.String(), bytecode.SourceLocation{})
	if err != nil {
		return err
	}
	symbols := c.current.symbols
	c.current = parent
	freeCount := symbols.FreeCount()
	for i := uint16(0); i < freeCount; i++ {
		res := symbols.Free(i)
		parent.emit(node.Pos(), op.MakeCell, res.symbol.Index(), uint16(res.depth-1))
	}
	if idx > math.MaxUint16 {
		return c.errorf(node.Pos(), "too many functions")
	}
	parent.emit(node.Pos(), op.LoadClosure, uint16(idx), freeCount)
	return nil
}

func (c *Compiler) compileExpr(node ast.Expr) error {
	code := c.current
	switch node := node.(type) {
	case *ast.Ident:
		return c.compileIdent(node)
	case *ast.Int:
		return c.loadConst(node.Pos(), node.Value)
	case *ast.Float:
		return c.loadConst(node.Pos(), node.Value)
	case *ast.String:
		return c.loadConst(node.Pos(), node.Value)
	case *ast.Bool:
		if node.Value {
			code.emit(node.Pos(), op.True)
		} else {
			code.emit(node.Pos(), op.False)
		}
	case *ast.Null:
		code.emit(node.Pos(), op.Null)
	case *ast.Undefined:
		code.emit(node.Pos(), op.Undefined)
	case *ast.Prefix:
		return c.compilePrefix(node)
	case *ast.Infix:
		return c.compileInfix(node)
	case *ast.Ternary:
		return c.compileTernary(node)
	case *ast.Call:
		return c.compileCall(node)
	case *ast.GetAttr:
		if err := c.compileExpr(node.X); err != nil {
			return err
		}
		idx, err := code.addName(node.Attr.Name)
		if err != nil {
			return c.errorf(node.Pos(), "%s", err)
		}
		code.emit(node.Attr.Pos(), op.LoadAttr, idx)
	case *ast.Index:
		if err := c.compileExpr(node.X); err != nil {
			return err
		}
		if err := c.compileExpr(node.Index); err != nil {
			return err
		}
		code.emit(node.Pos(), op.BinarySubscr)
	case *ast.Assign:
		return c.compileAssign(node)
	case *ast.List:
		for _, item := range node.Items {
			if err := c.compileExpr(item); err != nil {
				return err
			}
		}
		code.emit(node.Pos(), op.BuildList, uint16(len(node.Items)))
	case *ast.Map:
		for _, item := range node.Items {
			if err := c.loadConst(node.Pos(), item.Key); err != nil {
				return err
			}
			if err := c.compileExpr(item.Value); err != nil {
				return err
			}
		}
		code.emit(node.Pos(), op.BuildMap, uint16(len(node.Items)))
	case *ast.Func:
		return c.compileClosure(node)
	default:
		return c.errorf(node.Pos(), "unsupported expression %s", node)
	}
	return nil
}

func (c *Compiler) loadConst(pos token.Position, value any) error {
	idx, err := c.current.constant(value)
	if err != nil {
		return c.errorf(pos, "%s", err)
	}
	c.current.emit(pos, op.LoadConst, idx)
	return nil
}

func (c *Compiler) compilePrefix(node *ast.Prefix) error {
	if err := c.compileExpr(node.X); err != nil {
		return err
	}
	switch node.Op {
	case "!":
		c.current.emit(node.Pos(), op.UnaryNot)
	case "-":
		c.current.emit(node.Pos(), op.UnaryNegative)
	case "+":
		c.current.emit(node.Pos(), op.UnaryPlus)
	default:
		return c.errorf(node.Pos(), "unknown operator %q", node.Op)
	}
	return nil
}

var binaryOps = map[string]op.BinaryOpType{
	"+": op.Add,
	"-": op.Subtract,
	"*": op.Multiply,
	"/": op.Divide,
	"%": op.Modulo,
	"&": op.BitwiseAnd,
	"|": op.BitwiseOr,
}

var compareOps = map[string]op.CompareOpType{
	"<":   op.LessThan,
	"<=":  op.LessThanOrEqual,
	"==":  op.Equal,
	"!=":  op.NotEqual,
	">":   op.GreaterThan,
	">=":  op.GreaterThanOrEqual,
	"===": op.StrictEqual,
	"!==": op.StrictNotEqual,
}

func (c *Compiler) compileInfix(node *ast.Infix) error {
	switch node.Op {
	case "&&":
		return c.compileShortCircuit(node, op.PopJumpForwardIfFalse)
	case "||":
		return c.compileShortCircuit(node, op.PopJumpForwardIfTrue)
	}
	if err := c.compileExpr(node.X); err != nil {
		return err
	}
	if err := c.compileExpr(node.Y); err != nil {
		return err
	}
	if bop, ok := binaryOps[node.Op]; ok {
		c.current.emit(node.OpPos, op.BinaryOp, uint16(bop))
		return nil
	}
	if cop, ok := compareOps[node.Op]; ok {
		c.current.emit(node.OpPos, op.CompareOp, uint16(cop))
		return nil
	}
	return c.errorf(node.OpPos, "unknown operator %q", node.Op)
}

// compileShortCircuit leaves the left operand on the stack when it decides
// the result and otherwise replaces it with the right operand.
func (c *Compiler) compileShortCircuit(node *ast.Infix, jump op.Code) error {
	if err := c.compileExpr(node.X); err != nil {
		return err
	}
	c.current.emit(node.OpPos, op.Copy, 0)
	pos := c.current.emit(node.OpPos, jump, 0)
	c.current.emit(node.OpPos, op.PopTop)
	if err := c.compileExpr(node.Y); err != nil {
		return err
	}
	return c.patch(node, pos)
}

func (c *Compiler) compileTernary(node *ast.Ternary) error {
	if err := c.compileExpr(node.Cond); err != nil {
		return err
	}
	jumpIfFalse := c.current.emit(node.Question, op.PopJumpForwardIfFalse, 0)
	if err := c.compileExpr(node.IfTrue); err != nil {
		return err
	}
	jumpForward := c.current.emit(node.Colon, op.JumpForward, 0)
	if err := c.patch(node, jumpIfFalse); err != nil {
		return err
	}
	if err := c.compileExpr(node.IfFalse); err != nil {
		return err
	}
	return c.patch(node, jumpForward)
}

func (c *Compiler) compileCall(node *ast.Call) error {
	if len(node.Args) > maxArgs {
		return c.errorf(node.Pos(), "call exceeded argument limit of %d", maxArgs)
	}
	if err := c.compileExpr(node.Fun); err != nil {
		return err
	}
	for _, arg := range node.Args {
		if err := c.compileExpr(arg); err != nil {
			return err
		}
	}
	c.current.emit(node.Lparen, op.Call, uint16(len(node.Args)))
	return nil
}

func (c *Compiler) compileAssign(node *ast.Assign) error {
	code := c.current
	switch target := node.Target.(type) {
	case *ast.Ident:
		if err := c.compileExpr(node.Value); err != nil {
			return err
		}
		code.emit(node.Pos(), op.Copy, 0)
		return c.compileStore(target)
	case *ast.GetAttr:
		if err := c.compileExpr(node.Value); err != nil {
			return err
		}
		code.emit(node.Pos(), op.Copy, 0)
		if err := c.compileExpr(target.X); err != nil {
			return err
		}
		idx, err := code.addName(target.Attr.Name)
		if err != nil {
			return c.errorf(target.Pos(), "%s", err)
		}
		code.emit(node.Pos(), op.Swap, 1)
		code.emit(target.Attr.Pos(), op.StoreAttr, idx)
	case *ast.Index:
		if err := c.compileExpr(node.Value); err != nil {
			return err
		}
		code.emit(node.Pos(), op.Copy, 0)
		if err := c.compileExpr(target.X); err != nil {
			return err
		}
		if err := c.compileExpr(target.Index); err != nil {
			return err
		}
		code.emit(node.Pos(), op.StoreSubscr)
	default:
		return c.errorf(node.Pos(), "invalid assignment target %s", node.Target)
	}
	return nil
}

// qmlLookup is where a name that no function declares is found.
type qmlLookup uint8

const (
	lookupByName qmlLookup = iota
	lookupIDObject
	lookupScopeProperty
	lookupContextProperty
)

// lookupQmlName resolves a name against the ids of the component, then
// the properties of the scope object, then those of the component root.
// Methods are always looked up by name at runtime.
func (c *Compiler) lookupQmlName(name string) (qmlLookup, int) {
	if c.scope.DisableAcceleratedLookups {
		return lookupByName, 0
	}
	if id, ok := c.scope.IDs[name]; ok {
		return lookupIDObject, id
	}
	for _, candidate := range []struct {
		cache  *propcache.PropertyCache
		lookup qmlLookup
	}{
		{c.scope.Object, lookupScopeProperty},
		{c.scope.Context, lookupContextProperty},
	} {
		if candidate.cache == nil {
			continue
		}
		d, forceName := lookupCompliantProperty(candidate.cache, name)
		if forceName {
			return lookupByName, 0
		}
		if d != nil {
			return candidate.lookup, d.CoreIndex
		}
	}
	return lookupByName, 0
}

func lookupCompliantProperty(cache *propcache.PropertyCache, name string) (*propcache.PropertyData, bool) {
	d := cache.Property(name)
	if m := cache.Method(name); m != nil && (d == nil || m.Level >= d.Level) {
		return nil, true
	}
	if d != nil && !cache.IsAllowedInRevision(d) {
		return nil, false
	}
	return d, false
}

func (c *Compiler) compileIdent(node *ast.Ident) error {
	code := c.current
	if res, ok := code.symbols.Resolve(node.Name); ok {
		if res.scope == Free {
			code.emit(node.Pos(), op.LoadFree, uint16(res.freeIndex))
		} else {
			code.emit(node.Pos(), op.LoadFast, res.symbol.index)
		}
		return nil
	}
	lookup, index := c.lookupQmlName(node.Name)
	switch lookup {
	case lookupIDObject:
		code.emit(node.Pos(), op.LoadIdObject, uint16(index))
	case lookupScopeProperty:
		code.emit(node.Pos(), op.LoadScopeProperty, uint16(index))
	case lookupContextProperty:
		code.emit(node.Pos(), op.LoadContextProperty, uint16(index))
	default:
		idx, err := code.addName(node.Name)
		if err != nil {
			return c.errorf(node.Pos(), "%s", err)
		}
		code.emit(node.Pos(), op.LoadName, idx)
	}
	return nil
}

func (c *Compiler) compileStore(node *ast.Ident) error {
	code := c.current
	if res, ok := code.symbols.Resolve(node.Name); ok {
		if res.symbol.isConstant {
			return c.errorf(node.Pos(), "cannot assign to constant %q", node.Name)
		}
		if res.scope == Free {
			code.emit(node.Pos(), op.StoreFree, uint16(res.freeIndex))
		} else {
			code.emit(node.Pos(), op.StoreFast, res.symbol.index)
		}
		return nil
	}
	lookup, index := c.lookupQmlName(node.Name)
	switch lookup {
	case lookupIDObject:
		return c.errorf(node.Pos(), "Invalid left-hand side in assignment: %q is an id", node.Name)
	case lookupScopeProperty:
		code.emit(node.Pos(), op.StoreScopeProperty, uint16(index))
	case lookupContextProperty:
		code.emit(node.Pos(), op.StoreContextProperty, uint16(index))
	default:
		idx, err := code.addName(node.Name)
		if err != nil {
			return c.errorf(node.Pos(), "%s", err)
		}
		code.emit(node.Pos(), op.StoreName, idx)
	}
	return nil
}

func (c *Compiler) errorf(pos token.Position, format string, args ...any) *errors.CompileError {
	err := errors.Newf(errors.E4005, pos.LineNumber(), pos.ColumnNumber(), format, args...)
	err.Filename = c.filename
	err.SourceLine = c.sourceLine(pos.LineNumber())
	return err
}

func (c *Compiler) sourceLine(n int) string {
	lines := strings.Split(c.source, "\n")
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}
