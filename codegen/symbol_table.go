package codegen

import (
	"errors"
	"fmt"
	"math"
)

// Scope tells where a resolved symbol lives relative to the code that
// references it.
type Scope uint8

const (
	// Local symbols live in the frame of the referencing function.
	Local Scope = iota
	// Free symbols belong to an enclosing function and are captured in a
	// cell when the closure is created.
	Free
)

// Symbol is a named local variable or parameter.
type Symbol struct {
	name       string
	index      uint16
	value      any
	isConstant bool
}

// Name returns the symbol name.
func (s *Symbol) Name() string { return s.name }

// Index returns the local slot of the symbol.
func (s *Symbol) Index() uint16 { return s.index }

// Value returns the value associated with the symbol, if any.
func (s *Symbol) Value() any { return s.value }

// IsConstant reports whether the symbol was declared with "const".
func (s *Symbol) IsConstant() bool { return s.isConstant }

// Resolution is the result of looking up a name in a symbol table.
type Resolution struct {
	symbol    *Symbol
	scope     Scope
	depth     int
	freeIndex int
}

// Symbol returns the resolved symbol.
func (r *Resolution) Symbol() *Symbol { return r.symbol }

// Scope returns where the symbol lives.
func (r *Resolution) Scope() Scope { return r.scope }

// Depth returns how many functions up the symbol is defined.
func (r *Resolution) Depth() int { return r.depth }

// FreeIndex returns the slot of a free symbol in the closure's cells.
func (r *Resolution) FreeIndex() int { return r.freeIndex }

// SymbolTable tracks which symbols are defined and referenced in a given scope.
// These tables may have a parent table, which indicates that they represent a
// nested scope. If "isBlock" is set to true, this table represents a block
// within a function (like inside an if { ... }), rather than a function itself.
// The root table stands for the QML scope and never holds symbols: names
// that no function declares are resolved against ids and properties.
type SymbolTable struct {
	id            string
	parent        *SymbolTable
	children      []*SymbolTable
	symbolsByName map[string]*Symbol
	freeByName    map[string]*Resolution
	symbols       []*Symbol
	free          []*Resolution
	isBlock       bool
}

// NewSymbolTable returns a new root symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		id:            "root",
		symbolsByName: map[string]*Symbol{},
		freeByName:    map[string]*Resolution{},
	}
}

// NewChild creates a new symbol table for a function nested in t.
func (t *SymbolTable) NewChild() *SymbolTable {
	child := &SymbolTable{
		id:            fmt.Sprintf("%s.%d", t.id, len(t.children)),
		parent:        t,
		symbolsByName: map[string]*Symbol{},
		freeByName:    map[string]*Resolution{},
	}
	t.children = append(t.children, child)
	return child
}

// NewBlock creates a new symbol table that is a child of the current table,
// and represents a block within a function. Blocks allocate symbol indexes
// from the enclosing function's symbol table.
func (t *SymbolTable) NewBlock() *SymbolTable {
	child := t.NewChild()
	child.isBlock = true
	return child
}

// ID returns the dotted path of the table from the root.
func (t *SymbolTable) ID() string {
	return t.id
}

func (t *SymbolTable) claimIndex(s *Symbol) error {
	if t.isBlock {
		return t.parent.claimIndex(s)
	}
	if t.parent == nil {
		return errors.New("symbols cannot be declared in the QML scope")
	}
	idx := len(t.symbols)
	if idx >= math.MaxUint16 {
		return errors.New("too many local variables")
	}
	s.index = uint16(idx)
	t.symbols = append(t.symbols, s)
	return nil
}

// function returns the table of the enclosing function, or nil at the root.
func (t *SymbolTable) function() *SymbolTable {
	for cur := t; cur != nil; cur = cur.parent {
		if !cur.isBlock {
			if cur.parent == nil {
				return nil
			}
			return cur
		}
	}
	return nil
}

// FunctionDepth returns the number of functions enclosing t.
func (t *SymbolTable) FunctionDepth() int {
	if t.parent == nil {
		return 0
	}
	if t.isBlock {
		return t.parent.FunctionDepth()
	}
	return 1 + t.parent.FunctionDepth()
}

// InsertVariable adds a new variable into this symbol table, with an
// optional value. The symbol will be assigned the next available index.
func (t *SymbolTable) InsertVariable(name string, value ...any) (*Symbol, error) {
	if _, ok := t.symbolsByName[name]; ok {
		return nil, fmt.Errorf("identifier %q has already been declared", name)
	}
	var obj any
	switch len(value) {
	case 0:
	case 1:
		obj = value[0]
	default:
		return nil, errors.New("expected at most one value")
	}
	s := &Symbol{name: name, value: obj}
	if err := t.claimIndex(s); err != nil {
		return nil, err
	}
	t.symbolsByName[name] = s
	return s, nil
}

// InsertConstant adds a new constant into this symbol table.
func (t *SymbolTable) InsertConstant(name string, value ...any) (*Symbol, error) {
	sym, err := t.InsertVariable(name, value...)
	if err != nil {
		return nil, err
	}
	sym.isConstant = true
	return sym, nil
}

// IsDefined returns true if the specified symbol is defined in this table.
// Does not check any parent tables.
func (t *SymbolTable) IsDefined(name string) bool {
	_, ok := t.symbolsByName[name]
	return ok
}

// Get returns the symbol with the specified name and a boolean indicating
// whether the symbol was found. Does not check any parent tables.
func (t *SymbolTable) Get(name string) (*Symbol, bool) {
	s, ok := t.symbolsByName[name]
	return s, ok
}

// Resolve the specified symbol in this table or any parent tables, returning
// a Resolution if the symbol is found. The Resolution indicates the symbol's
// relative scope and depth. If the symbol is found to be a "free" variable,
// it will be added to the free map of the enclosing function.
func (t *SymbolTable) Resolve(name string) (*Resolution, bool) {
	if s, ok := t.symbolsByName[name]; ok {
		return &Resolution{symbol: s, scope: Local}, true
	}
	activeFunc := t.function()
	if activeFunc == nil {
		return nil, false
	}
	if rs, ok := activeFunc.freeByName[name]; ok {
		return rs, true
	}
	for ancestor := t.parent; ancestor != nil; ancestor = ancestor.parent {
		sym, ok := ancestor.symbolsByName[name]
		if !ok {
			continue
		}
		if ancestor.function() == activeFunc {
			return &Resolution{symbol: sym, scope: Local}, true
		}
		depth := t.FunctionDepth() - ancestor.FunctionDepth()
		rs := &Resolution{symbol: sym, scope: Free, depth: depth, freeIndex: len(activeFunc.free)}
		activeFunc.freeByName[name] = rs
		activeFunc.free = append(activeFunc.free, rs)
		return rs, true
	}
	return nil, false
}

// Parent returns the parent table of this table, if any.
func (t *SymbolTable) Parent() *SymbolTable {
	return t.parent
}

// Count returns the number of symbols defined in this table.
func (t *SymbolTable) Count() uint16 {
	return uint16(len(t.symbols))
}

// Symbol returns the Symbol located at the specified index.
func (t *SymbolTable) Symbol(index uint16) *Symbol {
	return t.symbols[index]
}

// Names returns the symbol names in slot order.
func (t *SymbolTable) Names() []string {
	names := make([]string, len(t.symbols))
	for i, s := range t.symbols {
		names[i] = s.name
	}
	return names
}

// FreeCount returns the number of free variables defined in this table.
func (t *SymbolTable) FreeCount() uint16 {
	return uint16(len(t.free))
}

// Free returns the free variable Resolution located at the specified index.
func (t *SymbolTable) Free(index uint16) *Resolution {
	return t.free[index]
}
