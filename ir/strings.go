package ir

// StringTable interns the strings of a document. Index 0 is always the empty
// string, so a zero index doubles as "no name".
type StringTable struct {
	strings []string
	index   map[string]int
}

// NewStringTable returns a table holding only the empty string.
func NewStringTable() *StringTable {
	return &StringTable{
		strings: []string{""},
		index:   map[string]int{"": 0},
	}
}

// Register interns s and returns its index.
func (t *StringTable) Register(s string) int {
	if i, ok := t.index[s]; ok {
		return i
	}
	t.strings = append(t.strings, s)
	t.index[s] = len(t.strings) - 1
	return len(t.strings) - 1
}

// Lookup returns the index of s if it has been registered.
func (t *StringTable) Lookup(s string) (int, bool) {
	i, ok := t.index[s]
	return i, ok
}

// At returns the string with the given index, or "" if out of range.
func (t *StringTable) At(i int) string {
	if i < 0 || i >= len(t.strings) {
		return ""
	}
	return t.strings[i]
}

// Len returns the number of pooled strings.
func (t *StringTable) Len() int {
	return len(t.strings)
}

// Strings returns a copy of the pool contents in index order.
func (t *StringTable) Strings() []string {
	return append([]string(nil), t.strings...)
}
