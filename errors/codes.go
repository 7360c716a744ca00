package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Structural errors
//   - E2xxx: Resolution errors
//   - E3xxx: Type compatibility errors
//   - E4xxx: Signal and script errors
type ErrorCode string

const (
	// Structural errors (E1xxx)
	E1001 ErrorCode = "E1001" // Duplicate id
	E1002 ErrorCode = "E1002" // FINAL property override
	E1003 ErrorCode = "E1003" // Fully dynamic type declares members
	E1004 ErrorCode = "E1004" // Invalid component specification
	E1005 ErrorCode = "E1005" // Duplicate declaration
	E1006 ErrorCode = "E1006" // Invalid property name

	// Resolution errors (E2xxx)
	E2001 ErrorCode = "E2001" // Unknown type
	E2002 ErrorCode = "E2002" // Non-existent attached object
	E2003 ErrorCode = "E2003" // Invalid declared type
	E2004 ErrorCode = "E2004" // Unknown alias id
	E2005 ErrorCode = "E2005" // Invalid alias target
	E2006 ErrorCode = "E2006" // Circular alias reference
	E2007 ErrorCode = "E2007" // Member not available in revision
	E2008 ErrorCode = "E2008" // Non-existent property
	E2009 ErrorCode = "E2009" // Invalid namespace or attached object use
	E2010 ErrorCode = "E2010" // Type not creatable

	// Type compatibility errors (E3xxx)
	E3001 ErrorCode = "E3001" // Invalid literal assignment
	E3002 ErrorCode = "E3002" // Read-only property assignment
	E3003 ErrorCode = "E3003" // Invalid object assignment
	E3004 ErrorCode = "E3004" // Multiple assignment
	E3005 ErrorCode = "E3005" // Invalid grouped property use
	E3006 ErrorCode = "E3006" // Invalid list assignment
	E3007 ErrorCode = "E3007" // Invalid value source or interceptor

	// Signal and script errors (E4xxx)
	E4001 ErrorCode = "E4001" // Syntax error
	E4002 ErrorCode = "E4002" // Invalid signal assignment
	E4003 ErrorCode = "E4003" // Invalid signal parameter
	E4004 ErrorCode = "E4004" // Duplicate signal or method name
	E4005 ErrorCode = "E4005" // Script compile error
	E4006 ErrorCode = "E4006" // Custom parser error
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "duplicate id",
	E1002: "final property override",
	E1003: "fully dynamic type declares members",
	E1004: "invalid component specification",
	E1005: "duplicate declaration",
	E1006: "invalid property name",

	E2001: "unknown type",
	E2002: "non-existent attached object",
	E2003: "invalid declared type",
	E2004: "unknown alias id",
	E2005: "invalid alias target",
	E2006: "circular alias reference",
	E2007: "member not available in revision",
	E2008: "non-existent property",
	E2009: "invalid namespace or attached object use",
	E2010: "type not creatable",

	E3001: "invalid literal assignment",
	E3002: "read-only property assignment",
	E3003: "invalid object assignment",
	E3004: "multiple assignment",
	E3005: "invalid grouped property use",
	E3006: "invalid list assignment",
	E3007: "invalid value source or interceptor",

	E4001: "syntax error",
	E4002: "invalid signal assignment",
	E4003: "invalid signal parameter",
	E4004: "duplicate signal or method name",
	E4005: "script compile error",
	E4006: "custom parser error",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "structural"
	case '2':
		return "resolution"
	case '3':
		return "type"
	case '4':
		return "script"
	default:
		return "unknown"
	}
}
