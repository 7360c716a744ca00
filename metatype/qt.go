package metatype

// qtEnums holds the enumerators of the builtin "Qt" namespace that bindings
// may reference as "Qt.Value".
var qtEnums = map[string]int{
	// MouseButton
	"NoButton":      0x0,
	"LeftButton":    0x1,
	"RightButton":   0x2,
	"MiddleButton":  0x4,
	"BackButton":    0x8,
	"ForwardButton": 0x10,
	"AllButtons":    0x07ffffff,

	// AlignmentFlag
	"AlignLeft":     0x0001,
	"AlignRight":    0x0002,
	"AlignHCenter":  0x0004,
	"AlignJustify":  0x0008,
	"AlignTop":      0x0020,
	"AlignBottom":   0x0040,
	"AlignVCenter":  0x0080,
	"AlignBaseline": 0x0100,
	"AlignCenter":   0x0084,

	// Orientation
	"Horizontal": 0x1,
	"Vertical":   0x2,

	// KeyboardModifier
	"NoModifier":      0x00000000,
	"ShiftModifier":   0x02000000,
	"ControlModifier": 0x04000000,
	"AltModifier":     0x08000000,
	"MetaModifier":    0x10000000,

	// Key
	"Key_Escape":    0x01000000,
	"Key_Tab":       0x01000001,
	"Key_Backspace": 0x01000003,
	"Key_Return":    0x01000004,
	"Key_Enter":     0x01000005,
	"Key_Delete":    0x01000007,
	"Key_Left":      0x01000012,
	"Key_Up":        0x01000013,
	"Key_Right":     0x01000014,
	"Key_Down":      0x01000015,
	"Key_Space":     0x20,

	// TextElideMode
	"ElideLeft":   0,
	"ElideRight":  1,
	"ElideMiddle": 2,
	"ElideNone":   3,

	// FocusReason
	"MouseFocusReason":        0,
	"TabFocusReason":          1,
	"ActiveWindowFocusReason": 3,
	"OtherFocusReason":        7,

	// CursorShape
	"ArrowCursor":        0,
	"PointingHandCursor": 13,
	"IBeamCursor":        4,

	// GlobalColor
	"transparent": 19,
	"white":       3,
	"black":       2,
}

// QtEnumValue returns the value of a builtin Qt namespace enumerator.
func QtEnumValue(name string) (int, bool) {
	v, ok := qtEnums[name]
	return v, ok
}
