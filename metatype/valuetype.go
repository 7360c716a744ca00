package metatype

// SubProperty is one property of a value type, such as "x" of a point.
type SubProperty struct {
	Name     string
	Type     TypeID
	ReadOnly bool
	// Enum names the value type enumeration the property holds, if any.
	Enum string
}

// ValueType describes a builtin value type whose sub-properties can be
// grouped ("font.bold: true") or aliased ("property alias x: r.pos.x").
type ValueType struct {
	Name string
	Type TypeID
	// Properties in index order. Alias sub-indices refer into this slice.
	Properties []SubProperty
	Enums      map[string]map[string]int
}

// Property returns the index of the named sub-property, or -1.
func (v *ValueType) Property(name string) int {
	for i, p := range v.Properties {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func reals(names ...string) []SubProperty {
	props := make([]SubProperty, len(names))
	for i, n := range names {
		props[i] = SubProperty{Name: n, Type: Double}
	}
	return props
}

var valueTypes = map[TypeID]*ValueType{}

func register(vt *ValueType) {
	valueTypes[vt.Type] = vt
}

func init() {
	register(&ValueType{Name: "QPointF", Type: QPointF, Properties: reals("x", "y")})
	register(&ValueType{Name: "QPoint", Type: QPoint, Properties: []SubProperty{{Name: "x", Type: Int}, {Name: "y", Type: Int}}})
	register(&ValueType{Name: "QSizeF", Type: QSizeF, Properties: reals("width", "height")})
	register(&ValueType{Name: "QSize", Type: QSize, Properties: []SubProperty{{Name: "width", Type: Int}, {Name: "height", Type: Int}}})
	rect := reals("x", "y", "width", "height")
	for _, edge := range []string{"left", "right", "top", "bottom"} {
		rect = append(rect, SubProperty{Name: edge, Type: Double, ReadOnly: true})
	}
	register(&ValueType{Name: "QRectF", Type: QRectF, Properties: rect})
	register(&ValueType{Name: "QRect", Type: QRect, Properties: []SubProperty{
		{Name: "x", Type: Int}, {Name: "y", Type: Int},
		{Name: "width", Type: Int}, {Name: "height", Type: Int},
	}})
	register(&ValueType{Name: "QVector2D", Type: QVector2D, Properties: reals("x", "y")})
	register(&ValueType{Name: "QVector3D", Type: QVector3D, Properties: reals("x", "y", "z")})
	register(&ValueType{Name: "QVector4D", Type: QVector4D, Properties: reals("x", "y", "z", "w")})
	register(&ValueType{Name: "QQuaternion", Type: QQuaternion, Properties: reals("scalar", "x", "y", "z")})
	register(&ValueType{Name: "QMatrix4x4", Type: QMatrix4x4, Properties: reals(
		"m11", "m12", "m13", "m14", "m21", "m22", "m23", "m24",
		"m31", "m32", "m33", "m34", "m41", "m42", "m43", "m44")})
	register(&ValueType{Name: "QColor", Type: QColor, Properties: reals(
		"r", "g", "b", "a", "hsvHue", "hsvSaturation", "hsvValue",
		"hslHue", "hslSaturation", "hslLightness")})
	register(&ValueType{
		Name: "QFont",
		Type: QFont,
		Properties: []SubProperty{
			{Name: "family", Type: QString},
			{Name: "bold", Type: Bool},
			{Name: "weight", Type: Int, Enum: "Weight"},
			{Name: "italic", Type: Bool},
			{Name: "underline", Type: Bool},
			{Name: "overline", Type: Bool},
			{Name: "strikeout", Type: Bool},
			{Name: "pointSize", Type: Double},
			{Name: "pixelSize", Type: Int},
			{Name: "capitalization", Type: Int, Enum: "Capitalization"},
			{Name: "letterSpacing", Type: Double},
			{Name: "wordSpacing", Type: Double},
		},
		Enums: map[string]map[string]int{
			"Weight": {
				"Light": 25, "Normal": 50, "DemiBold": 63, "Bold": 75, "Black": 87,
			},
			"Capitalization": {
				"MixedCase": 0, "AllUppercase": 1, "AllLowercase": 2,
				"SmallCaps": 3, "Capitalize": 4,
			},
		},
	})
}

// IsValueType reports whether t is a builtin value type with
// sub-properties.
func IsValueType(t TypeID) bool {
	_, ok := valueTypes[t]
	return ok
}

// ValueTypeOf returns the value type metadata for t, or nil.
func ValueTypeOf(t TypeID) *ValueType {
	return valueTypes[t]
}
