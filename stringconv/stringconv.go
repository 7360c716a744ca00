// Package stringconv converts the text of string literal bindings into the
// value types a property declares: colors, dates and times, points, sizes,
// rectangles, vectors and quaternions.
package stringconv

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/deepnoodle-ai/qmlc/metatype"
	"golang.org/x/image/colornames"
)

// ParseColor accepts "#RGB", "#RRGGBB", "#AARRGGBB" and SVG color names.
func ParseColor(s string) (color.RGBA, error) {
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		return parseHexColor(hex)
	}
	name := strings.ToLower(s)
	if name == "transparent" {
		return color.RGBA{}, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid color %q", s)
}

func parseHexColor(hex string) (color.RGBA, error) {
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", "#"+hex)
	}
	switch len(hex) {
	case 3:
		r, g, b := uint8(n>>8&0xf), uint8(n>>4&0xf), uint8(n&0xf)
		return color.RGBA{R: r<<4 | r, G: g<<4 | g, B: b<<4 | b, A: 0xff}, nil
	case 6:
		return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
	case 8:
		return color.RGBA{A: uint8(n >> 24), R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid color %q", "#"+hex)
}

// ParseDate accepts ISO 8601 dates, "YYYY-MM-DD".
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

var timeLayouts = []string{"15:04:05.000", "15:04:05", "15:04"}

// ParseTime accepts "HH:MM", "HH:MM:SS" and "HH:MM:SS.zzz".
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDateTime accepts ISO 8601 date and time strings with an optional
// zone.
func ParseDateTime(s string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", s)
}

// Point is an x,y pair.
type Point struct {
	X, Y float64
}

// Size is a width and height.
type Size struct {
	Width, Height float64
}

// Rect is a position and size.
type Rect struct {
	X, Y, Width, Height float64
}

func parseFloats(s, sep string, n int) ([]float64, error) {
	parts := strings.Split(s, sep)
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d components in %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		out[i] = v
	}
	return out, nil
}

// ParsePoint accepts "x,y".
func ParsePoint(s string) (Point, error) {
	v, err := parseFloats(s, ",", 2)
	if err != nil {
		return Point{}, err
	}
	return Point{v[0], v[1]}, nil
}

// ParseSize accepts "wxh".
func ParseSize(s string) (Size, error) {
	v, err := parseFloats(s, "x", 2)
	if err != nil {
		return Size{}, err
	}
	return Size{v[0], v[1]}, nil
}

// ParseRect accepts "x,y,wxh".
func ParseRect(s string) (Rect, error) {
	xy, wh, ok := cutLast(s, ",")
	if !ok {
		return Rect{}, fmt.Errorf("invalid rect %q", s)
	}
	p, err := ParsePoint(xy)
	if err != nil {
		return Rect{}, err
	}
	sz, err := ParseSize(wh)
	if err != nil {
		return Rect{}, err
	}
	return Rect{p.X, p.Y, sz.Width, sz.Height}, nil
}

func cutLast(s, sep string) (string, string, bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+len(sep):], true
}

// ParseVector accepts n comma separated components, as written for
// vector2d, vector3d, vector4d and quaternion ("scalar,x,y,z") values.
func ParseVector(s string, n int) ([]float64, error) {
	return parseFloats(s, ",", n)
}

// FromString converts s to a value of the given builtin type. It reports
// false when the type has no string form or s does not parse.
func FromString(t metatype.TypeID, s string) (any, bool) {
	var (
		v   any
		err error
	)
	switch t {
	case metatype.QColor:
		v, err = ParseColor(s)
	case metatype.QDate:
		v, err = ParseDate(s)
	case metatype.QTime:
		v, err = ParseTime(s)
	case metatype.QDateTime:
		v, err = ParseDateTime(s)
	case metatype.QPoint, metatype.QPointF:
		v, err = ParsePoint(s)
	case metatype.QSize, metatype.QSizeF:
		v, err = ParseSize(s)
	case metatype.QRect, metatype.QRectF:
		v, err = ParseRect(s)
	case metatype.QVector2D:
		v, err = ParseVector(s, 2)
	case metatype.QVector3D:
		v, err = ParseVector(s, 3)
	case metatype.QVector4D, metatype.QQuaternion:
		v, err = ParseVector(s, 4)
	default:
		return nil, false
	}
	return v, err == nil
}

// IsConvertible reports whether values of t can be written as strings.
func IsConvertible(t metatype.TypeID) bool {
	switch t {
	case metatype.QColor, metatype.QDate, metatype.QTime, metatype.QDateTime,
		metatype.QPoint, metatype.QPointF, metatype.QSize, metatype.QSizeF,
		metatype.QRect, metatype.QRectF, metatype.QVector2D, metatype.QVector3D,
		metatype.QVector4D, metatype.QQuaternion:
		return true
	}
	return false
}
