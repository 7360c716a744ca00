package stringconv

import (
	"image/color"
	"testing"
	"time"

	"github.com/deepnoodle-ai/qmlc/metatype"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		input string
		want  color.RGBA
	}{
		{"#f00", color.RGBA{R: 0xff, A: 0xff}},
		{"#00ff80", color.RGBA{G: 0xff, B: 0x80, A: 0xff}},
		{"#8000ff00", color.RGBA{A: 0x80, G: 0xff}},
		{"steelblue", color.RGBA{R: 0x46, G: 0x82, B: 0xb4, A: 0xff}},
		{"Red", color.RGBA{R: 0xff, A: 0xff}},
		{"transparent", color.RGBA{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := ParseColor(tt.input)
			require.Nil(t, err)
			require.Equal(t, tt.want, c)
		})
	}
	for _, bad := range []string{"#12", "#ggg", "notacolor", "#1234567"} {
		_, err := ParseColor(bad)
		require.Error(t, err, bad)
	}
}

func TestParseDateTime(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.Nil(t, err)
	require.Equal(t, time.February, d.Month())

	tm, err := ParseTime("14:30:05")
	require.Nil(t, err)
	require.Equal(t, 30, tm.Minute())
	_, err = ParseTime("14:30")
	require.Nil(t, err)
	_, err = ParseTime("2pm")
	require.Error(t, err)

	dt, err := ParseDateTime("2024-02-29T14:30:00")
	require.Nil(t, err)
	require.Equal(t, 14, dt.Hour())
	_, err = ParseDateTime("2024-02-29T14:30:00Z")
	require.Nil(t, err)
	_, err = ParseDateTime("yesterday")
	require.Error(t, err)
}

func TestGeometry(t *testing.T) {
	p, err := ParsePoint("1.5, 2")
	require.Nil(t, err)
	require.Equal(t, Point{1.5, 2}, p)

	s, err := ParseSize("100x50")
	require.Nil(t, err)
	require.Equal(t, Size{100, 50}, s)

	r, err := ParseRect("10,20,30x40")
	require.Nil(t, err)
	require.Equal(t, Rect{10, 20, 30, 40}, r)

	v, err := ParseVector("1,2,3", 3)
	require.Nil(t, err)
	require.Equal(t, []float64{1, 2, 3}, v)

	for _, bad := range []string{"1", "1,2,3", "a,b"} {
		_, err := ParsePoint(bad)
		require.Error(t, err, bad)
	}
	_, err = ParseRect("10,20")
	require.Error(t, err)
	_, err = ParseVector("1,2", 3)
	require.Error(t, err)
}

func TestFromString(t *testing.T) {
	tests := []struct {
		typ   metatype.TypeID
		input string
		ok    bool
	}{
		{metatype.QColor, "red", true},
		{metatype.QColor, "nope", false},
		{metatype.QDate, "2020-01-01", true},
		{metatype.QPointF, "1,2", true},
		{metatype.QSizeF, "1,2", false},
		{metatype.QRectF, "0,0,1x1", true},
		{metatype.QVector2D, "1,2", true},
		{metatype.QVector4D, "1,2,3", false},
		{metatype.QQuaternion, "1,0,0,0", true},
		{metatype.QString, "anything", false},
	}
	for _, tt := range tests {
		_, ok := FromString(tt.typ, tt.input)
		require.Equal(t, tt.ok, ok, "%s %q", tt.typ, tt.input)
	}
	require.True(t, IsConvertible(metatype.QTime))
	require.False(t, IsConvertible(metatype.Int))
}
