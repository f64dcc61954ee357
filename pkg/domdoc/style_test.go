package domdoc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
)

func TestParseRawValue_Length(t *testing.T) {
	v := domdoc.ParseRawValue(domdoc.PropWidth, "100px")
	require.Equal(t, domdoc.KindLength, v.Kind)
	require.Equal(t, 100.0, v.Length)
	require.Equal(t, domdoc.UnitPx, v.Unit)
}

func TestParseRawValue_Percent(t *testing.T) {
	v := domdoc.ParseRawValue(domdoc.PropWidth, "50%")
	require.Equal(t, domdoc.KindLength, v.Kind)
	require.Equal(t, 50.0, v.Length)
	require.Equal(t, domdoc.UnitPercent, v.Unit)
}

func TestParseRawValue_Auto(t *testing.T) {
	v := domdoc.ParseRawValue(domdoc.PropMarginLeft, "auto")
	require.True(t, v.IsAuto())
}

func TestParseRawValue_Display(t *testing.T) {
	v := domdoc.ParseRawValue(domdoc.PropDisplay, "flex")
	require.Equal(t, domdoc.KindDisplay, v.Kind)
	require.Equal(t, domdoc.DisplayFlex, v.Display)
}

func TestParseColor_Named(t *testing.T) {
	c, ok := domdoc.ParseColor("red")
	require.True(t, ok)
	require.Equal(t, domdoc.Color{R: 255, A: 255}, c)
}

func TestParseColor_Hex6(t *testing.T) {
	c, ok := domdoc.ParseColor("#336699")
	require.True(t, ok)
	require.Equal(t, uint8(0x33), c.R)
	require.Equal(t, uint8(0x66), c.G)
	require.Equal(t, uint8(0x99), c.B)
	require.Equal(t, uint8(255), c.A)
}

func TestParseColor_Hex3(t *testing.T) {
	c, ok := domdoc.ParseColor("#fff")
	require.True(t, ok)
	require.Equal(t, domdoc.Color{R: 255, G: 255, B: 255, A: 255}, c)
}

func TestParseColor_RGBA(t *testing.T) {
	c, ok := domdoc.ParseColor("rgba(10, 20, 30, 0.5)")
	require.True(t, ok)
	require.Equal(t, uint8(10), c.R)
	require.Equal(t, uint8(127), c.A)
}

func TestStylePropertyList_MissingIsUnspecified(t *testing.T) {
	l := domdoc.NewStylePropertyList()
	_, ok := l.Get(domdoc.PropWidth)
	require.False(t, ok)
}
