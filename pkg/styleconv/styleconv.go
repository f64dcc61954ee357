// Package styleconv translates a domdoc.StylePropertyList into the
// LayoutInput the layouter consumes (spec §4.2). It never touches the
// document arena itself — it is a pure, per-node function — so the
// layouter can call it without holding any document lock.
package styleconv

import (
	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
)

// Edge is a four-sided length-or-percent-or-auto quantity: margins,
// padding, border widths, border radii, and inset offsets all share
// this shape.
type Edge struct {
	Top, Right, Bottom, Left EdgeValue
}

// EdgeValueKind tags which field of an EdgeValue is meaningful.
type EdgeValueKind int

const (
	EdgeUnspecified EdgeValueKind = iota
	EdgeAuto
	EdgePixels
	EdgePercent
)

type EdgeValue struct {
	Kind  EdgeValueKind
	Value float64 // px or percent magnitude, meaningless for Auto/Unspecified
}

// Size is a width/height-like input: unspecified, auto, px, or percent.
type Size = EdgeValue

const (
	SizeUnspecified = EdgeUnspecified
	SizeAuto        = EdgeAuto
	SizePixels      = EdgePixels
	SizePercent     = EdgePercent
)

// FlexDirection/FlexWrap/Justify/AlignItems/BoxSizing/Overflow/Position
// mirror the keyword space the layouter needs, already resolved out of
// the raw keyword strings domdoc leaves untouched.
type FlexDirection int

const (
	FlexRow FlexDirection = iota
	FlexRowReverse
	FlexColumn
	FlexColumnReverse
)

type FlexWrap int

const (
	NoWrap FlexWrap = iota
	Wrap
	WrapReverse
)

type Justify int

const (
	JustifyStart Justify = iota
	JustifyEnd
	JustifyCenter
	JustifySpaceBetween
	JustifySpaceAround
)

type AlignItems int

const (
	AlignStretch AlignItems = iota
	AlignStart
	AlignEnd
	AlignCenter
)

type BoxSizing int

const (
	BoxSizingContentBox BoxSizing = iota
	BoxSizingBorderBox
)

type Overflow int

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowScroll
	OverflowAuto
)

type Position int

const (
	PositionStatic Position = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
)

type BorderStyle int

const (
	BorderNone BorderStyle = iota
	BorderSolid
	BorderDashed
	BorderDotted
	BorderDouble
	BorderGroove
	BorderRidge
	BorderInset
	BorderOutset
	BorderHidden
)

// LayoutInput is everything the layouter needs from one element's style,
// already translated out of the raw StylePropertyList (§4.2).
type LayoutInput struct {
	Display  domdoc.Display
	Position Position

	Margin  Edge
	Padding Edge

	BorderWidth Edge
	BorderStyle [4]BorderStyle // top, right, bottom, left
	BorderColor [4]domdoc.Color
	BorderRadiusTopLeft, BorderRadiusTopRight     EdgeValue
	BorderRadiusBottomRight, BorderRadiusBottomLeft EdgeValue

	Width, Height       Size
	MinWidth, MinHeight Size
	MaxWidth, MaxHeight Size

	Inset Edge

	OverflowX, OverflowY Overflow
	BoxSizing            BoxSizing
	AspectRatio          float64 // 0 means unspecified

	FlexDirection FlexDirection
	FlexWrap      FlexWrap
	FlexGrow      float64
	FlexShrink    float64
	FlexBasis     EdgeValue // Auto is the common default

	JustifyContent Justify
	AlignItems     AlignItems
	AlignSelf      *AlignItems // nil means "inherit from parent's align-items"

	Gap float64

	TextAlign domdoc.TextAlign
	TextWrap  domdoc.TextWrap

	Color           domdoc.Color
	BackgroundColor domdoc.Color

	FontFamily string
	FontSize   float64
	FontWeight domdoc.FontWeight
	LineHeight float64 // 0 means "default to font-size"

	ScrollbarWidth float64
}

// Convert builds a LayoutInput from a node's style. style may be nil
// (an element with no declared styles at all), in which case every
// field keeps the engine default.
func Convert(style *domdoc.StylePropertyList) LayoutInput {
	in := LayoutInput{
		Display:         domdoc.DisplayBlock,
		Color:           domdoc.Color{A: 255},
		BackgroundColor: domdoc.Color{}, // transparent
		FontSize:        16,
		FontWeight:      domdoc.FontWeightNormal,
		TextAlign:       domdoc.TextAlignLeft,
		TextWrap:        domdoc.TextWrapWrap,
		FlexGrow:        0,
		FlexShrink:      1,
		FlexBasis:       EdgeValue{Kind: EdgeAuto},
	}

	if style == nil {
		return in
	}

	if v, ok := style.Get(domdoc.PropDisplay); ok && v.Kind == domdoc.KindDisplay {
		in.Display = v.Display
	}
	in.Position = convertPosition(style)

	in.Margin = convertEdge(style, domdoc.PropMarginTop, domdoc.PropMarginRight, domdoc.PropMarginBottom, domdoc.PropMarginLeft)
	in.Padding = convertEdge(style, domdoc.PropPaddingTop, domdoc.PropPaddingRight, domdoc.PropPaddingBottom, domdoc.PropPaddingLeft)
	in.BorderWidth = convertEdge(style, domdoc.PropBorderTopWidth, domdoc.PropBorderRightWidth, domdoc.PropBorderBottomWidth, domdoc.PropBorderLeftWidth)
	in.Inset = convertEdge(style, domdoc.PropInsetTop, domdoc.PropInsetRight, domdoc.PropInsetBottom, domdoc.PropInsetLeft)

	styleProps := [4]domdoc.Property{domdoc.PropBorderTopStyle, domdoc.PropBorderRightStyle, domdoc.PropBorderBottomStyle, domdoc.PropBorderLeftStyle}
	colorProps := [4]domdoc.Property{domdoc.PropBorderTopColor, domdoc.PropBorderRightColor, domdoc.PropBorderBottomColor, domdoc.PropBorderLeftColor}
	for i := 0; i < 4; i++ {
		in.BorderStyle[i] = convertBorderStyle(style, styleProps[i])
		in.BorderColor[i] = convertColor(style, colorProps[i], domdoc.Color{})
	}

	in.BorderRadiusTopLeft = convertSizeOrZero(style, domdoc.PropBorderTopLeftRad)
	in.BorderRadiusTopRight = convertSizeOrZero(style, domdoc.PropBorderTopRightRad)
	in.BorderRadiusBottomRight = convertSizeOrZero(style, domdoc.PropBorderBotRightRad)
	in.BorderRadiusBottomLeft = convertSizeOrZero(style, domdoc.PropBorderBotLeftRad)

	in.Width = convertSize(style, domdoc.PropWidth)
	in.Height = convertSize(style, domdoc.PropHeight)
	in.MinWidth = convertSize(style, domdoc.PropMinWidth)
	in.MinHeight = convertSize(style, domdoc.PropMinHeight)
	in.MaxWidth = convertSize(style, domdoc.PropMaxWidth)
	in.MaxHeight = convertSize(style, domdoc.PropMaxHeight)

	in.OverflowX = convertOverflow(style, domdoc.PropOverflowX)
	in.OverflowY = convertOverflow(style, domdoc.PropOverflowY)
	in.BoxSizing = convertBoxSizing(style)
	in.AspectRatio = convertAspectRatio(style)

	in.FlexDirection = convertFlexDirection(style)
	in.FlexWrap = convertFlexWrap(style)
	if v, ok := style.Get(domdoc.PropFlexGrow); ok && v.Kind == domdoc.KindNumber {
		in.FlexGrow = v.Number
	}
	if v, ok := style.Get(domdoc.PropFlexShrink); ok && v.Kind == domdoc.KindNumber {
		in.FlexShrink = v.Number
	}
	if v, ok := style.Get(domdoc.PropFlexBasis); ok {
		in.FlexBasis = toEdgeValue(v)
	}

	in.JustifyContent = convertJustify(style)
	in.AlignItems = convertAlignItems(style, domdoc.PropAlignItems, AlignStretch)
	if v, ok := style.Get(domdoc.PropAlignSelf); ok && v.Kind == domdoc.KindKeyword && v.Keyword != "auto" {
		a := convertAlignItems(style, domdoc.PropAlignSelf, AlignStretch)
		in.AlignSelf = &a
	}

	if v, ok := style.Get(domdoc.PropGap); ok {
		in.Gap = lengthOrZero(v)
	}

	if v, ok := style.Get(domdoc.PropTextAlign); ok && v.Kind == domdoc.KindTextAlign {
		in.TextAlign = v.TextAlign
	}
	if v, ok := style.Get(domdoc.PropTextWrap); ok && v.Kind == domdoc.KindTextWrap {
		in.TextWrap = v.TextWrap
	}

	in.Color = convertColor(style, domdoc.PropColor, domdoc.Color{A: 255})
	in.BackgroundColor = convertColor(style, domdoc.PropBackgroundColor, domdoc.Color{})

	if v, ok := style.Get(domdoc.PropFontFamily); ok && v.Kind == domdoc.KindKeyword {
		in.FontFamily = v.Keyword
	}
	if v, ok := style.Get(domdoc.PropFontSize); ok {
		if v.Kind == domdoc.KindLength && v.Unit == domdoc.UnitPx {
			in.FontSize = v.Length
		}
		// Percent/other units for font-size are resolved upstream; an
		// em/rem producer is expected to have resolved to px already
		// (§4.2: "em/rem are an error for font sizes at this stage").
	}
	if v, ok := style.Get(domdoc.PropFontWeight); ok && v.Kind == domdoc.KindFontWeight {
		in.FontWeight = v.FontWeight
	}
	if v, ok := style.Get(domdoc.PropLineHeight); ok {
		if v.Kind == domdoc.KindNumber {
			in.LineHeight = v.Number * in.FontSize
		} else {
			in.LineHeight = lengthOrZero(v)
		}
	}

	if v, ok := style.Get(domdoc.PropScrollbarWidth); ok {
		in.ScrollbarWidth = lengthOrZero(v)
	}

	return in
}

func convertEdge(style *domdoc.StylePropertyList, top, right, bottom, left domdoc.Property) Edge {
	return Edge{
		Top:    convertSize(style, top),
		Right:  convertSize(style, right),
		Bottom: convertSize(style, bottom),
		Left:   convertSize(style, left),
	}
}

func convertSize(style *domdoc.StylePropertyList, p domdoc.Property) Size {
	v, ok := style.Get(p)
	if !ok {
		return EdgeValue{Kind: EdgeUnspecified}
	}
	return toEdgeValue(v)
}

func convertSizeOrZero(style *domdoc.StylePropertyList, p domdoc.Property) EdgeValue {
	v, ok := style.Get(p)
	if !ok {
		return EdgeValue{Kind: EdgePixels, Value: 0}
	}
	return toEdgeValue(v)
}

func toEdgeValue(v domdoc.StyleValue) EdgeValue {
	switch {
	case v.IsAuto():
		return EdgeValue{Kind: EdgeAuto}
	case v.Kind == domdoc.KindLength && v.Unit == domdoc.UnitPx:
		return EdgeValue{Kind: EdgePixels, Value: v.Length}
	case v.Kind == domdoc.KindLength && v.Unit == domdoc.UnitPercent:
		return EdgeValue{Kind: EdgePercent, Value: v.Length}
	case v.Kind == domdoc.KindNumber:
		return EdgeValue{Kind: EdgePixels, Value: v.Number}
	default:
		// Unknown keyword: falls back to the engine default (§4.2).
		return EdgeValue{Kind: EdgeUnspecified}
	}
}

func lengthOrZero(v domdoc.StyleValue) float64 {
	switch v.Kind {
	case domdoc.KindLength:
		return v.Length
	case domdoc.KindNumber:
		return v.Number
	default:
		return 0
	}
}

func convertColor(style *domdoc.StylePropertyList, p domdoc.Property, fallback domdoc.Color) domdoc.Color {
	v, ok := style.Get(p)
	if !ok || v.Kind != domdoc.KindColor {
		return fallback
	}
	return v.Color
}

func convertPosition(style *domdoc.StylePropertyList) Position {
	v, ok := style.Get(domdoc.PropPosition)
	if !ok || v.Kind != domdoc.KindKeyword {
		return PositionStatic
	}
	switch v.Keyword {
	case "relative":
		return PositionRelative
	case "absolute":
		return PositionAbsolute
	case "fixed":
		return PositionFixed
	default:
		return PositionStatic
	}
}

func convertBorderStyle(style *domdoc.StylePropertyList, p domdoc.Property) BorderStyle {
	v, ok := style.Get(p)
	if !ok || v.Kind != domdoc.KindKeyword {
		return BorderNone
	}
	switch v.Keyword {
	case "solid":
		return BorderSolid
	case "dashed":
		return BorderDashed
	case "dotted":
		return BorderDotted
	case "double":
		return BorderDouble
	case "groove":
		return BorderGroove
	case "ridge":
		return BorderRidge
	case "inset":
		return BorderInset
	case "outset":
		return BorderOutset
	case "hidden":
		return BorderHidden
	default:
		return BorderNone
	}
}

func convertOverflow(style *domdoc.StylePropertyList, p domdoc.Property) Overflow {
	v, ok := style.Get(p)
	if !ok || v.Kind != domdoc.KindKeyword {
		return OverflowVisible
	}
	switch v.Keyword {
	case "hidden":
		return OverflowHidden
	case "scroll":
		return OverflowScroll
	case "auto":
		return OverflowAuto
	default:
		return OverflowVisible
	}
}

func convertBoxSizing(style *domdoc.StylePropertyList) BoxSizing {
	v, ok := style.Get(domdoc.PropBoxSizing)
	if !ok || v.Kind != domdoc.KindKeyword {
		return BoxSizingContentBox
	}
	if v.Keyword == "border-box" {
		return BoxSizingBorderBox
	}
	return BoxSizingContentBox
}

func convertAspectRatio(style *domdoc.StylePropertyList) float64 {
	v, ok := style.Get(domdoc.PropAspectRatio)
	if !ok {
		return 0
	}
	switch v.Kind {
	case domdoc.KindNumber:
		return v.Number
	case domdoc.KindLength:
		return v.Length
	default:
		return 0
	}
}

func convertFlexDirection(style *domdoc.StylePropertyList) FlexDirection {
	v, ok := style.Get(domdoc.PropFlexDirection)
	if !ok || v.Kind != domdoc.KindKeyword {
		return FlexRow
	}
	switch v.Keyword {
	case "row-reverse":
		return FlexRowReverse
	case "column":
		return FlexColumn
	case "column-reverse":
		return FlexColumnReverse
	default:
		return FlexRow
	}
}

func convertFlexWrap(style *domdoc.StylePropertyList) FlexWrap {
	v, ok := style.Get(domdoc.PropFlexWrap)
	if !ok || v.Kind != domdoc.KindKeyword {
		return NoWrap
	}
	switch v.Keyword {
	case "wrap":
		return Wrap
	case "wrap-reverse":
		return WrapReverse
	default:
		return NoWrap
	}
}

func convertJustify(style *domdoc.StylePropertyList) Justify {
	v, ok := style.Get(domdoc.PropJustifyContent)
	if !ok || v.Kind != domdoc.KindKeyword {
		return JustifyStart
	}
	switch v.Keyword {
	case "flex-end", "end":
		return JustifyEnd
	case "center":
		return JustifyCenter
	case "space-between":
		return JustifySpaceBetween
	case "space-around":
		return JustifySpaceAround
	default:
		return JustifyStart
	}
}

func convertAlignItems(style *domdoc.StylePropertyList, p domdoc.Property, fallback AlignItems) AlignItems {
	v, ok := style.Get(p)
	if !ok || v.Kind != domdoc.KindKeyword {
		return fallback
	}
	switch v.Keyword {
	case "flex-start", "start":
		return AlignStart
	case "flex-end", "end":
		return AlignEnd
	case "center":
		return AlignCenter
	case "stretch":
		return AlignStretch
	default:
		return fallback
	}
}
