// Package paint turns a tile's element fragments into an ordered,
// backend-neutral sequence of draw commands (spec §4.6). Painting never
// touches pixels — that's the rasterizer's job.
package paint

import (
	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
	"github.com/gosub-io/poc-pipeline/pkg/layer"
	"github.com/gosub-io/poc-pipeline/pkg/layout"
	"github.com/gosub-io/poc-pipeline/pkg/media"
	"github.com/gosub-io/poc-pipeline/pkg/styleconv"
	"github.com/gosub-io/poc-pipeline/pkg/tile"
)

// Wireframe selects how much of the normal paint output is replaced by
// border-box outlines (§4.6).
type Wireframe int

const (
	WireframeNone Wireframe = iota
	WireframeBoth
	WireframeOnly
)

// BrushKind tags which variant of Brush is populated.
type BrushKind int

const (
	BrushSolid BrushKind = iota
	BrushImage
)

type Brush struct {
	Kind  BrushKind
	Color domdoc.Color // BrushSolid

	MediaId media.Id // BrushImage
	Width   int
	Height  int
}

func SolidBrush(c domdoc.Color) Brush { return Brush{Kind: BrushSolid, Color: c} }

// Border is one edge's stroke description.
type Border struct {
	Width float64
	Style styleconv.BorderStyle
	Brush Brush
}

// Radius is the four corner radii of a Rectangle command.
type Radius struct {
	TopLeft, TopRight, BottomRight, BottomLeft float64
}

// CommandKind tags which variant of Command is populated.
type CommandKind int

const (
	CommandRectangle CommandKind = iota
	CommandText
	CommandImage
	CommandSvg
)

// Command is the tagged-union paint IR (§4.6).
type Command struct {
	Kind CommandKind
	Rect layout.Rect

	// CommandRectangle
	Background *Brush
	BorderTop, BorderRight, BorderBottom, BorderLeft Border
	CornerRadius                                     Radius

	// CommandText
	FontFamily string
	FontSize   float64
	FontWeight domdoc.FontWeight
	LineHeight float64
	Text       string
	Brush      Brush
	Align      domdoc.TextAlign

	// CommandImage / CommandSvg
	MediaId media.Id
}

var wireframeRed = domdoc.Color{R: 255, G: 0, B: 0, A: 255}

// Paint produces the ordered command list for t, reading element state
// from tree and layer ordering from ll. It performs no I/O.
func Paint(t *tile.Tile, tree *layout.LayoutTree, ll *layer.LayerList, mode Wireframe) []Command {
	var cmds []Command
	for _, te := range t.Elements {
		node, ok := tree.Node(te.ElementId)
		if !ok {
			continue
		}
		// Rect is the element's full margin-box in absolute document
		// coordinates, not the fragment clipped to this tile. The
		// rasterizer clips to the tile bounds itself, so a border or
		// image spanning several tiles is painted once per tile against
		// its true edges and reconstructs seamlessly when stitched.
		rect := node.Box.MarginBox()

		if mode == WireframeOnly {
			cmds = append(cmds, wireframeCommand(node.Box.BorderBox))
			continue
		}

		cmds = append(cmds, contentCommand(node, rect))
		if mode == WireframeBoth {
			cmds = append(cmds, wireframeCommand(node.Box.BorderBox))
		}
	}
	return cmds
}

func wireframeCommand(rect layout.Rect) Command {
	return Command{
		Kind: CommandRectangle,
		Rect: rect,
		BorderTop: Border{Width: 1, Style: styleconv.BorderSolid, Brush: SolidBrush(wireframeRed)},
		BorderRight: Border{Width: 1, Style: styleconv.BorderSolid, Brush: SolidBrush(wireframeRed)},
		BorderBottom: Border{Width: 1, Style: styleconv.BorderSolid, Brush: SolidBrush(wireframeRed)},
		BorderLeft: Border{Width: 1, Style: styleconv.BorderSolid, Brush: SolidBrush(wireframeRed)},
	}
}

func contentCommand(node *layout.LayoutElementNode, rect layout.Rect) Command {
	switch node.Context.Kind {
	case layout.ContextText:
		color := node.Input.Color
		if color == (domdoc.Color{}) {
			color = domdoc.Color{A: 255}
		}
		return Command{
			Kind:       CommandText,
			Rect:       rect,
			FontFamily: node.Context.Font.Family,
			FontSize:   node.Context.Font.Size,
			FontWeight: node.Context.Font.Weight,
			LineHeight: node.Context.Font.LineHeight,
			Text:       node.Context.Text,
			Brush:      SolidBrush(color),
			Align:      node.Input.TextAlign,
		}
	case layout.ContextImage:
		return Command{Kind: CommandImage, Rect: rect, MediaId: node.Context.MediaId}
	case layout.ContextSvg:
		return Command{Kind: CommandSvg, Rect: rect, MediaId: node.Context.MediaId}
	default:
		return rectangleCommand(node, rect)
	}
}

func borderPx(v styleconv.EdgeValue) float64 {
	if v.Kind == styleconv.EdgePixels {
		return v.Value
	}
	return 0
}

func rectangleCommand(node *layout.LayoutElementNode, rect layout.Rect) Command {
	in := node.Input
	var bg *Brush
	if in.BackgroundColor.A > 0 {
		b := SolidBrush(in.BackgroundColor)
		bg = &b
	}
	borderOf := func(w styleconv.EdgeValue, style styleconv.BorderStyle, c domdoc.Color) Border {
		return Border{Width: borderPx(w), Style: style, Brush: SolidBrush(c)}
	}
	return Command{
		Kind:         CommandRectangle,
		Rect:         rect,
		Background:   bg,
		BorderTop:    borderOf(in.BorderWidth.Top, in.BorderStyle[0], in.BorderColor[0]),
		BorderRight:  borderOf(in.BorderWidth.Right, in.BorderStyle[1], in.BorderColor[1]),
		BorderBottom: borderOf(in.BorderWidth.Bottom, in.BorderStyle[2], in.BorderColor[2]),
		BorderLeft:   borderOf(in.BorderWidth.Left, in.BorderStyle[3], in.BorderColor[3]),
		CornerRadius: Radius{
			TopLeft:     in.BorderRadiusTopLeft.Value,
			TopRight:    in.BorderRadiusTopRight.Value,
			BottomRight: in.BorderRadiusBottomRight.Value,
			BottomLeft:  in.BorderRadiusBottomLeft.Value,
		},
	}
}
