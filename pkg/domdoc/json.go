package domdoc

import (
	"encoding/json"
	"fmt"

	"github.com/gosub-io/poc-pipeline/pkg/perr"
)

// jsonNode mirrors the §6 bootstrap schema:
//
//	{ "tag": string, "attributes": {...}, "styles": {...}, "children": [Node] }
//	Node ::= element | { "text": string } | { "comment": string }
type jsonNode struct {
	Tag          string            `json:"tag"`
	Attributes   map[string]string `json:"attributes"`
	Styles       map[string]string `json:"styles"`
	Children     []jsonNode        `json:"children"`
	SelfClosing  bool              `json:"self_closing"`
	Text         *string           `json:"text"`
	Comment      *string           `json:"comment"`
}

// ParseDocument parses the §6 bootstrap JSON document format into a
// Document. A malformed payload or one with no effective root is a
// DocumentInvalid error — fatal at bootstrap, per §7.
func ParseDocument(data []byte) (*Document, error) {
	var root jsonNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, perr.Wrap(perr.KindDocumentInvalid, "malformed document JSON", err)
	}
	if root.Tag == "" && root.Text == nil && root.Comment == nil {
		return nil, perr.New(perr.KindDocumentInvalid, "document has no root element")
	}

	doc := NewDocument()
	id, err := buildNode(doc, root, nil)
	if err != nil {
		return nil, err
	}
	doc.SetRoot(id)
	return doc, nil
}

func buildNode(doc *Document, jn jsonNode, inherited *StylePropertyList) (NodeId, error) {
	switch {
	case jn.Text != nil:
		n := doc.NewNode(TextNode)
		n.Text = *jn.Text
		n.InheritedStyle = inherited
		return n.Id, nil
	case jn.Comment != nil:
		n := doc.NewNode(CommentNode)
		n.Text = *jn.Comment
		return n.Id, nil
	case jn.Tag != "":
		n := doc.NewNode(ElementNode)
		n.TagName = jn.Tag
		n.Attributes = jn.Attributes
		n.Style = parseStyles(jn.Styles)
		childStyle := inheritStyle(inherited, n.Style)
		for _, c := range jn.Children {
			cid, err := buildNode(doc, c, childStyle)
			if err != nil {
				return 0, err
			}
			doc.AppendChild(n.Id, cid)
		}
		return n.Id, nil
	default:
		return 0, perr.New(perr.KindDocumentInvalid, fmt.Sprintf("node has neither tag, text, nor comment"))
	}
}

func parseStyles(raw map[string]string) *StylePropertyList {
	list := NewStylePropertyList()
	for k, v := range raw {
		list.Set(Property(k), ParseRawValue(Property(k), v))
	}
	return list
}

// inheritStyle builds the snapshot a text child of element inherits:
// the element's own inheritable properties (color, font-*, text-align,
// line-height) layered over whatever was already inherited from above.
func inheritStyle(parentInherited, elementOwn *StylePropertyList) *StylePropertyList {
	snap := NewStylePropertyList()
	if parentInherited != nil {
		for _, p := range inheritableProps {
			if v, ok := parentInherited.Get(p); ok {
				snap.Set(p, v)
			}
		}
	}
	if elementOwn != nil {
		for _, p := range inheritableProps {
			if v, ok := elementOwn.Get(p); ok {
				snap.Set(p, v)
			}
		}
	}
	return snap
}

var inheritableProps = []Property{
	PropColor, PropFontFamily, PropFontSize, PropFontWeight,
	PropLineHeight, PropTextAlign, PropTextWrap,
}
