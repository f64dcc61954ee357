// Package rendertree builds the render tree: the subset of a Document
// that is visible, mirroring the document's structure (spec §4.1).
package rendertree

import (
	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
)

// RenderNodeId is an opaque identifier for a RenderNode, stable for the
// lifetime of the owning RenderTree.
type RenderNodeId uint64

// RenderNode mirrors one visible Node. Children point at other
// RenderNodes, not directly at Document nodes, so downstream stages
// never need to re-run the visibility filter.
type RenderNode struct {
	Id           RenderNodeId
	NodeId       domdoc.NodeId
	Children     []RenderNodeId
	IsInline     bool
	IsBlock      bool
}

// RenderTree wraps a Document and the RenderNodeId tree built over it.
type RenderTree struct {
	Doc   *domdoc.Document
	nodes map[RenderNodeId]*RenderNode
	root  RenderNodeId
	has   bool
	next  uint64
}

func newTree(doc *domdoc.Document) *RenderTree {
	return &RenderTree{Doc: doc, nodes: make(map[RenderNodeId]*RenderNode)}
}

func (t *RenderTree) alloc() RenderNodeId {
	t.next++
	return RenderNodeId(t.next)
}

// Node looks up a render node by id.
func (t *RenderTree) Node(id RenderNodeId) (*RenderNode, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// MustNode looks up a render node by id and panics if missing.
func (t *RenderTree) MustNode(id RenderNodeId) *RenderNode {
	n, ok := t.nodes[id]
	if !ok {
		panic("rendertree: render node not found")
	}
	return n
}

// Root returns the render tree root, if any (§4.1: a document with no
// root produces an empty tree, not an error — the DocumentInvalid case
// is handled earlier, at domdoc.ParseDocument).
func (t *RenderTree) Root() (RenderNodeId, bool) {
	return t.root, t.has
}

// invisibleTags are never rendered regardless of display/hidden (§4.1).
var invisibleTags = map[string]bool{
	"head": true, "style": true, "script": true,
	"meta": true, "link": true, "title": true,
}

// inlineTags are treated as inline-level by default when display is
// unspecified — a reasonable default consistent with the teacher's own
// treatment of text-level elements, since the document model here
// carries no user-agent stylesheet.
var inlineTags = map[string]bool{
	"span": true, "a": true, "b": true, "i": true, "em": true,
	"strong": true, "small": true, "code": true, "label": true,
	"img": true,
}

// Build is a pure function of the document: it performs no I/O and has
// no failure mode beyond an empty document, which yields an empty tree.
func Build(doc *domdoc.Document) *RenderTree {
	tree := newTree(doc)
	rootId, ok := doc.RootId()
	if !ok {
		return tree
	}
	if id, built := buildNode(tree, doc, rootId); built {
		tree.root = id
		tree.has = true
	}
	return tree
}

func buildNode(tree *RenderTree, doc *domdoc.Document, nodeId domdoc.NodeId) (RenderNodeId, bool) {
	node := doc.MustNode(nodeId)
	if !isVisible(node) {
		return 0, false
	}

	rn := &RenderNode{Id: tree.alloc(), NodeId: nodeId}
	rn.IsInline, rn.IsBlock = classify(node)
	tree.nodes[rn.Id] = rn

	for _, childId := range node.Children {
		if cid, ok := buildNode(tree, doc, childId); ok {
			rn.Children = append(rn.Children, cid)
		}
	}
	return rn.Id, true
}

func isVisible(n *domdoc.Node) bool {
	switch n.Type {
	case domdoc.CommentNode:
		return false
	case domdoc.TextNode:
		return true
	case domdoc.ElementNode:
		if invisibleTags[n.TagName] {
			return false
		}
		if hidden, ok := n.GetAttribute("hidden"); ok && isTruthyAttr(hidden) {
			return false
		}
		if n.Style != nil {
			if v, ok := n.Style.Get(domdoc.PropDisplay); ok && v.Kind == domdoc.KindDisplay && v.Display == domdoc.DisplayNone {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// isTruthyAttr matches HTML boolean-attribute semantics: present and not
// explicitly "false"/"0" is truthy. An empty "hidden" attribute (the
// common `hidden` boolean form) is truthy.
func isTruthyAttr(v string) bool {
	switch v {
	case "false", "0":
		return false
	default:
		return true
	}
}

func classify(n *domdoc.Node) (isInline, isBlock bool) {
	if n.Type == domdoc.TextNode {
		return true, false
	}
	if n.Style != nil {
		if v, ok := n.Style.Get(domdoc.PropDisplay); ok && v.Kind == domdoc.KindDisplay {
			switch v.Display {
			case domdoc.DisplayInline, domdoc.DisplayInlineBlock:
				return true, false
			case domdoc.DisplayBlock, domdoc.DisplayFlex:
				return false, true
			}
		}
	}
	if inlineTags[n.TagName] {
		return true, false
	}
	return false, true
}
