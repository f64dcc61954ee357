// Package domdoc is the read-only document view: an id-addressed arena of
// nodes, attributes, and pre-cascaded styles that the rest of the pipeline
// is built on. Parsing HTML/CSS into this shape is an external concern
// (see spec §1); this package only models the result.
package domdoc

import "fmt"

// NodeType is the variant tag for a Node.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	CommentNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	default:
		return "unknown"
	}
}

// Node is one entry in a Document's arena. Children are referenced by id,
// not by pointer, so the tree can be shared read-only by downstream
// stages without them taking ownership of Document internals.
type Node struct {
	Id         NodeId
	Type       NodeType
	TagName    string // set for ElementNode
	Text       string // set for TextNode and CommentNode
	Attributes map[string]string
	Children   []NodeId
	Parent     NodeId // zero value means "no parent"
	HasParent  bool

	Style *StylePropertyList // computed style for this node

	// InheritedStyle is a snapshot of the properties a Text node
	// inherits from its parent element at construction time (§3:
	// "Text nodes carry an inherited style snapshot").
	InheritedStyle *StylePropertyList
}

// GetAttribute returns the named attribute and whether it was present.
func (n *Node) GetAttribute(name string) (string, bool) {
	if n.Attributes == nil {
		return "", false
	}
	v, ok := n.Attributes[name]
	return v, ok
}

// EffectiveStyle returns the style that should drive layout/paint for
// this node: its own computed style for elements, or the inherited
// snapshot for text/comment nodes.
func (n *Node) EffectiveStyle() *StylePropertyList {
	if n.Type == ElementNode {
		return n.Style
	}
	return n.InheritedStyle
}

// Document is a mapping from NodeId to Node, plus the identity of the
// root. Invariant (§3): the child/parent relation forms a forest, one
// node is the designated root, and every referenced NodeId exists in
// the mapping.
type Document struct {
	nodes   map[NodeId]*Node
	root    NodeId
	hasRoot bool
	alloc   idAllocator
	BaseURL string
}

// NewDocument creates an empty document with no root.
func NewDocument() *Document {
	return &Document{nodes: make(map[NodeId]*Node)}
}

// NewNode allocates and registers a new node owned by this document.
// It does not attach the node to any parent.
func (d *Document) NewNode(typ NodeType) *Node {
	n := &Node{Id: d.alloc.nextNodeId(), Type: typ}
	d.nodes[n.Id] = n
	return n
}

// SetRoot designates n (which must already belong to this document) as
// the document root.
func (d *Document) SetRoot(id NodeId) {
	d.root = id
	d.hasRoot = true
}

// Root returns the root node and whether one has been set.
func (d *Document) Root() (*Node, bool) {
	if !d.hasRoot {
		return nil, false
	}
	return d.nodes[d.root], true
}

// RootId returns the root node id and whether one has been set.
func (d *Document) RootId() (NodeId, bool) {
	return d.root, d.hasRoot
}

// Node looks up a node by id.
func (d *Document) Node(id NodeId) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// MustNode looks up a node by id and panics if it is missing — used
// where the id is expected to have been validated by a prior stage
// (§7: "panics are reserved for broken invariants").
func (d *Document) MustNode(id NodeId) *Node {
	n, ok := d.nodes[id]
	if !ok {
		panic(fmt.Sprintf("domdoc: node %d not found in document arena", id))
	}
	return n
}

// AppendChild attaches child to parent, in document order.
func (d *Document) AppendChild(parent, child NodeId) {
	p := d.MustNode(parent)
	c := d.MustNode(child)
	p.Children = append(p.Children, child)
	c.Parent = parent
	c.HasParent = true
}

// Len returns the number of nodes registered in the arena.
func (d *Document) Len() int {
	return len(d.nodes)
}
