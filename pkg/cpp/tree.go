package cpp

import "strings"

// Tree is the arena-backed SourceTree of one parsed file: nodes are
// stored by value in a slice and
// referenced by NodeHandle, rather than as parent-linked heap objects.
type Tree struct {
	Nodes []Node
	Root NodeHandle
}

func newTree(path, language string) *Tree {
	t := &Tree{}
	t.Nodes = append(t.Nodes, Node{Kind: NodeFile, Parent: noHandle, Path: path, Language: language})
	t.Root = 0
	return t
}

// Node returns the node at h.
func (t *Tree) Node(h NodeHandle) *Node { return &t.Nodes[h] }

// addChild appends a new node to the arena as the last child of parent,
// returning its handle.
func (t *Tree) addChild(parent NodeHandle, n Node) NodeHandle {
	n.Parent = parent
	h := NodeHandle(len(t.Nodes))
	t.Nodes = append(t.Nodes, n)
	t.Nodes[parent].Children = append(t.Nodes[parent].Children, h)
	return h
}

// lineSource is satisfied by both *CSource and *FortranSource.
type lineSource interface {
	Next() (LogicalLine, bool)
	Totals() (int, int)
}

// treeBuilder holds the mutable state of one BuildSourceTree pass: the
// insertion cursor and the pending code-group accumulator.
type treeBuilder struct {
	tree *Tree
	cursor NodeHandle
	totalSLOC int

	groupOpen bool
	groupStart int
	groupEnd int
	groupSLOC int
	groupText []string
}

// BuildSourceTree parses raw into a SourceTree rooted at a FileNode. The
// configured language selects the line-assembly variant: "fortran"
// uses FortranSource; anything else uses CSource. Non-fatal lex/parse
// errors are collected and returned as warnings; the tree is always
// returned in a usable (if partial) state.
func BuildSourceTree(raw, path, language string) (*Tree, []error) {
	var src lineSource
	if language == "fortran" {
		src = NewFortranSource(raw)
	} else {
		src = NewCSource(raw)
	}

	tree := newTree(path, language)
	b := &treeBuilder{tree: tree, cursor: tree.Root}
	var warnings []error

	for {
		ll, ok := src.Next()
		if !ok {
			break
		}
		if ll.Category == CppDirective {
			b.flushCodeGroup()
			warnings = append(warnings, b.insertDirective(ll, path)...)
			continue
		}
		b.accumulate(ll)
	}
	b.flushCodeGroup()

	_, totalPhysical := src.Totals()
	root := tree.Node(tree.Root)
	root.NumLines = totalPhysical
	root.TotalSLOC = b.totalSLOC
	return tree, warnings
}

func (b *treeBuilder) accumulate(ll LogicalLine) {
	if !b.groupOpen {
		b.groupOpen = true
		b.groupStart = ll.PhysicalStart
	}
	b.groupEnd = ll.PhysicalEnd
	b.groupSLOC += ll.LocalSLOC
	b.groupText = append(b.groupText, ll.Spelling)
}

func (b *treeBuilder) flushCodeGroup() {
	if !b.groupOpen {
		return
	}
	b.tree.addChild(b.cursor, Node{
		Kind: NodeCode,
		PhysicalStart: b.groupStart,
		PhysicalEnd: b.groupEnd,
		LocalSLOC: b.groupSLOC,
		Spelling: strings.Join(b.groupText, "\n"),
	})
	b.totalSLOC += b.groupSLOC
	b.groupOpen = false
	b.groupStart, b.groupEnd, b.groupSLOC = 0, 0, 0
	b.groupText = nil
}

// insertDirective lexes and parses ll as a directive, inserts the resulting
// DirectiveNode following insertStructural's placement rules, and returns
// any non-fatal warnings produced along the way.
func (b *treeBuilder) insertDirective(ll LogicalLine, path string) []error {
	var warnings []error

	tokens, lexErr := NewLexer(ll.Spelling, path, ll.PhysicalStart).Tokenize()
	var dir *Directive
	if lexErr != nil {
		warnings = append(warnings, lexErr)
		dir = &Directive{Kind: DirUnrecognized}
	} else {
		var parseErr error
		dir, parseErr = ParseDirective(tokens, path, ll.PhysicalStart)
		if parseErr != nil {
			warnings = append(warnings, parseErr)
			dir = &Directive{Kind: DirUnrecognized, Tokens: tokens}
		} else if dir.Kind == DirUnrecognized && !dir.Suppressed() {
			warnings = append(warnings, &ParseError{File: path, Line: ll.PhysicalStart, Msg: "unrecognized directive"})
		}
	}

	n := Node{
		Kind: NodeDirective,
		PhysicalStart: ll.PhysicalStart,
		PhysicalEnd: ll.PhysicalEnd,
		LocalSLOC: ll.LocalSLOC,
		Spelling: ll.Spelling,
		Directive: dir,
		Struct: structKindOf(dir.Kind),
	}
	b.totalSLOC += ll.LocalSLOC
	b.insertStructural(n)
	return warnings
}

// insertStructural implements the tree-insertion placement rules: a start
// node opens a new child scope; a continue/end node attaches as a sibling
// of the most recently opened start/continue at its depth (found by
// walking up from the cursor via the arena's Parent links) and, for
// continue, itself becomes the new open scope; a plain node is simply
// inserted as a child of the current cursor.
func (b *treeBuilder) insertStructural(n Node) {
	switch n.Struct {
	case StructStart:
		h := b.tree.addChild(b.cursor, n)
		b.cursor = h
	case StructContinue:
		parent := b.cursor
		if b.cursor != b.tree.Root {
			parent = b.tree.Node(b.cursor).Parent
		}
		h := b.tree.addChild(parent, n)
		b.cursor = h
	case StructEnd:
		if b.cursor == b.tree.Root {
			// unmatched #endif: insert in place, cursor stays at root.
			b.tree.addChild(b.cursor, n)
			return
		}
		parent := b.tree.Node(b.cursor).Parent
		b.tree.addChild(parent, n)
		b.cursor = parent
	default:
		b.tree.addChild(b.cursor, n)
	}
}
