package cpp

import "testing"

func TestBuildSourceTreeFlat(t *testing.T) {
	tree, warnings := BuildSourceTree("int a;\nint b;\n", "f.c", "c")
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	root := tree.Node(tree.Root)
	if len(root.Children) != 1 {
		t.Fatalf("got %d children, want 1 code node: %#v", len(root.Children), root.Children)
	}
	code := tree.Node(root.Children[0])
	if code.Kind != NodeCode || code.LocalSLOC != 2 {
		t.Errorf("got %#v", code)
	}
}

func TestBuildSourceTreeIfEndif(t *testing.T) {
	src := "#if 1\nint a;\n#endif\nint b;\n"
	tree, warnings := BuildSourceTree(src, "f.c", "c")
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	root := tree.Node(tree.Root)
	if len(root.Children) != 3 {
		t.Fatalf("got %d top-level children, want 3 (if, endif, code): %#v", len(root.Children), root.Children)
	}
	ifNode := tree.Node(root.Children[0])
	if ifNode.Directive.Kind != DirIf || ifNode.Struct != StructStart {
		t.Fatalf("got %#v", ifNode)
	}
	if len(ifNode.Children) != 1 {
		t.Fatalf("got %d children under #if, want 1: %#v", len(ifNode.Children), ifNode.Children)
	}
	inner := tree.Node(ifNode.Children[0])
	if inner.Kind != NodeCode || inner.Spelling != "int a;" {
		t.Errorf("got %#v", inner)
	}
	endifNode := tree.Node(root.Children[1])
	if endifNode.Directive.Kind != DirEndif || endifNode.Struct != StructEnd {
		t.Fatalf("got %#v", endifNode)
	}
	trailing := tree.Node(root.Children[2])
	if trailing.Kind != NodeCode || trailing.Spelling != "int b;" {
		t.Errorf("got %#v", trailing)
	}
}

func TestBuildSourceTreeIfElseEndif(t *testing.T) {
	src := "#if 1\na;\n#else\nb;\n#endif\n"
	tree, _ := BuildSourceTree(src, "f.c", "c")
	root := tree.Node(tree.Root)
	if len(root.Children) != 3 {
		t.Fatalf("got %d children, want 3 (if, else, endif): %#v", len(root.Children), root.Children)
	}
	elseNode := tree.Node(root.Children[1])
	if elseNode.Directive.Kind != DirElse || elseNode.Struct != StructContinue {
		t.Fatalf("got %#v", elseNode)
	}
	if len(elseNode.Children) != 1 {
		t.Fatalf("want 1 child under #else, got %d", len(elseNode.Children))
	}
}

func TestBuildSourceTreeNestedIf(t *testing.T) {
	src := "#if 1\n#if 2\nx;\n#endif\ny;\n#endif\n"
	tree, _ := BuildSourceTree(src, "f.c", "c")
	root := tree.Node(tree.Root)
	if len(root.Children) != 1 {
		t.Fatalf("got %d top-level children, want 1 outer #if: %#v", len(root.Children), root.Children)
	}
	outer := tree.Node(root.Children[0])
	if len(outer.Children) != 3 {
		t.Fatalf("got %d children under outer #if, want 3 (inner if, inner endif, y;): %#v", len(outer.Children), outer.Children)
	}
	innerIf := tree.Node(outer.Children[0])
	if innerIf.Directive.Kind != DirIf {
		t.Fatalf("got %#v", innerIf)
	}
	if len(innerIf.Children) != 1 || tree.Node(innerIf.Children[0]).Spelling != "x;" {
		t.Fatalf("got %#v", innerIf.Children)
	}
}

func TestBuildSourceTreeTotals(t *testing.T) {
	tree, _ := BuildSourceTree("int a;\n\nint b;\n", "f.c", "c")
	root := tree.Node(tree.Root)
	if root.NumLines != 3 {
		t.Errorf("got NumLines=%d, want 3", root.NumLines)
	}
	if root.TotalSLOC != 2 {
		t.Errorf("got TotalSLOC=%d, want 2", root.TotalSLOC)
	}
}
