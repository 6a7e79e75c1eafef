package cpp

import "path/filepath"

// TreeProvider supplies the tree for an included file, building and
// caching it on first request. Implemented by pkg/preproc's parser
// state, which owns the one-tree-per-file cache and per-file language
// table; pkg/cpp itself has no notion of a codebase-wide file set.
type TreeProvider interface {
	// IncludeTree returns the parsed tree for path (already resolved to an
	// absolute filename), using language (inherited from the including
	// file: include files are parsed with their including file's
	// language regardless of extension).
	IncludeTree(path, language string) (*Tree, error)
}

// Associate implements the tree associator: a
// preorder walk that tags every visited node with platform's name,
// applies #define/#undef to platform's macro table, evaluates #if/#elif
// conditions (after macro expansion) to decide which branch's children
// to descend into, and recurses into #include targets.
func Associate(tree *Tree, language string, platform *Platform, provider TreeProvider) []error {
	a := &associator{tree: tree, platform: platform, provider: provider, language: language}
	a.associate(tree.Root, true)
	return a.warnings
}

type associator struct {
	tree *Tree
	platform *Platform
	provider TreeProvider
	language string
	warnings []error
}

// associate visits h, returning whether its children were processed
// (i.e. evaluate(h) held). When processChildren is false, h is tagged
// with the platform but its subtree is skipped entirely, matching a
// not-taken branch of a preceding #if/#elif/#else.
func (a *associator) associate(h NodeHandle, processChildren bool) bool {
	node := a.tree.Node(h)
	node.AddPlatform(a.platform.Name)

	if !processChildren || !a.evaluate(node) {
		return false
	}

	processChild := true
	for _, childHandle := range node.Children {
		child := a.tree.Node(childHandle)
		childProcessed := a.associate(childHandle, processChild)

		switch {
		case childProcessed && (child.Struct == StructStart || child.Struct == StructContinue):
			// A branch was taken: skip siblings until the matching #endif.
			processChild = false
		case !processChild && child.Struct == StructEnd:
			processChild = true
		}
	}
	return true
}

func (a *associator) evaluate(node *Node) bool {
	switch node.Kind {
	case NodeFile, NodeCode:
		return true
	case NodeDirective:
		return a.evaluateDirective(node)
	default:
		return false
	}
}

func (a *associator) evaluateDirective(node *Node) bool {
	d := node.Directive
	switch d.Kind {
	case DirPragma:
		if len(d.Tokens) > 0 && d.Tokens[0].Spelling == "once" {
			a.platform.MarkIncludeOnce(a.tree.Node(a.tree.Root).Path)
		}
		return false
	case DirDefine:
		a.evaluateDefine(node, d)
		return false
	case DirUndef:
		a.platform.Undefine(d.UndefName)
		return false
	case DirInclude:
		a.evaluateInclude(node, d)
		return false
	case DirIf, DirElif:
		return a.evaluateCondition(node, d)
	case DirElse, DirEndif:
		return true
	default: // DirUnrecognized
		return false
	}
}

func (a *associator) evaluateDefine(node *Node, d *Directive) {
	m := &Macro{
		Name: d.MacroName,
		Params: d.Params,
		Variadic: d.Variadic,
		Body: CloneTokens(d.Body),
		IsFunction: d.IsFunc,
		DefinedAt: SourceLoc{File: a.tree.Node(a.tree.Root).Path, Line: node.PhysicalStart},
	}
	if err := a.platform.Define(m); err != nil {
		a.warnings = append(a.warnings, err)
	}
}

func (a *associator) evaluateCondition(node *Node, d *Directive) bool {
	expanded, err := NewExpander(a.platform.Macros).Expand(d.Tokens)
	if err != nil {
		a.warnings = append(a.warnings, err)
		return false
	}
	result, err := EvalExpr(expanded)
	if err != nil {
		a.warnings = append(a.warnings, &EvalError{Msg: err.Error()})
		return false
	}
	return result
}

func (a *associator) evaluateInclude(node *Node, d *Directive) {
	includePath := d.IncludePath
	system := d.IncludeSystem

	if len(d.IncludeTokens) > 0 {
		expanded, err := NewExpander(a.platform.Macros).Expand(d.IncludeTokens)
		if err != nil {
			a.warnings = append(a.warnings, err)
			return
		}
		computed, err := parseInclude(expanded, a.tree.Node(a.tree.Root).Path, node.PhysicalStart)
		if err != nil {
			a.warnings = append(a.warnings, err)
			return
		}
		includePath = computed.IncludePath
		system = computed.IncludeSystem
	}

	includingDir := filepath.Dir(a.tree.Node(a.tree.Root).Path)
	resolved, err := a.platform.ResolveInclude(includePath, system, includingDir)
	if err != nil {
		a.warnings = append(a.warnings, err)
		return
	}
	if !a.platform.ShouldProcessInclude(resolved) {
		return
	}

	if err := a.platform.Includes.PushFile(resolved); err != nil {
		a.warnings = append(a.warnings, err)
		return
	}
	defer a.platform.Includes.PopFile()

	includedTree, err := a.provider.IncludeTree(resolved, a.language)
	if err != nil {
		a.warnings = append(a.warnings, err)
		return
	}
	warnings := Associate(includedTree, a.language, a.platform, a.provider)
	a.warnings = append(a.warnings, warnings...)
}
