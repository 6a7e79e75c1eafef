package cpp

import "fmt"

// Macro is a single macro definition, either object-like or
// function-like. It holds a pre-scanned parameter index for each
// replacement-list token, so Expander never has to search Params by
// name during expansion.
type Macro struct {
	Name string
	Params []string // empty for object-like macros
	Variadic bool // last parameter (__VA_ARGS__ or a named one) takes the variable arguments
	Body []Token
	DefinedAt SourceLoc
	IsFunction bool
	paramOf []int // paramOf[i] = index into Params for Body[i], or -1
	vaArgsIndex int // index of the variadic parameter in Params, or -1
}

func (m *Macro) argIndexOf(name string) int {
	if m.Variadic && name == "__VA_ARGS__" {
		return m.vaArgsIndex
	}
	for i, p := range m.Params {
		if p == name {
			return i
		}
	}
	return -1
}

// scanParams fills in paramOf and vaArgsIndex from Params/Body. Called once
// at definition time so expansion can do a single slice lookup per token.
func (m *Macro) scanParams() {
	m.vaArgsIndex = -1
	if m.Variadic && len(m.Params) > 0 {
		m.vaArgsIndex = len(m.Params) - 1
	}
	m.paramOf = make([]int, len(m.Body))
	for i, tok := range m.Body {
		m.paramOf[i] = -1
		if tok.Kind == Identifier {
			m.paramOf[i] = m.argIndexOf(tok.Spelling)
		}
	}
}

// MacroTable holds the live macro definitions for one translation unit /
// platform. Definitions follow first-define-wins:
// a duplicate #define of an identical replacement list is silently
// accepted, one with a different replacement list is rejected with a
// warning-worthy error and the original definition is kept.
type MacroTable struct {
	macros map[string]*Macro
}

// NewMacroTable returns an empty table.
func NewMacroTable() *MacroTable {
	return &MacroTable{macros: make(map[string]*Macro)}
}

// Lookup returns the macro named name, or nil if undefined.
func (t *MacroTable) Lookup(name string) *Macro {
	return t.macros[name]
}

// IsDefined reports whether name has an active definition.
func (t *MacroTable) IsDefined(name string) bool {
	_, ok := t.macros[name]
	return ok
}

// Undefine removes name's definition, if any. Undefining an undefined
// name is a no-op.
func (t *MacroTable) Undefine(name string) {
	delete(t.macros, name)
}

// define inserts m, enforcing first-define-wins: redefinition with a
// spelling-identical replacement list is accepted silently; a conflicting
// redefinition is rejected and the existing definition is preserved.
func (t *MacroTable) define(m *Macro) error {
	if existing, ok := t.macros[m.Name]; ok {
		if macrosEquivalent(existing, m) {
			return nil
		}
		return &ParseError{File: m.DefinedAt.File, Line: m.DefinedAt.Line,
			Msg: fmt.Sprintf("redefinition of macro %q does not match prior definition", m.Name)}
	}
	m.scanParams()
	t.macros[m.Name] = m
	return nil
}

func macrosEquivalent(a, b *Macro) bool {
	if a.IsFunction != b.IsFunction || a.Variadic != b.Variadic || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	if len(a.Body) != len(b.Body) {
		return false
	}
	for i := range a.Body {
		if a.Body[i].Kind != b.Body[i].Kind || a.Body[i].Spelling != b.Body[i].Spelling {
			return false
		}
	}
	return true
}

// DefineObject defines an object-like macro from already-lexed tokens.
func (t *MacroTable) DefineObject(name string, body []Token, at SourceLoc) error {
	return t.define(&Macro{Name: name, Body: CloneTokens(body), DefinedAt: at})
}

// DefineFunction defines a function-like macro from already-lexed tokens.
func (t *MacroTable) DefineFunction(name string, params []string, variadic bool, body []Token, at SourceLoc) error {
	return t.define(&Macro{
		Name: name, Params: params, Variadic: variadic, Body: CloneTokens(body),
		DefinedAt: at, IsFunction: true,
	})
}

// DefineSimple defines an object-like macro from a raw replacement-list
// string, lexing it first. Used by both -D command-line defines and tests.
func (t *MacroTable) DefineSimple(name, value string, at SourceLoc) error {
	var body []Token
	if value != "" {
		toks, err := NewLexer(value, at.File, at.Line).Tokenize()
		if err != nil {
			return err
		}
		body = toks
	}
	return t.DefineObject(name, body, at)
}

// ApplyCmdlineDefines applies the -D/-U style defines carried on a
// CompileEntry, in the order given. A define of the form "NAME" (no '=') defines NAME as 1. A
// define "NAME(params)=body" defines a function-like macro.
func (t *MacroTable) ApplyCmdlineDefines(defines []string, undefines []string, at SourceLoc) error {
	for _, d := range defines {
		name, params, variadic, value, isFunc := parseCmdlineDefine(d)
		if !isFunc {
			if value == "" {
				value = "1"
			}
			if err := t.DefineSimple(name, value, at); err != nil {
				return err
			}
			continue
		}
		var body []Token
		if value != "" {
			toks, err := NewLexer(value, at.File, at.Line).Tokenize()
			if err != nil {
				return err
			}
			body = toks
		}
		if err := t.DefineFunction(name, params, variadic, body, at); err != nil {
			return err
		}
	}
	for _, u := range undefines {
		t.Undefine(u)
	}
	return nil
}

// parseCmdlineDefine splits a -D argument of the form "NAME", "NAME=VALUE",
// or "NAME(a,b,...)=VALUE" into its parts.
func parseCmdlineDefine(d string) (name string, params []string, variadic bool, value string, isFunc bool) {
	eq := -1
	paren := -1
	for i := 0; i < len(d); i++ {
		switch d[i] {
		case '=':
			if eq == -1 {
				eq = i
			}
		case '(':
			if paren == -1 && eq == -1 {
				paren = i
			}
		}
	}
	head := d
	if eq != -1 {
		head = d[:eq]
		value = d[eq+1:]
	}
	if paren != -1 && paren < len(head) {
		close := -1
		for i := paren; i < len(head); i++ {
			if head[i] == ')' {
				close = i
				break
			}
		}
		if close != -1 {
			name = head[:paren]
			isFunc = true
			paramList := head[paren+1 : close]
			params, variadic = splitParamList(paramList)
			return
		}
	}
	name = head
	return
}

func splitParamList(s string) (params []string, variadic bool) {
	if s == "" {
		return nil, false
	}
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			p := trimSpaceASCII(s[start:i])
			if p == "..." {
				params = append(params, "__VA_ARGS__")
				variadic = true
			} else if p != "" {
				params = append(params, p)
			}
			start = i + 1
		}
	}
	return
}

func trimSpaceASCII(s string) string {
	start, end := 0, len(s)
	for start < end && isASCIISpace(s[start]) {
		start++
	}
	for end > start && isASCIISpace(s[end-1]) {
		end--
	}
	return s[start:end]
}
