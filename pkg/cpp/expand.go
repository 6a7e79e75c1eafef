// expand.go implements macro expansion: object-like, function-like,
// stringification, token pasting, and the "defined" pseudo-operator.
// Expansion is built around a recursive hideset (rather than a single
// shared hideset map mutated with defer-delete) so that concurrent
// nested expansions during argument pre-expansion cannot corrupt each
// other's blue paint. Built-in macro expansion (__FILE__, __LINE__,
// __DATE__, ...) is out of scope.
package cpp

import "strings"

// maxExpansionDepth is the recursion cap of this expander: "a global
// recursion depth counter is enforced with a cap (>= 200)".
const maxExpansionDepth = 200

// placeholderSpelling marks a substituted token that stands for an empty
// macro argument, so the "##" pass can tell "nothing here" apart from an
// ordinary empty-spelling token (which never otherwise occurs).
const placeholderSpelling = "\x00placeholder\x00"

func isPlaceholder(t Token) bool { return t.Kind == Unknown && t.Spelling == placeholderSpelling }

func placeholderToken(line int, prevWhite bool) Token {
	return Token{Kind: Unknown, Spelling: placeholderSpelling, Line: line, PrevWhite: prevWhite}
}

// Expander expands macros against one MacroTable.
type Expander struct {
	macros *MacroTable
	depth int
}

// NewExpander creates an expander bound to macros.
func NewExpander(macros *MacroTable) *Expander {
	return &Expander{macros: macros}
}

// Expand expands all macros in tokens and returns the result.
func (e *Expander) Expand(tokens []Token) ([]Token, error) {
	return e.expand(tokens, map[string]bool{})
}

// ExpandString is a convenience wrapper for tests and #if-expression-style
// callers: lex input as a single logical line, expand it, and re-spell it.
func (e *Expander) ExpandString(input string) (string, error) {
	toks, err := NewLexer(input, "<string>", 1).Tokenize()
	if err != nil {
		return "", err
	}
	expanded, err := e.Expand(toks)
	if err != nil {
		return "", err
	}
	return Spell(expanded), nil
}

// expand is the recursive core. hideset carries every macro name whose
// expansion is a live ancestor of this call, standing in for the "union
// of all live sources' blue-paint sets" of this stack-of-sources model:
// a recursive call's hideset IS that union, since each recursive call
// corresponds to pushing one new source.
func (e *Expander) expand(tokens []Token, hideset map[string]bool) ([]Token, error) {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxExpansionDepth {
		return nil, &ExpansionError{Msg: "macro expansion exceeded the recursion depth limit"}
	}

	var out []Token
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if tok.Kind != Identifier {
			out = append(out, tok)
			continue
		}

		if tok.Spelling == "defined" {
			val, consumed, err := evalDefinedAt(tokens, i, e.macros)
			if err != nil {
				return nil, err
			}
			out = append(out, val)
			i += consumed
			continue
		}

		if hideset[tok.Spelling] || !tok.Expandable {
			out = append(out, tok.Painted())
			continue
		}

		macro := e.macros.Lookup(tok.Spelling)
		if macro == nil {
			out = append(out, tok)
			continue
		}

		if !macro.IsFunction {
			childHideset := unionHideset(hideset, macro.Name)
			body := CloneTokens(macro.Body)
			if len(body) > 0 {
				body[0] = body[0].WithPrevWhite(tok.PrevWhite)
			}
			expanded, err := e.expand(body, childHideset)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
			continue
		}

		// Function-like macro: only invoked if the very next token is "(".
		if i+1 >= len(tokens) || tokens[i+1].Kind != Punctuator || tokens[i+1].Spelling != "(" {
			out = append(out, tok)
			continue
		}

		args, endIdx, err := parseArguments(tokens, i+1, macro)
		if err != nil {
			return nil, err
		}
		expanded, err := e.expandFunctionMacro(macro, args, hideset, tok.PrevWhite)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
		i = endIdx
	}
	return out, nil
}

func unionHideset(hideset map[string]bool, name string) map[string]bool {
	next := make(map[string]bool, len(hideset)+1)
	for k := range hideset {
		next[k] = true
	}
	next[name] = true
	return next
}

// evalDefinedAt implements rule 2: "defined" consumes an optional
// "(", an identifier, and an optional matching ")", and emits a Number
// token "1"/"0". Returns the produced token and how many extra tokens
// (beyond tokens[i], the "defined" identifier itself) were consumed.
func evalDefinedAt(tokens []Token, i int, macros *MacroTable) (Token, int, error) {
	prevWhite := tokens[i].PrevWhite
	line := tokens[i].Line
	j := i + 1
	paren := false
	if j < len(tokens) && tokens[j].Kind == Punctuator && tokens[j].Spelling == "(" {
		paren = true
		j++
	}
	if j >= len(tokens) || tokens[j].Kind != Identifier {
		return Token{}, 0, &ExpansionError{Line: line, Msg: "'defined' requires an identifier"}
	}
	name := tokens[j].Spelling
	j++
	if paren {
		if j >= len(tokens) || tokens[j].Kind != Punctuator || tokens[j].Spelling != ")" {
			return Token{}, 0, &ExpansionError{Line: line, Msg: "'defined(' missing closing ')'"}
		}
		j++
	}
	val := "0"
	if macros.IsDefined(name) {
		val = "1"
	}
	return NewNumber(val, line, tokens[i].Column, prevWhite), j - i - 1, nil
}

// expandFunctionMacro substitutes args into macro's replacement list,
// performs stringification and token pasting, then recursively expands
// the result, per rule 5.
func (e *Expander) expandFunctionMacro(macro *Macro, args [][]Token, hideset map[string]bool, prevWhite bool) ([]Token, error) {
	if err := checkArgCount(macro, args); err != nil {
		return nil, err
	}

	childHideset := unionHideset(hideset, macro.Name)
	preExpanded := make(map[int][]Token)
	preExpandOf := func(idx int) ([]Token, error) {
		if cached, ok := preExpanded[idx]; ok {
			return cached, nil
		}
		arg := argAt(args, idx)
		expanded, err := e.expand(CloneTokens(arg), hideset)
		if err != nil {
			return nil, err
		}
		preExpanded[idx] = expanded
		return expanded, nil
	}

	var substituted []Token
	body := macro.Body
	for i := 0; i < len(body); i++ {
		tok := body[i]

		if tok.Kind == Operator && tok.Spelling == "#" {
			if i+1 >= len(body) || macro.paramOf[i+1] == -1 {
				return nil, &ParseError{Line: tok.Line, Msg: "'#' is not followed by a macro parameter"}
			}
			arg := argAt(args, macro.paramOf[i+1])
			substituted = append(substituted, stringifyArg(arg, tok.Line))
			i++
			continue
		}

		if macro.paramOf[i] != -1 {
			idx := macro.paramOf[i]
			adjacentHashHash := (i > 0 && body[i-1].Kind == Operator && body[i-1].Spelling == "##") ||
			(i+1 < len(body) && body[i+1].Kind == Operator && body[i+1].Spelling == "##")
			if adjacentHashHash {
				arg := argAt(args, idx)
				if len(arg) == 0 {
					substituted = append(substituted, placeholderToken(tok.Line, tok.PrevWhite))
				} else {
					raw := CloneTokens(arg)
					raw[0] = raw[0].WithPrevWhite(tok.PrevWhite)
					substituted = append(substituted, raw...)
				}
				continue
			}
			expanded, err := preExpandOf(idx)
			if err != nil {
				return nil, err
			}
			if len(expanded) == 0 {
				continue
			}
			clone := CloneTokens(expanded)
			clone[0] = clone[0].WithPrevWhite(tok.PrevWhite)
			substituted = append(substituted, clone...)
			continue
		}

		substituted = append(substituted, tok)
	}

	pasted, err := pasteTokens(substituted)
	if err != nil {
		return nil, err
	}
	if len(pasted) > 0 {
		pasted[0] = pasted[0].WithPrevWhite(prevWhite)
	}
	return e.expand(pasted, childHideset)
}

func argAt(args [][]Token, idx int) []Token {
	if idx < 0 || idx >= len(args) {
		return nil
	}
	return args[idx]
}

// checkArgCount rejects more arguments than a non-variadic macro has
// parameters. Missing trailing arguments are allowed: argAt yields an
// empty list for them.
func checkArgCount(macro *Macro, args [][]Token) error {
	if !macro.Variadic && len(args) > len(macro.Params) {
		return &ExpansionError{Msg: "wrong number of arguments to macro " + macro.Name}
	}
	return nil
}

// parseArguments parses the actual argument list of a function-like
// macro invocation, per rule 5b: top-level commas separate
// arguments, parentheses nest, and (for a variadic macro) arguments
// beyond the fixed parameter count are joined into one argument.
// openParen is the index of "(" in tokens.
func parseArguments(tokens []Token, openParen int, macro *Macro) ([][]Token, int, error) {
	i := openParen + 1
	var args [][]Token
	var current []Token
	depth := 1
	for i < len(tokens) {
		tok := tokens[i]
		if tok.Kind == Punctuator && tok.Spelling == "(" {
			depth++
			current = append(current, tok)
			i++
			continue
		}
		if tok.Kind == Punctuator && tok.Spelling == ")" {
			depth--
			if depth == 0 {
				if len(current) > 0 || len(args) > 0 {
					args = append(args, current)
				}
				fixedCount := len(macro.Params)
				if macro.Variadic {
					fixedCount--
				}
				if macro.Variadic && len(args) > fixedCount+1 {
					joined := joinVariadicArgs(args[fixedCount:])
					args = append(args[:fixedCount], joined)
				}
				return args, i, nil
			}
			current = append(current, tok)
			i++
			continue
		}
		if tok.Kind == Punctuator && tok.Spelling == "," && depth == 1 {
			args = append(args, current)
			current = nil
			i++
			continue
		}
		current = append(current, tok)
		i++
	}
	return nil, 0, &ParseError{Msg: "unterminated macro argument list for " + macro.Name}
}

func joinVariadicArgs(extras [][]Token) []Token {
	var out []Token
	for i, arg := range extras {
		if i > 0 {
			out = append(out, Token{Kind: Punctuator, Spelling: ",", PrevWhite: false})
		}
		out = append(out, arg...)
	}
	return out
}

// stringifyArg implements this "#" rule: join tokens with a single
// space where prev_white was true, doubling backslashes and double
// quotes inside string/char constants.
func stringifyArg(tokens []Token, line int) Token {
	var sb strings.Builder
	sb.WriteByte('"')
	for i, tok := range tokens {
		if i > 0 && tok.PrevWhite {
			sb.WriteByte(' ')
		}
		if tok.Kind == StringConst || tok.Kind == CharConst {
			for j := 0; j < len(tok.Spelling); j++ {
				c := tok.Spelling[j]
				if c == '"' || c == '\\' {
					sb.WriteByte('\\')
				}
				sb.WriteByte(c)
			}
		} else {
			sb.WriteString(tok.Spelling)
		}
	}
	sb.WriteByte('"')
	return Token{Kind: StringConst, Spelling: sb.String(), Line: line}
}

// pasteTokens implements the "##" pass of rule 5d: concatenate the
// spellings either side of each "##", re-lex the junction, and fail if it
// does not yield exactly one token. A placeholder operand (an empty
// substituted argument) leaves the other operand alone.
func pasteTokens(tokens []Token) ([]Token, error) {
	var out []Token
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Kind == Operator && tok.Spelling == "##" {
			if len(out) == 0 || i+1 >= len(tokens) {
				return nil, &ParseError{Line: tok.Line, Msg: "'##' with no adjoining token"}
			}
			left := out[len(out)-1]
			right := tokens[i+1]
			out = out[:len(out)-1]

			switch {
			case isPlaceholder(left) && isPlaceholder(right):
				out = append(out, placeholderToken(tok.Line, left.PrevWhite))
			case isPlaceholder(left):
				out = append(out, right.WithPrevWhite(left.PrevWhite))
			case isPlaceholder(right):
				out = append(out, left)
			default:
				pasted, err := TokenizeOne(left.Spelling+right.Spelling, "", tok.Line)
				if err != nil {
					return nil, &ExpansionError{Line: tok.Line, Msg: "invalid token produced by '##'", Err: err}
				}
				out = append(out, pasted.WithPrevWhite(left.PrevWhite))
			}
			i++
			continue
		}
		out = append(out, tok)
	}

	filtered := out[:0]
	for _, tok := range out {
		if !isPlaceholder(tok) {
			filtered = append(filtered, tok)
		}
	}
	return filtered, nil
}
