package cpp

import "strings"

// FortranSource lazily assembles logical lines from Fortran free-form
// source text: it strips "!" comments (preserving "!$"-sentinel OpenMP
// directives verbatim), honours "&" line continuations, and treats any
// line whose first non-blank character is "#" as a standalone,
// non-continued CPP_DIRECTIVE logical line — flushing whatever Fortran
// logical line was accumulating first.
type FortranSource struct {
	lines []string
	idx int
	builder *lineBuilder
	groupStart int
	groupLocal int
	continuing bool
	pending []LogicalLine
	totalSLOC int
	totalPhysical int
}

// NewFortranSource splits raw into physical lines and prepares a Fortran
// free-form logical line source.
func NewFortranSource(raw string) *FortranSource {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return &FortranSource{lines: lines, builder: newLineBuilder(), groupStart: 1}
}

func (s *FortranSource) Totals() (int, int) { return s.totalSLOC, s.totalPhysical }

// Next returns the next logical line, or ok=false when exhausted.
func (s *FortranSource) Next() (LogicalLine, bool) {
	for {
		if len(s.pending) > 0 {
			ll := s.pending[0]
			s.pending = s.pending[1:]
			if ll.Category != Blank {
				return ll, true
			}
			continue
		}
		if !s.step() {
			return LogicalLine{}, false
		}
	}
}

// step consumes one physical line, appending zero, one, or two logical
// lines to s.pending. Returns false once input and any trailing
// accumulation are exhausted.
func (s *FortranSource) step() bool {
	if s.idx >= len(s.lines) {
		if s.builder.Spelling() != "" || s.groupLocal > 0 {
			s.flush(s.totalPhysical)
		}
		return false
	}
	physicalLineNum := s.idx + 1
	raw := s.lines[s.idx]
	s.idx++
	s.totalPhysical = physicalLineNum

	if lineHasNonBlank(raw) {
		s.groupLocal++
		s.totalSLOC++
	}

	trimmed := strings.TrimLeft(raw, " \t")
	if strings.HasPrefix(trimmed, "#") {
		// A directive interrupts any in-progress Fortran logical line,
		// which ends just before it; the directive line is counted only
		// in its own LogicalLine.
		s.groupLocal--
		if s.builder.Spelling() != "" {
			s.flush(physicalLineNum - 1)
		}
		directive := newLineBuilder()
		directive.appendString(trimmed)
		s.pending = append(s.pending, LogicalLine{
			PhysicalStart: physicalLineNum,
			PhysicalEnd: physicalLineNum + 1,
			LocalSLOC: 1,
			Spelling: directive.Spelling(),
			Category: CppDirective,
		})
		s.groupStart = physicalLineNum + 1
		s.groupLocal = 0
		s.continuing = false
		return true
	}

	body := raw
	if s.continuing {
		body = strings.TrimLeft(body, " \t")
		body = strings.TrimPrefix(body, "&")
	}

	content, sentinel := splitFortranComment(body)
	trailingAmp := false
	trimmedContent := strings.TrimRight(content, " \t")
	if strings.HasSuffix(trimmedContent, "&") {
		trailingAmp = true
		trimmedContent = strings.TrimRight(trimmedContent[:len(trimmedContent)-1], " \t")
	}
	if s.continuing {
		s.builder.appendSpace()
	}
	s.builder.appendString(trimmedContent)
	if sentinel != "" {
		s.builder.appendSpace()
		s.builder.appendString(sentinel)
	}

	if trailingAmp {
		s.continuing = true
		return true
	}
	s.continuing = false
	s.flush(physicalLineNum)
	return true
}

func (s *FortranSource) flush(physicalLineNum int) {
	s.pending = append(s.pending, LogicalLine{
		PhysicalStart: s.groupStart,
		PhysicalEnd: physicalLineNum + 1,
		LocalSLOC: s.groupLocal,
		Spelling: s.builder.Spelling(),
		Category: s.builder.Category(),
	})
	s.builder = newLineBuilder()
	s.groupStart = physicalLineNum + 1
	s.groupLocal = 0
}

// splitFortranComment removes a "!" comment from a Fortran line, unless it
// is an OpenMP-style "!$" sentinel (a "!" immediately followed by "$" and
// a letter), which is kept and returned as a separate value; the caller
// appends it after the line's content.
func splitFortranComment(line string) (content, sentinel string) {
	for i := 0; i < len(line); i++ {
		if line[i] != '!' {
			continue
		}
		if i+2 < len(line) && line[i+1] == '$' && isLetter(line[i+2]) {
			return line[:i], line[i:]
		}
		if i+2 == len(line) && line[i+1] == '$' {
			return line[:i], line[i:]
		}
		return line[:i], ""
	}
	return line, ""
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
