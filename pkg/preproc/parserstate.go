package preproc

import (
	"log/slog"
	"os"
	"sync"

	"github.com/codebasin/cbigo/pkg/cpp"
)

// ParserState is a tree cache keyed
// by canonical path, parsed at most once, plus the serialization point
// for tree association: a sync.Mutex guards tree insertion/lookup (a
// file already present in ParserState.trees is reused read-only
// without re-parsing; a miss parses outside the lock, then re-locks
// and re-checks, so two goroutines that miss on the same file at once
// may both parse it, and the first tree stored is the one kept).
//
// pkg/cpp tags platform association directly onto each Tree's Node
// (Node.Platforms), rather than in a side map keyed by path. Because a
// shared header's tree is reused across every platform/compile-entry
// that includes it, concurrent association of the same tree under two
// platforms would race on Node.Platforms. AssociateFile serializes the
// entire walk (including recursive includes) behind a second mutex to
// close that race, trading away association-phase parallelism while
// keeping the expensive parse phase concurrent across cache misses.
type ParserState struct {
	logger *slog.Logger

	cacheMu sync.Mutex
	trees map[string]*cpp.Tree

	assocMu sync.Mutex
}

// NewParserState creates an empty ParserState. Parse warnings are
// reported to logger as they are discovered (once per file, by whichever
// goroutine wins the parse race).
func NewParserState(logger *slog.Logger) *ParserState {
	return &ParserState{logger: logger, trees: make(map[string]*cpp.Tree)}
}

// IncludeTree implements cpp.TreeProvider: it returns the cached tree for
// path if one exists, else reads and parses the file, storing the result
// for every future caller (including concurrent ones racing for the same
// path).
func (s *ParserState) IncludeTree(path, language string) (*cpp.Tree, error) {
	s.cacheMu.Lock()
	if t, ok := s.trees[path]; ok {
		s.cacheMu.Unlock()
		return t, nil
	}
	s.cacheMu.Unlock()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &cpp.FatalError{File: path, Msg: "could not read file", Err: err}
	}
	tree, warnings := cpp.BuildSourceTree(string(raw), path, language)

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if t, ok := s.trees[path]; ok {
		// Another goroutine parsed path first; discard this parse.
		return t, nil
	}
	s.trees[path] = tree
	for _, w := range warnings {
		s.logger.Warn(w.Error())
	}
	return tree, nil
}

// AssociateFile associates tree under platform, recursing into any
// #include targets via this ParserState, serialized so that no two
// platforms mutate a shared tree's Node.Platforms concurrently. Emits
// every warning produced to s.logger.
func (s *ParserState) AssociateFile(tree *cpp.Tree, language string, platform *cpp.Platform) {
	s.assocMu.Lock()
	defer s.assocMu.Unlock()
	for _, w := range cpp.Associate(tree, language, platform, s) {
		s.logger.Warn(w.Error())
	}
}

// Trees returns a snapshot of every file parsed so far, keyed by
// canonical path.
func (s *ParserState) Trees() map[string]*cpp.Tree {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	out := make(map[string]*cpp.Tree, len(s.trees))
	for path, tree := range s.trees {
		out[path] = tree
	}
	return out
}
