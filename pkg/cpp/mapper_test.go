package cpp

import "testing"

func TestSetKeyCanonical(t *testing.T) {
	if SetKey([]string{"a", "b"}) != "a,b" {
		t.Errorf("got %q", SetKey([]string{"a", "b"}))
	}
	if SetKey(nil) != "" {
		t.Errorf("got %q", SetKey(nil))
	}
}

func buildAssociated(t *testing.T, src string, platformNames...string) *Tree {
	t.Helper()
	tree, _ := BuildSourceTree(src, "/proj/f.c", "c")
	for _, name := range platformNames {
		p := NewPlatform(name, "/proj")
		Associate(tree, "c", p, &stubProvider{})
	}
	return tree
}

func TestMapPlatformsSharedLines(t *testing.T) {
	tree := buildAssociated(t, "int shared;\n#if 1\nint common_true;\n#endif\n", "linux", "mac")

	sm := MapPlatforms(map[string]*Tree{"/proj/f.c": tree}, nil)

	if sm["linux,mac"] == 0 {
		t.Errorf("expected some lines shared across linux and mac, got %v", sm)
	}
}

func TestMapPlatformsExcludesOutsideRoot(t *testing.T) {
	tree := buildAssociated(t, "int a;\n", "host")
	spec := &ExcludeSpec{RootDir: "/elsewhere"}

	sm := MapPlatforms(map[string]*Tree{"/proj/f.c": tree}, spec)
	if len(sm) != 0 {
		t.Errorf("expected file outside root to be excluded, got %v", sm)
	}
}

func TestMapPlatformsExcludePattern(t *testing.T) {
	tree := buildAssociated(t, "int a;\n", "host")
	spec := &ExcludeSpec{RootDir: "/proj", ExcludePatterns: []string{"*.c"}}

	sm := MapPlatforms(map[string]*Tree{"/proj/f.c": tree}, spec)
	if len(sm) != 0 {
		t.Errorf("expected *.c pattern to exclude f.c, got %v", sm)
	}
}

func TestMapPlatformsExplicitExcludeFile(t *testing.T) {
	tree := buildAssociated(t, "int a;\n", "host")
	spec := &ExcludeSpec{RootDir: "/proj", ExcludeFiles: map[string]bool{"/proj/f.c": true}}

	sm := MapPlatforms(map[string]*Tree{"/proj/f.c": tree}, spec)
	if len(sm) != 0 {
		t.Errorf("expected explicitly excluded file to be excluded, got %v", sm)
	}
}
