package report

import (
	"math"
	"strings"
	"testing"

	"github.com/codebasin/cbigo/pkg/cpp"
)

func sampleSetmap() cpp.Setmap {
	return cpp.Setmap{
		"A": 1,
		"B": 2,
		"A,B": 3,
		"": 4,
	}
}

func TestDivergence(t *testing.T) {
	got := Divergence(sampleSetmap())
	want := 3.0 / 6.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDivergenceSinglePlatformIsNaN(t *testing.T) {
	if !math.IsNaN(Divergence(cpp.Setmap{"A": 1})) {
		t.Error("expected NaN divergence with fewer than 2 platforms")
	}
}

func TestUtilization(t *testing.T) {
	got := Utilization(sampleSetmap())
	want := (1.0 + 2.0 + 6.0 + 0.0) / 10.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}

	norm, err := NormalizedUtilization(sampleSetmap(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(norm-want/2) > 1e-9 {
		t.Errorf("got %v, want %v", norm, want/2)
	}

	norm4, err := NormalizedUtilization(sampleSetmap(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(norm4-want/4) > 1e-9 {
		t.Errorf("got %v, want %v", norm4, want/4)
	}
}

func TestUtilizationNullCases(t *testing.T) {
	empty := cpp.Setmap{"": 0}
	if !math.IsNaN(Utilization(empty)) {
		t.Error("expected NaN utilization for empty setmap")
	}
	if n, _ := NormalizedUtilization(empty, 0); !math.IsNaN(n) {
		t.Error("expected NaN normalized utilization for empty setmap")
	}

	setmap := cpp.Setmap{"A": 1, "B": 1}
	if _, err := NormalizedUtilization(setmap, 1); err == nil {
		t.Error("expected error normalizing to fewer platforms than observed")
	}
}

func TestTable(t *testing.T) {
	got := Table([]string{"Set", "LOC"}, [][]string{{"{A}", "1"}, {"{A, B}", "3"}})
	if got == "" {
		t.Fatal("expected non-empty table")
	}
}

func TestSummaryContainsExpectedLines(t *testing.T) {
	out := Summary(sampleSetmap())
	for _, want := range []string{"Code Divergence:", "Code Utilization:", "Unused Code (%):", "Total SLOC: 10"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
