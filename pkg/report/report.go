// Package report turns a cpp.Setmap into the command-line reports of
// a per-platform-set SLOC table, code divergence, code
// utilization, and aggregated preprocessing warnings.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/codebasin/cbigo/pkg/cpp"
)

// Platforms extracts the sorted, deduplicated list of platform names
// appearing in any key of setmap.
func Platforms(setmap cpp.Setmap) []string {
	seen := make(map[string]bool)
	for key := range setmap {
		if key == "" {
			continue
		}
		for _, name := range strings.Split(key, ",") {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table renders headers/rows as a fixed-width ASCII table, right-justified,
// matching report.py's table().
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for c, h := range headers {
		widths[c] = len(h)
	}
	for _, row := range rows {
		for c, cell := range row {
			if c < len(widths) && len(cell) > widths[c] {
				widths[c] = len(cell)
			}
		}
	}
	total := len(headers) - 1
	for _, w := range widths {
		total += w
	}
	hline := strings.Repeat("-", total)

	var b strings.Builder
	b.WriteString(hline)
	b.WriteByte('\n')
	writeRow(&b, headers, widths)
	b.WriteString(hline)
	b.WriteByte('\n')
	for _, row := range rows {
		writeRow(&b, row, widths)
	}
	b.WriteString(hline)
	return b.String()
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for c, cell := range cells {
		parts[c] = fmt.Sprintf("%*s", widths[c], cell)
	}
	b.WriteString(strings.Join(parts, " "))
	b.WriteByte('\n')
}

// distance computes the fraction of SLOC that distinguishes platform p1
// from p2: lines present under exactly one of them, divided by lines
// present under either.
func distance(setmap cpp.Setmap, p1, p2 string) float64 {
	var total, d float64
	for key, count := range setmap {
		platforms := splitKey(key)
		has1, has2 := platforms[p1], platforms[p2]
		if has1 || has2 {
			total += float64(count)
		}
		if has1 != has2 {
			d += float64(count)
		}
	}
	if total == 0 {
		return 0
	}
	return d / total
}

func splitKey(key string) map[string]bool {
	m := make(map[string]bool)
	if key == "" {
		return m
	}
	for _, name := range strings.Split(key, ",") {
		m[name] = true
	}
	return m
}

// Divergence computes code divergence per Harrell and Kitson: the
// average pairwise distance between platforms.
func Divergence(setmap cpp.Setmap) float64 {
	platforms := Platforms(setmap)
	var d float64
	var pairs int
	for i := 0; i < len(platforms); i++ {
		for j := i + 1; j < len(platforms); j++ {
			d += distance(setmap, platforms[i], platforms[j])
			pairs++
		}
	}
	if pairs == 0 {
		return math.NaN()
	}
	return d / float64(pairs)
}

// Utilization computes average code utilization: reused SLOC (counted
// once per platform it appears under) divided by total SLOC.
func Utilization(setmap cpp.Setmap) float64 {
	var reused, total float64
	for key, count := range setmap {
		n := len(splitKey(key))
		reused += float64(n) * float64(count)
		total += float64(count)
	}
	if total == 0 {
		return math.NaN()
	}
	return reused / total
}

// NormalizedUtilization normalizes Utilization by totalPlatforms (the
// number of platforms in the wider analysis, which may exceed the
// number actually appearing in setmap). totalPlatforms <= 0 derives the
// denominator from setmap itself.
func NormalizedUtilization(setmap cpp.Setmap, totalPlatforms int) (float64, error) {
	observed := len(Platforms(setmap))
	if totalPlatforms <= 0 {
		totalPlatforms = observed
	}
	if totalPlatforms < observed {
		return 0, fmt.Errorf("cannot normalize to %d platforms: setmap contains %d", totalPlatforms, observed)
	}
	if totalPlatforms == 0 {
		return math.NaN(), nil
	}
	return Utilization(setmap) / float64(totalPlatforms), nil
}

// Summary produces the human-readable summary report: a platform-set
// SLOC table followed by divergence, utilization, unused-code
// percentage, and total SLOC.
func Summary(setmap cpp.Setmap) string {
	keys := make([]string, 0, len(setmap))
	for key := range setmap {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return len(splitKey(keys[i])) < len(splitKey(keys[j]))
	})

	var total int
	for _, count := range setmap {
		total += count
	}

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		count := setmap[key]
		name := "{" + key + "}"
		percent := 0.0
		if total > 0 {
			percent = float64(count) / float64(total) * 100
		}
		rows = append(rows, []string{name, fmt.Sprintf("%d", count), fmt.Sprintf("%.2f", percent)})
	}

	var lines []string
	lines = append(lines, Table([]string{"Platform Set", "LOC", "% LOC"}, rows))

	nu, _ := NormalizedUtilization(setmap, 0)
	unused := 0.0
	if total > 0 {
		unused = float64(setmap[""]) / float64(total) * 100
	}
	lines = append(lines, fmt.Sprintf("Code Divergence: %.2f", Divergence(setmap)))
	lines = append(lines, fmt.Sprintf("Code Utilization: %.2f", nu))
	lines = append(lines, fmt.Sprintf("Unused Code (%%): %.2f", unused))
	lines = append(lines, fmt.Sprintf("Total SLOC: %d", total))

	return strings.Join(lines, "\n")
}
