// Package partition is the final geometry-reduction phase: it splits
// every used segment and line feature at shared-node coordinates, runs
// Douglas-Peucker simplification independently on each resulting
// partition, and discards any polygon patch or feature that collapses
// into a degenerate shape as a result (spec.md §4.L).
package partition

import (
	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
)

const epsilonM = 0.2

// Simplify applies the full §4.L pass to every used segment and every
// LineString feature in store, then drops degenerate polygon patches and
// zero-patch features. Returns the number of coordinates removed.
func Simplify(store *model.Store) int {
	removed := 0
	for _, seg := range store.Segments {
		if seg.Used == 0 {
			continue
		}
		before := len(seg.Coords)
		seg.Coords = simplifyAtPartitions(store, seg.Coords)
		seg.InvalidateBBox()
		removed += before - len(seg.Coords)
	}
	for _, f := range store.Features {
		if f.Deleted() || f.Kind != model.KindLineString {
			continue
		}
		before := len(f.Line)
		f.Line = simplifyAtPartitions(store, f.Line)
		removed += before - len(f.Line)
	}

	dropDegeneratePatches(store)
	return removed
}

// simplifyAtPartitions splits line at every interior coordinate present in
// the shared node set, simplifies each partition independently, and
// reassembles the result. A closed ring (first == last) with 4 or fewer
// vertices is left untouched: it is already at or below minimal polygon
// size.
func simplifyAtPartitions(store *model.Store, line []geometry.Coordinate) []geometry.Coordinate {
	if len(line) < 2 {
		return line
	}
	if line[0] == line[len(line)-1] && len(line) <= 4 {
		return line
	}

	var out []geometry.Coordinate
	start := 0
	for i := 1; i < len(line); i++ {
		isBreak := i == len(line)-1 || store.IsNode(line[i])
		if !isBreak {
			continue
		}
		part := geometry.Simplify(line[start:i+1], epsilonM)
		if len(out) > 0 {
			part = part[1:] // drop duplicate join coordinate
		}
		out = append(out, part...)
		start = i
	}
	return out
}

// dropDegeneratePatches removes any polygon patch whose coordinate ring
// has collapsed to 2 or fewer distinct points after simplification, and
// deletes any feature left with zero patches as a result.
func dropDegeneratePatches(store *model.Store) {
	for _, f := range store.Features {
		if f.Deleted() || f.Kind != model.KindPolygon {
			continue
		}
		kept := f.Patches[:0]
		for _, p := range f.Patches {
			if countDistinct(p.Coords) > 2 {
				kept = append(kept, p)
			}
		}
		f.Patches = kept
	}
	for i, f := range store.Features {
		if !f.Deleted() && f.Kind == model.KindPolygon && len(f.Patches) == 0 {
			store.DeleteFeature(i)
		}
	}
}

func countDistinct(coords []geometry.Coordinate) int {
	seen := make(map[geometry.Coordinate]bool, len(coords))
	for _, c := range coords {
		seen[c] = true
	}
	return len(seen)
}
