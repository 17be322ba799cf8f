// Package island materializes islands implicit in water features' inner
// rings and in cycles formed by coastline/river/lake boundary segments
// (spec.md §4.I).
package island

import (
	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
)

var waterFeatureKinds = map[string]bool{
	"Sjö": true, "Anlagt vatten": true, "Vattendragsyta": true, "Hav": true,
}

func placeTag(area, islandSizeM2 float64) string {
	if area >= islandSizeM2 {
		return "island"
	}
	return "islet"
}

// InnerRings materializes a new polygon feature ("Ö", place=island|islet)
// for every inner patch of every water feature, tagged by the
// islandSizeM2-m² threshold. If an existing non-wetland feature's outer
// ring exactly matches the inner ring's member set, that feature is
// reused (the place tag is added to it) instead of creating a duplicate.
// Returns the number of islands materialized or reused.
func InnerRings(store *model.Store, islandSizeM2 float64) int {
	count := 0
	// Snapshot feature count: this phase may append new features but must
	// not re-process the ones it just created.
	n := len(store.Features)
	for fi := 0; fi < n; fi++ {
		f := store.Features[fi]
		if f.Deleted() || f.Kind != model.KindPolygon || !waterFeatureKinds[f.ObjectKind] {
			continue
		}
		for pi := 1; pi < len(f.Patches); pi++ {
			patch := f.Patches[pi]
			area := geometry.PolygonArea(geometry.Ring(patch.Coords))
			tag := placeTag(absF(area), islandSizeM2)

			if reuse := findExactMatch(store, n, patch); reuse != nil {
				reuse.Tags["place"] = tag
				count++
				continue
			}

			store.AddFeature(&model.Feature{
				ObjectKind: "Ö",
				Kind:       model.KindPolygon,
				Tags:       map[string]string{"place": tag},
				Patches:    []model.Patch{{Coords: append([]geometry.Coordinate{}, patch.Coords...), Members: append([]int{}, patch.Members...)}},
			})
			count++
		}
	}
	return count
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func findExactMatch(store *model.Store, limit int, patch model.Patch) *model.Feature {
	for i := 0; i < limit; i++ {
		f := store.Features[i]
		if f.Deleted() || f.Kind != model.KindPolygon || len(f.Patches) == 0 {
			continue
		}
		if isWetland(f.ObjectKind) {
			continue
		}
		if membersEqual(f.Patches[0].Members, patch.Members) {
			return f
		}
	}
	return nil
}

func isWetland(kind string) bool {
	return kind == "Sankmark, öppen" || kind == "Sankmark, träd"
}

func membersEqual(a, b []int) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	set := make(map[int]bool, len(a))
	for _, m := range a {
		set[m] = true
	}
	for _, m := range b {
		if !set[m] {
			return false
		}
	}
	return true
}

// shoreKindMatches classifies a segment as belonging to pass (a) pure coastline
// or pass (b) the broader lake/river/sea boundary set.
func shoreKindMatches(objectKind string, pass int) bool {
	switch pass {
	case 0:
		return objectKind == "Strandlinje, hav" || objectKind == "Stängning mot hav"
	default:
		return objectKind == "Strandlinje, hav" || objectKind == "Stängning mot hav" ||
			objectKind == "Strandlinje, sjö" || objectKind == "Vattendrag"
	}
}

// ShoreCycles walks candidate shore segments in two passes — pure
// coastline, then lake/river/sea combinations — greedily chaining
// unconsumed segments end-to-end. Every closed, positively-wound cycle
// (negative winding is a lake, not an island) becomes a new island
// feature tagged by the same threshold as InnerRings. Returns the number
// of islands materialized.
func ShoreCycles(store *model.Store, islandSizeM2 float64) int {
	consumed := make(map[int]bool)
	count := 0
	for pass := 0; pass < 2; pass++ {
		var candidates []int
		for si, seg := range store.Segments {
			if consumed[si] || seg.Used == 0 {
				continue
			}
			if shoreKindMatches(seg.ObjectKind, pass) {
				candidates = append(candidates, si)
			}
		}

		for _, start := range candidates {
			if consumed[start] {
				continue
			}
			cycle, ok := walkCycle(store, candidates, consumed, start)
			if !ok {
				continue
			}
			ring := cycleToRing(store, cycle)
			area := geometry.PolygonArea(geometry.Ring(ring))
			if area <= 0 {
				continue // negative winding is a lake, not an island
			}
			for _, si := range cycle {
				consumed[si] = true
			}
			store.AddFeature(&model.Feature{
				ObjectKind: "Ö",
				Kind:       model.KindPolygon,
				Tags:       map[string]string{"place": placeTag(area, islandSizeM2)},
				Patches:    []model.Patch{{Coords: ring, Members: append([]int{}, cycle...)}},
			})
			count++
		}
	}
	return count
}

func walkCycle(store *model.Store, candidates []int, consumed map[int]bool, start int) ([]int, bool) {
	chain := []int{start}
	used := map[int]bool{start: true}
	tail := store.Segments[start].Last()
	head := store.Segments[start].First()

	for tail != head {
		extended := false
		for _, c := range candidates {
			if consumed[c] || used[c] {
				continue
			}
			if store.Segments[c].First() == tail {
				chain = append(chain, c)
				used[c] = true
				tail = store.Segments[c].Last()
				extended = true
				break
			}
		}
		if !extended {
			return nil, false
		}
	}
	return chain, true
}

func cycleToRing(store *model.Store, cycle []int) []geometry.Coordinate {
	var ring []geometry.Coordinate
	for _, si := range cycle {
		coords := store.Segments[si].Coords
		if len(ring) > 0 && ring[len(ring)-1] == coords[0] {
			ring = append(ring, coords[1:]...)
		} else {
			ring = append(ring, coords...)
		}
	}
	return ring
}
