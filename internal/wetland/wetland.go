// Package wetland reconciles slightly inconsistent boundaries between
// adjacent wetland categories (marsh/bog) and shorelines: missing nodes are
// inserted, duplicate nodes removed, and shared boundaries are extracted
// into segments (spec.md §4.E).
package wetland

import (
	"strings"

	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
)

// applicable reports whether kind is one of the object kinds §4.E operates
// on: shorelines, sanctioned wetland boundaries, and (if mergeWetland is
// set) any "*gräns" boundary kind.
func applicable(kind string, mergeWetland bool) bool {
	if strings.HasPrefix(kind, "Strandlinje") || kind == "Sankmark gräns" {
		return true
	}
	return mergeWetland && strings.HasSuffix(kind, "gräns")
}

// connectionSet returns the set of coordinates making up ring, for O(1)
// membership tests used by every sub-pass below.
func connectionSet(coords []geometry.Coordinate) map[geometry.Coordinate]bool {
	set := make(map[geometry.Coordinate]bool, len(coords))
	for _, c := range coords {
		set[c] = true
	}
	return set
}

// OverlapToSegments is pass (i): for each pair of wetland features of
// different object kind whose bboxes overlap, and for each pair of their
// rings sharing at least one vertex, walk the first ring and accumulate
// every run of consecutive vertices that also belong to the second ring
// into a new Sankmark gräns segment.
func OverlapToSegments(store *model.Store, mergeWetland bool) int {
	created := 0
	for i, fi := range store.Features {
		if fi.Deleted() || fi.Kind != model.KindPolygon || !strings.HasPrefix(fi.ObjectKind, "Sankmark, ") {
			continue
		}
		for j := i + 1; j < len(store.Features); j++ {
			fj := store.Features[j]
			if fj.Deleted() || fj.Kind != model.KindPolygon || !strings.HasPrefix(fj.ObjectKind, "Sankmark, ") {
				continue
			}
			if fi.ObjectKind == fj.ObjectKind {
				continue
			}
			if !fi.BBox().Overlaps(fj.BBox()) {
				continue
			}
			for _, pi := range fi.Patches {
				setJ := patchesConnectionSet(fj)
				created += walkAndAccumulate(store, pi.Coords, setJ)
			}
		}
	}
	return created
}

func patchesConnectionSet(f *model.Feature) map[geometry.Coordinate]bool {
	set := make(map[geometry.Coordinate]bool)
	for _, p := range f.Patches {
		for _, c := range p.Coords {
			set[c] = true
		}
	}
	return set
}

func walkAndAccumulate(store *model.Store, ring []geometry.Coordinate, other map[geometry.Coordinate]bool) int {
	created := 0
	var run []geometry.Coordinate
	flush := func() {
		if len(run) >= 2 {
			store.AddSegment(&model.Segment{ObjectKind: "Sankmark gräns", Coords: append([]geometry.Coordinate{}, run...), Tags: map[string]string{}, Used: 0})
			created++
		}
		run = run[:0]
	}
	for i := 0; i+1 < len(ring); i++ {
		a, b := ring[i], ring[i+1]
		if other[a] && other[b] {
			if len(run) == 0 {
				run = append(run, a)
			}
			run = append(run, b)
		} else {
			flush()
		}
	}
	flush()
	return created
}

// SplitSegments is pass (ii): for each wetland patch and each shoreline or
// wetland-boundary segment whose vertex overlap with the patch is partial
// (neither empty, nor the whole segment, nor contained within the
// segment's own endpoints), the segment is split into alternating
// inside/outside sub-runs and the original is dropped.
func SplitSegments(store *model.Store, mergeWetland bool) int {
	created := 0
	for _, f := range store.Features {
		if f.Deleted() || f.Kind != model.KindPolygon {
			continue
		}
		for _, p := range f.Patches {
			patchSet := connectionSet(p.Coords)
			for si, seg := range store.Segments {
				if !applicable(seg.ObjectKind, mergeWetland) {
					continue
				}
				overlap := countOverlap(seg.Coords, patchSet)
				if overlap == 0 || overlap == len(seg.Coords) {
					continue
				}
				if overlap == 2 && patchSet[seg.First()] && patchSet[seg.Last()] {
					continue // overlap is contained in the segment's own endpoints
				}
				runs := splitByMembership(seg.Coords, patchSet)
				if len(runs) < 2 {
					continue
				}
				for _, r := range runs {
					store.AddSegment(&model.Segment{ObjectKind: seg.ObjectKind, Coords: r, Tags: copyTags(seg.Tags), Used: 0})
					created++
				}
				store.Segments[si].Used = 0
				store.Segments[si].Coords = nil
			}
		}
	}
	return created
}

func copyTags(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func countOverlap(coords []geometry.Coordinate, set map[geometry.Coordinate]bool) int {
	n := 0
	for _, c := range coords {
		if set[c] {
			n++
		}
	}
	return n
}

// splitByMembership walks coords, emitting a new run each time membership
// in set flips between consecutive vertices (alternating inside/outside).
func splitByMembership(coords []geometry.Coordinate, set map[geometry.Coordinate]bool) [][]geometry.Coordinate {
	if len(coords) < 2 {
		return nil
	}
	var runs [][]geometry.Coordinate
	run := []geometry.Coordinate{coords[0]}
	curInside := set[coords[0]]
	for i := 1; i < len(coords); i++ {
		inside := set[coords[i]]
		run = append(run, coords[i])
		if inside != curInside && i+1 < len(coords) {
			runs = append(runs, run)
			run = []geometry.Coordinate{coords[i]}
			curInside = inside
		}
	}
	if len(run) >= 2 {
		runs = append(runs, run)
	}
	return runs
}

// InsertMissingNodes is pass (iii): for each segment whose coordinates are
// nearly a subset of a wetland patch (missing fraction <= half the segment
// length), insert any missing coordinate into the patch ring when it lies
// within snapM of the patch polyline, between the two surrounding patch
// vertices.
func InsertMissingNodes(store *model.Store, mergeWetland bool, snapM float64) int {
	inserted := 0
	for _, f := range store.Features {
		if f.Deleted() || f.Kind != model.KindPolygon {
			continue
		}
		for pi := range f.Patches {
			patch := &f.Patches[pi]
			patchSet := connectionSet(patch.Coords)
			for _, seg := range store.Segments {
				if !applicable(seg.ObjectKind, mergeWetland) || len(seg.Coords) < 2 {
					continue
				}
				missing := missingCoords(seg.Coords, patchSet)
				if len(missing) == 0 || len(missing) > len(seg.Coords)/2 {
					continue
				}
				for _, m := range missing {
					dist, idx := geometry.ShortestDistance(m, patch.Coords)
					if dist < snapM && idx >= 0 {
						patch.Coords = insertAt(patch.Coords, idx+1, m)
						patchSet[m] = true
						inserted++
					}
				}
			}
		}
	}
	return inserted
}

func missingCoords(coords []geometry.Coordinate, set map[geometry.Coordinate]bool) []geometry.Coordinate {
	var missing []geometry.Coordinate
	for _, c := range coords {
		if !set[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

func insertAt(ring []geometry.Coordinate, index int, c geometry.Coordinate) []geometry.Coordinate {
	out := make([]geometry.Coordinate, 0, len(ring)+1)
	out = append(out, ring[:index]...)
	out = append(out, c)
	out = append(out, ring[index:]...)
	return out
}

// RemoveSurplusNodes is pass (iv): for each patch that fully contains a
// segment's endpoints, any patch vertex strictly between those endpoints
// that is not part of the segment and lies within snapM of the segment
// polyline is removed, keeping the ring closed.
func RemoveSurplusNodes(store *model.Store, mergeWetland bool, snapM float64) int {
	removed := 0
	for _, f := range store.Features {
		if f.Deleted() || f.Kind != model.KindPolygon {
			continue
		}
		for pi := range f.Patches {
			patch := &f.Patches[pi]
			for _, seg := range store.Segments {
				if !applicable(seg.ObjectKind, mergeWetland) || len(seg.Coords) < 2 {
					continue
				}
				startIdx := indexOf(patch.Coords, seg.First())
				endIdx := indexOf(patch.Coords, seg.Last())
				if startIdx < 0 || endIdx < 0 || startIdx == endIdx {
					continue
				}
				segSet := connectionSet(seg.Coords)
				removed += removeBetween(patch, startIdx, endIdx, segSet, seg.Coords, snapM)
			}
		}
	}
	return removed
}

func indexOf(ring []geometry.Coordinate, c geometry.Coordinate) int {
	for i, r := range ring {
		if r == c {
			return i
		}
	}
	return -1
}

func removeBetween(patch *model.Patch, startIdx, endIdx int, segSet map[geometry.Coordinate]bool, segCoords []geometry.Coordinate, snapM float64) int {
	n := len(patch.Coords)
	lo, hi := startIdx, endIdx
	if lo > hi {
		lo, hi = hi, lo
	}
	removed := 0
	kept := make([]geometry.Coordinate, 0, n)
	for i, c := range patch.Coords {
		strictlyBetween := i > lo && i < hi
		if strictlyBetween && !segSet[c] {
			dist, _ := geometry.ShortestDistance(c, segCoords)
			if dist < snapM {
				removed++
				continue
			}
		}
		kept = append(kept, c)
	}
	if removed > 0 && len(kept) > 0 && kept[0] != kept[len(kept)-1] {
		kept = append(kept, kept[0])
	}
	patch.Coords = kept
	return removed
}
