// Package combine merges polygons that share a Gridline when compatible,
// reconstructs proper ring order after merging, and coalesces consecutive
// segments with identical parents into single members (spec.md §4.H).
package combine

import (
	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
)

// AcrossGrid merges, for each Gridline segment with exactly two distinct
// parent features of the same object kind, those two features — provided
// neither is woodland with both sides exceeding maxMembers, and the grid
// line does not pass through a grid-crossing point. isGridCrossing reports
// whether a projected-CRS coordinate sits at a grid intersection on both
// axes (spec.md §4.D/§4.H); it is checked against the segment's Projected
// coordinates, since Coords is already reprojected to WGS84 by this phase.
// Returns the number of merges performed.
func AcrossGrid(store *model.Store, maxMembers int, isGridCrossing func(geometry.Coordinate) bool) int {
	merged := 0
	for si, seg := range store.Segments {
		if seg.ObjectKind != "Gridline" || seg.Used == 0 {
			continue
		}
		if passesThroughGridCrossing(seg, isGridCrossing) {
			continue
		}

		parents := distinctParentFeatures(seg)
		if len(parents) != 2 {
			continue
		}
		f1, f2 := store.Features[parents[0]], store.Features[parents[1]]
		if f1.ObjectKind != f2.ObjectKind {
			continue
		}
		if isWoodland(f1.ObjectKind) && memberCount(f1) > maxMembers && memberCount(f2) > maxMembers {
			continue
		}

		mergeFeatures(store, parents[0], parents[1], si)
		FixMemberOrder(store, parents[0])
		store.DeleteFeature(parents[1])
		merged++
	}
	store.RecomputeParents()
	return merged
}

func passesThroughGridCrossing(seg *model.Segment, isGridCrossing func(geometry.Coordinate) bool) bool {
	if isGridCrossing == nil {
		return false
	}
	for _, c := range seg.Projected {
		if isGridCrossing(c) {
			return true
		}
	}
	return false
}

func distinctParentFeatures(seg *model.Segment) []int {
	seen := make(map[int]bool)
	var out []int
	for _, p := range seg.Parents {
		if !seen[p.FeatureIndex] {
			seen[p.FeatureIndex] = true
			out = append(out, p.FeatureIndex)
		}
	}
	return out
}

func memberCount(f *model.Feature) int {
	n := 0
	for _, p := range f.Patches {
		n += len(p.Members)
	}
	return n
}

var woodlandKinds = map[string]bool{"Skog": true, "Skog, barr": true, "Skog, löv": true}

func isWoodland(kind string) bool { return woodlandKinds[kind] }

// mergeFeatures removes the shared gridSegIndex from both features'
// members (decrementing Used by 2 total) and appends the smaller feature's
// remaining patches onto the larger one.
func mergeFeatures(store *model.Store, keepIndex, dropIndex, gridSegIndex int) {
	keep := store.Features[keepIndex]
	drop := store.Features[dropIndex]

	removeMember(keep, gridSegIndex)
	removeMember(drop, gridSegIndex)
	store.Segments[gridSegIndex].Used -= 2
	if store.Segments[gridSegIndex].Used < 0 {
		store.Segments[gridSegIndex].Used = 0
	}

	if patchMemberTotal(drop) > patchMemberTotal(keep) {
		keep, drop = drop, keep
		store.Features[keepIndex], store.Features[dropIndex] = keep, drop
	}
	keep.Patches = append(keep.Patches, drop.Patches...)
}

func patchMemberTotal(f *model.Feature) int {
	total := 0
	for _, p := range f.Patches {
		total += len(p.Coords)
	}
	return total
}

func removeMember(f *model.Feature, segIndex int) {
	for pi := range f.Patches {
		members := f.Patches[pi].Members
		out := members[:0]
		for _, m := range members {
			if m != segIndex {
				out = append(out, m)
			}
		}
		f.Patches[pi].Members = out
	}
}

// FixMemberOrder reconstructs proper outer/inner rings for feature fi by
// walking its (now possibly disordered) member segments end-to-end, and
// sorts the resulting patches by absolute area descending so patch 0 is
// always the largest (outer) ring.
func FixMemberOrder(store *model.Store, fi int) {
	f := store.Features[fi]
	var allMembers []int
	for _, p := range f.Patches {
		allMembers = append(allMembers, p.Members...)
	}

	rings := walkIntoRings(store, allMembers)

	newPatches := make([]model.Patch, 0, len(rings))
	for _, r := range rings {
		coords := make([]geometry.Coordinate, 0)
		for _, segIndex := range r {
			segCoords := store.Segments[segIndex].Coords
			if len(coords) > 0 && coords[len(coords)-1] == segCoords[0] {
				coords = append(coords, segCoords[1:]...)
			} else {
				coords = append(coords, segCoords...)
			}
		}
		newPatches = append(newPatches, model.Patch{Coords: coords, Members: r})
	}

	sortPatchesByAreaDesc(newPatches)
	f.Patches = newPatches
}

// walkIntoRings greedily chains member segment indices end-to-end into
// closed rings, mirroring the teacher's buildRingsWithOrientation approach
// of following connectivity rather than trusting input order.
func walkIntoRings(store *model.Store, members []int) [][]int {
	remaining := make(map[int]bool, len(members))
	for _, m := range members {
		remaining[m] = true
	}

	var rings [][]int
	for len(remaining) > 0 {
		var start int
		for m := range remaining {
			start = m
			break
		}
		ring := []int{start}
		delete(remaining, start)
		tail := store.Segments[start].Last()
		head := store.Segments[start].First()

		for {
			extended := false
			for m := range remaining {
				seg := store.Segments[m]
				if seg.First() == tail {
					ring = append(ring, m)
					tail = seg.Last()
					delete(remaining, m)
					extended = true
					break
				}
				if seg.Last() == tail {
					ring = append(ring, m)
					tail = seg.First()
					delete(remaining, m)
					extended = true
					break
				}
			}
			if !extended || tail == head {
				break
			}
		}
		rings = append(rings, ring)
	}
	return rings
}

func sortPatchesByAreaDesc(patches []model.Patch) {
	for i := 1; i < len(patches); i++ {
		for j := i; j > 0 && ringArea(patches[j]) > ringArea(patches[j-1]); j-- {
			patches[j], patches[j-1] = patches[j-1], patches[j]
		}
	}
}

func ringArea(p model.Patch) float64 {
	a := geometry.PolygonArea(geometry.Ring(p.Coords))
	if a < 0 {
		return -a
	}
	return a
}
