// Package decompose matches polygon rings against candidate segments and
// synthesizes any missing boundary segments, producing each patch's member
// list (spec.md §4.G). This is the Go analogue of the teacher's
// edge-to-ring topology resolution (internal/parser/topology.go), adapted
// from S-57's VRPT/FSPT edge references to segment-vertex-subset matching.
package decompose

import (
	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
	"github.com/nkamapper/topo2osm/internal/spatialindex"
)

var waterKinds = map[string]bool{
	"Hav": true, "Sjö": true, "Anlagt vatten": true, "Vattendragsyta": true,
}

func isWater(kind string) bool { return waterKinds[kind] }

// Decompose walks every polygon feature in store, in priority order
// (lowest sortOrder index first), and fills in each patch's Members list.
// wetlandEqualityOnly restricts wetland candidates to segments that equal
// the whole ring (Topo50/100 rule). priorityOf gives each object kind its
// rank; kinds it does not list rank after every listed kind.
func Decompose(store *model.Store, priorityOf func(kind string) int, wetlandEqualityOnly func(kind string) bool) {
	order := make([]int, 0, len(store.Features))
	for i, f := range store.Features {
		if f.Kind == model.KindPolygon && !f.Deleted() {
			order = append(order, i)
		}
	}
	sortByPriority(order, store, priorityOf)

	segBBoxOf := func(id int) geometry.BBox { return store.Segments[id].BBox() }
	segIDs := make([]int, len(store.Segments))
	for i := range store.Segments {
		segIDs[i] = i
	}
	index := spatialindex.New(segIDs, segBBoxOf)

	for _, fi := range order {
		f := store.Features[fi]
		water := isWater(f.ObjectKind)
		wetlandEqOnly := wetlandEqualityOnly != nil && wetlandEqualityOnly(f.ObjectKind)
		for pi := range f.Patches {
			decomposePatch(store, index, f, pi, water, wetlandEqOnly)
		}
	}
}

func sortByPriority(order []int, store *model.Store, priorityOf func(string) int) {
	for i := 1; i < len(order); i++ {
		for j := i; j > 0; j-- {
			pi := priorityOf(store.Features[order[j]].ObjectKind)
			pj := priorityOf(store.Features[order[j-1]].ObjectKind)
			if pi < pj {
				order[j], order[j-1] = order[j-1], order[j]
			} else {
				break
			}
		}
	}
}

func decomposePatch(store *model.Store, index *spatialindex.Index, f *model.Feature, pi int, water, wetlandEqOnly bool) {
	patch := &f.Patches[pi]
	ring := patch.Coords
	n := len(ring)
	if n < 4 {
		return
	}
	ringIndex := make(map[geometry.Coordinate]int, n)
	for i, c := range ring[:n-1] {
		ringIndex[c] = i
	}
	ringSet := make(map[geometry.Coordinate]bool, n)
	for c := range ringIndex {
		ringSet[c] = true
	}

	claimedEdges := make(map[int]bool) // ring edge index i -> covered (edge between i and i+1)
	claimedConns := make(map[geometry.Coordinate]bool)

	bbox := geometry.Bounds(ring, 0)
	candidates := index.Query(bbox)

	for _, si := range candidates {
		seg := store.Segments[si]
		if !isSubsetOfRing(seg.Coords, ringSet) {
			continue
		}
		if !seg.BBox().Overlaps(bbox) {
			continue
		}
		if water && seg.ObjectKind == "Stängning" {
			continue
		}
		if wetlandEqOnly && !ringEquals(seg.Coords, ring) {
			continue
		}

		startIdx, endIdx, ok := consecutiveIndices(ringIndex, seg.First(), seg.Last(), n-1)
		if !ok {
			continue
		}

		connFlag := false
		for _, c := range seg.Coords {
			if claimedConns[c] {
				connFlag = true
				break
			}
		}
		if connFlag {
			continue
		}

		forward := directionMatchesRing(seg.Coords, ring, startIdx, endIdx, n-1)
		wasUnused := seg.Used == 0
		if water && wasUnused {
			if !forward {
				reverseSegment(seg)
			}
		}

		seg.Used++
		for _, c := range seg.Coords {
			claimedConns[c] = true
		}
		markEdgesCovered(claimedEdges, startIdx, endIdx, forward, n-1)
		patch.Members = append(patch.Members, si)

		if allEdgesCovered(claimedEdges, n-1) {
			break
		}
	}

	if !allEdgesCovered(claimedEdges, n-1) {
		completeLeftoverRuns(store, patch, ring, claimedEdges, n-1)
	}

	sortMembersByRingPosition(store, patch, ringIndex, n-1)
}

// isSubsetOfRing reports whether every coordinate of coords appears in
// ringSet.
func isSubsetOfRing(coords []geometry.Coordinate, ringSet map[geometry.Coordinate]bool) bool {
	if len(coords) == 0 {
		return false
	}
	for _, c := range coords {
		if !ringSet[c] {
			return false
		}
	}
	return true
}

func ringEquals(segCoords, ring []geometry.Coordinate) bool {
	if len(segCoords) != len(ring) {
		return false
	}
	for i := range segCoords {
		if segCoords[i] != ring[i] {
			return false
		}
	}
	return true
}

// consecutiveIndices reports whether the ring indices of a and b are
// adjacent (allowing wrap-around on the closed ring of size n).
func consecutiveIndices(ringIndex map[geometry.Coordinate]int, a, b geometry.Coordinate, n int) (int, int, bool) {
	ia, aok := ringIndex[a]
	ib, bok := ringIndex[b]
	if !aok || !bok {
		return 0, 0, false
	}
	if (ib-ia+n)%n == 1 || (ia-ib+n)%n == 1 {
		return ia, ib, true
	}
	return ia, ib, false
}

// directionMatchesRing reports whether segCoords travels in the ring's
// natural forward direction (ring index increasing, mod n).
func directionMatchesRing(segCoords, ring []geometry.Coordinate, startIdx, endIdx, n int) bool {
	return len(segCoords) > 1 && segCoords[1] == ring[(startIdx+1)%n]
}

func reverseSegment(seg *model.Segment) {
	out := make([]geometry.Coordinate, len(seg.Coords))
	for i, c := range seg.Coords {
		out[len(seg.Coords)-1-i] = c
	}
	seg.Coords = out
	seg.InvalidateBBox()
}

func markEdgesCovered(claimed map[int]bool, startIdx, endIdx int, forward bool, n int) {
	// A 2-point segment covers exactly one ring edge; longer segments may
	// span several consecutive ring edges (each pair of adjacent interior
	// vertices counts as one covered edge).
	if !forward {
		startIdx, endIdx = endIdx, startIdx
	}
	for i := startIdx; i != endIdx; i = (i + 1) % n {
		claimed[i] = true
	}
}

func allEdgesCovered(claimed map[int]bool, n int) bool {
	for i := 0; i < n; i++ {
		if !claimed[i] {
			return false
		}
	}
	return true
}

// completeLeftoverRuns synthesizes new segments covering any ring edges not
// yet claimed, e.g. along the municipality border (spec.md §4.G
// "Completion").
func completeLeftoverRuns(store *model.Store, patch *model.Patch, ring []geometry.Coordinate, claimed map[int]bool, n int) {
	i := 0
	for i < n {
		if claimed[i] {
			i++
			continue
		}
		j := i
		var run []geometry.Coordinate
		run = append(run, ring[j])
		for j < n && !claimed[j] {
			claimed[j] = true
			run = append(run, ring[(j+1)%n])
			j++
		}
		segIndex := store.AddSegment(&model.Segment{
			ObjectKind: "Gräns for bebyggelse",
			Coords:     run,
			Tags:       map[string]string{},
			Used:       1,
		})
		patch.Members = append(patch.Members, segIndex)
		i = j
	}
}

// sortMembersByRingPosition orders the patch's member list by the ring
// position of each segment's last coordinate — for 2-vertex segments, the
// larger of the two endpoint indices instead — producing a cyclically sensible
// ordering that agrees with the ring walk (spec.md §4.G, §9 open question).
func sortMembersByRingPosition(store *model.Store, patch *model.Patch, ringIndex map[geometry.Coordinate]int, n int) {
	key := func(segIndex int) int {
		seg := store.Segments[segIndex]
		if len(seg.Coords) == 2 {
			i0, i1 := ringIndex[seg.Coords[0]], ringIndex[seg.Coords[1]]
			if i0 > i1 {
				return i0
			}
			return i1
		}
		if idx, ok := ringIndex[seg.Last()]; ok {
			return idx
		}
		return 0
	}
	members := patch.Members
	for i := 1; i < len(members); i++ {
		for j := i; j > 0 && key(members[j]) < key(members[j-1]); j-- {
			members[j], members[j-1] = members[j-1], members[j]
		}
	}
}
