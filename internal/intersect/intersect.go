// Package intersect resolves line intersections ahead of simplification:
// it drops sea features, seeds the shared node set from every used
// segment and line feature endpoint, then snaps river endpoints onto
// shorelines and relocates or removes stream/segment vertices that
// collide without being real shared nodes (spec.md §4.K).
package intersect

import (
	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
	"github.com/nkamapper/topo2osm/internal/spatialindex"
)

const snapThresholdM = 0.1

// lastDigitOffset is the (lon, lat) nudge applied to relocate a colliding
// vertex: 4 and 2 units of the decimal place one above the last preserved
// digit (1e-6 at Precision 7), the "4 * offset, 2 * offset" displacement.
func lastDigitOffset() (float64, float64) {
	offset := pow10(-geometry.Precision + 1)
	return 4 * offset, 2 * offset
}

func pow10(exp int) float64 {
	v := 1.0
	if exp >= 0 {
		for i := 0; i < exp; i++ {
			v *= 10
		}
		return v
	}
	for i := 0; i > exp; i-- {
		v /= 10
	}
	return v
}

func isShoreKind(kind string) bool {
	return contains(kind, "Strandlinje") || contains(kind, "Stängning")
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && indexOf(s, substr) >= 0
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

// RemoveSeaFeatures drops every "Hav" feature from the store (spec.md
// §4.K: sea polygons exist only to drive earlier phases, never emitted).
func RemoveSeaFeatures(store *model.Store) int {
	removed := 0
	for i, f := range store.Features {
		if !f.Deleted() && f.ObjectKind == "Hav" {
			store.DeleteFeature(i)
			removed++
		}
	}
	return removed
}

// SeedNodeSet populates the shared node set with the endpoints of every
// used segment and every LineString feature.
func SeedNodeSet(store *model.Store) {
	for _, seg := range store.Segments {
		if seg.Used > 0 {
			store.MarkNode(seg.First())
			store.MarkNode(seg.Last())
		}
	}
	for _, f := range store.Features {
		if f.Deleted() || f.Kind != model.KindLineString || len(f.Line) == 0 {
			continue
		}
		store.MarkNode(f.Line[0])
		store.MarkNode(f.Line[len(f.Line)-1])
	}
}

// ResolveStreamShoreIntersections implements the river/segment
// reconciliation pass: rivers that end near but not on a used segment are
// snapped onto it, and colliding (non-shared) vertices on either side are
// relocated or removed. Returns (snapped, removed).
func ResolveStreamShoreIntersections(store *model.Store) (snapped, removed int) {
	shoreIDs := make([]int, 0, len(store.Segments))
	for si, seg := range store.Segments {
		if seg.Used > 0 {
			shoreIDs = append(shoreIDs, si)
		}
	}
	idx := spatialindex.New(shoreIDs, func(id int) geometry.BBox {
		return store.Segments[id].BBox()
	})

	for _, f := range store.Features {
		if f.Deleted() || f.Kind != model.KindLineString || f.ObjectKind != "Vattendrag" {
			continue
		}
		fbbox := geometry.Bounds(f.Line, 0)

		for _, si := range idx.Query(fbbox) {
			seg := store.Segments[si]

			shared := sharedCoordinate(f.Line, seg.Coords)
			if shared {
				removed += relocateColliding(store, f, seg)
				continue
			}

			if trySnapEnd(store, f, seg, 0) {
				snapped++
				continue
			}
			if trySnapEnd(store, f, seg, len(f.Line)-1) {
				snapped++
			}
		}
	}
	return snapped, removed
}

func sharedCoordinate(a, b []geometry.Coordinate) bool {
	set := make(map[geometry.Coordinate]bool, len(b))
	for _, c := range b {
		set[c] = true
	}
	for _, c := range a {
		if set[c] {
			return true
		}
	}
	return false
}

// trySnapEnd attempts to move one endpoint of a river onto the nearby
// segment when it lies within snapThresholdM but shares no vertex with it.
func trySnapEnd(store *model.Store, f *model.Feature, seg *model.Segment, end int) bool {
	riverPoint := f.Line[end]
	dist, idx := geometry.ShortestDistance(riverPoint, seg.Coords)
	if dist >= snapThresholdM || idx >= len(seg.Coords)-1 {
		return false
	}

	_, closest := geometry.SegmentDistance(riverPoint, seg.Coords[idx], seg.Coords[idx+1], true)

	switch {
	case geometry.PointDistance(closest, seg.Coords[idx]) < snapThresholdM:
		f.Line[end] = seg.Coords[idx]
	case geometry.PointDistance(closest, seg.Coords[idx+1]) < snapThresholdM:
		f.Line[end] = seg.Coords[idx+1]
	default:
		rounded := geometry.Round(closest)
		f.Line[end] = rounded
		newCoords := make([]geometry.Coordinate, 0, len(seg.Coords)+1)
		newCoords = append(newCoords, seg.Coords[:idx+1]...)
		newCoords = append(newCoords, rounded)
		newCoords = append(newCoords, seg.Coords[idx+1:]...)
		seg.Coords = newCoords
		seg.InvalidateBBox()
	}
	delete(store.Nodes, riverPoint)
	store.MarkNode(f.Line[end])
	return true
}

// relocateColliding handles the case where a river and a segment already
// share a vertex: with a shoreline segment the shared vertices become
// nodes; otherwise interior river nodes that collide without being real
// shared nodes are deleted when isolated, or nudged by lastDigitOffset when
// adjacent collisions make deletion unsafe. Returns the number deleted.
func relocateColliding(store *model.Store, f *model.Feature, seg *model.Segment) int {
	removed := 0
	shareSet := make(map[geometry.Coordinate]bool)
	segSet := make(map[geometry.Coordinate]bool, len(seg.Coords))
	for _, c := range seg.Coords {
		segSet[c] = true
	}
	for _, c := range f.Line {
		if segSet[c] {
			shareSet[c] = true
		}
	}

	dLon, dLat := lastDigitOffset()
	for idx := 0; idx < len(f.Line); idx++ {
		node := f.Line[idx]
		if !shareSet[node] {
			continue
		}
		if isShoreKind(seg.ObjectKind) {
			store.MarkNode(node)
			continue
		}
		if idx == 0 || idx == len(f.Line)-1 || store.IsNode(node) {
			continue
		}
		prevShared := idx > 0 && shareSet[f.Line[idx-1]]
		nextShared := idx < len(f.Line)-1 && shareSet[f.Line[idx+1]]
		if !prevShared && !nextShared {
			f.Line = append(f.Line[:idx], f.Line[idx+1:]...)
			idx--
			removed++
			continue
		}
		f.Line[idx] = geometry.CoordinateOffset(node, dLon, dLat)
	}
	return removed
}
