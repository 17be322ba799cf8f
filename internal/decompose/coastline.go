package decompose

import (
	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
)

// CoastlineRepair runs the sea pre-step from spec.md §4.G: for every
// Strandlinje, hav / Stängning mot hav segment, match it against each Hav
// feature patch; if exactly one segment coordinate has no exact match in
// the patch but a patch vertex lies within snapMeters of it, rewrite that
// patch vertex to equal the segment coordinate. Returns the number of
// vertices rewritten.
func CoastlineRepair(store *model.Store, snapMeters float64) int {
	repaired := 0
	for _, seg := range store.Segments {
		if seg.ObjectKind != "Strandlinje, hav" && seg.ObjectKind != "Stängning mot hav" {
			continue
		}
		for _, f := range store.Features {
			if f.Deleted() || f.ObjectKind != "Hav" {
				continue
			}
			for pi := range f.Patches {
				repaired += repairAgainstPatch(seg, &f.Patches[pi], snapMeters)
			}
		}
	}
	return repaired
}

func repairAgainstPatch(seg *model.Segment, patch *model.Patch, snapMeters float64) int {
	patchSet := make(map[geometry.Coordinate]int, len(patch.Coords))
	for i, c := range patch.Coords {
		patchSet[c] = i
	}

	var unmatched []int
	for i, c := range seg.Coords {
		if _, ok := patchSet[c]; !ok {
			unmatched = append(unmatched, i)
		}
	}
	if len(unmatched) != 1 {
		return 0
	}

	missing := seg.Coords[unmatched[0]]
	bestIdx := -1
	bestDist := snapMeters
	for i, c := range patch.Coords {
		dist := geometry.PointDistance(c, missing)
		if dist < bestDist {
			bestDist = dist
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return 0
	}
	patch.Coords[bestIdx] = missing
	return 1
}
