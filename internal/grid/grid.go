// Package grid discovers the artificial axis-aligned edges introduced when
// source polygons were clipped on the national 10/100 km grid, and
// materializes them as auxiliary Gridline segments so later phases can
// stitch cross-grid features back together (spec.md §4.D).
package grid

import (
	"math"
	"sort"

	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
)

// ObjectKind is the synthetic object kind assigned to every segment this
// package produces.
const ObjectKind = "Gridline"

// onGrid reports whether v is congruent to 0 modulo gridSize, within a
// small epsilon to absorb floating point noise in the projected CRS.
func onGrid(v, gridSize float64) bool {
	const eps = 1e-6
	m := math.Mod(v, gridSize)
	if m < 0 {
		m += gridSize
	}
	return m < eps || gridSize-m < eps
}

// PointOnGrid reports whether a projected coordinate lies on a grid line
// (either axis).
func PointOnGrid(projected geometry.Coordinate, gridSize float64) bool {
	return onGrid(projected.Lon, gridSize) || onGrid(projected.Lat, gridSize)
}

// AtGridCrossing reports whether a projected coordinate lies at a grid
// intersection — on the grid in both axes (spec.md §4.H combine
// precondition (b)).
func AtGridCrossing(projected geometry.Coordinate, gridSize float64) bool {
	return onGrid(projected.Lon, gridSize) && onGrid(projected.Lat, gridSize)
}

// run is a candidate maximal on-grid vertex run, carried in both the
// projected and reprojected coordinate spaces so later phases can work in
// whichever space they need.
type run struct {
	projected  []geometry.Coordinate
	wgs84      []geometry.Coordinate
}

// rotateToOffGrid returns ring rotated so index 0 is not on a grid line, or
// the ring unchanged if every vertex is on-grid (degenerate case).
func rotateToOffGrid(ring []geometry.Coordinate, gridSize float64) []geometry.Coordinate {
	// ring is closed (first == last); work on the open form.
	open := ring
	if len(open) > 1 && open[0] == open[len(open)-1] {
		open = open[:len(open)-1]
	}
	for i, c := range open {
		if !PointOnGrid(c, gridSize) {
			if i == 0 {
				return open
			}
			rotated := make([]geometry.Coordinate, 0, len(open))
			rotated = append(rotated, open[i:]...)
			rotated = append(rotated, open[:i]...)
			return rotated
		}
	}
	return open
}

// Detect walks projectedRing (pre-reprojection coordinates) and wgs84Ring
// (the same ring already reprojected, index-aligned) and returns every
// maximal run of >=2 consecutive on-grid vertices as a candidate Gridline
// segment, in both coordinate spaces.
func Detect(projectedRing, wgs84Ring []geometry.Coordinate, gridSize float64) []model.Segment {
	if len(projectedRing) != len(wgs84Ring) || len(projectedRing) < 2 {
		return nil
	}
	open := projectedRing
	openWGS := wgs84Ring
	if open[0] == open[len(open)-1] {
		open = open[:len(open)-1]
		openWGS = openWGS[:len(openWGS)-1]
	}
	n := len(open)
	if n < 2 {
		return nil
	}

	// Rotate both rings together so index 0 is off-grid.
	startIdx := 0
	for i, c := range open {
		if !PointOnGrid(c, gridSize) {
			startIdx = i
			break
		}
	}
	rotProj := append(append([]geometry.Coordinate{}, open[startIdx:]...), open[:startIdx]...)
	rotWGS := append(append([]geometry.Coordinate{}, openWGS[startIdx:]...), openWGS[:startIdx]...)

	var runs []run
	i := 0
	for i < n {
		if !PointOnGrid(rotProj[i], gridSize) {
			i++
			continue
		}
		j := i
		for j < n && PointOnGrid(rotProj[j], gridSize) {
			j++
		}
		if j-i >= 2 {
			runs = append(runs, run{
				projected: append([]geometry.Coordinate{}, rotProj[i:j]...),
				wgs84:     append([]geometry.Coordinate{}, rotWGS[i:j]...),
			})
		}
		i = j
	}

	segs := make([]model.Segment, 0, len(runs))
	for _, r := range runs {
		segs = append(segs, model.Segment{
			ObjectKind: ObjectKind,
			Coords:     r.wgs84,
			Projected:  r.projected,
			Tags:       map[string]string{},
			Used:       0,
		})
	}
	return segs
}

// sameRunIgnoringDirection reports whether two coordinate sequences
// represent the same run, forward or reversed.
func sameRunIgnoringDirection(a, b []geometry.Coordinate) bool {
	if len(a) != len(b) {
		return false
	}
	forward := true
	for i := range a {
		if a[i] != b[i] {
			forward = false
			break
		}
	}
	if forward {
		return true
	}
	for i := range a {
		if a[i] != b[len(b)-1-i] {
			return false
		}
	}
	return true
}

// Dedup removes segments that duplicate an earlier one's WGS84 coordinates
// (ignoring direction) and sorts the remainder by Manhattan length
// descending (spec.md §4.D step 3), so overlapping co-linear runs resolve
// to their longest representative first.
func Dedup(segments []model.Segment) []model.Segment {
	var out []model.Segment
	for _, s := range segments {
		dup := false
		for _, kept := range out {
			if sameRunIgnoringDirection(s.Coords, kept.Coords) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return manhattanLength(out[i].Coords) > manhattanLength(out[j].Coords)
	})
	return out
}

func manhattanLength(coords []geometry.Coordinate) float64 {
	total := 0.0
	for i := 0; i+1 < len(coords); i++ {
		total += math.Abs(coords[i+1].Lon-coords[i].Lon) + math.Abs(coords[i+1].Lat-coords[i].Lat)
	}
	return total
}

// PostDedup runs the second, post-reprojection dedup pass (spec.md §4.D):
// segments whose WGS84 coordinates now coincide are merged, and for every
// feature patch that contains all of a grid segment's vertices as a
// consecutive run, the interior nodes are stripped from the ring and the
// segment itself is compressed to its two endpoints.
func PostDedup(store *model.Store, gridlineIndices []int) {
	deduped := make(map[int]bool)
	for i := 0; i < len(gridlineIndices); i++ {
		si := gridlineIndices[i]
		if deduped[si] {
			continue
		}
		segI := store.Segments[si]
		for j := i + 1; j < len(gridlineIndices); j++ {
			sj := gridlineIndices[j]
			if deduped[sj] {
				continue
			}
			segJ := store.Segments[sj]
			if sameRunIgnoringDirection(segI.Coords, segJ.Coords) {
				deduped[sj] = true
			}
		}
	}

	for _, si := range gridlineIndices {
		if deduped[si] {
			continue
		}
		seg := store.Segments[si]
		compressAndStrip(store, seg)
	}
}

// compressAndStrip strips interior nodes belonging to seg's run from every
// polygon patch ring that contains the full run consecutively, then
// compresses seg itself to its two endpoints.
func compressAndStrip(store *model.Store, seg *model.Segment) {
	if len(seg.Coords) < 3 {
		return
	}
	start, end := seg.Coords[0], seg.Coords[len(seg.Coords)-1]
	for _, f := range store.Features {
		if f.Kind != model.KindPolygon || f.Deleted() {
			continue
		}
		for pi := range f.Patches {
			stripRunFromRing(&f.Patches[pi], seg.Coords)
		}
	}
	seg.Coords = []geometry.Coordinate{start, end}
	seg.InvalidateBBox()
}

func stripRunFromRing(patch *model.Patch, run []geometry.Coordinate) {
	ring := patch.Coords
	n := len(ring)
	if n < len(run) {
		return
	}
	for start := 0; start < n; start++ {
		matches := true
		for k, c := range run {
			if ring[(start+k)%n] != c {
				matches = false
				break
			}
		}
		if matches {
			newRing := make([]geometry.Coordinate, 0, n-(len(run)-2))
			newRing = append(newRing, ring[:start+1]...)
			skipEnd := (start + len(run) - 1) % n
			newRing = append(newRing, ring[skipEnd:]...)
			patch.Coords = newRing
			return
		}
	}
}
