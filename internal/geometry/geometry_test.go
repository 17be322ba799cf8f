package geometry

import (
	"math"
	"testing"
)

func closeEnough(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestPolygonAreaSign(t *testing.T) {
	tests := []struct {
		name string
		ring Ring
		want string // "cw", "ccw", "zero"
	}{
		{
			name: "clockwise square",
			ring: Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}},
			want: "cw",
		},
		{
			name: "counter-clockwise square",
			ring: Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}},
			want: "ccw",
		},
		{
			name: "unclosed ring",
			ring: Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
			want: "zero",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			area := PolygonArea(tc.ring)
			switch tc.want {
			case "cw":
				if area >= 0 {
					t.Fatalf("expected negative area, got %v", area)
				}
			case "ccw":
				if area <= 0 {
					t.Fatalf("expected positive area, got %v", area)
				}
			case "zero":
				if area != 0 {
					t.Fatalf("expected zero area for unclosed ring, got %v", area)
				}
			}
		})
	}
}

func TestMultipolygonAreaSubtractsHoles(t *testing.T) {
	outer := Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}
	inner := Ring{{0.25, 0.25}, {0.25, 0.75}, {0.75, 0.75}, {0.75, 0.25}, {0.25, 0.25}}
	area := MultipolygonArea([]Ring{outer, inner})
	outerArea := math.Abs(PolygonArea(outer))
	innerArea := math.Abs(PolygonArea(inner))
	if !closeEnough(area, outerArea-innerArea, 1e-6) {
		t.Fatalf("got %v, want %v", area, outerArea-innerArea)
	}
}

func TestMultipolygonAreaUnclosedRingIsNaN(t *testing.T) {
	outer := Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	if !math.IsNaN(MultipolygonArea([]Ring{outer})) {
		t.Fatal("expected NaN for unclosed outer ring")
	}
}

func TestPointInPolygon(t *testing.T) {
	square := Ring{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}
	if !PointInPolygon(Coordinate{5, 5}, square) {
		t.Fatal("expected center point inside square")
	}
	if PointInPolygon(Coordinate{20, 20}, square) {
		t.Fatal("expected far point outside square")
	}
}

func TestPointInMultipolygonExcludesHoles(t *testing.T) {
	outer := Ring{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}
	hole := Ring{{4, 4}, {4, 6}, {6, 6}, {6, 4}, {4, 4}}
	patches := []Ring{outer, hole}
	if !PointInMultipolygon(Coordinate{1, 1}, patches) {
		t.Fatal("expected point outside hole but inside outer to match")
	}
	if PointInMultipolygon(Coordinate{5, 5}, patches) {
		t.Fatal("expected point inside hole to be excluded")
	}
}

func TestSegmentDistanceClampsToEndpoints(t *testing.T) {
	a := Coordinate{0, 0}
	b := Coordinate{0, 1}
	// p is "before" a along the segment's direction; clamp should pin to a.
	p := Coordinate{0, -1}
	dist, closest := SegmentDistance(p, a, b, true)
	want := PointDistance(p, a)
	if !closeEnough(dist, want, 1.0) {
		t.Fatalf("distance %v, want ~%v", dist, want)
	}
	if closest != a {
		t.Fatalf("closest point %v, want %v", closest, a)
	}
}

func TestShortestDistancePicksNearestSegment(t *testing.T) {
	line := []Coordinate{{0, 0}, {0, 10}, {10, 10}}
	dist, idx := ShortestDistance(Coordinate{0, 5}, line)
	if idx != 0 {
		t.Fatalf("expected nearest segment index 0, got %d", idx)
	}
	if dist > 1.0 {
		t.Fatalf("expected near-zero distance, got %v", dist)
	}
}

func TestBBoxOverlap(t *testing.T) {
	a := Bounds([]Coordinate{{0, 0}, {1, 1}}, 0)
	b := Bounds([]Coordinate{{0.5, 0.5}, {2, 2}}, 0)
	c := Bounds([]Coordinate{{5, 5}, {6, 6}}, 0)
	if !a.Overlaps(b) {
		t.Fatal("expected a and b to overlap")
	}
	if a.Overlaps(c) {
		t.Fatal("expected a and c to not overlap")
	}
}

func TestBoundsPadding(t *testing.T) {
	unpadded := Bounds([]Coordinate{{0, 0}, {1, 1}}, 0)
	padded := Bounds([]Coordinate{{0, 0}, {1, 1}}, 1000)
	if padded.MinLon >= unpadded.MinLon || padded.MaxLon <= unpadded.MaxLon {
		t.Fatal("expected padding to expand the box")
	}
}

func TestSplitPatchOnSimpleRing(t *testing.T) {
	ring := Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	out := SplitPatch(ring)
	if len(out) != 1 {
		t.Fatalf("expected simple ring unchanged, got %d rings", len(out))
	}
}

func TestSplitPatchSelfTouchingRing(t *testing.T) {
	// spec.md E6
	ring := Ring{{0, 0}, {2, 0}, {1, 1}, {2, 2}, {0, 2}, {1, 1}, {0, 0}}
	out := SplitPatch(ring)
	if len(out) != 2 {
		t.Fatalf("expected 2 rings, got %d", len(out))
	}
	// Longer ring (by planar length) must come first.
	if planarLength(out[0]) < planarLength(out[1]) {
		t.Fatal("expected rings ordered by descending planar length")
	}
	for _, r := range out {
		seen := make(map[Coordinate]bool)
		for _, c := range r[:len(r)-1] {
			if seen[c] {
				t.Fatalf("ring %v has repeated interior vertex", r)
			}
			seen[c] = true
		}
	}
}

func TestSimplifyIdempotentAtZeroEpsilon(t *testing.T) {
	line := []Coordinate{{0, 0}, {0.1, 0.0001}, {0.2, -0.0001}, {1, 0}}
	out := Simplify(line, 0)
	if len(out) != len(line) {
		t.Fatalf("expected no points removed at epsilon=0, got %d of %d", len(out), len(line))
	}
}

func TestSimplifyRemovesCollinearPoints(t *testing.T) {
	line := []Coordinate{{0, 0}, {0.00001, 0.5}, {0, 1}}
	out := Simplify(line, 5)
	if len(out) != 2 {
		t.Fatalf("expected midpoint collapsed, got %d points", len(out))
	}
	if out[0] != line[0] || out[1] != line[2] {
		t.Fatal("expected endpoints preserved")
	}
}

func TestSimplifyReapplicationStable(t *testing.T) {
	line := []Coordinate{{0, 0}, {0.1, 5}, {0.2, -5}, {0.3, 3}, {1, 0}}
	first := Simplify(line, 1000)
	second := Simplify(first, 1000)
	if len(second) > len(first) {
		t.Fatal("re-simplification must never add points back")
	}
}
