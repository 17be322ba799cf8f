package model

import (
	"testing"

	"github.com/nkamapper/topo2osm/internal/geometry"
)

func TestRecomputeParentsTracksPatchMembers(t *testing.T) {
	s := NewStore()
	segIndex := s.AddSegment(&Segment{ObjectKind: "Strandlinje, sjö", Coords: []geometry.Coordinate{{0, 0}, {1, 0}}})
	s.AddFeature(&Feature{
		ObjectKind: "Sjö",
		Kind:       KindPolygon,
		Patches: []Patch{
			{Coords: []geometry.Coordinate{{0, 0}, {1, 0}, {0, 0}}, Members: []int{segIndex}},
		},
	})

	s.RecomputeParents()

	seg := s.Segments[segIndex]
	if len(seg.Parents) != 1 {
		t.Fatalf("expected 1 parent, got %d", len(seg.Parents))
	}
	if seg.Parents[0].FeatureIndex != 0 || seg.Parents[0].PatchIndex != 0 {
		t.Fatalf("unexpected parent ref: %+v", seg.Parents[0])
	}
}

func TestCompactFeaturesRewritesSegmentParents(t *testing.T) {
	s := NewStore()
	segA := s.AddSegment(&Segment{Coords: []geometry.Coordinate{{0, 0}, {1, 0}}})
	segB := s.AddSegment(&Segment{Coords: []geometry.Coordinate{{1, 0}, {2, 0}}})

	s.AddFeature(&Feature{Kind: KindPolygon, Patches: []Patch{{Members: []int{segA}}}})
	s.AddFeature(&Feature{Kind: KindPolygon, Patches: []Patch{{Members: []int{segB}}}})
	s.RecomputeParents()
	s.DeleteFeature(0)

	remap := make(map[int]int)
	s.CompactFeatures(remap)

	if len(s.Features) != 1 {
		t.Fatalf("expected 1 surviving feature, got %d", len(s.Features))
	}
	if remap[1] != 0 {
		t.Fatalf("expected feature 1 to remap to 0, got %d", remap[1])
	}
	if len(s.Segments[segA].Parents) != 0 {
		t.Fatal("expected deleted feature's segment parent to be dropped")
	}
	if len(s.Segments[segB].Parents) != 1 || s.Segments[segB].Parents[0].FeatureIndex != 0 {
		t.Fatalf("expected surviving segment parent remapped to 0, got %+v", s.Segments[segB].Parents)
	}
}

func TestNodeSetMembership(t *testing.T) {
	s := NewStore()
	c := geometry.Coordinate{Lon: 1, Lat: 2}
	if s.IsNode(c) {
		t.Fatal("expected node set empty initially")
	}
	s.MarkNode(c)
	if !s.IsNode(c) {
		t.Fatal("expected node to be registered")
	}
}
