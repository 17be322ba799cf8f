package decompose

import (
	"testing"

	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
	"github.com/nkamapper/topo2osm/internal/tagging"
)

func priorityOf(kind string) int { return tagging.PriorityOf(kind, tagging.ObjectSortingOrder) }

func TestDecomposeSharedShoreBetweenTwoLakes(t *testing.T) {
	store := model.NewStore()
	shared := store.AddSegment(&model.Segment{ObjectKind: "Strandlinje, sjö", Coords: []geometry.Coordinate{{1, 0}, {1, 1}}})

	store.AddFeature(&model.Feature{
		ObjectKind: "Sjö", Kind: model.KindPolygon,
		Patches: []model.Patch{{Coords: []geometry.Coordinate{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}},
	})
	store.AddFeature(&model.Feature{
		ObjectKind: "Sjö", Kind: model.KindPolygon,
		Patches: []model.Patch{{Coords: []geometry.Coordinate{{1, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 0}}}},
	})

	Decompose(store, priorityOf, nil)

	seg := store.Segments[shared]
	if seg.Used != 2 {
		t.Fatalf("expected shared shoreline used by both lakes, got used=%d", seg.Used)
	}
	for fi, f := range store.Features {
		if len(f.Patches[0].Members) == 0 {
			t.Fatalf("feature %d got no members assigned", fi)
		}
	}
}

func TestCompletionSynthesizesLeftoverRun(t *testing.T) {
	store := model.NewStore()
	store.AddFeature(&model.Feature{
		ObjectKind: "Åker", Kind: model.KindPolygon,
		Patches: []model.Patch{{Coords: []geometry.Coordinate{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}},
	})

	before := len(store.Segments)
	Decompose(store, priorityOf, nil)
	if len(store.Segments) <= before {
		t.Fatal("expected leftover ring edges to synthesize new segments")
	}
	if len(store.Features[0].Patches[0].Members) == 0 {
		t.Fatal("expected synthesized members on the patch")
	}
}

func TestCoastlineRepairSnapsNearbyVertex(t *testing.T) {
	store := model.NewStore()
	seg := &model.Segment{ObjectKind: "Strandlinje, hav", Coords: []geometry.Coordinate{{0, 0}, {1, 0.0000001}}}
	store.AddSegment(seg)
	f := &model.Feature{
		ObjectKind: "Hav", Kind: model.KindPolygon,
		Patches: []model.Patch{{Coords: []geometry.Coordinate{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}},
	}
	store.AddFeature(f)

	repaired := CoastlineRepair(store, 0.02)
	if repaired != 1 {
		t.Fatalf("expected 1 vertex repaired, got %d", repaired)
	}
	if f.Patches[0].Coords[1] != seg.Coords[1] {
		t.Fatalf("expected patch vertex rewritten to match segment, got %v", f.Patches[0].Coords[1])
	}
}
