package intersect

import (
	"testing"

	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
)

func TestRemoveSeaFeaturesDropsHav(t *testing.T) {
	store := model.NewStore()
	store.AddFeature(&model.Feature{ObjectKind: "Hav", Kind: model.KindPolygon})
	store.AddFeature(&model.Feature{ObjectKind: "Sjö", Kind: model.KindPolygon})

	removed := RemoveSeaFeatures(store)
	if removed != 1 {
		t.Fatalf("expected 1 sea feature removed, got %d", removed)
	}
	if !store.Features[0].Deleted() {
		t.Fatal("expected Hav feature marked deleted")
	}
	if store.Features[1].Deleted() {
		t.Fatal("expected Sjö feature untouched")
	}
}

func TestSeedNodeSetMarksSegmentAndLineEndpoints(t *testing.T) {
	store := model.NewStore()
	store.AddSegment(&model.Segment{Used: 1, Coords: []geometry.Coordinate{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 1}}})
	store.AddFeature(&model.Feature{Kind: model.KindLineString, Line: []geometry.Coordinate{{Lon: 5, Lat: 5}, {Lon: 6, Lat: 6}}})

	SeedNodeSet(store)
	if !store.IsNode(geometry.Coordinate{Lon: 0, Lat: 0}) || !store.IsNode(geometry.Coordinate{Lon: 1, Lat: 1}) {
		t.Fatal("expected segment endpoints in node set")
	}
	if !store.IsNode(geometry.Coordinate{Lon: 5, Lat: 5}) || !store.IsNode(geometry.Coordinate{Lon: 6, Lat: 6}) {
		t.Fatal("expected line feature endpoints in node set")
	}
}

func TestResolveStreamShoreIntersectionsSnapsNearEndpoint(t *testing.T) {
	store := model.NewStore()
	shore := store.AddSegment(&model.Segment{
		ObjectKind: "Strandlinje, sjö", Used: 1,
		Coords: []geometry.Coordinate{{Lon: 0, Lat: 0}, {Lon: 2, Lat: 0}},
	})
	river := &model.Feature{
		ObjectKind: "Vattendrag", Kind: model.KindLineString,
		Line: []geometry.Coordinate{{Lon: 1, Lat: 0.0000001}, {Lon: 1, Lat: 1}},
	}
	store.AddFeature(river)

	snapped, _ := ResolveStreamShoreIntersections(store)
	if snapped == 0 {
		t.Fatal("expected the near river endpoint to snap onto the shoreline")
	}
	found := false
	for _, c := range store.Segments[shore].Coords {
		if c == river.Line[0] {
			found = true
		}
	}
	if !found {
		t.Fatal("expected river endpoint to become (or match) a shoreline vertex")
	}
}
