package partition

import (
	"testing"

	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
)

func TestSimplifyCollapsesCollinearRun(t *testing.T) {
	store := model.NewStore()
	seg := store.AddSegment(&model.Segment{
		Used: 1,
		Coords: []geometry.Coordinate{
			{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0.0000001}, {Lon: 2, Lat: 0}, {Lon: 3, Lat: 10},
		},
	})
	store.MarkNode(geometry.Coordinate{Lon: 0, Lat: 0})
	store.MarkNode(geometry.Coordinate{Lon: 3, Lat: 10})

	Simplify(store)
	if len(store.Segments[seg].Coords) != 3 {
		t.Fatalf("expected collinear middle point simplified away, got %d coords: %v", len(store.Segments[seg].Coords), store.Segments[seg].Coords)
	}
}

func TestSimplifySkipsSmallClosedRing(t *testing.T) {
	ring := []geometry.Coordinate{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}, {Lon: 1, Lat: 1}, {Lon: 0, Lat: 0}}
	out := simplifyAtPartitions(model.NewStore(), ring)
	if len(out) != len(ring) {
		t.Fatalf("expected small closed ring left untouched, got %d coords", len(out))
	}
}

func TestDropDegeneratePatchesRemovesZeroPatchFeature(t *testing.T) {
	store := model.NewStore()
	fi := store.AddFeature(&model.Feature{
		Kind: model.KindPolygon,
		Patches: []model.Patch{
			{Coords: []geometry.Coordinate{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 0}}},
		},
	})
	dropDegeneratePatches(store)
	if !store.Features[fi].Deleted() {
		t.Fatal("expected feature with only a degenerate patch to be deleted")
	}
}

func TestPartitionsAtSharedNode(t *testing.T) {
	store := model.NewStore()
	mid := geometry.Coordinate{Lon: 5, Lat: 0}
	store.MarkNode(geometry.Coordinate{Lon: 0, Lat: 0})
	store.MarkNode(mid)
	store.MarkNode(geometry.Coordinate{Lon: 10, Lat: 0})

	line := []geometry.Coordinate{{Lon: 0, Lat: 0}, {Lon: 5, Lat: 0}, {Lon: 10, Lat: 0}}
	out := simplifyAtPartitions(store, line)
	if len(out) != 3 {
		t.Fatalf("expected shared-node partition boundary preserved, got %d coords", len(out))
	}
}
