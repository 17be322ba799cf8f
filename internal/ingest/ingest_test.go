package ingest

import (
	"io"
	"testing"

	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/logging"
	"github.com/nkamapper/topo2osm/internal/model"
)

type sliceIterator struct {
	records []Record
	pos     int
}

func (s *sliceIterator) Next() (Record, error) {
	if s.pos >= len(s.records) {
		return Record{}, io.EOF
	}
	r := s.records[s.pos]
	s.pos++
	return r, nil
}

func TestRunDiscardsAvoidObjects(t *testing.T) {
	store := model.NewStore()
	it := &sliceIterator{records: []Record{
		{ObjectKind: "Höjdkurva", Geometry: RawGeometry{Kind: LineString, Line: []geometry.Coordinate{{0, 0}, {1, 1}}}},
	}}
	out, err := Run(store, it, false, 0, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if out.Discarded != 1 || len(store.Features) != 0 {
		t.Fatalf("expected avoid object discarded, got %+v", out)
	}
}

func TestRunClassifiesAuxiliaryAsSegment(t *testing.T) {
	store := model.NewStore()
	it := &sliceIterator{records: []Record{
		{ObjectKind: "Strandlinje, sjö", Geometry: RawGeometry{Kind: LineString, Line: []geometry.Coordinate{{0, 0}, {1, 0}, {1, 1}}}},
	}}
	out, err := Run(store, it, false, 0, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if out.SegmentsCreated != 1 || len(store.Segments) != 1 {
		t.Fatalf("expected 1 auxiliary segment, got %+v", out)
	}
	if store.Segments[0].Used != 0 {
		t.Fatalf("expected auxiliary segment used=0, got %d", store.Segments[0].Used)
	}
}

func TestRunCollapsesVattenfallToPoint(t *testing.T) {
	store := model.NewStore()
	it := &sliceIterator{records: []Record{
		{ObjectKind: "Vattenfall", Geometry: RawGeometry{Kind: LineString, Line: []geometry.Coordinate{{0, 0}, {2, 0}}}},
	}}
	_, err := Run(store, it, false, 0, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(store.Features) != 1 || store.Features[0].Kind != model.KindPoint {
		t.Fatalf("expected 1 point feature, got %+v", store.Features)
	}
	if store.Features[0].Point != (geometry.Coordinate{Lon: 1, Lat: 0}) {
		t.Fatalf("expected midpoint, got %v", store.Features[0].Point)
	}
}

func TestRunDropsRingCollapsingToOneNode(t *testing.T) {
	store := model.NewStore()
	it := &sliceIterator{records: []Record{
		{ObjectKind: "Sjö", Geometry: RawGeometry{Kind: Polygon, Rings: [][]geometry.Coordinate{
			{{0, 0}, {0, 0}, {0, 0}},
		}}},
	}}
	_, err := Run(store, it, false, 0, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(store.Features) != 0 {
		t.Fatalf("expected degenerate ring dropped, got %d features", len(store.Features))
	}
}

func TestRunAppliesSplitPatchBeforeStoringPolygon(t *testing.T) {
	store := model.NewStore()
	ring := []geometry.Coordinate{{0, 0}, {2, 0}, {1, 1}, {2, 2}, {0, 2}, {1, 1}, {0, 0}}
	it := &sliceIterator{records: []Record{
		{ObjectKind: "Sjö", Geometry: RawGeometry{Kind: Polygon, Rings: [][]geometry.Coordinate{ring}}},
	}}
	_, err := Run(store, it, false, 0, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(store.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(store.Features))
	}
	if len(store.Features[0].Patches) != 2 {
		t.Fatalf("expected split_patch to produce 2 patches, got %d", len(store.Features[0].Patches))
	}
}

func TestRunAccumulatesMissingTags(t *testing.T) {
	store := model.NewStore()
	it := &sliceIterator{records: []Record{
		{ObjectKind: "Mystery Object", Geometry: RawGeometry{Kind: Point, Coordinates: []geometry.Coordinate{{0, 0}}}},
	}}
	out, err := Run(store, it, false, 0, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.MissingTags) != 1 || out.MissingTags[0] != "Mystery Object" {
		t.Fatalf("expected missing tag recorded, got %+v", out.MissingTags)
	}
	if store.Features[0].Tags["FIXME"] != "Tag Mystery Object" {
		t.Fatalf("expected FIXME tag, got %+v", store.Features[0].Tags)
	}
}
