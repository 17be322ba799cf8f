package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
)

func TestBuildAllocatesDecreasingNegativeIDs(t *testing.T) {
	store := model.NewStore()
	store.MarkNode(geometry.Coordinate{Lon: 0, Lat: 0})
	store.MarkNode(geometry.Coordinate{Lon: 1, Lat: 1})
	store.AddSegment(&model.Segment{
		Used: 1, ObjectKind: "Gräns", Tags: map[string]string{},
		Coords: []geometry.Coordinate{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 1}},
	})

	doc := Build(store)
	if len(doc.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(doc.Nodes))
	}
	for _, id := range doc.NodeOrder {
		if id > -1001 {
			t.Fatalf("expected node id <= -1001, got %d", id)
		}
	}
}

func TestBuildAppliesClosedWayShortcut(t *testing.T) {
	store := model.NewStore()
	ring := []geometry.Coordinate{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}, {Lon: 1, Lat: 1}, {Lon: 0, Lat: 0}}
	seg := store.AddSegment(&model.Segment{Used: 1, ObjectKind: "Gräns", Tags: map[string]string{}, Coords: ring})
	store.AddFeature(&model.Feature{
		ObjectKind: "Åker", Kind: model.KindPolygon,
		Tags:    map[string]string{"landuse": "farmland"},
		Patches: []model.Patch{{Coords: ring, Members: []int{seg}}},
	})

	doc := Build(store)
	if len(doc.Relations) != 0 {
		t.Fatalf("expected closed-way shortcut to avoid a relation, got %d relations", len(doc.Relations))
	}
	if doc.Ways[0].Tags["landuse"] != "farmland" {
		t.Fatal("expected feature tags merged onto the shortcut way")
	}
}

func TestBuildEmitsMultipolygonRelationForMultiPatchFeature(t *testing.T) {
	store := model.NewStore()
	outer := []geometry.Coordinate{{Lon: 0, Lat: 0}, {Lon: 10, Lat: 0}, {Lon: 10, Lat: 10}, {Lon: 0, Lat: 0}}
	inner := []geometry.Coordinate{{Lon: 2, Lat: 2}, {Lon: 4, Lat: 2}, {Lon: 4, Lat: 4}, {Lon: 2, Lat: 2}}
	outerSeg := store.AddSegment(&model.Segment{Used: 1, ObjectKind: "Gräns", Tags: map[string]string{}, Coords: outer})
	innerSeg := store.AddSegment(&model.Segment{Used: 1, ObjectKind: "Gräns", Tags: map[string]string{}, Coords: inner})
	store.AddFeature(&model.Feature{
		ObjectKind: "Sjö", Kind: model.KindPolygon,
		Tags: map[string]string{"natural": "water"},
		Patches: []model.Patch{
			{Coords: outer, Members: []int{outerSeg}},
			{Coords: inner, Members: []int{innerSeg}},
		},
	})

	doc := Build(store)
	if len(doc.Relations) != 1 {
		t.Fatalf("expected 1 relation, got %d", len(doc.Relations))
	}
	if doc.Relations[0].Tags["type"] != "multipolygon" {
		t.Fatal("expected type=multipolygon on the relation")
	}
	if doc.Relations[0].Members[0].Role != "outer" || doc.Relations[0].Members[1].Role != "inner" {
		t.Fatalf("expected outer then inner roles, got %+v", doc.Relations[0].Members)
	}
}

func TestWriteOSMXMLProducesWellFormedHeader(t *testing.T) {
	store := model.NewStore()
	store.MarkNode(geometry.Coordinate{Lon: 1, Lat: 2})
	doc := Build(store)

	var buf bytes.Buffer
	if err := WriteOSMXML(&buf, doc); err != nil {
		t.Fatalf("WriteOSMXML returned error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `version="0.6"`) || !strings.Contains(out, `upload="false"`) {
		t.Fatalf("expected osm 0.6 non-upload header, got: %s", out)
	}
}
