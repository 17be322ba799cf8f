package placename

import (
	"testing"

	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
)

func square(minLon, minLat, maxLon, maxLat float64) []geometry.Coordinate {
	return []geometry.Coordinate{
		{Lon: minLon, Lat: minLat}, {Lon: maxLon, Lat: minLat},
		{Lon: maxLon, Lat: maxLat}, {Lon: minLon, Lat: maxLat},
		{Lon: minLon, Lat: minLat},
	}
}

func TestMatchCategoriesAppliesBestRankedCandidate(t *testing.T) {
	store := model.NewStore()
	store.AddFeature(&model.Feature{
		ObjectKind: "Sjö", Kind: model.KindPolygon, Tags: map[string]string{},
		Patches: []model.Patch{{Coords: square(0, 0, 10, 10)}},
	})
	store.PlaceNames = append(store.PlaceNames,
		&model.PlaceName{
			Points: []geometry.Coordinate{{Lon: 5, Lat: 5}}, Category: "Sjö",
			Scores: map[string]int{"T250": 1}, Tags: map[string]string{"name": "Stortjärn"}, RefID: "1",
		},
		&model.PlaceName{
			Points: []geometry.Coordinate{{Lon: 6, Lat: 5}}, Category: "Sjö",
			Scores: map[string]int{"T100": 1}, Tags: map[string]string{"name": "Lillsjön"}, RefID: "2",
		},
	)

	tagged := MatchCategories(store, true)
	if tagged != 1 {
		t.Fatalf("expected 1 feature tagged, got %d", tagged)
	}
	f := store.Features[0]
	if f.Tags["name"] != "Stortjärn" {
		t.Fatalf("expected higher-ranked T250 candidate Stortjärn to win, got %q", f.Tags["name"])
	}
	if f.Tags["ALT_NAME"] != "Lillsjön" {
		t.Fatalf("expected runner-up in ALT_NAME, got %q", f.Tags["ALT_NAME"])
	}
	if f.Tags["FIXME"] == "" {
		t.Fatal("expected a FIXME annotation on a non-tied multi-candidate match")
	}
}

func TestMatchCategoriesSeaNamesSkippedWithoutFlag(t *testing.T) {
	store := model.NewStore()
	store.AddFeature(&model.Feature{
		ObjectKind: "Hav", Kind: model.KindPolygon, Tags: map[string]string{},
		Patches: []model.Patch{{Coords: square(0, 0, 10, 10)}},
	})
	place := &model.PlaceName{
		Points: []geometry.Coordinate{{Lon: 5, Lat: 5}}, Category: "Hav",
		Scores: map[string]int{"T250": 1}, Tags: map[string]string{"name": "Bottenhavet"}, RefID: "1",
	}
	store.PlaceNames = append(store.PlaceNames, place)

	MatchCategories(store, false)
	if store.Features[0].Tags["name"] != "" {
		t.Fatalf("expected sea feature left untagged when addSeaNames is false, got %q", store.Features[0].Tags["name"])
	}
	if !place.Claimed() {
		t.Fatal("expected the sea name to be claimed (consumed) even though untagged")
	}
}

func TestProximityFallbackTagsNearestUnclaimedPlace(t *testing.T) {
	store := model.NewStore()
	store.AddFeature(&model.Feature{
		ObjectKind: "Vattendrag", Kind: model.KindLineString, Tags: map[string]string{},
		Line: []geometry.Coordinate{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}},
	})
	store.PlaceNames = append(store.PlaceNames, &model.PlaceName{
		Points: []geometry.Coordinate{{Lon: 0.5, Lat: 0.0001}}, Category: "Vattendrag",
		Tags: map[string]string{"name": "Bäcken"}, RefID: "9",
	})

	tagged := ProximityFallback(store, 1000)
	if tagged != 1 {
		t.Fatalf("expected 1 feature tagged by proximity, got %d", tagged)
	}
	if store.Features[0].Tags["name"] != "Bäcken" {
		t.Fatalf("expected nearest place name applied, got %q", store.Features[0].Tags["name"])
	}
}

func TestFixSuffixesReclassifiesRiverNamedAsLake(t *testing.T) {
	store := model.NewStore()
	store.PlaceNames = append(store.PlaceNames, &model.PlaceName{
		Category: "Sjö", Tags: map[string]string{"name": "Stor-bäcken"},
	})

	fixed := FixSuffixes(store)
	if fixed != 1 {
		t.Fatalf("expected 1 suffix fix, got %d", fixed)
	}
	if store.PlaceNames[0].Category != "Vattendrag" {
		t.Fatalf("expected category reclassified to Vattendrag, got %q", store.PlaceNames[0].Category)
	}
}

func TestScoreTupleOrdersHigherTierFirst(t *testing.T) {
	a := &model.PlaceName{Scores: map[string]int{"T250": 1}, RefID: "5"}
	b := &model.PlaceName{Scores: map[string]int{"T100": 9}, RefID: "1"}
	if !higherScore(a, b) {
		t.Fatal("expected any T250 presence to outrank a higher T100-only score")
	}
}
