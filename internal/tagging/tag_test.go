package tagging

import "testing"

func TestTagWatercourseClassifiesBySize(t *testing.T) {
	result, err := TagObject("Vattendrag", map[string]string{"storleksklass": "2", "vattendragsid": "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Tags["waterway"] != "river" {
		t.Fatalf("expected river, got %q", result.Tags["waterway"])
	}
	if result.Tags["VATTENDRAG"] != "42" {
		t.Fatalf("expected VATTENDRAG tag, got %q", result.Tags["VATTENDRAG"])
	}
}

func TestTagWatercourseDefaultsToStream(t *testing.T) {
	result, err := TagObject("Vattendrag", map[string]string{"storleksklass": "1"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Tags["waterway"] != "stream" {
		t.Fatalf("expected stream, got %q", result.Tags["waterway"])
	}
}

func TestTagStillwaterElevationRangeBecomesReservoir(t *testing.T) {
	result, err := TagObject("Sjö", map[string]string{"hojd_over_havet": "120 - 115"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Tags["water"] != "reservoir" {
		t.Fatalf("expected reservoir, got %q", result.Tags["water"])
	}
	if result.Tags["ele"] != "120" || result.Tags["ele:min"] != "115" {
		t.Fatalf("unexpected ele tags: %+v", result.Tags)
	}
}

func TestTagAirfieldIATADistinguishesAerodrome(t *testing.T) {
	withIATA, err := TagObject("Flygplatsområde", map[string]string{"iata": "ARN"})
	if err != nil {
		t.Fatal(err)
	}
	if withIATA.Tags["aeroway"] != "aerodrome" {
		t.Fatalf("expected aerodrome, got %q", withIATA.Tags["aeroway"])
	}

	withoutIATA, err := TagObject("Flygplatsområde", map[string]string{})
	if err != nil {
		t.Fatal(err)
	}
	if withoutIATA.Tags["aeroway"] != "airstrip" {
		t.Fatalf("expected airstrip, got %q", withoutIATA.Tags["aeroway"])
	}
}

func TestTagProtectedAreaNameComposition(t *testing.T) {
	endsInS, err := TagObject("Naturreservat", map[string]string{"nvr_beskrivning": "Abisko nationalparks"})
	if err != nil {
		t.Fatal(err)
	}
	if endsInS.Tags["name"] != "Abisko nationalparks naturreservat" {
		t.Fatalf("unexpected name: %q", endsInS.Tags["name"])
	}

	notEndsInS, err := TagObject("Naturreservat", map[string]string{"nvr_beskrivning": "Tyresta"})
	if err != nil {
		t.Fatal(err)
	}
	if notEndsInS.Tags["name"] != "Tyrestas naturreservat" {
		t.Fatalf("unexpected name: %q", notEndsInS.Tags["name"])
	}
}

func TestTagObjectUnknownKindReturnsUnknownTagError(t *testing.T) {
	_, err := TagObject("Mystery Object", nil)
	if err == nil {
		t.Fatal("expected an error for an unrecognized object kind")
	}
}

func TestTagObjectFallsBackToDefaultTags(t *testing.T) {
	result, err := TagObject("Skog, barr", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Tags["natural"] != "wood" || result.Tags["leaf_type"] != "needleleaved" {
		t.Fatalf("unexpected tags: %+v", result.Tags)
	}
}
