package tagging

import (
	"strconv"
	"strings"

	"github.com/nkamapper/topo2osm/internal/errs"
)

// Result is the outcome of tagging one source record: the tag set to
// attach to the feature or segment, plus any FIXME annotation.
type Result struct {
	Tags  map[string]string
	FIXME string
}

// TagObject classifies one source record by object kind and properties
// into an OSM tag set, following original_source/topo2osm.py's tag_object
// dispatch (spec.md §4.C). Object-kind-specific behavior lives here as a
// match on kind, per spec.md §9's tagged-variant-plus-satellite-tables
// design. Returns an *errs.UnknownTagError (never fatal — the caller
// accumulates it and stamps a FIXME) when no rule and no default-tags entry
// matches.
func TagObject(kind string, props map[string]string) (Result, error) {
	switch {
	case kind == "Vattendrag":
		return tagWatercourse(props), nil
	case kind == "Sjö" || kind == "Anlagt vatten":
		return tagStillwater(kind, props), nil
	case kind == "Start- och landningsbana":
		return Result{Tags: map[string]string{"aeroway": "runway"}, FIXME: "Check if disused"}, nil
	case kind == "Flygplatsområde" || kind == "Helikopterplats":
		return tagAirfield(kind, props), nil
	case isProtectedArea(kind):
		return tagProtectedArea(kind, props), nil
	case isProhibitionArea(kind, props):
		return Result{Tags: map[string]string{"boundary": "protected_area", "access": "no"}}, nil
	case isPath(kind):
		return tagPath(kind, props), nil
	}

	if andamal, ok := props["andamal"]; ok {
		if tags, ok := PurposeTags[andamal]; ok {
			return Result{Tags: copyTags(tags)}, nil
		}
	}

	if tags, ok := DefaultTags[kind]; ok {
		result := Result{Tags: copyTags(tags)}
		applyElevation(result.Tags, props)
		return result, nil
	}

	return Result{}, &errs.UnknownTagError{ObjectKind: kind}
}

func copyTags(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// applyElevation adds ele/height from hojdvarde/hojd properties when
// present; TagObject applies it only to a DefaultTags result.
func applyElevation(tags map[string]string, props map[string]string) {
	if tags == nil {
		return
	}
	if v, ok := props["hojdvarde"]; ok {
		tags["ele"] = v
	}
	if v, ok := props["hojd"]; ok {
		tags["height"] = v
	}
}

// tagWatercourse classifies a Vattendrag feature as river/canal/stream from
// its size class and canal flag, and carries the watercourse identifier.
func tagWatercourse(props map[string]string) Result {
	tags := map[string]string{"waterway": "stream"}
	if props["kanal"] == "true" || props["kanal"] == "Ja" {
		tags["waterway"] = "canal"
	} else if sizeClass, err := strconv.Atoi(props["storleksklass"]); err == nil && sizeClass >= 2 {
		tags["waterway"] = "river"
	}
	if id, ok := props["vattendragsid"]; ok {
		tags["VATTENDRAG"] = id
	}
	return Result{Tags: tags}
}

// tagStillwater tags a Sjö/Anlagt vatten polygon, splitting a dash-joined
// elevation range into ele/ele:min and marking regulated water bodies as
// reservoirs (spec.md §4.C).
func tagStillwater(kind string, props map[string]string) Result {
	tags := map[string]string{"natural": "water"}
	if kind == "Anlagt vatten" {
		tags["water"] = "pond"
	}
	if rng, ok := props["hojd_over_havet"]; ok {
		parts := strings.SplitN(rng, "-", 2)
		if len(parts) == 2 {
			tags["ele"] = strings.TrimSpace(parts[0])
			tags["ele:min"] = strings.TrimSpace(parts[1])
			tags["water"] = "reservoir"
		} else {
			tags["ele"] = strings.TrimSpace(rng)
		}
	}
	if reg, ok := props["reglerat_vatten"]; ok && (reg == "true" || reg == "Ja") {
		tags["water"] = "reservoir"
	}
	if ref, ok := props["vattenytaid"]; ok {
		tags["ref"] = ref
	}
	return Result{Tags: tags}
}

// tagAirfield distinguishes aerodrome/airstrip and heliport/helipad by the
// presence of an IATA code.
func tagAirfield(kind string, props map[string]string) Result {
	_, hasIATA := props["iata"]
	tags := map[string]string{}
	if kind == "Helikopterplats" {
		if hasIATA {
			tags["aeroway"] = "heliport"
		} else {
			tags["aeroway"] = "helipad"
		}
	} else {
		if hasIATA {
			tags["aeroway"] = "aerodrome"
		} else {
			tags["aeroway"] = "airstrip"
		}
	}
	if icao, ok := props["icao"]; ok {
		tags["icao"] = icao
	}
	if iata, ok := props["iata"]; ok {
		tags["iata"] = iata
	}
	return Result{Tags: tags}
}

var protectedAreaKinds = map[string]bool{
	"Nationalpark":    true,
	"Naturreservat":   true,
	"Naturminne":      true,
	"Djurskyddsområde": true,
}

func isProtectedArea(kind string) bool {
	return protectedAreaKinds[kind]
}

// tagProtectedArea composes the protected-area name from a description
// property and either an animal-protection type or the lowercased feature
// kind, joining with " " when the base name already ends in "s" and with
// "s " otherwise (spec.md §4.C).
func tagProtectedArea(kind string, props map[string]string) Result {
	tags := map[string]string{"boundary": "protected_area"}
	switch kind {
	case "Nationalpark":
		tags["protect_class"] = "2"
	case "Naturreservat":
		tags["protect_class"] = "4"
	case "Naturminne":
		tags["protect_class"] = "3"
	}

	base := props["nvr_beskrivning"]
	suffix := props["djurskyddstyp"]
	if suffix == "" {
		suffix = strings.ToLower(kind)
	}
	if base != "" {
		joiner := "s "
		if strings.HasSuffix(base, "s") {
			joiner = " "
		}
		tags["name"] = base + joiner + suffix
	}

	if ref, ok := props["nvid"]; ok {
		tags["ref"] = ref
	}

	if other, ok := props["ovrigt_naturobjektstyp"]; ok {
		switch other {
		case "Grotta":
			tags["natural"] = "cave_entrance"
		case "Källa":
			tags["natural"] = "spring"
		case "Block", "Klippa":
			tags["natural"] = "rock"
		}
	}

	return Result{Tags: tags}
}

func isProhibitionArea(kind string, props map[string]string) bool {
	if strings.Contains(kind, "förbud") || strings.Contains(kind, "Förbjudet") {
		return true
	}
	for _, v := range props {
		if strings.Contains(v, "förbud") || strings.Contains(v, "Förbjudet") {
			return true
		}
	}
	return false
}

var pathKinds = map[string]bool{
	"Gångstig": true,
	"Elljusspår": true,
	"Vandringsled": true,
}

func isPath(kind string) bool {
	return pathKinds[kind]
}

// tagPath tags a foot/ski path, carrying scooter access and bridge/tunnel
// with layer from the "vagutforande" construction-method attribute.
func tagPath(kind string, props map[string]string) Result {
	tags := map[string]string{"highway": "path"}
	if scooter, ok := props["skoterkorning_tillaten"]; ok {
		if scooter == "true" || scooter == "Ja" {
			tags["snowmobile"] = "yes"
		} else {
			tags["snowmobile"] = "no"
		}
	}
	switch props["vagutforande"] {
	case "Bro":
		tags["bridge"] = "yes"
		tags["layer"] = "1"
	case "Tunnel":
		tags["tunnel"] = "yes"
		tags["layer"] = "-1"
	}
	return Result{Tags: tags}
}
