// Package tagging holds the satellite tables and per-object-kind tagging
// dispatch used by ingestion (spec.md §4.C, §9 "Object-kind polymorphism").
//
// The full object→tag dictionary, the avoid/auxiliary sets and the sort
// orders are configuration data (spec.md §1 non-goal: "static tagging
// dictionaries"); what lives here is the table *shape* plus a
// representative, production-style seed of entries grounded in
// original_source/topo2osm.py's avoid_objects, auxiliary_objects, osm_tags
// and *_sorting_order tables, wired through the small enum+satellite-table
// pattern spec.md §9 calls for rather than string dispatch scattered across
// the codebase.
package tagging

// LanguageCodes maps the gazetteer's two-letter language code to the OSM
// name:<lang> suffix (spec.md §6).
var LanguageCodes = map[string]string{
	"SV": "sv",  // Svenska
	"TF": "fit", // Meänkieli (tornedalsfinska)
	"FI": "fi",  // Finska
	"NS": "se",  // Nordsamiska
	"LS": "smj", // Lulesamiska
	"US": "sju", // Umesamiska
	"SS": "sma", // Sydsamiska
}

// AvoidObjects are source object kinds discarded entirely during ingestion.
var AvoidObjects = map[string]bool{
	"Kartbladsindelning 10/50 000":  true,
	"Kartbladsindelning 100/250000": true,
	"Höjdkurva":                     true, // contour lines, not in scope
	"Hjälplinje":                    true,
	"Övrig raster- och vektorinformation": true,
}

// AuxiliaryObjects are source object kinds that become segments with
// used=0 rather than first-class features: shorelines, grid lines,
// municipal/bebyggelse boundaries.
var AuxiliaryObjects = map[string]bool{
	"Strandlinje, hav":       true,
	"Strandlinje, sjö":       true,
	"Stängning mot hav":      true,
	"Gräns for bebyggelse":   true,
	"Sankmark gräns":         true,
	"Gridline":               true, // synthesized by internal/grid, never from source
}

// ObjectSortingOrder ranks polygon object kinds by decomposition priority
// (spec.md §4.G): sea first, then lake/pond/river-surface, glacier,
// settlement classes, farmland/orchard, wetlands, woodlands, everything
// else. Lower index == higher priority. Kinds absent from this table sort
// after every listed kind, in the order original_source encountered them.
var ObjectSortingOrder = []string{
	"Hav",
	"Sjö",
	"Anlagt vatten",
	"Vattendragsyta",
	"Glaciär",
	"Bebyggelse, samlad",
	"Bebyggelse, småort",
	"Industriområde",
	"Åker",
	"Fruktodling",
	"Sankmark, öppen",
	"Sankmark, träd",
	"Skog",
	"Skog, barr",
	"Skog, löv",
}

// SegmentSortingOrder ranks segment object kinds the same way, for
// candidate-acceptance order in §4.G and the coastline-repair pre-step.
var SegmentSortingOrder = []string{
	"Strandlinje, hav",
	"Strandlinje, sjö",
	"Stängning mot hav",
	"Sankmark gräns",
	"Gridline",
}

// PriorityOf returns the sort rank of kind within order, or len(order) if
// kind is not listed (sorts last, stable by encounter order thereafter).
func PriorityOf(kind string, order []string) int {
	for i, k := range order {
		if k == kind {
			return i
		}
	}
	return len(order)
}

// DefaultTags is a representative seed of the object→tag dictionary
// (original_source's osm_tags): plain source-kind-to-OSM-tag mappings with
// no further dispatch logic required.
var DefaultTags = map[string]map[string]string{
	"Skog":               {"natural": "wood"},
	"Skog, barr":         {"natural": "wood", "leaf_type": "needleleaved"},
	"Skog, löv":          {"natural": "wood", "leaf_type": "broadleaved"},
	"Åker":               {"landuse": "farmland"},
	"Fruktodling":        {"landuse": "orchard"},
	"Industriområde":     {"landuse": "industrial"},
	"Bebyggelse, samlad": {"landuse": "residential"},
	"Bebyggelse, småort": {"landuse": "residential"},
	"Sankmark, öppen":    {"natural": "wetland", "wetland": "bog"},
	"Sankmark, träd":     {"natural": "wetland", "wetland": "bog", "wood": "yes"},
	"Glaciär":            {"natural": "glacier"},
	"Fors":               {"waterway": "rapids"},
	"Vattenfall":         {"waterway": "waterfall"},
}

// PurposeTags maps an "andamal" (purpose) attribute value to its OSM tag
// set, for purpose-classified area objects (spec.md §4.C).
var PurposeTags = map[string]map[string]string{
	"Skyddsvärt träd":   {"natural": "tree"},
	"Idrottsplats":      {"leisure": "pitch"},
	"Begravningsplats":  {"landuse": "cemetery"},
	"Camping":           {"tourism": "camp_site"},
	"Skjutbana":         {"landuse": "military", "military": "range"},
	"Soptipp":           {"landuse": "landfill"},
	"Grustag":           {"landuse": "quarry"},
}
