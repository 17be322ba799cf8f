// Package placename attaches gazetteer names to polygon/line features by
// containment and proximity, with ranked disambiguation and FIXME
// annotations for ambiguous matches (spec.md §4.J).
package placename

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
	"github.com/nkamapper/topo2osm/internal/spatialindex"
)

// CategoryMatch pairs a feature object-kind set with the gazetteer
// category it should be matched against.
type CategoryMatch struct {
	FeatureKinds []string
	PlaceCategory string
}

// PassOrder is the category match order spec.md §4.J specifies: sea,
// islands, glaciers, wetlands, lakes, rivers.
var PassOrder = []CategoryMatch{
	{FeatureKinds: []string{"Hav"}, PlaceCategory: "Hav"},
	{FeatureKinds: []string{"Ö"}, PlaceCategory: "Ö"},
	{FeatureKinds: []string{"Glaciär"}, PlaceCategory: "Glaciär"},
	{FeatureKinds: []string{"Sankmark, öppen", "Sankmark, träd"}, PlaceCategory: "Sankmark"},
	{FeatureKinds: []string{"Sjö", "Anlagt vatten"}, PlaceCategory: "Sjö"},
	{FeatureKinds: []string{"Vattendrag"}, PlaceCategory: "Vattendrag"},
}

// score returns the lexicographic ranking tuple (T250, T100, T50, T10,
// word_count, -reference_id); slices compare element-wise, earlier
// elements dominating, matching Go's natural slice-of-int ordering when
// compared index by index.
func score(p *model.PlaceName) [6]int {
	refID, _ := strconv.Atoi(p.RefID)
	return [6]int{
		p.Scores["T250"], p.Scores["T100"], p.Scores["T50"], p.Scores["T10"],
		p.WordCount, -refID,
	}
}

// higherScore reports whether a outranks b.
func higherScore(a, b *model.PlaceName) bool {
	sa, sb := score(a), score(b)
	for i := range sa {
		if sa[i] != sb[i] {
			return sa[i] > sb[i]
		}
	}
	return false
}

func padForKind(f *model.Feature) float64 {
	if f.Kind == model.KindPoint {
		return 500
	}
	return 3000
}

// MatchCategories runs the category-matching passes of spec.md §4.J: for
// each feature of a matching object kind, candidate places of the
// corresponding category are accepted when their bbox overlaps the
// padded feature bbox and at least one candidate point falls inside the
// feature's polygon. addSeaNames controls the sea-name exception: when
// false, sea features consume matching names without tagging, to remove
// duplicates the river/lake passes would otherwise pick up.
func MatchCategories(store *model.Store, addSeaNames bool) int {
	idx := buildPlaceNameIndex(store)
	tagged := 0
	for _, cm := range PassOrder {
		for _, f := range store.Features {
			if f.Deleted() || !kindIn(f.ObjectKind, cm.FeatureKinds) {
				continue
			}
			candidates := collectCandidates(store, idx, f, cm.PlaceCategory)
			if len(candidates) == 0 {
				continue
			}
			if f.ObjectKind == "Hav" && !addSeaNames {
				for _, c := range candidates {
					c.Claim()
				}
				continue
			}
			candidates = dedupeByName(rankCandidates(candidates, cm.PlaceCategory))
			applyTagOutcome(f, candidates)
			tagged++
		}
	}
	return tagged
}

func kindIn(kind string, kinds []string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// buildPlaceNameIndex indexes every gazetteer record in store.PlaceNames by
// its bounding box, so collectCandidates can query by padded feature bbox
// (spec.md §4.J) instead of scanning the whole gazetteer per feature.
func buildPlaceNameIndex(store *model.Store) *spatialindex.Index {
	ids := make([]int, len(store.PlaceNames))
	for i := range store.PlaceNames {
		ids[i] = i
	}
	return spatialindex.New(ids, func(id int) geometry.BBox {
		return geometry.Bounds(store.PlaceNames[id].Points, 0)
	})
}

func collectCandidates(store *model.Store, idx *spatialindex.Index, f *model.Feature, category string) []*model.PlaceName {
	pad := padForKind(f)
	bbox := geometry.Bounds(featurePoints(f), pad)
	var out []*model.PlaceName
	for _, id := range idx.Query(bbox) {
		p := store.PlaceNames[id]
		if p.Claimed() || p.Category != category {
			continue
		}
		if !anyPointInFeature(f, p.Points) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func featurePoints(f *model.Feature) []geometry.Coordinate {
	switch f.Kind {
	case model.KindPoint:
		return []geometry.Coordinate{f.Point}
	case model.KindLineString:
		return f.Line
	default:
		if len(f.Patches) == 0 {
			return nil
		}
		return f.Patches[0].Coords
	}
}

func anyPointInFeature(f *model.Feature, points []geometry.Coordinate) bool {
	for _, pt := range points {
		switch f.Kind {
		case model.KindPolygon:
			rings := make([]geometry.Ring, len(f.Patches))
			for i, p := range f.Patches {
				rings[i] = geometry.Ring(p.Coords)
			}
			if geometry.PointInMultipolygon(pt, rings) {
				return true
			}
		default:
			// Points/lines use proximity instead of containment; handled
			// by the proximity fallback pass.
		}
	}
	return false
}

func rankCandidates(candidates []*model.PlaceName, category string) []*model.PlaceName {
	// For islands and wetlands, drop candidates ranked below the top
	// source's priority once that source has more than 5 candidates
	// (spec.md §4.J).
	if category == "Ö" || category == "Sankmark" {
		bySource := make(map[string][]*model.PlaceName)
		for _, c := range candidates {
			bySource[c.Source] = append(bySource[c.Source], c)
		}
		var topSource string
		for _, tier := range []string{"T250", "T100", "T50", "T10"} {
			if len(bySource[tier]) > 0 {
				topSource = tier
				break
			}
		}
		if len(bySource[topSource]) > 5 {
			filtered := candidates[:0:0]
			for _, c := range candidates {
				if c.Source == topSource {
					filtered = append(filtered, c)
				}
			}
			candidates = filtered
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return higherScore(candidates[i], candidates[j]) })
	return candidates
}

func dedupeByName(candidates []*model.PlaceName) []*model.PlaceName {
	seen := make(map[string]bool)
	out := candidates[:0:0]
	for _, c := range candidates {
		name := c.Tags["name"]
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, c)
	}
	return out
}

// applyTagOutcome implements spec.md §4.J's tag-outcome rule: if the
// feature already has a reference name, the candidates with another name
// are listed in one FIXME "Consider extra name" tag; otherwise the
// best-ranked candidate's tags are applied, ties produce "Choose name", and
// non-ties produce "Verify name", with ALT_NAME populated from the
// remainder. No separate FIXME point features are created.
func applyTagOutcome(f *model.Feature, candidates []*model.PlaceName) {
	if len(candidates) == 0 {
		return
	}
	for _, c := range candidates {
		c.Claim()
	}

	if f.Tags["ref:lantmateriet:ortnamn"] != "" && f.Tags["name"] != "" {
		var extra []string
		for _, c := range candidates {
			if c.Tags["name"] != f.Tags["name"] {
				extra = append(extra, describe(c))
			}
		}
		if len(extra) > 0 {
			f.Tags["FIXME"] = "Consider extra name: " + strings.Join(extra, ", ")
		}
		return
	}

	best := candidates[0]
	isTie := len(candidates) > 1 && score(candidates[0]) == score(candidates[1])

	for k, v := range best.Tags {
		f.Tags[k] = v
	}
	f.Tags["ref:lantmateriet:ortnamn"] = best.RefID

	rest := candidates[1:]
	var descriptions []string
	for _, c := range candidates {
		descriptions = append(descriptions, describe(c))
	}

	if isTie {
		f.Tags["FIXME"] = "Choose name: " + strings.Join(descriptions, ", ")
	} else {
		f.Tags["FIXME"] = "Verify name: " + strings.Join(descriptions, ", ")
	}

	if len(rest) > 0 {
		var alts []string
		for _, c := range rest {
			alts = append(alts, c.Tags["name"])
		}
		f.Tags["ALT_NAME"] = strings.Join(alts, ";")
	}
}

func describe(p *model.PlaceName) string {
	rank := ""
	for _, tier := range []string{"T250", "T100", "T50", "T10"} {
		if v, ok := p.Scores[tier]; ok && v > 0 {
			rank = fmt.Sprintf("[%s-%d]", tier, v)
			break
		}
	}
	return p.Tags["name"] + rank
}

// ProximityFallback handles still-nameless features: among unclaimed
// places, the one whose shortest distance to the feature's ring/line is
// minimal and below maxDistM gets its tags transferred.
func ProximityFallback(store *model.Store, maxDistM float64) int {
	idx := buildPlaceNameIndex(store)
	tagged := 0
	for _, f := range store.Features {
		if f.Deleted() || f.Tags["name"] != "" {
			continue
		}
		points := featurePoints(f)
		if len(points) == 0 {
			continue
		}
		bbox := geometry.Bounds(points, 50)

		var best *model.PlaceName
		bestDist := maxDistM
		for _, id := range idx.Query(bbox) {
			p := store.PlaceNames[id]
			if p.Claimed() {
				continue
			}
			for _, pt := range p.Points {
				dist, _ := geometry.ShortestDistance(pt, points)
				if dist < bestDist {
					bestDist = dist
					best = p
				}
			}
		}
		if best != nil {
			for k, v := range best.Tags {
				f.Tags[k] = v
			}
			best.Claim()
			tagged++
		}
	}
	return tagged
}

// FixSuffixes reclassifies place categories based on name suffix patterns
// (spec.md §4.J "Stillwater/river suffix fix-ups").
func FixSuffixes(store *model.Store) int {
	riverSuffixes := []string{"bäcken", "älven", "ån", "joki", "oja", "väylä", "koski", "johka", "eatnu", "jåhkå", "jågåsj", "ädno", "guojkka", "juhka", "juhkka", "juhkatje", "ädnuo", "ännuo", "johke", "johkatje", "jeanoe"}
	stillwaterSuffixes := []string{"selet", "savvun", "savoj", "suvvane", "sovvene", "soven", "hölet"}

	fixed := 0
	for _, p := range store.PlaceNames {
		name := strings.ToLower(p.Tags["name"])
		switch {
		case p.Category == "Sjö" && hasSuffix(name, riverSuffixes):
			p.Category = "Vattendrag"
			fixed++
		case p.Category == "Vattendrag" && hasSuffix(name, stillwaterSuffixes):
			p.Category = "Del av vatten"
			fixed++
		}
		if (p.Category == "Vattendrag" || p.Category == "Del av vatten" || p.Category == "Sjö") && hasSuffix(name, []string{"forsen"}) {
			p.Category = "Fors"
			fixed++
		}
		if (p.Category == "Vattendrag" || p.Category == "Del av vatten" || p.Category == "Sjö") && hasSuffix(name, []string{"fallet"}) {
			p.Category = "Vattenfall"
			fixed++
		}
	}
	return fixed
}

func hasSuffix(name string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(name, suf) {
			return true
		}
	}
	return false
}
