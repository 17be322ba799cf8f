// Package river chains individual Vattendrag line segments sharing a
// watercourse identifier into maximal ways, and upgrades stream
// classification using coarser-scale waterway data (spec.md §4.F).
package river

import (
	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
)

const objectKind = "Vattendrag"

// ChainByIdentifier repeatedly picks an unclaimed Vattendrag feature and
// extends it by appending any river with matching VATTENDRAG id, matching
// waterway tag, and the same has-name predicate, whose endpoints connect
// end-to-end. The combined feature keeps the first feature's tags and
// provenance; consumed features are deleted. Returns the number of chains
// built.
func ChainByIdentifier(store *model.Store) int {
	claimed := make(map[int]bool)
	chains := 0

	for start, f := range store.Features {
		if claimed[start] || f.Deleted() || f.ObjectKind != objectKind || f.Kind != model.KindLineString {
			continue
		}
		claimed[start] = true
		chain := append([]geometry.Coordinate{}, f.Line...)

		for {
			extended := false
			for j, g := range store.Features {
				if claimed[j] || g.Deleted() || g.ObjectKind != objectKind || g.Kind != model.KindLineString {
					continue
				}
				if !compatible(f, g) {
					continue
				}
				if newChain, ok := join(chain, g.Line); ok {
					chain = newChain
					claimed[j] = true
					store.DeleteFeature(j)
					extended = true
				}
			}
			if !extended {
				break
			}
			if chain[0] == chain[len(chain)-1] {
				break // chain closed
			}
		}

		f.Line = chain
		chains++
	}
	return chains
}

func compatible(a, b *model.Feature) bool {
	if a.Tags["VATTENDRAG"] != b.Tags["VATTENDRAG"] {
		return false
	}
	if a.Tags["waterway"] != b.Tags["waterway"] {
		return false
	}
	return (a.Tags["name"] != "") == (b.Tags["name"] != "")
}

// join attempts to attach line onto the head or tail of chain so the
// result is end-to-end connected, reversing line if needed. Returns false
// if neither endpoint matches.
func join(chain, line []geometry.Coordinate) ([]geometry.Coordinate, bool) {
	if len(line) == 0 || len(chain) == 0 {
		return chain, false
	}
	chainHead, chainTail := chain[0], chain[len(chain)-1]
	lineHead, lineTail := line[0], line[len(line)-1]

	switch {
	case chainTail == lineHead:
		return append(append([]geometry.Coordinate{}, chain...), line[1:]...), true
	case chainTail == lineTail:
		return append(append([]geometry.Coordinate{}, chain...), reversed(line)[1:]...), true
	case chainHead == lineTail:
		return append(append([]geometry.Coordinate{}, line...), chain[1:]...), true
	case chainHead == lineHead:
		return append(append([]geometry.Coordinate{}, reversed(line)...), chain[1:]...), true
	}
	return chain, false
}

func reversed(coords []geometry.Coordinate) []geometry.Coordinate {
	out := make([]geometry.Coordinate, len(coords))
	for i, c := range coords {
		out[len(coords)-1-i] = c
	}
	return out
}

// CrossScaleUpgrade upgrades waterway=stream features whose VATTENDRAG
// identifier appears in riverWorthyIDs (built from the next coarser
// scale's size-class >= 2 features) to waterway=river.
func CrossScaleUpgrade(store *model.Store, riverWorthyIDs map[string]bool) int {
	upgraded := 0
	for _, f := range store.Features {
		if f.Deleted() || f.ObjectKind != objectKind || f.Kind != model.KindLineString {
			continue
		}
		if f.Tags["waterway"] != "stream" {
			continue
		}
		if riverWorthyIDs[f.Tags["VATTENDRAG"]] {
			f.Tags["waterway"] = "river"
			upgraded++
		}
	}
	return upgraded
}

// BuildRiverWorthyIDs collects the VATTENDRAG identifiers of size-class>=2
// features from a coarser-scale feature set (Topo50/Topo100), for use with
// CrossScaleUpgrade.
func BuildRiverWorthyIDs(coarserFeatures []*model.Feature) map[string]bool {
	ids := make(map[string]bool)
	for _, f := range coarserFeatures {
		if f.Tags["waterway"] == "river" {
			if id := f.Tags["VATTENDRAG"]; id != "" {
				ids[id] = true
			}
		}
	}
	return ids
}
