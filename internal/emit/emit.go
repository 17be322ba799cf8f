// Package emit assembles the final OSM node/way/relation graph from a
// populated store and renders it as OSM XML or (for inspection) GeoJSON
// (spec.md §4.M).
package emit

import (
	"sort"

	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
)

// Member is one way reference inside a multipolygon relation.
type Member struct {
	WayID int64
	Role  string // "outer" or "inner"
}

// Way is one emitted way: an ordered node reference list plus tags.
type Way struct {
	ID      int64
	NodeIDs []int64
	Tags    map[string]string
}

// Relation is one emitted multipolygon relation.
type Relation struct {
	ID      int64
	Tags    map[string]string
	Members []Member
}

// Document is the fully built OSM object graph, ready for rendering.
type Document struct {
	NodeOrder []int64
	Nodes     map[int64]geometry.Coordinate
	NodeTags  map[int64]map[string]string
	Ways      []*Way
	Relations []*Relation
}

// idAllocator hands out decreasing negative ids starting at -1001
// (spec.md §4.M).
type idAllocator struct{ next int64 }

func newIDAllocator() *idAllocator { return &idAllocator{next: -1001} }

func (a *idAllocator) take() int64 {
	id := a.next
	a.next--
	return id
}

// Build walks store and produces the node/way/relation graph described by
// spec.md §4.M: shared nodes are allocated first (in stable lon/lat
// order), then every used segment becomes a way (inline-creating any
// non-shared vertex it touches), then every surviving feature becomes a
// node, way, or relation as appropriate.
func Build(store *model.Store) *Document {
	ids := newIDAllocator()
	doc := &Document{
		Nodes:    make(map[int64]geometry.Coordinate),
		NodeTags: make(map[int64]map[string]string),
	}
	nodeIDOf := make(map[geometry.Coordinate]int64)

	sharedCoords := make([]geometry.Coordinate, 0, len(store.Nodes))
	for c := range store.Nodes {
		sharedCoords = append(sharedCoords, c)
	}
	sort.Slice(sharedCoords, func(i, j int) bool {
		if sharedCoords[i].Lon != sharedCoords[j].Lon {
			return sharedCoords[i].Lon < sharedCoords[j].Lon
		}
		return sharedCoords[i].Lat < sharedCoords[j].Lat
	})
	for _, c := range sharedCoords {
		id := ids.take()
		doc.Nodes[id] = c
		doc.NodeOrder = append(doc.NodeOrder, id)
		nodeIDOf[c] = id
	}

	resolveNode := func(c geometry.Coordinate) int64 {
		if id, ok := nodeIDOf[c]; ok {
			return id
		}
		id := ids.take()
		doc.Nodes[id] = c
		doc.NodeOrder = append(doc.NodeOrder, id)
		nodeIDOf[c] = id
		return id
	}

	segmentWay := make(map[int]*Way, len(store.Segments))
	for si, seg := range store.Segments {
		if seg.Used == 0 {
			continue
		}
		way := &Way{ID: ids.take(), Tags: seg.Tags}
		for _, c := range seg.Coords {
			way.NodeIDs = append(way.NodeIDs, resolveNode(c))
		}
		doc.Ways = append(doc.Ways, way)
		segmentWay[si] = way
	}

	for _, f := range store.Features {
		if f.Deleted() {
			continue
		}
		switch f.Kind {
		case model.KindPoint:
			id := resolveNode(f.Point)
			doc.NodeTags[id] = mergeTags(doc.NodeTags[id], f.Tags)

		case model.KindLineString:
			way := &Way{ID: ids.take(), Tags: f.Tags}
			for _, c := range f.Line {
				way.NodeIDs = append(way.NodeIDs, resolveNode(c))
			}
			doc.Ways = append(doc.Ways, way)

		case model.KindPolygon:
			if len(f.Patches) == 0 {
				continue
			}
			if way, ok := closedWayShortcut(f, segmentWay); ok {
				way.Tags = mergeTags(way.Tags, f.Tags)
				continue
			}
			relTags := mergeTags(nil, f.Tags)
			relTags["type"] = "multipolygon"
			rel := &Relation{ID: ids.take(), Tags: relTags}
			for pi, patch := range f.Patches {
				role := "outer"
				if pi > 0 {
					role = "inner"
				}
				for _, mi := range patch.Members {
					way, ok := segmentWay[mi]
					if !ok {
						continue
					}
					rel.Members = append(rel.Members, Member{WayID: way.ID, Role: role})
				}
			}
			doc.Relations = append(doc.Relations, rel)
		}
	}

	return doc
}

// closedWayShortcut implements the single-member, single-patch, no-tag-
// collision shortcut of spec.md §4.M: rather than wrap a lone closed way
// in a trivial multipolygon relation, its tags are merged directly onto
// the way.
func closedWayShortcut(f *model.Feature, segmentWay map[int]*Way) (*Way, bool) {
	if len(f.Patches) != 1 || len(f.Patches[0].Members) != 1 {
		return nil, false
	}
	way, ok := segmentWay[f.Patches[0].Members[0]]
	if !ok {
		return nil, false
	}
	if !tagsCompatible(way.Tags, f.Tags) {
		return nil, false
	}
	return way, true
}

// tagsCompatible reports whether two tag sets can be merged without a
// key collision (same key, different value).
func tagsCompatible(a, b map[string]string) bool {
	for k, v := range a {
		if bv, ok := b[k]; ok && bv != v {
			return false
		}
	}
	return true
}

func mergeTags(existing, add map[string]string) map[string]string {
	if existing == nil {
		existing = make(map[string]string, len(add))
	}
	for k, v := range add {
		existing[k] = v
	}
	return existing
}
