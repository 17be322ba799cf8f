// Package ingest reads the source feature stream, classifies each record
// into a feature, an auxiliary segment, or a discard, and applies the
// per-kind tagging rules (spec.md §4.C).
package ingest

import (
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nkamapper/topo2osm/internal/errs"
	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/grid"
	"github.com/nkamapper/topo2osm/internal/model"
	"github.com/nkamapper/topo2osm/internal/tagging"
)

// GeomKind mirrors model.GeomKind for the raw wire representation, plus a
// MultiPolygon case collapsed to Polygon at ingestion (spec.md §4.C: "keep
// only the first polygon group").
type GeomKind int

const (
	Point GeomKind = iota
	LineString
	Polygon
	MultiPolygon
)

// RawGeometry is the wire shape of one record's geometry: GeoJSON-style
// [lon, lat] coordinate nesting whose depth depends on Kind.
//
//   - Point:        Coordinates[0]
//   - LineString:   Line
//   - Polygon:      Rings[patch]
//   - MultiPolygon: Polygons[group][patch] (only the first group is kept)
type RawGeometry struct {
	Kind        GeomKind
	Coordinates []geometry.Coordinate   // Point only
	Line        []geometry.Coordinate   // LineString only
	Rings       [][]geometry.Coordinate // Polygon: outer, then holes
	Polygons    [][][]geometry.Coordinate
}

// Record is one source feature as delivered by the feature iterator,
// already reprojected to geographic lat/lon. Projected carries the same
// geometry in the source projected CRS, needed by §4.D grid detection,
// which must run before reprojection smears grid-aligned coordinates.
type Record struct {
	ObjectKind string
	Geometry   RawGeometry
	Projected  RawGeometry
	Properties map[string]string
	SourceDate string // YYYY-MM-DD, accumulated by year for the run summary
}

// FeatureIterator yields Records until exhausted, returning io.EOF.
type FeatureIterator interface {
	Next() (Record, error)
}

// Outcome summarizes one ingestion run for the caller.
type Outcome struct {
	FeaturesCreated int
	SegmentsCreated int
	Discarded       int
	MissingTags     []string

	// GridlineIndices lists the segments grid.Detect extracted from
	// polygon rings during ingestion, before reprojection. §4.D's
	// deduplication and compression passes run against these afterward.
	GridlineIndices []int
}

// Run consumes every record from it, populating store. Geometry anomalies
// and unknown tags are non-fatal (spec.md §7); only an iterator error other
// than io.EOF aborts. gridSize is the projected-CRS grid spacing §4.D
// detects on-grid vertex runs against; pass 0 to disable grid detection
// (e.g. when the iterator carries no distinct Projected geometry).
func Run(store *model.Store, it FeatureIterator, mergeWetlandAsAuxiliary bool, gridSize float64, log *zap.Logger) (Outcome, error) {
	var out Outcome
	for {
		rec, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, &errs.InputError{Reason: err.Error()}
		}

		if rec.SourceDate != "" {
			if t, parseErr := time.Parse("2006-01-02", rec.SourceDate); parseErr == nil {
				store.SourceYears[t.Year()]++
			}
		}

		if tagging.AvoidObjects[rec.ObjectKind] {
			out.Discarded++
			continue
		}

		kind := rec.ObjectKind
		geom := rec.Geometry

		// Vattenfall lines collapse to their midpoint and become points
		// (spec.md §4.C).
		if kind == "Vattenfall" && geom.Kind == LineString {
			geom = collapseToMidpoint(geom)
		}

		isAuxiliary := tagging.AuxiliaryObjects[kind] ||
			(mergeWetlandAsAuxiliary && strings.HasSuffix(kind, "gräns"))

		switch geom.Kind {
		case Point:
			handlePoint(store, log, kind, rec.Properties, geom, &out)
		case LineString:
			handleLine(store, log, kind, rec.Properties, geom, isAuxiliary, &out)
		case Polygon, MultiPolygon:
			handlePolygon(store, log, kind, rec.Properties, geom, rec.Projected, gridSize, isAuxiliary, &out)
		}
	}

	for k := range store.MissingTags {
		out.MissingTags = append(out.MissingTags, k)
	}
	return out, nil
}

func collapseToMidpoint(geom RawGeometry) RawGeometry {
	if len(geom.Line) == 0 {
		return RawGeometry{Kind: Point}
	}
	a, b := geom.Line[0], geom.Line[len(geom.Line)-1]
	mid := geometry.Coordinate{Lon: (a.Lon + b.Lon) / 2, Lat: (a.Lat + b.Lat) / 2}
	return RawGeometry{Kind: Point, Coordinates: []geometry.Coordinate{mid}}
}

func roundDropDupes(coords []geometry.Coordinate) []geometry.Coordinate {
	out := make([]geometry.Coordinate, 0, len(coords))
	for _, c := range coords {
		r := geometry.Round(c)
		if len(out) > 0 && out[len(out)-1] == r {
			continue
		}
		out = append(out, r)
	}
	return out
}

func tagOrRecordMissing(store *model.Store, kind string, props map[string]string) (map[string]string, string) {
	result, err := tagging.TagObject(kind, props)
	if err != nil {
		var unk *errs.UnknownTagError
		if errors.As(err, &unk) {
			store.MissingTags[kind] = true
			return map[string]string{}, "Tag " + kind
		}
	}
	return result.Tags, result.FIXME
}

func handlePoint(store *model.Store, log *zap.Logger, kind string, props map[string]string, geom RawGeometry, out *Outcome) {
	if len(geom.Coordinates) == 0 {
		return
	}
	tags, fixme := tagOrRecordMissing(store, kind, props)
	if fixme != "" {
		tags["FIXME"] = fixme
	}
	f := &model.Feature{
		ObjectKind: kind,
		Kind:       model.KindPoint,
		Tags:       tags,
		Point:      geometry.Round(geom.Coordinates[0]),
	}
	store.AddFeature(f)
	out.FeaturesCreated++
}

func handleLine(store *model.Store, log *zap.Logger, kind string, props map[string]string, geom RawGeometry, isAuxiliary bool, out *Outcome) {
	coords := roundDropDupes(geom.Line)
	if len(coords) < 2 {
		return
	}
	if isAuxiliary {
		store.AddSegment(&model.Segment{ObjectKind: kind, Coords: coords, Tags: map[string]string{}, Used: 0})
		out.SegmentsCreated++
		return
	}
	tags, fixme := tagOrRecordMissing(store, kind, props)
	if fixme != "" {
		tags["FIXME"] = fixme
	}
	store.AddFeature(&model.Feature{ObjectKind: kind, Kind: model.KindLineString, Tags: tags, Line: coords})
	out.FeaturesCreated++
}

func handlePolygon(store *model.Store, log *zap.Logger, kind string, props map[string]string, geom, projected RawGeometry, gridSize float64, isAuxiliary bool, out *Outcome) {
	rings := geom.Rings
	projRings := projected.Rings
	if geom.Kind == MultiPolygon {
		if len(geom.Polygons) == 0 {
			return
		}
		rings = geom.Polygons[0] // keep only the first polygon group
		if len(projected.Polygons) > 0 {
			projRings = projected.Polygons[0]
		} else {
			projRings = nil
		}
	}
	if len(rings) == 0 {
		return
	}

	var patches []model.Patch
	for ri, ring := range rings {
		if gridSize > 0 && ri < len(projRings) {
			for _, gl := range grid.Detect(projRings[ri], ring, gridSize) {
				gl := gl
				idx := store.AddSegment(&gl)
				out.GridlineIndices = append(out.GridlineIndices, idx)
			}
		}

		coords := roundDropDupes(ring)
		if len(coords) < 4 {
			continue // a ring collapsing to one node is discarded
		}
		if coords[0] != coords[len(coords)-1] {
			coords = append(coords, coords[0])
		}
		split := geometry.SplitPatch(geometry.Ring(coords))
		for _, r := range split {
			if len(r) >= 4 {
				patches = append(patches, model.Patch{Coords: []geometry.Coordinate(r)})
			}
		}
	}
	if len(patches) == 0 {
		return
	}

	if isAuxiliary {
		// Auxiliary polygons (e.g. bebyggelse boundaries) contribute their
		// outer ring as a segment, used=0, never as a feature.
		store.AddSegment(&model.Segment{ObjectKind: kind, Coords: patches[0].Coords, Tags: map[string]string{}, Used: 0})
		out.SegmentsCreated++
		return
	}

	tags, fixme := tagOrRecordMissing(store, kind, props)
	if fixme != "" {
		tags["FIXME"] = fixme
	}
	store.AddFeature(&model.Feature{ObjectKind: kind, Kind: model.KindPolygon, Tags: tags, Patches: patches})
	out.FeaturesCreated++
}
