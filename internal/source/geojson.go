// Package source supplies ingest.FeatureIterator implementations. Network
// retrieval, credential handling, and wire-format reprojection are out of
// scope (spec.md §1 Non-goals); this package reads already-reprojected
// GeoJSON from local files, streaming one Feature at a time rather than
// decoding the whole FeatureCollection into memory.
package source

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/ingest"
)

// GeoJSONFile streams Records from a GeoJSON FeatureCollection file. Each
// Feature's "object" property supplies ObjectKind and "date" (if present)
// supplies SourceDate; every other property is carried through verbatim.
type GeoJSONFile struct {
	file    *os.File
	decoder *json.Decoder
	started bool
}

// OpenGeoJSONFile opens path for streaming.
func OpenGeoJSONFile(path string) (*GeoJSONFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &GeoJSONFile{file: f, decoder: json.NewDecoder(f)}, nil
}

// Close releases the underlying file handle.
func (g *GeoJSONFile) Close() error { return g.file.Close() }

// Next decodes the next feature in the collection's "features" array,
// returning io.EOF once exhausted.
func (g *GeoJSONFile) Next() (ingest.Record, error) {
	if !g.started {
		if err := g.seekToFeaturesArray(); err != nil {
			return ingest.Record{}, err
		}
		g.started = true
	}

	if !g.decoder.More() {
		return ingest.Record{}, io.EOF
	}

	var raw geojson.Feature
	if err := g.decoder.Decode(&raw); err != nil {
		return ingest.Record{}, fmt.Errorf("decode feature: %w", err)
	}
	return toRecord(&raw)
}

// seekToFeaturesArray walks the top-level object tokens until it finds
// the "features" key, then consumes the opening '[' so the caller's
// decoder is positioned at the first feature.
func (g *GeoJSONFile) seekToFeaturesArray() error {
	if _, err := g.decoder.Token(); err != nil { // opening '{'
		return fmt.Errorf("read root token: %w", err)
	}
	for g.decoder.More() {
		tok, err := g.decoder.Token()
		if err != nil {
			return fmt.Errorf("read key token: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			continue
		}
		if key == "features" {
			if _, err := g.decoder.Token(); err != nil { // opening '['
				return fmt.Errorf("read features array token: %w", err)
			}
			return nil
		}
		// Skip this key's value wholesale.
		var discard json.RawMessage
		if err := g.decoder.Decode(&discard); err != nil {
			return fmt.Errorf("skip key %q: %w", key, err)
		}
	}
	return fmt.Errorf("no \"features\" array found in GeoJSON document")
}

func toRecord(f *geojson.Feature) (ingest.Record, error) {
	props := make(map[string]string, len(f.Properties))
	objectKind := ""
	sourceDate := ""
	for k, v := range f.Properties {
		s := fmt.Sprintf("%v", v)
		switch k {
		case "object", "objekttyp":
			objectKind = s
		case "date", "datum":
			sourceDate = s
		default:
			props[k] = s
		}
	}

	geom, err := toRawGeometry(f.Geometry)
	if err != nil {
		return ingest.Record{}, err
	}

	return ingest.Record{
		ObjectKind: objectKind,
		Geometry:   geom,
		Properties: props,
		SourceDate: sourceDate,
	}, nil
}

func toRawGeometry(g orb.Geometry) (ingest.RawGeometry, error) {
	switch geom := g.(type) {
	case orb.Point:
		return ingest.RawGeometry{Kind: ingest.Point, Coordinates: []geometry.Coordinate{fromOrbPoint(geom)}}, nil
	case orb.LineString:
		return ingest.RawGeometry{Kind: ingest.LineString, Line: fromOrbLineString(geom)}, nil
	case orb.Polygon:
		return ingest.RawGeometry{Kind: ingest.Polygon, Rings: fromOrbPolygon(geom)}, nil
	case orb.MultiPolygon:
		polys := make([][][]geometry.Coordinate, len(geom))
		for i, p := range geom {
			polys[i] = fromOrbPolygon(p)
		}
		return ingest.RawGeometry{Kind: ingest.MultiPolygon, Polygons: polys}, nil
	default:
		return ingest.RawGeometry{}, fmt.Errorf("unsupported geometry type %T", g)
	}
}

func fromOrbPoint(p orb.Point) geometry.Coordinate {
	return geometry.Coordinate{Lon: p[0], Lat: p[1]}
}

func fromOrbLineString(l orb.LineString) []geometry.Coordinate {
	out := make([]geometry.Coordinate, len(l))
	for i, p := range l {
		out[i] = fromOrbPoint(p)
	}
	return out
}

func fromOrbPolygon(p orb.Polygon) [][]geometry.Coordinate {
	out := make([][]geometry.Coordinate, len(p))
	for i, ring := range p {
		coords := make([]geometry.Coordinate, len(ring))
		for j, pt := range ring {
			coords[j] = fromOrbPoint(pt)
		}
		out[i] = coords
	}
	return out
}
