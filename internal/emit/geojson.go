package emit

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/model"
)

// debugNamespace seeds the uuid.NewSHA1 namespace so GeoJSON debug output
// gets stable, diffable feature ids across repeated runs over the same
// input, instead of ids that shuffle with slice order.
var debugNamespace = uuid.MustParse("2f5c9e2e-8b36-4f1b-9b1a-0b7b6f9ef111")

// WriteGeoJSON renders every surviving feature in store as a GeoJSON
// FeatureCollection, for inspecting intermediate pipeline state without a
// full OSM emission pass.
func WriteGeoJSON(w io.Writer, store *model.Store) error {
	fc := geojson.NewFeatureCollection()
	for i, f := range store.Features {
		if f.Deleted() {
			continue
		}
		geom := toOrbGeometry(f)
		if geom == nil {
			continue
		}
		feat := geojson.NewFeature(geom)
		feat.Properties = make(geojson.Properties, len(f.Tags)+1)
		for k, v := range f.Tags {
			feat.Properties[k] = v
		}
		feat.Properties["@object"] = f.ObjectKind
		feat.ID = uuid.NewSHA1(debugNamespace, []byte(f.ObjectKind+":"+strconv.Itoa(i))).String()
		fc.Append(feat)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fc)
}

func toOrbGeometry(f *model.Feature) orb.Geometry {
	switch f.Kind {
	case model.KindPoint:
		return orb.Point{f.Point.Lon, f.Point.Lat}
	case model.KindLineString:
		return toOrbLineString(f.Line)
	case model.KindPolygon:
		if len(f.Patches) == 0 {
			return nil
		}
		poly := make(orb.Polygon, len(f.Patches))
		for i, p := range f.Patches {
			poly[i] = toOrbRing(p.Coords)
		}
		return poly
	}
	return nil
}

func toOrbLineString(coords []geometry.Coordinate) orb.LineString {
	line := make(orb.LineString, len(coords))
	for i, c := range coords {
		line[i] = orb.Point{c.Lon, c.Lat}
	}
	return line
}

func toOrbRing(coords []geometry.Coordinate) orb.Ring {
	ring := make(orb.Ring, len(coords))
	for i, c := range coords {
		ring[i] = orb.Point{c.Lon, c.Lat}
	}
	return ring
}
