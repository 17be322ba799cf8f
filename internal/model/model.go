// Package model holds the in-memory feature store shared by every pipeline
// phase: features, segments, the shared node set, and place-name records.
//
// Segments and features reference each other only by integer index
// (spec.md §9) — never by pointer — so that a phase can freely append to
// either slice without invalidating references held elsewhere. Segment
// indices are never reused or compacted before emission; logical deletion
// is "used = 0", not removal.
package model

import "github.com/nkamapper/topo2osm/internal/geometry"

// GeomKind distinguishes the three feature geometry shapes spec.md §3
// names.
type GeomKind int

const (
	KindPoint GeomKind = iota
	KindLineString
	KindPolygon
)

// ParentRef names one (feature, patch) pair referencing a segment.
type ParentRef struct {
	FeatureIndex int
	PatchIndex   int
}

// Segment is an ordered, duplicate-free coordinate sequence that may be
// shared by multiple polygon patches.
type Segment struct {
	ObjectKind string
	Coords     []geometry.Coordinate
	Tags       map[string]string
	Extras     map[string]string

	// Projected carries Coords in the source projected CRS, index-aligned,
	// for Gridline segments only — §4.H's grid-crossing test needs the
	// pre-reprojection coordinates and nothing else produces or consumes
	// this field.
	Projected []geometry.Coordinate

	Used    int // reference count; 0 means "drop from output" (unless debug)
	Parents []ParentRef

	bbox      geometry.BBox
	bboxValid bool
}

// BBox returns (and caches) the segment's bounding box.
func (s *Segment) BBox() geometry.BBox {
	if !s.bboxValid {
		s.bbox = geometry.Bounds(s.Coords, 0)
		s.bboxValid = true
	}
	return s.bbox
}

// InvalidateBBox must be called after Coords is mutated in place.
func (s *Segment) InvalidateBBox() {
	s.bboxValid = false
}

// First returns the segment's first coordinate.
func (s *Segment) First() geometry.Coordinate { return s.Coords[0] }

// Last returns the segment's last coordinate.
func (s *Segment) Last() geometry.Coordinate { return s.Coords[len(s.Coords)-1] }

// Patch is one ring of a polygon feature: index 0 is the outer ring, later
// indices are holes. Coords and Members are kept in step until combination
// and simplification, after which spec.md §3 explicitly allows them to
// diverge.
type Patch struct {
	Coords  []geometry.Coordinate
	Members []int // segment indices, in walk order
}

// Feature is one source record surviving ingestion as a first-class object
// (as opposed to an auxiliary segment).
type Feature struct {
	ObjectKind string
	Kind       GeomKind
	Tags       map[string]string
	Extras     map[string]string

	Point  geometry.Coordinate   // valid when Kind == KindPoint
	Line   []geometry.Coordinate // valid when Kind == KindLineString
	Patches []Patch              // valid when Kind == KindPolygon

	OSMID int // assigned at emission; 0 until then

	// deleted marks a feature removed during combination; the index is
	// retained (never compacted) until Store.CompactFeatures runs.
	deleted bool
}

// Deleted reports whether f has been logically removed.
func (f *Feature) Deleted() bool { return f.deleted }

// BBox returns the bounding box of a feature's geometry.
func (f *Feature) BBox() geometry.BBox {
	switch f.Kind {
	case KindPoint:
		return geometry.Bounds([]geometry.Coordinate{f.Point}, 0)
	case KindLineString:
		return geometry.Bounds(f.Line, 0)
	case KindPolygon:
		if len(f.Patches) == 0 {
			return geometry.BBox{}
		}
		b := geometry.Bounds(f.Patches[0].Coords, 0)
		for _, p := range f.Patches[1:] {
			b = b.Union(geometry.Bounds(p.Coords, 0))
		}
		return b
	}
	return geometry.BBox{}
}

// PlaceName is a gazetteer record, one or more candidate points plus
// scoring and tagging data (spec.md §3).
type PlaceName struct {
	Points     []geometry.Coordinate
	Category   string
	Source     string // highest-priority scale tier present: T250/T100/T50/T10
	Scores     map[string]int
	Tags       map[string]string
	RefID      string
	WordCount  int
	claimed    bool
}

// Claimed reports whether this place has already been matched to a feature.
func (p *PlaceName) Claimed() bool { return p.claimed }

// Claim marks the place name as matched.
func (p *PlaceName) Claim() { p.claimed = true }

// Store is the pipeline-scoped context object threaded through every phase
// (spec.md §9): it owns the features, segments, shared node set, and place
// names for one municipality run. No package-level mutable state exists
// anywhere in this module; every phase takes a *Store explicitly.
type Store struct {
	Features   []*Feature
	Segments   []*Segment
	PlaceNames []*PlaceName
	Nodes      map[geometry.Coordinate]bool

	// MissingTags accumulates unknown object kinds seen during ingestion
	// (spec.md §7 "Tagging unknown").
	MissingTags map[string]bool

	// SourceYears accumulates source dates by year for the run summary
	// (spec.md §4.C).
	SourceYears map[int]int
}

// NewStore returns an empty Store ready for ingestion.
func NewStore() *Store {
	return &Store{
		Nodes:       make(map[geometry.Coordinate]bool),
		MissingTags: make(map[string]bool),
		SourceYears: make(map[int]int),
	}
}

// AddSegment appends seg and returns its index.
func (s *Store) AddSegment(seg *Segment) int {
	s.Segments = append(s.Segments, seg)
	return len(s.Segments) - 1
}

// AddFeature appends f and returns its index.
func (s *Store) AddFeature(f *Feature) int {
	s.Features = append(s.Features, f)
	return len(s.Features) - 1
}

// DeleteFeature marks f logically deleted; its index remains valid (but
// unused) until CompactFeatures runs.
func (s *Store) DeleteFeature(index int) {
	s.Features[index].deleted = true
}

// MarkNode adds c to the shared node set.
func (s *Store) MarkNode(c geometry.Coordinate) {
	s.Nodes[c] = true
}

// IsNode reports whether c is in the shared node set.
func (s *Store) IsNode(c geometry.Coordinate) bool {
	return s.Nodes[c]
}

// RecomputeParents rebuilds every segment's Parents list from the current
// feature/patch member lists. Called at the start of §4.H and again at
// §4.K per spec.md §9.
func (s *Store) RecomputeParents() {
	for _, seg := range s.Segments {
		seg.Parents = seg.Parents[:0]
	}
	for fi, f := range s.Features {
		if f.deleted || f.Kind != KindPolygon {
			continue
		}
		for pi, patch := range f.Patches {
			for _, segIndex := range patch.Members {
				seg := s.Segments[segIndex]
				seg.Parents = append(seg.Parents, ParentRef{FeatureIndex: fi, PatchIndex: pi})
			}
		}
	}
}

// CompactFeatures removes deleted features from the slice, rewriting every
// segment parent reference and any external index map the caller supplies.
// remapOut, if non-nil, is populated with oldIndex -> newIndex for surviving
// features.
func (s *Store) CompactFeatures(remapOut map[int]int) {
	kept := make([]*Feature, 0, len(s.Features))
	remap := make(map[int]int, len(s.Features))
	for oldIndex, f := range s.Features {
		if f.deleted {
			continue
		}
		remap[oldIndex] = len(kept)
		kept = append(kept, f)
	}
	s.Features = kept
	for _, seg := range s.Segments {
		newParents := seg.Parents[:0]
		for _, p := range seg.Parents {
			if newIndex, ok := remap[p.FeatureIndex]; ok {
				newParents = append(newParents, ParentRef{FeatureIndex: newIndex, PatchIndex: p.PatchIndex})
			}
		}
		seg.Parents = newParents
	}
	if remapOut != nil {
		for k, v := range remap {
			remapOut[k] = v
		}
	}
}
