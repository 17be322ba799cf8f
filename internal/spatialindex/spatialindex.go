// Package spatialindex wraps github.com/dhconnelly/rtreego behind an
// integer-id interface, mirroring the teacher's buildSpatialIndex /
// indexedFeature pattern (pkg/s57/s57.go) but generalized to index any
// entity carrying an integer id and a bounding box — segments, candidate
// features or gazetteer points — instead of one fixed Feature type.
package spatialindex

import (
	"github.com/dhconnelly/rtreego"

	"github.com/nkamapper/topo2osm/internal/geometry"
)

// minSpan is the smallest non-zero side length rtreego will accept for a
// rectangle; point-like bounding boxes are padded to this.
const minSpan = 1e-9

// entry wraps one indexed id with its bounding box for rtreego storage.
type entry struct {
	id    int
	bbox  geometry.BBox
}

func (e *entry) Bounds() rtreego.Rect {
	lonLen := e.bbox.MaxLon - e.bbox.MinLon
	latLen := e.bbox.MaxLat - e.bbox.MinLat
	if lonLen < minSpan {
		lonLen = minSpan
	}
	if latLen < minSpan {
		latLen = minSpan
	}
	point := rtreego.Point{e.bbox.MinLon, e.bbox.MinLat}
	rect, _ := rtreego.NewRect(point, []float64{lonLen, latLen})
	return rect
}

// Index is an R-tree over integer ids with associated bounding boxes.
type Index struct {
	tree *rtreego.Rtree
}

// New builds an Index from the given ids and their bounding boxes. Min/max
// children per node follow the teacher's own constants (25/50), which hold
// up well from a few hundred to tens of thousands of entries — the range a
// single municipality's segment or feature set falls into.
func New(ids []int, bboxOf func(id int) geometry.BBox) *Index {
	tree := rtreego.NewTree(2, 25, 50)
	for _, id := range ids {
		tree.Insert(&entry{id: id, bbox: bboxOf(id)})
	}
	return &Index{tree: tree}
}

// Query returns every indexed id whose bounding box overlaps b.
func (ix *Index) Query(b geometry.BBox) []int {
	if ix == nil || ix.tree == nil {
		return nil
	}
	lonLen := b.MaxLon - b.MinLon
	latLen := b.MaxLat - b.MinLat
	if lonLen < minSpan {
		lonLen = minSpan
	}
	if latLen < minSpan {
		latLen = minSpan
	}
	point := rtreego.Point{b.MinLon, b.MinLat}
	rect, _ := rtreego.NewRect(point, []float64{lonLen, latLen})

	results := ix.tree.SearchIntersect(rect)
	ids := make([]int, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.(*entry).id)
	}
	return ids
}
