// Package topo2osm wires the pipeline phases (internal/ingest through
// internal/emit) into the single ordered run spec.md §7 describes,
// against one shared *model.Store.
package topo2osm

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/nkamapper/topo2osm/internal/combine"
	"github.com/nkamapper/topo2osm/internal/decompose"
	"github.com/nkamapper/topo2osm/internal/emit"
	"github.com/nkamapper/topo2osm/internal/errs"
	"github.com/nkamapper/topo2osm/internal/geometry"
	"github.com/nkamapper/topo2osm/internal/grid"
	"github.com/nkamapper/topo2osm/internal/ingest"
	"github.com/nkamapper/topo2osm/internal/intersect"
	"github.com/nkamapper/topo2osm/internal/island"
	"github.com/nkamapper/topo2osm/internal/model"
	"github.com/nkamapper/topo2osm/internal/partition"
	"github.com/nkamapper/topo2osm/internal/placename"
	"github.com/nkamapper/topo2osm/internal/river"
	"github.com/nkamapper/topo2osm/internal/runconfig"
	"github.com/nkamapper/topo2osm/internal/tagging"
	"github.com/nkamapper/topo2osm/internal/wetland"
)

// Sources bundles every external input the pipeline reads, beyond the
// municipality's own topo data: a coarser-scale river iterator for the
// cross-scale upgrade and a place-name iterator for §4.J. Either may be
// nil when the corresponding config flag is off.
type Sources struct {
	Topo         ingest.FeatureIterator
	CoarseRivers ingest.FeatureIterator
	PlaceNames   []*model.PlaceName
}

// Pipeline runs the full topo2osm conversion against one municipality's
// input data.
type Pipeline struct {
	Config *runconfig.Config
	Log    *zap.Logger
}

// New builds a Pipeline from cfg, defaulting to a no-op logger if log is
// nil.
func New(cfg *runconfig.Config, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{Config: cfg, Log: log}
}

// Summary reports the headline counts of one run, for the CLI to print.
type Summary struct {
	FeaturesIngested int
	SegmentsIngested int
	Discarded        int
	MissingTags      []string
	IslandsFound     int
	NamesMatched     int
	NodesEmitted     int
	WaysEmitted      int
	RelationsEmitted int
}

// Run executes every phase in spec.md §7 order against a fresh Store and
// writes the result to w. Config.JSONOutput selects the GeoJSON debug
// writer instead of the OSM XML writer.
func (p *Pipeline) Run(src Sources, w io.Writer) (Summary, error) {
	store := model.NewStore()
	cfg := p.Config
	log := p.Log
	var sum Summary

	// C. Ingestion
	out, err := ingest.Run(store, src.Topo, cfg.MergeWetland, cfg.Thresholds.GridSizeM, log)
	if err != nil {
		if errs.IsFatal(err) {
			return sum, fmt.Errorf("ingest: %w", err)
		}
		log.Warn("non-fatal ingest error", zap.Error(err))
	}
	sum.FeaturesIngested = out.FeaturesCreated
	sum.SegmentsIngested = out.SegmentsCreated
	sum.Discarded = out.Discarded
	sum.MissingTags = out.MissingTags
	log.Info("ingestion complete",
		zap.Int("features", out.FeaturesCreated),
		zap.Int("segments", out.SegmentsCreated),
		zap.Int("discarded", out.Discarded))

	// D. Grid-line post-processing: merge duplicate on-grid runs and
	// compress each into the patches that reference it.
	if cfg.MergeGrid {
		grid.PostDedup(store, out.GridlineIndices)
	}

	// E. Wetland reconciliation
	if cfg.DataCategory == model.CategoryTopo || cfg.MergeWetland {
		wetland.OverlapToSegments(store, cfg.MergeWetland)
		wetland.SplitSegments(store, cfg.MergeWetland)
		wetland.InsertMissingNodes(store, cfg.MergeWetland, cfg.Thresholds.WetlandSnapM)
		wetland.RemoveSurplusNodes(store, cfg.MergeWetland, cfg.Thresholds.WetlandSnapM)
	}

	// F. River assembly
	river.ChainByIdentifier(store)
	if cfg.GetTopoRivers && src.CoarseRivers != nil {
		coarse := model.NewStore()
		if _, err := ingest.Run(coarse, src.CoarseRivers, false, 0, log); err != nil && errs.IsFatal(err) {
			return sum, fmt.Errorf("ingest coarse rivers: %w", err)
		}
		worthy := river.BuildRiverWorthyIDs(coarse.Features)
		river.CrossScaleUpgrade(store, worthy)
	}

	// G. Polygon decomposition
	priorityOf := func(kind string) int { return tagging.PriorityOf(kind, tagging.ObjectSortingOrder) }
	decompose.CoastlineRepair(store, cfg.Thresholds.IntersectionSnapM)
	decompose.Decompose(store, priorityOf, wetlandEqualityOnly)

	// H. Feature/segment combination
	store.RecomputeParents()
	isGridCrossing := func(c geometry.Coordinate) bool { return grid.AtGridCrossing(c, cfg.Thresholds.GridSizeM) }
	combine.AcrossGrid(store, cfg.Thresholds.MaxCombineMembers, isGridCrossing)
	combine.ConsecutiveSegments(store, priorityOf)

	// I. Island identification
	if cfg.DataCategory == model.CategoryTopo {
		sum.IslandsFound += island.InnerRings(store, cfg.Thresholds.IslandSizeM2)
		sum.IslandsFound += island.ShoreCycles(store, cfg.Thresholds.IslandSizeM2)
	}

	// J. Place-name matching
	if cfg.GetName && cfg.DataCategory == model.CategoryTopo {
		store.PlaceNames = src.PlaceNames
		placename.FixSuffixes(store)
		sum.NamesMatched += placename.MatchCategories(store, cfg.AddSeaNames)
		sum.NamesMatched += placename.ProximityFallback(store, 50)
	}

	// K. Line intersection resolution
	intersect.RemoveSeaFeatures(store)
	intersect.SeedNodeSet(store)
	intersect.ResolveStreamShoreIntersections(store)
	store.RecomputeParents()

	// L. Simplification
	if cfg.Simplify {
		partition.Simplify(store)
	}

	// M. OSM emission
	doc := emit.Build(store)
	sum.NodesEmitted = len(doc.Nodes)
	sum.WaysEmitted = len(doc.Ways)
	sum.RelationsEmitted = len(doc.Relations)

	if cfg.JSONOutput {
		if err := emit.WriteGeoJSON(w, store); err != nil {
			return sum, fmt.Errorf("write geojson: %w", err)
		}
		return sum, nil
	}
	if err := emit.WriteOSMXML(w, doc); err != nil {
		return sum, fmt.Errorf("write osm xml: %w", err)
	}
	return sum, nil
}

func wetlandEqualityOnly(kind string) bool {
	return kind == "Sankmark, öppen" || kind == "Sankmark, träd"
}
