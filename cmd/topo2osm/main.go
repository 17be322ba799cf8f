// Command topo2osm converts Swedish national topographic vector data into
// an OSM change file, driven entirely by the environment variables
// internal/runconfig documents.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/nkamapper/topo2osm/internal/ingest"
	"github.com/nkamapper/topo2osm/internal/logging"
	"github.com/nkamapper/topo2osm/internal/runconfig"
	"github.com/nkamapper/topo2osm/internal/source"
	"github.com/nkamapper/topo2osm/pkg/topo2osm"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "topo2osm:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := runconfig.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting topo2osm",
		zap.String("municipality", cfg.Municipality),
		zap.String("topo_product", string(cfg.TopoProduct)),
		zap.String("data_category", string(cfg.DataCategory)))

	pipeline := topo2osm.New(cfg, log)

	topoSrc, err := source.OpenGeoJSONFile(cfg.InputFile)
	if err != nil {
		return fmt.Errorf("open input file: %w", err)
	}
	defer topoSrc.Close()

	var coarseRivers ingest.FeatureIterator
	if cfg.CoarseRiversFile != "" {
		riversSrc, err := source.OpenGeoJSONFile(cfg.CoarseRiversFile)
		if err != nil {
			return fmt.Errorf("open coarse rivers file: %w", err)
		}
		defer riversSrc.Close()
		coarseRivers = riversSrc
	}

	out, err := outputFile(cfg)
	if err != nil {
		return err
	}
	defer out.Close()

	sum, err := pipeline.Run(topo2osm.Sources{Topo: topoSrc, CoarseRivers: coarseRivers}, out)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	log.Info("topo2osm complete",
		zap.Int("features_ingested", sum.FeaturesIngested),
		zap.Int("segments_ingested", sum.SegmentsIngested),
		zap.Int("discarded", sum.Discarded),
		zap.Int("islands_found", sum.IslandsFound),
		zap.Int("names_matched", sum.NamesMatched),
		zap.Int("nodes_emitted", sum.NodesEmitted),
		zap.Int("ways_emitted", sum.WaysEmitted),
		zap.Int("relations_emitted", sum.RelationsEmitted))
	return nil
}

func outputFile(cfg *runconfig.Config) (*os.File, error) {
	name := "topo_" + cfg.Municipality + ".osm"
	if cfg.JSONOutput {
		name = "topo_" + cfg.Municipality + ".geojson"
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}
