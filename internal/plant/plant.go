// Package plant orchestrates the QC pipeline for one wind plant: it loads
// every configured stream, runs the per-device normalizers, and merges the
// SCADA devices into one canonical frame.
package plant

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"windplant_qc/internal/config"
	"windplant_qc/internal/frame"
	"windplant_qc/internal/ingest"
	"windplant_qc/internal/metrics"
	"windplant_qc/internal/qc"
)

// Progress receives a callback after each stream finishes normalizing.
// Used by the server to push pipeline progress to connected dashboards.
type Progress interface {
	OnStream(name string, stats qc.Stats)
}

// Plant holds the normalized data for one site.
type Plant struct {
	Meta        config.Meta
	SCADA       *frame.Frame // merged across devices, sorted by time
	Meter       *frame.Frame
	Curtailment *frame.Frame
	Reanalysis  map[string]*frame.Frame

	// Devices lists SCADA device identifiers in first-appearance order.
	Devices []string
	// Stats holds per-stream normalization counters, keyed by stream name
	// (reanalysis products as "reanalysis.<product>").
	Stats map[string]qc.Stats
}

// Load runs the whole pipeline. Streams without a configured file are
// skipped; any configured stream that fails to load or normalize fails
// the plant. progress may be nil.
func Load(cfg *config.Config, inputDir string, logger *slog.Logger, progress Progress) (*Plant, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	p := &Plant{
		Meta:       cfg.Plant,
		Reanalysis: make(map[string]*frame.Frame),
		Stats:      make(map[string]qc.Stats),
	}

	if cfg.SCADA.File != "" {
		if err := p.loadSCADA(&cfg.SCADA, inputDir, logger, progress); err != nil {
			return nil, fmt.Errorf("scada: %w", err)
		}
	}

	single := []struct {
		name   string
		stream *config.Stream
		dest   **frame.Frame
	}{
		{"meter", &cfg.Meter, &p.Meter},
		{"curtailment", &cfg.Curtailment, &p.Curtailment},
	}
	for _, s := range single {
		if s.stream.File == "" {
			continue
		}
		f, err := p.loadStream(s.name, s.stream, inputDir, logger, progress)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		*s.dest = f
	}

	for product, stream := range cfg.Reanalysis {
		if stream.File == "" {
			continue
		}
		name := "reanalysis." + product
		f, err := p.loadStream(name, &stream, inputDir, logger, progress)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		p.Reanalysis[product] = f
	}

	return p, nil
}

// loadSCADA ingests the SCADA table, normalizes each device independently,
// and merges the devices back into one time-sorted frame.
func (p *Plant) loadSCADA(stream *config.Stream, inputDir string, logger *slog.Logger, progress Progress) error {
	raw, skipped, err := parseFile("scada", stream, inputDir)
	if err != nil {
		return err
	}

	qcCfg, err := stream.QCConfig()
	if err != nil {
		return err
	}

	devices, parts := qc.SplitByDevice(raw)
	var total qc.Stats
	normalized := make([]*frame.Frame, 0, len(parts))
	for _, device := range devices {
		part := parts[device]
		stats, err := qc.NewNormalizer(qcCfg).Normalize(part)
		if err != nil {
			return fmt.Errorf("device %s: %w", device, err)
		}
		total.Add(stats)
		normalized = append(normalized, part)
		logger.Info("normalized device",
			"device", device,
			"rows_in", stats.RowsIn,
			"rows_out", stats.RowsOut,
			"frozen", stats.FrozenFlagged)
	}

	p.SCADA = qc.Merge(normalized...)
	p.Devices = devices
	p.Stats["scada"] = total
	metrics.ObserveStream("scada", skipped, total)
	if progress != nil {
		progress.OnStream("scada", total)
	}

	logger.Info("scada ready", "devices", len(devices), "rows", p.SCADA.Len())
	return nil
}

func (p *Plant) loadStream(name string, stream *config.Stream, inputDir string, logger *slog.Logger, progress Progress) (*frame.Frame, error) {
	raw, skipped, err := parseFile(name, stream, inputDir)
	if err != nil {
		return nil, err
	}

	qcCfg, err := stream.QCConfig()
	if err != nil {
		return nil, err
	}

	stats, err := qc.NewNormalizer(qcCfg).Normalize(raw)
	if err != nil {
		return nil, err
	}

	p.Stats[name] = stats
	metrics.ObserveStream(name, skipped, stats)
	if progress != nil {
		progress.OnStream(name, stats)
	}

	logger.Info("stream ready", "stream", name, "rows_in", stats.RowsIn, "rows_out", stats.RowsOut)
	return raw, nil
}

func parseFile(name string, stream *config.Stream, inputDir string) (*frame.Frame, int, error) {
	path := filepath.Join(inputDir, stream.File)
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	parser := stream.Parser(name)
	parsed, err := parser.Parse(f)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing %s: %w", path, err)
	}

	skipped := 0
	switch p := parser.(type) {
	case *ingest.CSVParser:
		skipped = p.Skipped
	case *ingest.XLSXParser:
		skipped = p.Skipped
	}
	return parsed, skipped, nil
}
