package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/lmittmann/tint"
	flag "github.com/spf13/pflag"

	"windplant_qc/internal/config"
	"windplant_qc/internal/ingest"
	"windplant_qc/internal/plant"
)

func main() {
	configPath := flag.String("config", "configs/engie.yaml", "path to plant QC configuration")
	inputDir := flag.String("input-dir", "input", "directory containing raw data files")
	out := flag.String("out", "", "write the merged normalized SCADA table to this CSV file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("loading config", "err", err)
		os.Exit(1)
	}

	start := time.Now()
	p, err := plant.Load(cfg, *inputDir, logger, nil)
	if err != nil {
		logger.Error("pipeline failed", "err", err)
		os.Exit(1)
	}

	printReport(p, time.Since(start))

	if *out != "" {
		if err := writeSCADA(p, *out); err != nil {
			logger.Error("writing output", "err", err)
			os.Exit(1)
		}
		logger.Info("wrote normalized scada", "path", *out, "rows", p.SCADA.Len())
	}
}

func printReport(p *plant.Plant, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("Plant QC Report")
	fmt.Printf("  Plant: %s | Devices: %d | Elapsed: %s\n", p.Meta.Name, len(p.Devices), elapsed.Round(time.Millisecond))
	if p.SCADA != nil {
		if tr, ok := p.SCADA.TimeRange(); ok {
			fmt.Printf("  Data: %s to %s\n", tr.Start.Format("2006-01-02"), tr.End.Format("2006-01-02"))
		}
	}
	fmt.Println()

	streams := make([]string, 0, len(p.Stats))
	for name := range p.Stats {
		streams = append(streams, name)
	}
	sort.Strings(streams)

	fmt.Printf("  %-20s │ %8s │ %8s │ %6s │ %6s │ %6s │ %6s\n",
		"Stream", "Rows In", "Rows Out", "Dups", "Range", "Incmpl", "Frozen")
	fmt.Printf("  ─────────────────────┼──────────┼──────────┼────────┼────────┼────────┼────────\n")
	for _, name := range streams {
		s := p.Stats[name]
		fmt.Printf("  %-20s │ %8d │ %8d │ %6d │ %6d │ %6d │ %6d\n",
			name, s.RowsIn, s.RowsOut,
			s.DuplicatesDropped, s.OutOfRangeDropped, s.IncompleteDropped, s.FrozenFlagged)
	}
	fmt.Println()
}

func writeSCADA(p *plant.Plant, path string) error {
	if p.SCADA == nil {
		return fmt.Errorf("no scada data to write")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ingest.WriteCSV(f, p.SCADA, "2006-01-02 15:04:05")
}
