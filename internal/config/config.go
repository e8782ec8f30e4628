// Package config loads the plant description: where each stream's file
// lives, how its raw schema maps to working columns, and which QC policies
// (bounds, frozen-run threshold, dedup, time shift) apply to it.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"windplant_qc/internal/dst"
	"windplant_qc/internal/frame"
	"windplant_qc/internal/ingest"
	"windplant_qc/internal/qc"
)

type Config struct {
	Plant       Meta              `yaml:"plant"`
	SCADA       Stream            `yaml:"scada"`
	Meter       Stream            `yaml:"meter"`
	Curtailment Stream            `yaml:"curtailment"`
	Reanalysis  map[string]Stream `yaml:"reanalysis"`
}

// Meta is plant-level metadata carried through to reports.
type Meta struct {
	Name              string  `yaml:"name"`
	Latitude          float64 `yaml:"latitude"`
	Longitude         float64 `yaml:"longitude"`
	CapacityMW        float64 `yaml:"capacity_mw"`
	NumTurbines       int     `yaml:"num_turbines"`
	TurbineCapacityMW float64 `yaml:"turbine_capacity_mw"`
}

// Stream describes one source table and its normalization policy.
type Stream struct {
	File         string            `yaml:"file"`
	Format       string            `yaml:"format"` // csv (default) or xlsx
	TimeColumn   string            `yaml:"time_column"`
	TimeLayout   string            `yaml:"time_layout"`
	DeviceColumn string            `yaml:"device_column,omitempty"`
	Columns      map[string]string `yaml:"columns"`

	Freq           string            `yaml:"freq"`  // e.g. 10m, 1h
	Dedup          string            `yaml:"dedup"` // keep_first or drop_all
	Bounds         []Bound           `yaml:"bounds,omitempty"`
	FrozenMetrics  []string          `yaml:"frozen_metrics,omitempty"`
	FrozenRun      int               `yaml:"frozen_run,omitempty"`
	Shift          *Shift            `yaml:"shift,omitempty"`
	PowerColumn    string            `yaml:"power_column,omitempty"`
	PowerScale     float64           `yaml:"power_scale,omitempty"`
	DeriveEnergy   bool              `yaml:"derive_energy,omitempty"`
	DropIncomplete bool              `yaml:"drop_incomplete,omitempty"`
	Rename         map[string]string `yaml:"rename,omitempty"`
}

// Bound mirrors qc.Bound for YAML.
type Bound struct {
	Metric string  `yaml:"metric"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
}

// Shift selects the time correction: ruleset "flat" applies Hours to every
// timestamp; "american" or "european" apply the calendar DST correction
// with Hours as the standard-time offset.
type Shift struct {
	Ruleset string `yaml:"ruleset"`
	Hours   int    `yaml:"hours"`
}

// Load reads and validates a plant configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	streams := map[string]*Stream{
		"scada":       &c.SCADA,
		"meter":       &c.Meter,
		"curtailment": &c.Curtailment,
	}
	for name, s := range c.Reanalysis {
		streams["reanalysis."+name] = ptr(s)
	}
	for name, s := range streams {
		if s.File == "" {
			continue // stream not configured, skipped at load time
		}
		if err := s.validate(); err != nil {
			return fmt.Errorf("stream %s: %w", name, err)
		}
	}
	return nil
}

func ptr(s Stream) *Stream { return &s }

func (s *Stream) validate() error {
	if s.TimeColumn == "" {
		return fmt.Errorf("time_column is required")
	}
	if s.TimeLayout == "" {
		return fmt.Errorf("time_layout is required")
	}
	if _, err := s.Interval(); err != nil {
		return err
	}
	if _, err := s.DedupPolicy(); err != nil {
		return err
	}
	if _, err := s.Rule(); err != nil {
		return err
	}
	switch s.Format {
	case "", "csv", "xlsx":
	default:
		return fmt.Errorf("unknown format %q", s.Format)
	}
	return nil
}

// Interval parses the stream's sampling frequency.
func (s *Stream) Interval() (time.Duration, error) {
	if s.Freq == "" {
		return 0, fmt.Errorf("freq is required")
	}
	d, err := time.ParseDuration(s.Freq)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid freq %q", s.Freq)
	}
	return d, nil
}

// DedupPolicy resolves the duplicate policy, defaulting to keep_first.
func (s *Stream) DedupPolicy() (frame.DedupPolicy, error) {
	switch s.Dedup {
	case "", "keep_first":
		return frame.KeepFirst, nil
	case "drop_all":
		return frame.DropAll, nil
	}
	return 0, fmt.Errorf("unknown dedup policy %q", s.Dedup)
}

// Rule builds the configured time-shift rule; nil when no shift applies.
func (s *Stream) Rule() (dst.Rule, error) {
	if s.Shift == nil {
		return nil, nil
	}
	if s.Shift.Ruleset == "flat" {
		return dst.FlatOffset{Hours: s.Shift.Hours}, nil
	}
	table, ok := dst.FromName(s.Shift.Ruleset)
	if !ok {
		return nil, fmt.Errorf("unknown DST ruleset %q", s.Shift.Ruleset)
	}
	return dst.Calendar{Name: s.Shift.Ruleset, BaseHours: s.Shift.Hours, Table: table}, nil
}

// Schema builds the ingest schema for the stream.
func (s *Stream) Schema() ingest.Schema {
	return ingest.Schema{
		TimeColumn:   s.TimeColumn,
		TimeLayout:   s.TimeLayout,
		DeviceColumn: s.DeviceColumn,
		Columns:      s.Columns,
	}
}

// Parser builds the file parser for the stream's format.
func (s *Stream) Parser(name string) ingest.Parser {
	if s.Format == "xlsx" {
		return ingest.NewXLSXParser(name, s.Schema())
	}
	return ingest.NewCSVParser(name, s.Schema())
}

// QCConfig builds the normalization config for the stream.
func (s *Stream) QCConfig() (qc.Config, error) {
	interval, err := s.Interval()
	if err != nil {
		return qc.Config{}, err
	}
	policy, err := s.DedupPolicy()
	if err != nil {
		return qc.Config{}, err
	}
	rule, err := s.Rule()
	if err != nil {
		return qc.Config{}, err
	}

	bounds := make([]qc.Bound, len(s.Bounds))
	for i, b := range s.Bounds {
		bounds[i] = qc.Bound{Metric: b.Metric, Min: b.Min, Max: b.Max}
	}

	return qc.Config{
		Interval:       interval,
		Shift:          rule,
		Dedup:          policy,
		Bounds:         bounds,
		FrozenMetrics:  s.FrozenMetrics,
		FrozenRun:      s.FrozenRun,
		PowerColumn:    s.PowerColumn,
		PowerScale:     s.PowerScale,
		DeriveEnergy:   s.DeriveEnergy,
		DropIncomplete: s.DropIncomplete,
		Rename:         s.Rename,
	}, nil
}
