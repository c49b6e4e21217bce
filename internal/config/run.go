package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultEventID is the 2016 Kaikōura M7.8 mainshock.
const DefaultEventID = "2016p858000"

// Run describes one catalog retrieval run: a mainshock plus the data and
// forecast windows whose aftershocks are fetched around it.
type Run struct {
	EventID        string        `yaml:"event_id"`
	DataSource     string        `yaml:"data_source"`
	DataWindow     WindowConfig  `yaml:"data_window"`
	ForecastWindow WindowConfig  `yaml:"forecast_window"`
	Region         RegionConfig  `yaml:"region"`
	Catalog        CatalogConfig `yaml:"catalog"`
}

// WindowConfig is a day-offset range relative to the mainshock.
type WindowConfig struct {
	MinDays float64 `yaml:"min_days"`
	MaxDays float64 `yaml:"max_days"`
}

// RegionConfig bounds the aftershock search around the mainshock.
type RegionConfig struct {
	RadiusKm float64 `yaml:"radius_km"`
	MinDepth float64 `yaml:"min_depth"`
	MaxDepth float64 `yaml:"max_depth"`
}

// CatalogConfig controls post-fetch filtering and summaries.
type CatalogConfig struct {
	MagComplete        float64   `yaml:"mag_complete"`
	ForecastMagnitudes []float64 `yaml:"forecast_magnitudes"`
}

// DefaultRun returns the settings used when no run file is given.
func DefaultRun() *Run {
	return &Run{
		EventID:        DefaultEventID,
		DataSource:     "geonet",
		DataWindow:     WindowConfig{MinDays: 0, MaxDays: 7},
		ForecastWindow: WindowConfig{MinDays: 7, MaxDays: 14},
		Region:         RegionConfig{RadiusKm: 200, MinDepth: -10, MaxDepth: 100},
		Catalog: CatalogConfig{
			MagComplete:        3.0,
			ForecastMagnitudes: []float64{3.0, 4.0, 5.0},
		},
	}
}

// LoadRun reads a YAML run file. Fields absent from the file keep their
// DefaultRun values.
func LoadRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run file: %w", err)
	}

	run := DefaultRun()
	if err := yaml.Unmarshal(data, run); err != nil {
		return nil, fmt.Errorf("parse run file %s: %w", path, err)
	}
	if err := run.Validate(); err != nil {
		return nil, fmt.Errorf("run file %s: %w", path, err)
	}
	return run, nil
}

// Validate checks that the run can produce a meaningful query.
func (r *Run) Validate() error {
	if r.EventID == "" {
		return errors.New("event_id is required")
	}
	if r.DataSource != "" && r.DataSource != "geonet" {
		return fmt.Errorf("unsupported data_source %q", r.DataSource)
	}
	if r.DataWindow.MinDays > r.DataWindow.MaxDays {
		return errors.New("data_window min_days exceeds max_days")
	}
	if r.ForecastWindow.MinDays > r.ForecastWindow.MaxDays {
		return errors.New("forecast_window min_days exceeds max_days")
	}
	if r.Region.RadiusKm <= 0 {
		return errors.New("region radius_km must be positive")
	}
	if r.Region.MinDepth > r.Region.MaxDepth {
		return errors.New("region min_depth exceeds max_depth")
	}
	return nil
}
