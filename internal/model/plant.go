package model

import "time"

// Canonical field names for normalized plant data, following the
// IEC 61400-25 naming used by operational analysis tools.
const (
	FieldTime          = "time"
	FieldDevice        = "id"
	FieldPower         = "wtur_W_avg"     // average active power, W
	FieldWindSpeed     = "wmet_wdspd_avg" // nacelle wind speed, m/s
	FieldWindDirection = "wmet_HorWd_Dir" // horizontal wind direction, deg
	FieldEnergy        = "energy_kwh"     // energy over the sampling interval
)

// Stream identifiers for the data sources a plant carries.
const (
	StreamSCADA       = "scada"
	StreamMeter       = "meter"
	StreamCurtailment = "curtailment"
)

// MetricInfo holds display name and unit for a canonical metric.
type MetricInfo struct {
	Name string
	Unit string
}

// MetricCatalog maps canonical field names to display name and unit.
var MetricCatalog = map[string]MetricInfo{
	FieldPower:         {Name: "Active Power", Unit: "W"},
	FieldWindSpeed:     {Name: "Wind Speed", Unit: "m/s"},
	FieldWindDirection: {Name: "Wind Direction", Unit: "°"},
	FieldEnergy:        {Name: "Energy", Unit: "kWh"},
}

type TimeRange struct {
	Start time.Time
	End   time.Time
}
