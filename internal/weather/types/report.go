package types

import (
	"fmt"
	"time"
)

// Report is an immutable snapshot of weather conditions at a location at a
// point in time. Temperature is in °C, humidity a 0-100 percentage.
type Report struct {
	Location    Location  `json:"location"`
	Temperature float64   `json:"temperature"`
	Humidity    int       `json:"humidity"`
	Condition   Condition `json:"condition"`
	Timestamp   time.Time `json:"timestamp"`
}

// Summary renders the one-line human-readable form of the report.
func (r Report) Summary() string {
	return fmt.Sprintf("Weather in %s: %.1f°C, %d%% humidity, %s (%s)",
		r.Location.Name, r.Temperature, r.Humidity, r.Condition,
		r.Timestamp.Format("2006-01-02 15:04"))
}
