package types

import "fmt"

// CelsiusToFahrenheit converts a temperature from °C to °F.
func CelsiusToFahrenheit(celsius float64) float64 {
	return celsius*9/5 + 32
}

// FahrenheitReport adapts a Report for consumers that expect imperial units.
// The wrapped report is unchanged; conversion happens on read.
type FahrenheitReport struct {
	report Report
}

func NewFahrenheitReport(r Report) FahrenheitReport {
	return FahrenheitReport{report: r}
}

// Temperature returns the report temperature converted to °F.
func (f FahrenheitReport) Temperature() float64 {
	return CelsiusToFahrenheit(f.report.Temperature)
}

// Summary mirrors Report.Summary with the temperature in °F.
func (f FahrenheitReport) Summary() string {
	r := f.report
	return fmt.Sprintf("Weather in %s: %.1f°F, %d%% humidity, %s (%s)",
		r.Location.Name, f.Temperature(), r.Humidity, r.Condition,
		r.Timestamp.Format("2006-01-02 15:04"))
}
