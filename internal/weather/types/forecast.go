package types

// Forecast is an ordered sequence of daily reports for one location,
// index 0 being the current day.
type Forecast struct {
	Location Location `json:"location"`
	Reports  []Report `json:"reports"`
}

// Day returns the report for the zero-based day index. The boolean is false
// when the index is outside the forecast range.
func (f Forecast) Day(i int) (Report, bool) {
	if i < 0 || i >= len(f.Reports) {
		return Report{}, false
	}
	return f.Reports[i], true
}

// Days returns the number of daily reports in the forecast.
func (f Forecast) Days() int {
	return len(f.Reports)
}
