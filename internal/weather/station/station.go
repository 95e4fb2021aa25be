// Package station fabricates weather data for the rest of the system. It
// stands where a real provider client would and keeps the same fetcher shape,
// but never leaves the process: reports are generated deterministically from
// a single clock reading.
package station

import (
	"context"
	"time"

	"github.com/skycast-dev/skycast/internal/weather/types"
)

const (
	baseTemperature = 25.0
	baseHumidity    = 60
)

// Station is a simulated weather data source.
type Station struct {
	now func() time.Time
}

// New returns a Station that reads the system clock.
func New() *Station {
	return &Station{now: time.Now}
}

// FetchCurrent reports the present conditions at loc. The shape is fixed
// (Sunny, 25.0°C, 60% humidity); only the timestamp varies.
func (s *Station) FetchCurrent(ctx context.Context, loc types.Location) (types.Report, error) {
	return types.Report{
		Location:    loc,
		Temperature: baseTemperature,
		Humidity:    baseHumidity,
		Condition:   types.Sunny,
		Timestamp:   s.now(),
	}, nil
}

// FetchForecast returns exactly one report per requested day. Day i warms by
// i degrees, dries by i points and alternates Sunny and Cloudy, with
// timestamps spaced whole days apart from one clock reading.
func (s *Station) FetchForecast(ctx context.Context, loc types.Location, days int) (types.Forecast, error) {
	now := s.now()
	f := types.Forecast{Location: loc}
	for i := 0; i < days; i++ {
		condition := types.Sunny
		if i%2 == 1 {
			condition = types.Cloudy
		}
		f.Reports = append(f.Reports, types.Report{
			Location:    loc,
			Temperature: baseTemperature + float64(i),
			Humidity:    baseHumidity - i,
			Condition:   condition,
			Timestamp:   now.Add(time.Duration(i) * 24 * time.Hour),
		})
	}
	return f, nil
}
