package weather

import (
	"context"

	"github.com/skycast-dev/skycast/internal/weather/types"
)

// Fetcher produces weather reports for a location. Implementations include
// the simulated station and the Redis caching decorator; consumers should not
// care which one they hold.
type Fetcher interface {
	// FetchCurrent returns the present conditions at loc.
	FetchCurrent(ctx context.Context, loc types.Location) (types.Report, error)

	// FetchForecast returns one report per day, days in total, starting
	// today.
	FetchForecast(ctx context.Context, loc types.Location, days int) (types.Forecast, error)
}
