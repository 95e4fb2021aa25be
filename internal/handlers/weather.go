package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skycast-dev/skycast/internal/weather"
	"github.com/skycast-dev/skycast/internal/weather/types"
)

// defaultForecastDays is used when GET /api/forecast omits the days parameter.
const defaultForecastDays = 5

// locationQuery defines the query parameters identifying a place. Latitude
// and longitude bind through pointers so zero coordinates survive the
// required check.
type locationQuery struct {
	Location  string   `form:"location" binding:"required"`
	Latitude  *float64 `form:"lat" binding:"required,min=-90,max=90"`
	Longitude *float64 `form:"lon" binding:"required,min=-180,max=180"`
}

func (q locationQuery) toLocation() types.Location {
	return types.NewLocation(q.Location, *q.Latitude, *q.Longitude)
}

// weatherResponse mirrors the JSON shape of a successful weather lookup.
type weatherResponse struct {
	Location     types.Location  `json:"location"`
	Temperature  float64         `json:"temperature"`
	TemperatureF float64         `json:"temperatureF"`
	Humidity     int             `json:"humidity"`
	Condition    types.Condition `json:"condition"`
	Timestamp    time.Time       `json:"timestamp"`
	Summary      string          `json:"summary"`
}

func newWeatherResponse(report types.Report) weatherResponse {
	return weatherResponse{
		Location:     report.Location,
		Temperature:  report.Temperature,
		TemperatureF: types.NewFahrenheitReport(report).Temperature(),
		Humidity:     report.Humidity,
		Condition:    report.Condition,
		Timestamp:    report.Timestamp,
		Summary:      report.Summary(),
	}
}

// WeatherHandler returns a Gin handler for GET /api/weather
func WeatherHandler(fetcher weather.Fetcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1) Bind and validate the location query parameters
		var q locationQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			// 400 Invalid request
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// 2) Fetch current weather
		report, err := fetcher.FetchCurrent(c.Request.Context(), q.toLocation())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		// 3) 200 Successful operation
		c.JSON(http.StatusOK, newWeatherResponse(report))
	}
}

// forecastQuery adds the day count to the location parameters.
type forecastQuery struct {
	locationQuery
	Days *int `form:"days" binding:"omitempty,min=0,max=16"`
}

// forecastResponse lists one entry per forecast day.
type forecastResponse struct {
	Location types.Location    `json:"location"`
	Days     int               `json:"days"`
	Reports  []weatherResponse `json:"reports"`
}

// ForecastHandler returns a Gin handler for GET /api/forecast
func ForecastHandler(fetcher weather.Fetcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q forecastQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		days := defaultForecastDays
		if q.Days != nil {
			days = *q.Days
		}

		forecast, err := fetcher.FetchForecast(c.Request.Context(), q.toLocation(), days)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := forecastResponse{
			Location: forecast.Location,
			Days:     forecast.Days(),
			Reports:  make([]weatherResponse, 0, forecast.Days()),
		}
		for _, report := range forecast.Reports {
			resp.Reports = append(resp.Reports, newWeatherResponse(report))
		}
		c.JSON(http.StatusOK, resp)
	}
}
