package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skycast-dev/skycast/internal/notifier"
	"github.com/skycast-dev/skycast/internal/weather/station"
	"github.com/skycast-dev/skycast/internal/weather/types"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "skycast",
		Short: "Simulated weather reports",
		Long:  "Serves simulated current weather and daily forecasts for any location.",
	}

	// Full reporting cycle on stdout
	var demoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Walk through a full reporting cycle",
		Run: func(cmd *cobra.Command, args []string) {
			name, _ := cmd.Flags().GetString("location")
			lat, _ := cmd.Flags().GetFloat64("lat")
			lon, _ := cmd.Flags().GetFloat64("lon")
			runDemo(name, lat, lon)
		},
	}
	demoCmd.Flags().String("location", "Berlin", "Location name")
	demoCmd.Flags().Float64("lat", 52.52, "Latitude in degrees")
	demoCmd.Flags().Float64("lon", 13.405, "Longitude in degrees")

	// Current conditions for one location
	var currentCmd = &cobra.Command{
		Use:   "current [location]",
		Short: "Show the current weather report",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			lat, _ := cmd.Flags().GetFloat64("lat")
			lon, _ := cmd.Flags().GetFloat64("lon")
			output, _ := cmd.Flags().GetString("output")
			showCurrent(args[0], lat, lon, output)
		},
	}
	currentCmd.Flags().Float64("lat", 0, "Latitude in degrees")
	currentCmd.Flags().Float64("lon", 0, "Longitude in degrees")
	currentCmd.Flags().StringP("output", "o", "text", "Output format (text, json)")

	// Daily forecast for one location
	var forecastCmd = &cobra.Command{
		Use:   "forecast [location]",
		Short: "Show a daily forecast",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			lat, _ := cmd.Flags().GetFloat64("lat")
			lon, _ := cmd.Flags().GetFloat64("lon")
			days, _ := cmd.Flags().GetInt("days")
			output, _ := cmd.Flags().GetString("output")
			showForecast(args[0], lat, lon, days, output)
		},
	}
	forecastCmd.Flags().Float64("lat", 0, "Latitude in degrees")
	forecastCmd.Flags().Float64("lon", 0, "Longitude in degrees")
	forecastCmd.Flags().IntP("days", "d", 5, "Number of days to forecast")
	forecastCmd.Flags().StringP("output", "o", "text", "Output format (text, json)")

	rootCmd.AddCommand(demoCmd, currentCmd, forecastCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runDemo walks the whole reporting cycle: current conditions, the Fahrenheit
// view, a five-day forecast and an observer dispatch.
func runDemo(name string, lat, lon float64) {
	ctx := context.Background()
	st := station.New()
	loc := types.NewLocation(name, lat, lon)

	fmt.Printf("Location: %s (%s)\n", loc.Name, loc.Coordinates())
	fmt.Println(strings.Repeat("=", 40))

	report, err := st.FetchCurrent(ctx, loc)
	if err != nil {
		log.Fatalf("fetch current weather: %v", err)
	}
	fmt.Println(report.Summary())

	fahrenheit := types.NewFahrenheitReport(report)
	fmt.Printf("In Fahrenheit: %.1f°F\n", fahrenheit.Temperature())

	forecast, err := st.FetchForecast(ctx, loc, 5)
	if err != nil {
		log.Fatalf("fetch forecast: %v", err)
	}
	fmt.Println("5-day forecast:")
	for i := 0; i < forecast.Days(); i++ {
		r, _ := forecast.Day(i)
		fmt.Printf("  Day %d: %s\n", i, r.Summary())
	}

	fmt.Println("Dispatching to observers:")
	reg := notifier.New()
	reg.Add(notifier.NewWriterObserver(os.Stdout))
	if err := reg.Notify(report); err != nil {
		log.Fatalf("notify observers: %v", err)
	}
}

// showCurrent prints the current report as text or indented JSON.
func showCurrent(name string, lat, lon float64, output string) {
	st := station.New()
	loc := types.NewLocation(name, lat, lon)

	report, err := st.FetchCurrent(context.Background(), loc)
	if err != nil {
		log.Fatalf("fetch current weather: %v", err)
	}

	if output == "json" {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Println(report.Summary())
	fmt.Printf("In Fahrenheit: %.1f°F\n", types.NewFahrenheitReport(report).Temperature())
}

// showForecast prints one line per forecast day, or the whole forecast as JSON.
func showForecast(name string, lat, lon float64, days int, output string) {
	st := station.New()
	loc := types.NewLocation(name, lat, lon)

	forecast, err := st.FetchForecast(context.Background(), loc, days)
	if err != nil {
		log.Fatalf("fetch forecast: %v", err)
	}

	if output == "json" {
		data, _ := json.MarshalIndent(forecast, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("%d-day forecast for %s\n", forecast.Days(), loc.Name)
	fmt.Println(strings.Repeat("=", 40))
	for i := 0; i < forecast.Days(); i++ {
		r, _ := forecast.Day(i)
		fmt.Printf("Day %d: %s\n", i, r.Summary())
	}
}
