package types

import "fmt"

// Location identifies a place by name and geographic coordinates.
// Values are treated as immutable once constructed.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func NewLocation(name string, latitude, longitude float64) Location {
	return Location{
		Name:      name,
		Latitude:  latitude,
		Longitude: longitude,
	}
}

// Coordinates returns the display form of the geographic position.
func (l Location) Coordinates() string {
	return fmt.Sprintf("Latitude: %v, Longitude: %v", l.Latitude, l.Longitude)
}

// Key returns a canonical string for indexing this location in caches and
// subscription batches.
func (l Location) Key() string {
	return fmt.Sprintf("%s:%v:%v", l.Name, l.Latitude, l.Longitude)
}
