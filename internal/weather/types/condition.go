package types

import (
	"errors"
	"fmt"
)

// Condition is one variant of the closed set of weather conditions the
// simulator can report. Its string form is the label it was parsed from.
type Condition string

const (
	Sunny  Condition = "Sunny"
	Rainy  Condition = "Rainy"
	Cloudy Condition = "Cloudy"
)

// ErrUnknownCondition is returned by ParseCondition for labels outside the
// known variant set.
var ErrUnknownCondition = errors.New("unknown weather condition")

// ParseCondition maps a text label to its Condition variant. Matching is
// exact and case-sensitive.
func ParseCondition(label string) (Condition, error) {
	switch c := Condition(label); c {
	case Sunny, Rainy, Cloudy:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCondition, label)
}

func (c Condition) String() string {
	return string(c)
}
