package view

import (
	"fmt"

	"github.com/mkarlsven/weather-console/internal/models"
)

// Temperature renders the snapshot temperature for the unit, e.g. "20°C".
// Both unit values are independently sourced fields; no conversion happens here.
func Temperature(s models.Snapshot, unit models.Unit) string {
	if unit == models.UnitImperial {
		return fmt.Sprintf("%d°F", s.TempF)
	}
	return fmt.Sprintf("%d°C", s.TempC)
}

// FeelsLike renders the feels-like temperature for the unit.
func FeelsLike(s models.Snapshot, unit models.Unit) string {
	if unit == models.UnitImperial {
		return fmt.Sprintf("%d°F", s.FeelsLikeF)
	}
	return fmt.Sprintf("%d°C", s.FeelsLikeC)
}

// WindSpeed renders the wind speed for the unit. Selection happens at render
// time, not at fetch time.
func WindSpeed(s models.Snapshot, unit models.Unit) string {
	if unit == models.UnitImperial {
		return fmt.Sprintf("%d mph", s.WindMph)
	}
	return fmt.Sprintf("%d km/h", s.WindKmph)
}

// FormatSnapshot renders the full result panel body.
func FormatSnapshot(s models.Snapshot, unit models.Unit) []string {
	place := s.CityName
	if s.CountryName != "" {
		place += ", " + s.CountryName
	}
	return []string{
		place,
		fmt.Sprintf("%s, feels like %s", Temperature(s, unit), FeelsLike(s, unit)),
		s.Condition,
		fmt.Sprintf("Humidity %d%%", s.HumidityPct),
		fmt.Sprintf("Wind %s", WindSpeed(s, unit)),
		fmt.Sprintf("Visibility %d km", s.VisibilityKm),
		fmt.Sprintf("Pressure %d mb", s.PressureMb),
	}
}
