package models

// Unit selects which of the pre-computed unit fields of a Snapshot are rendered.
// It never triggers unit conversion; both unit systems are sourced independently
// from the upstream payload.
type Unit string

const (
	UnitMetric   Unit = "metric"
	UnitImperial Unit = "imperial"
)

// Toggle returns the other unit system.
func (u Unit) Toggle() Unit {
	if u == UnitImperial {
		return UnitMetric
	}
	return UnitImperial
}

// Suggestion is one geocoding autocomplete entry. Suggestions are ephemeral:
// the whole list is regenerated on every keystroke-triggered fetch and kept in
// API response order.
type Suggestion struct {
	DisplayName string  `json:"displayName"`
	RegionLabel string  `json:"regionLabel,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Snapshot is one complete weather result. It is immutable once produced and
// superseded wholesale by the next fetch; there is no merging. Temperature,
// feels-like and wind speed carry both unit systems so the renderer can switch
// units without refetching arithmetic.
type Snapshot struct {
	CityName     string `json:"cityName"`
	CountryName  string `json:"countryName"`
	Condition    string `json:"condition"`
	TempC        int    `json:"tempC"`
	TempF        int    `json:"tempF"`
	FeelsLikeC   int    `json:"feelsLikeC"`
	FeelsLikeF   int    `json:"feelsLikeF"`
	HumidityPct  int    `json:"humidityPct"`
	VisibilityKm int    `json:"visibilityKm"`
	WindKmph     int    `json:"windKmph"`
	WindMph      int    `json:"windMph"`
	PressureMb   int    `json:"pressureMb"`
}
