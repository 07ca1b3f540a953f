package enums

import "fmt"

// KOTStation is the preparation station a ticket routes to.
type KOTStation string

const (
	KOTStationKitchen KOTStation = "kitchen"
	KOTStationBar     KOTStation = "bar"
	KOTStationDessert KOTStation = "dessert"
	KOTStationOther   KOTStation = "other"
)

var validKOTStations = []KOTStation{
	KOTStationKitchen,
	KOTStationBar,
	KOTStationDessert,
	KOTStationOther,
}

// String implements fmt.Stringer.
func (k KOTStation) String() string {
	return string(k)
}

// IsValid reports whether the value is a known KOTStation.
func (k KOTStation) IsValid() bool {
	for _, candidate := range validKOTStations {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseKOTStation converts raw input into a KOTStation.
func ParseKOTStation(value string) (KOTStation, error) {
	for _, candidate := range validKOTStations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid kot station %q", value)
}
