package utils

import "strings"

const (
	defaultBaseFare       = 75.0
	groupSurchargeFactor  = 1.5
	groupSurchargeMinSize = 7
)

var baseFares = map[string]float64{
	"airport":   75,
	"corporate": 60,
	"event":     90,
	"tour":      120,
}

var vehicleMultipliers = map[string]float64{
	"standard":  1.0,
	"luxury":    1.5,
	"suv":       1.3,
	"van":       1.8,
	"limousine": 2.5,
}

// EstimatePrice returns the quoted fare for a trip (case-insensitive).
// Unknown service types use the airport base fare and unknown vehicles use
// a multiplier of 1. Groups larger than six pay 1.5x on top of the vehicle
// multiplier.
func EstimatePrice(serviceType, vehicleType string, passengers int) float64 {
	base, ok := baseFares[normalizeKey(serviceType)]
	if !ok {
		base = defaultBaseFare
	}

	multiplier, ok := vehicleMultipliers[normalizeKey(vehicleType)]
	if !ok {
		multiplier = 1.0
	}
	if passengers >= groupSurchargeMinSize {
		multiplier *= groupSurchargeFactor
	}

	return RoundMoney(base * multiplier)
}

// IsKnownService reports whether the service type has its own base fare.
func IsKnownService(serviceType string) bool {
	_, ok := baseFares[normalizeKey(serviceType)]
	return ok
}

// IsKnownVehicle reports whether the vehicle type has its own multiplier.
func IsKnownVehicle(vehicleType string) bool {
	_, ok := vehicleMultipliers[normalizeKey(vehicleType)]
	return ok
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
