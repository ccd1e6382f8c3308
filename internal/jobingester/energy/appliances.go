package energy

import (
	"fmt"
	"math"
)

// Household appliances used to express a job's energy in everyday terms.
var appliances = []struct {
	name  string
	watts float64
}{
	{"LED lamp", 10},
	{"laptop", 65},
	{"television", 100},
	{"refrigerator", 150},
	{"desktop PC", 350},
	{"washing machine", 500},
	{"microwave oven", 1000},
	{"vacuum cleaner", 1400},
	{"electric kettle", 2000},
	{"electric oven", 2500},
}

const (
	applianceTargetMinutes = 10
	applianceMinMinutes    = 1
	applianceMaxMinutes    = 120
)

// closestAppliance picks the appliance whose runtime for the given energy is
// closest to ten minutes, preferring ones landing between one minute and two
// hours so the comparison stays intuitive.
func closestAppliance(energyJoules float64) string {
	if energyJoules <= 0 {
		return ""
	}

	bestIdx, bestMinutes := -1, 0.0
	bestBounded := false
	bestDistance := math.Inf(1)
	for i, appliance := range appliances {
		minutes := energyJoules / appliance.watts / 60
		bounded := minutes >= applianceMinMinutes && minutes <= applianceMaxMinutes
		distance := math.Abs(minutes - applianceTargetMinutes)
		if bestIdx < 0 || (bounded && !bestBounded) || (bounded == bestBounded && distance < bestDistance) {
			bestIdx, bestMinutes, bestBounded, bestDistance = i, minutes, bounded, distance
		}
	}
	return fmt.Sprintf("%s for %.1f min", appliances[bestIdx].name, bestMinutes)
}
