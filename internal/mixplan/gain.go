package mixplan

import "math"

// DuckingAttenuationDB is the fixed attenuation applied to the original track
// whenever at least one description is audible. -12 dB keeps narration
// intelligible without silencing the original mix.
const DuckingAttenuationDB = -12.0

// DescriptionGainCeiling caps the summed linear gain of simultaneously active
// descriptions. Sums above the ceiling are limited, not rebalanced: every
// active cue is scaled by the same factor.
const DescriptionGainCeiling = 1.0

// DBToLinear converts a decibel value to a linear amplitude factor.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts a linear amplitude factor to decibels.
func LinearToDB(gain float64) float64 {
	if gain <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(gain)
}

// DuckingFactor is the linear multiplier implied by DuckingAttenuationDB.
func DuckingFactor() float64 {
	return DBToLinear(DuckingAttenuationDB)
}
