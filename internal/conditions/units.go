package conditions

import "math"

const (
	inchesPerCm          = 0.393701
	metersPerFoot        = 0.3048
	snowfallScale        = 10
	centimetersPerMeter  = 100
	summitDepthPerMeter  = 150
	fahrenheitScale      = 9.0 / 5.0
	fahrenheitZeroOffset = 32
)

func CmToInches(cm float64) float64 { return cm * inchesPerCm }

func InchesToCm(in float64) float64 { return in / inchesPerCm }

func CelsiusToFahrenheit(c float64) float64 { return c*fahrenheitScale + fahrenheitZeroOffset }

func FahrenheitToCelsius(f float64) float64 { return (f - fahrenheitZeroOffset) / fahrenheitScale }

func FeetToMeters(ft float64) float64 { return ft * metersPerFoot }

func MetersToFeet(m float64) float64 { return m / metersPerFoot }

// DailySnowfallToCentimeters scales a daily snowfall sum as reported by the primary weather
// provider into centimetres of fresh snow.
func DailySnowfallToCentimeters(v float64) float64 { return v * snowfallScale }

// CentimetersToDailySnowfall is the inverse of DailySnowfallToCentimeters.
func CentimetersToDailySnowfall(cm float64) float64 { return cm / snowfallScale }

// MetersToCentimeters converts a snow depth in metres.
func MetersToCentimeters(m float64) float64 { return m * centimetersPerMeter }

// SummitDepthEstimateCm estimates summit depth from a base snow depth in metres.
func SummitDepthEstimateCm(m float64) float64 { return m * summitDepthPerMeter }

// Round rounds to the nearest integer, half away from zero. NaN and infinities become 0.
func Round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

// RoundNonNegative rounds like Round and clamps negative results to 0.
func RoundNonNegative(v float64) int {
	return max(Round(v), 0)
}
