package conditions

import (
	"math/rand/v2"
	"strings"

	"github.com/i474232898/resort-conditions-aggregation/internal/common"
)

// ClassifyText maps a provider's human-readable description onto a Condition.
// Matching is case-insensitive and priority ordered; unknown text is cloudy.
func ClassifyText(desc string) Condition {
	d := strings.ToLower(desc)
	switch {
	case common.HasAny(d, "snow"):
		return ConditionSnow
	case common.HasAny(d, "rain"):
		return ConditionRain
	case common.HasAny(d, "sunny", "clear"):
		return ConditionSunny
	case common.HasAny(d, "partly", "scattered"):
		return ConditionPartlyCloudy
	default:
		return ConditionCloudy
	}
}

// ClassifyNumeric maps a daily snowfall magnitude onto a Condition.
// Low values carry no sky information, so they pick sunny or cloudy at random.
func ClassifyNumeric(snowfall float64) Condition {
	return classifyNumeric(snowfall, rand.IntN)
}

func classifyNumeric(snowfall float64, intn func(int) int) Condition {
	switch {
	case snowfall > 1:
		return ConditionSnow
	case snowfall > 0.1:
		return ConditionPartlyCloudy
	case intn(2) == 0:
		return ConditionSunny
	default:
		return ConditionCloudy
	}
}
