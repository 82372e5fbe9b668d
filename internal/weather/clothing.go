package weather

// WMO weather interpretation code ranges.
const (
	codeDrizzleRainLow   = 51
	codeDrizzleRainHigh  = 67
	codeSnowLow          = 71
	codeSnowHigh         = 77
	codeShowerLow        = 80
	codeShowerHigh       = 82
	codeThunderstormLow  = 95
	codeThunderstormHigh = 99

	rainProbabilityThreshold = 40
)

const fallbackRecommendation = "Could not fetch weather data, so wear whatever you feel like!"

// ClothingRecommendation derives a dressing suggestion from the day's
// forecast. A nil snapshot yields a neutral fallback sentence. Rain takes
// priority over snow when both ranges would match.
func ClothingRecommendation(snap *Snapshot) string {
	if snap == nil {
		return fallbackRecommendation
	}

	var out string
	switch temp := snap.MaxTemp; {
	case temp < 0:
		out = "It's freezing! Wear a heavy winter coat, scarf, gloves, and a hat."
	case temp < 10:
		out = "It's cold. Wear a warm coat and maybe a scarf."
	case temp < 20:
		out = "It's chilly. A jacket or a sweater should be good."
	case temp < 25:
		out = "It's pleasant. A light jacket or long sleeves."
	default:
		out = "It's warm! T-shirt and shorts weather."
	}

	code := snap.WeatherCode
	raining := (code >= codeDrizzleRainLow && code <= codeDrizzleRainHigh) ||
		(code >= codeShowerLow && code <= codeShowerHigh) ||
		(code >= codeThunderstormLow && code <= codeThunderstormHigh)
	snowing := code >= codeSnowLow && code <= codeSnowHigh

	if raining || snap.PrecipProb > rainProbabilityThreshold {
		out += " Don't forget an umbrella ☂️, it might rain."
	} else if snowing {
		out += " It might snow ❄️, wear waterproof shoes."
	}
	return out
}
