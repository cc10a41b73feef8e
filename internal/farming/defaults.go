// Package farming implements the farming-condition rule store and the
// condition scorer. The scorer is a pure evaluation of a weather reading
// against the active rule set; the store manages the versioned rule sets
// with exactly one active at a time.
package farming

import "agriklima/internal/types"

// Default band boundaries. These literal values must stay stable: stored
// rule history and frontend copy reference them.
const (
	defaultTempColdMax    = 18.0
	defaultTempOptimalMin = 25.0
	defaultTempHighMin    = 32.0
	defaultTempExtremeMin = 35.0

	defaultHumidityLowMax     = 40.0
	defaultHumidityOptimalMin = 60.0
	defaultHumidityHighMin    = 80.0

	defaultWindModerateMin = 20.0
	defaultWindHighMin     = 30.0

	defaultRainModerateMin = 40.0
	defaultRainHeavyMin    = 70.0
)

// DefaultRuleSet returns the built-in rule set materialized whenever no
// rule set is active. ID, CreatedBy, and LastUpdated are left zero; the
// store fills them on persistence.
func DefaultRuleSet() *types.RuleSet {
	return &types.RuleSet{
		Temperature: types.TemperatureRules{
			ExtremelyCold: types.ThresholdBand{
				Threshold:      defaultTempColdMax,
				ScoreDeduction: 30,
				Warning:        "Extremely cold conditions may damage crops",
				Recommendations: []string{
					"Delay planting until temperatures recover",
					"Cover seedlings overnight",
				},
			},
			BelowOptimal: types.RangeBand{
				MinThreshold:   defaultTempColdMax,
				MaxThreshold:   defaultTempOptimalMin,
				ScoreDeduction: 10,
				Warning:        "Temperatures are below the optimal range",
				Recommendations: []string{
					"Favor cold-tolerant varieties",
					"Plant in areas with full sun exposure",
				},
			},
			Optimal: types.RangeBand{
				MinThreshold:   defaultTempOptimalMin,
				MaxThreshold:   defaultTempHighMin,
				ScoreDeduction: 0,
				Recommendations: []string{
					"Excellent temperature for tropical crops",
				},
			},
			HighTemp: types.RangeBand{
				MinThreshold:   defaultTempHighMin,
				MaxThreshold:   defaultTempExtremeMin,
				ScoreDeduction: 10,
				Warning:        "High temperatures may stress sensitive crops",
				Recommendations: []string{
					"Increase irrigation frequency",
					"Provide shade for young plants",
				},
			},
			ExtremeHeat: types.ThresholdBand{
				Threshold:      defaultTempExtremeMin,
				ScoreDeduction: 25,
				Warning:        "Extreme heat poses serious risk to crops",
				Recommendations: []string{
					"Irrigate early morning and late afternoon",
					"Apply mulch to retain soil moisture",
					"Postpone transplanting",
				},
			},
		},
		Humidity: types.HumidityRules{
			Low: types.ThresholdBand{
				Threshold:      defaultHumidityLowMax,
				ScoreDeduction: 15,
				Warning:        "Low humidity may dry out crops",
				Recommendations: []string{
					"Increase irrigation to compensate",
					"Use mulch to reduce evaporation",
				},
			},
			BelowOptimal: types.RangeBand{
				MinThreshold:   defaultHumidityLowMax,
				MaxThreshold:   defaultHumidityOptimalMin,
				ScoreDeduction: 5,
				Recommendations: []string{
					"Monitor soil moisture closely",
				},
			},
			Optimal: types.RangeBand{
				MinThreshold:   defaultHumidityOptimalMin,
				MaxThreshold:   defaultHumidityHighMin,
				ScoreDeduction: 0,
				Recommendations: []string{
					"Optimal humidity for plant growth",
				},
			},
			High: types.ThresholdBand{
				Threshold:      defaultHumidityHighMin,
				ScoreDeduction: 10,
				Warning:        "High humidity increases disease risk",
				Recommendations: []string{
					"Monitor crops for fungal diseases",
					"Ensure good air circulation between plants",
				},
			},
		},
		Wind: types.WindRules{
			Moderate: types.ThresholdBand{
				Threshold:      defaultWindModerateMin,
				ScoreDeduction: 5,
				Warning:        "Moderate winds may affect spraying operations",
				Recommendations: []string{
					"Avoid pesticide application during windy hours",
				},
			},
			High: types.ThresholdBand{
				Threshold:      defaultWindHighMin,
				ScoreDeduction: 15,
				Warning:        "Strong winds may damage crops",
				Recommendations: []string{
					"Secure young plants and trellises",
					"Delay spraying operations",
				},
			},
		},
		Precipitation: types.PrecipitationRules{
			Moderate: types.ThresholdBand{
				Threshold:      defaultRainModerateMin,
				ScoreDeduction: 10,
				Warning:        "Moderate chance of rain",
				Recommendations: []string{
					"Plan field work around rain showers",
				},
			},
			Heavy: types.ThresholdBand{
				Threshold:      defaultRainHeavyMin,
				ScoreDeduction: 20,
				Warning:        "Heavy rainfall expected",
				Recommendations: []string{
					"Ensure proper field drainage",
					"Delay fertilizer application",
				},
			},
		},
	}
}
