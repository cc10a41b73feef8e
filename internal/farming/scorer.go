package farming

import (
	"fmt"

	"agriklima/internal/types"
)

// Status cutoffs. Scores are clamped to [0,100] before mapping, so every
// score lands in exactly one status.
const (
	excellentMin = 85
	goodMin      = 70
	fairMin      = 50
)

// matchedBand is the normalized result of band matching for one dimension.
type matchedBand struct {
	label           string
	deduction       int
	warning         string
	recommendations []string
}

// Score evaluates a weather reading against a rule set and produces a
// condition assessment. It is pure: no side effects, no I/O, and identical
// inputs always yield identical output.
//
// Each dimension is evaluated independently, first matching band wins, and
// the deductions are summed against a ceiling of 100. Warnings and
// recommendations are collected in fixed dimension order: temperature,
// humidity, wind, precipitation.
func Score(reading *types.WeatherReading, rules *types.RuleSet) (*types.ConditionAssessment, error) {
	if err := validateReading(reading); err != nil {
		return nil, err
	}
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}

	temp := matchTemperature(*reading.Temperature, &rules.Temperature)
	humidity := matchHumidity(*reading.Humidity, &rules.Humidity)
	wind := matchWind(*reading.WindSpeed, &rules.Wind)
	rain := matchPrecipitation(*reading.Precipitation, &rules.Precipitation)

	matched := []matchedBand{temp, humidity, wind, rain}

	score := 100
	warnings := []string{}
	recommendations := []string{}
	for _, m := range matched {
		score -= m.deduction
		if m.warning != "" {
			warnings = append(warnings, m.warning)
		}
		recommendations = append(recommendations, m.recommendations...)
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	status := statusFor(score)

	return &types.ConditionAssessment{
		Score:       score,
		Status:      status,
		StatusLabel: status.Label(),
		Details: types.AssessmentDetails{
			Temperature: fmt.Sprintf("%.1f°C (%s)", *reading.Temperature, temp.label),
			Humidity:    fmt.Sprintf("%.1f%% (%s)", *reading.Humidity, humidity.label),
			Rainfall:    fmt.Sprintf("%.1f%% chance of rain (%s)", *reading.Precipitation, rain.label),
			Wind:        fmt.Sprintf("%.1f km/h (%s)", *reading.WindSpeed, wind.label),
		},
		Warnings:        warnings,
		Recommendations: recommendations,
	}, nil
}

// validateReading rejects readings with missing metrics. Zero is a valid
// value for every dimension, so absence is modeled with nil pointers and
// never substituted.
func validateReading(reading *types.WeatherReading) error {
	if reading == nil {
		return types.NewAppError(types.ErrCodeValidationMissingWeather, "weather reading is required", nil)
	}
	missing := []string{}
	if reading.Temperature == nil {
		missing = append(missing, "temperature")
	}
	if reading.Humidity == nil {
		missing = append(missing, "humidity")
	}
	if reading.WindSpeed == nil {
		missing = append(missing, "wind_speed")
	}
	if reading.Precipitation == nil {
		missing = append(missing, "precipitation")
	}
	if len(missing) > 0 {
		return types.NewAppErrorWithDetails(
			types.ErrCodeValidationMissingWeather,
			"weather reading is missing required metrics",
			nil,
			map[string]any{"missing": missing},
		)
	}
	return nil
}

// ValidateRules checks a rule set for internal consistency: ranges must be
// non-empty, deductions non-negative, and each dimension's bands must
// partition the real line with no gaps or overlaps (adjacent boundaries
// equal, half-open on the upper side). A violation is a configuration
// error, not a client error.
func ValidateRules(rules *types.RuleSet) error {
	if rules == nil {
		return configErr("rule set is nil")
	}

	t := &rules.Temperature
	switch {
	case t.BelowOptimal.MinThreshold >= t.BelowOptimal.MaxThreshold,
		t.Optimal.MinThreshold >= t.Optimal.MaxThreshold,
		t.HighTemp.MinThreshold >= t.HighTemp.MaxThreshold:
		return configErr("temperature range band has min >= max")
	case t.ExtremelyCold.Threshold != t.BelowOptimal.MinThreshold,
		t.BelowOptimal.MaxThreshold != t.Optimal.MinThreshold,
		t.Optimal.MaxThreshold != t.HighTemp.MinThreshold,
		t.HighTemp.MaxThreshold != t.ExtremeHeat.Threshold:
		return configErr("temperature bands do not partition the scale")
	}

	h := &rules.Humidity
	switch {
	case h.BelowOptimal.MinThreshold >= h.BelowOptimal.MaxThreshold,
		h.Optimal.MinThreshold >= h.Optimal.MaxThreshold:
		return configErr("humidity range band has min >= max")
	case h.Low.Threshold != h.BelowOptimal.MinThreshold,
		h.BelowOptimal.MaxThreshold != h.Optimal.MinThreshold,
		h.Optimal.MaxThreshold != h.High.Threshold:
		return configErr("humidity bands do not partition the scale")
	}

	if rules.Wind.Moderate.Threshold > rules.Wind.High.Threshold {
		return configErr("wind moderate threshold exceeds high threshold")
	}
	if rules.Precipitation.Moderate.Threshold > rules.Precipitation.Heavy.Threshold {
		return configErr("precipitation moderate threshold exceeds heavy threshold")
	}

	for _, d := range []int{
		t.ExtremelyCold.ScoreDeduction, t.BelowOptimal.ScoreDeduction,
		t.Optimal.ScoreDeduction, t.HighTemp.ScoreDeduction, t.ExtremeHeat.ScoreDeduction,
		h.Low.ScoreDeduction, h.BelowOptimal.ScoreDeduction,
		h.Optimal.ScoreDeduction, h.High.ScoreDeduction,
		rules.Wind.Moderate.ScoreDeduction, rules.Wind.High.ScoreDeduction,
		rules.Precipitation.Moderate.ScoreDeduction, rules.Precipitation.Heavy.ScoreDeduction,
	} {
		if d < 0 {
			return configErr("score deduction must not be negative")
		}
	}

	return nil
}

func configErr(msg string) error {
	return types.NewAppError(types.ErrCodeConfigInconsistentRules, msg, nil)
}

// matchTemperature applies the five temperature bands in priority order.
// Intervals are half-open: a value exactly on a boundary belongs to the
// higher band.
func matchTemperature(t float64, rules *types.TemperatureRules) matchedBand {
	switch {
	case t < rules.ExtremelyCold.Threshold:
		return fromThreshold("extremely cold", rules.ExtremelyCold)
	case t < rules.BelowOptimal.MaxThreshold:
		return fromRange("below optimal", rules.BelowOptimal)
	case t < rules.Optimal.MaxThreshold:
		return fromRange("optimal", rules.Optimal)
	case t < rules.HighTemp.MaxThreshold:
		return fromRange("high", rules.HighTemp)
	default:
		return fromThreshold("extreme heat", rules.ExtremeHeat)
	}
}

// matchHumidity applies the four humidity bands in priority order.
func matchHumidity(h float64, rules *types.HumidityRules) matchedBand {
	switch {
	case h < rules.Low.Threshold:
		return fromThreshold("low", rules.Low)
	case h < rules.BelowOptimal.MaxThreshold:
		return fromRange("below optimal", rules.BelowOptimal)
	case h < rules.Optimal.MaxThreshold:
		return fromRange("optimal", rules.Optimal)
	default:
		return fromThreshold("high", rules.High)
	}
}

// matchWind applies the two wind bands, highest severity first. Values
// below the moderate threshold match no band and contribute nothing.
func matchWind(w float64, rules *types.WindRules) matchedBand {
	switch {
	case w >= rules.High.Threshold:
		return fromThreshold("strong", rules.High)
	case w >= rules.Moderate.Threshold:
		return fromThreshold("moderate", rules.Moderate)
	default:
		return matchedBand{label: "calm"}
	}
}

// matchPrecipitation applies the two precipitation bands, highest severity
// first.
func matchPrecipitation(p float64, rules *types.PrecipitationRules) matchedBand {
	switch {
	case p >= rules.Heavy.Threshold:
		return fromThreshold("heavy", rules.Heavy)
	case p >= rules.Moderate.Threshold:
		return fromThreshold("moderate", rules.Moderate)
	default:
		return matchedBand{label: "dry"}
	}
}

func fromThreshold(label string, b types.ThresholdBand) matchedBand {
	return matchedBand{
		label:           label,
		deduction:       b.ScoreDeduction,
		warning:         b.Warning,
		recommendations: b.Recommendations,
	}
}

func fromRange(label string, b types.RangeBand) matchedBand {
	return matchedBand{
		label:           label,
		deduction:       b.ScoreDeduction,
		warning:         b.Warning,
		recommendations: b.Recommendations,
	}
}

// statusFor maps a clamped score to its discrete status.
func statusFor(score int) types.ConditionStatus {
	switch {
	case score >= excellentMin:
		return types.StatusExcellent
	case score >= goodMin:
		return types.StatusGood
	case score >= fairMin:
		return types.StatusFair
	default:
		return types.StatusPoor
	}
}
