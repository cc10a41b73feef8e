package farming

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriklima/internal/types"
)

func ptr(v float64) *float64 { return &v }

func reading(temp, humidity, wind, rain float64) *types.WeatherReading {
	return &types.WeatherReading{
		Temperature:   ptr(temp),
		Humidity:      ptr(humidity),
		WindSpeed:     ptr(wind),
		Precipitation: ptr(rain),
	}
}

func TestScore_IdealConditions(t *testing.T) {
	// 28°C, 70% humidity, 10 km/h wind, 5% rain: every dimension optimal.
	got, err := Score(reading(28, 70, 10, 5), DefaultRuleSet())
	require.NoError(t, err)

	assert.Equal(t, 100, got.Score)
	assert.Equal(t, types.StatusExcellent, got.Status)
	assert.Equal(t, "Excellent Farming Conditions", got.StatusLabel)
	assert.Empty(t, got.Warnings)
	assert.Equal(t, []string{
		"Excellent temperature for tropical crops",
		"Optimal humidity for plant growth",
	}, got.Recommendations)

	assert.Equal(t, "28.0°C (optimal)", got.Details.Temperature)
	assert.Equal(t, "70.0% (optimal)", got.Details.Humidity)
	assert.Equal(t, "5.0% chance of rain (dry)", got.Details.Rainfall)
	assert.Equal(t, "10.0 km/h (calm)", got.Details.Wind)
}

func TestScore_HarshConditions(t *testing.T) {
	// 36°C, 85% humidity, 32 km/h wind, 75% rain: every dimension in its
	// worst band. 100 - 25 - 10 - 15 - 20 = 30.
	got, err := Score(reading(36, 85, 32, 75), DefaultRuleSet())
	require.NoError(t, err)

	assert.Equal(t, 30, got.Score)
	assert.Equal(t, types.StatusPoor, got.Status)
	assert.Len(t, got.Warnings, 4)
	assert.Contains(t, got.Warnings, "Extreme heat poses serious risk to crops")
	assert.Contains(t, got.Warnings, "High humidity increases disease risk")
	assert.Contains(t, got.Warnings, "Strong winds may damage crops")
	assert.Contains(t, got.Warnings, "Heavy rainfall expected")
}

func TestScore_BoundaryBelongsToHigherBand(t *testing.T) {
	// 25.0°C is exactly the optimal band's lower boundary. Half-open
	// intervals place it in optimal, not below-optimal.
	got, err := Score(reading(25, 70, 0, 0), DefaultRuleSet())
	require.NoError(t, err)

	assert.Equal(t, 100, got.Score)
	assert.Contains(t, got.Details.Temperature, "(optimal)")
}

func TestScore_DimensionBands(t *testing.T) {
	rules := DefaultRuleSet()

	tests := []struct {
		name      string
		reading   *types.WeatherReading
		wantScore int
		wantLabel string
	}{
		{"extremely cold", reading(5, 70, 0, 0), 70, "extremely cold"},
		{"below optimal temp", reading(20, 70, 0, 0), 90, "below optimal"},
		{"high temp", reading(33, 70, 0, 0), 90, "high"},
		{"extreme heat boundary", reading(35, 70, 0, 0), 75, "extreme heat"},
		{"low humidity", reading(28, 30, 0, 0), 85, "optimal"},
		{"below optimal humidity", reading(28, 50, 0, 0), 95, "optimal"},
		{"high humidity boundary", reading(28, 80, 0, 0), 90, "optimal"},
		{"moderate wind boundary", reading(28, 70, 20, 0), 95, "optimal"},
		{"strong wind boundary", reading(28, 70, 30, 0), 85, "optimal"},
		{"moderate rain boundary", reading(28, 70, 0, 40), 90, "optimal"},
		{"heavy rain boundary", reading(28, 70, 0, 70), 80, "optimal"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Score(tc.reading, rules)
			require.NoError(t, err)
			assert.Equal(t, tc.wantScore, got.Score)
			assert.Contains(t, got.Details.Temperature, "("+tc.wantLabel+")")
		})
	}
}

func TestScore_ClampsAtZero(t *testing.T) {
	rules := DefaultRuleSet()
	rules.Temperature.ExtremeHeat.ScoreDeduction = 60
	rules.Humidity.High.ScoreDeduction = 60

	got, err := Score(reading(40, 90, 35, 80), rules)
	require.NoError(t, err)

	assert.Equal(t, 0, got.Score)
	assert.Equal(t, types.StatusPoor, got.Status)
}

func TestScore_StatusCutoffs(t *testing.T) {
	tests := []struct {
		score int
		want  types.ConditionStatus
	}{
		{100, types.StatusExcellent},
		{85, types.StatusExcellent},
		{84, types.StatusGood},
		{70, types.StatusGood},
		{69, types.StatusFair},
		{50, types.StatusFair},
		{49, types.StatusPoor},
		{0, types.StatusPoor},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, statusFor(tc.score), "score %d", tc.score)
	}
}

func TestScore_MissingMetrics(t *testing.T) {
	r := reading(28, 70, 10, 5)
	r.Humidity = nil
	r.Precipitation = nil

	_, err := Score(r, DefaultRuleSet())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeValidationMissingWeather, appErr.Code)
	assert.ElementsMatch(t, []string{"humidity", "precipitation"}, appErr.Details["missing"])
}

func TestScore_NilReading(t *testing.T) {
	_, err := Score(nil, DefaultRuleSet())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeValidationMissingWeather, appErr.Code)
}

func TestScore_ZeroIsAValidValue(t *testing.T) {
	// 0°C is extremely cold, not missing.
	got, err := Score(reading(0, 70, 0, 0), DefaultRuleSet())
	require.NoError(t, err)
	assert.Equal(t, 70, got.Score)
	assert.Contains(t, got.Details.Temperature, "(extremely cold)")
}

func TestScore_IsPure(t *testing.T) {
	r := reading(36, 85, 32, 75)
	rules := DefaultRuleSet()

	first, err := Score(r, rules)
	require.NoError(t, err)
	second, err := Score(r, rules)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValidateRules_Default(t *testing.T) {
	require.NoError(t, ValidateRules(DefaultRuleSet()))
}

func TestValidateRules_Inconsistencies(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rs *types.RuleSet)
	}{
		{"temperature gap", func(rs *types.RuleSet) {
			rs.Temperature.Optimal.MinThreshold = 26
		}},
		{"temperature overlap", func(rs *types.RuleSet) {
			rs.Temperature.HighTemp.MinThreshold = 31
		}},
		{"temperature empty range", func(rs *types.RuleSet) {
			rs.Temperature.Optimal.MaxThreshold = rs.Temperature.Optimal.MinThreshold
		}},
		{"humidity gap", func(rs *types.RuleSet) {
			rs.Humidity.Optimal.MaxThreshold = 75
		}},
		{"wind inverted thresholds", func(rs *types.RuleSet) {
			rs.Wind.Moderate.Threshold = 40
		}},
		{"precipitation inverted thresholds", func(rs *types.RuleSet) {
			rs.Precipitation.Heavy.Threshold = 30
		}},
		{"negative deduction", func(rs *types.RuleSet) {
			rs.Humidity.Low.ScoreDeduction = -1
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rules := DefaultRuleSet()
			tc.mutate(rules)

			err := ValidateRules(rules)
			require.Error(t, err)

			var appErr *types.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, types.ErrCodeConfigInconsistentRules, appErr.Code)
		})
	}
}

func TestValidateRules_BadRulesFailBeforeScoring(t *testing.T) {
	rules := DefaultRuleSet()
	rules.Temperature.Optimal.MinThreshold = 26 // gap against below-optimal

	_, err := Score(reading(28, 70, 10, 5), rules)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeConfigInconsistentRules, appErr.Code)
}
