package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ThresholdBand is a single-sided band on one weather dimension. Whether the
// threshold is an upper or a lower bound depends on the band's position in
// its dimension (e.g. "extremely cold" is an upper bound, "extreme heat" a
// lower bound).
type ThresholdBand struct {
	Threshold       float64  `json:"threshold"`
	ScoreDeduction  int      `json:"score_deduction" validate:"gte=0"`
	Warning         string   `json:"warning,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// RangeBand is a half-open [min, max) band on one weather dimension.
type RangeBand struct {
	MinThreshold    float64  `json:"min_threshold"`
	MaxThreshold    float64  `json:"max_threshold"`
	ScoreDeduction  int      `json:"score_deduction" validate:"gte=0"`
	Warning         string   `json:"warning,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// TemperatureRules holds the five temperature bands in ascending order.
// The half-open ranges and the two outer thresholds must partition the
// real line with no gaps or overlaps.
type TemperatureRules struct {
	ExtremelyCold ThresholdBand `json:"extremely_cold"`
	BelowOptimal  RangeBand     `json:"below_optimal"`
	Optimal       RangeBand     `json:"optimal"`
	HighTemp      RangeBand     `json:"high_temp"`
	ExtremeHeat   ThresholdBand `json:"extreme_heat"`
}

// HumidityRules holds the four humidity bands in ascending order.
type HumidityRules struct {
	Low          ThresholdBand `json:"low"`
	BelowOptimal RangeBand     `json:"below_optimal"`
	Optimal      RangeBand     `json:"optimal"`
	High         ThresholdBand `json:"high"`
}

// WindRules holds the two wind bands. Values below the moderate threshold
// match no band and contribute nothing to the assessment.
type WindRules struct {
	Moderate ThresholdBand `json:"moderate"`
	High     ThresholdBand `json:"high"`
}

// PrecipitationRules holds the two precipitation bands, same structure as
// wind.
type PrecipitationRules struct {
	Moderate ThresholdBand `json:"moderate"`
	Heavy    ThresholdBand `json:"heavy"`
}

// RuleSet is one versioned farming-condition configuration. At most one
// RuleSet is active at a time; older rows are retained as history.
type RuleSet struct {
	ID            string             `json:"id"`
	Temperature   TemperatureRules   `json:"temperature_rules"`
	Humidity      HumidityRules      `json:"humidity_rules"`
	Wind          WindRules          `json:"wind_rules"`
	Precipitation PrecipitationRules `json:"precipitation_rules"`
	Active        bool               `json:"active"`
	CreatedBy     *string            `json:"created_by,omitempty"`
	LastUpdated   time.Time          `json:"last_updated"`
}

// RuleSetUpdate is a partial rule replacement. Nil groups inherit the
// previous active set's values rather than schema defaults, so a caller can
// tune one dimension without re-specifying the other three.
type RuleSetUpdate struct {
	Temperature   *TemperatureRules   `json:"temperature_rules,omitempty"`
	Humidity      *HumidityRules      `json:"humidity_rules,omitempty"`
	Wind          *WindRules          `json:"wind_rules,omitempty"`
	Precipitation *PrecipitationRules `json:"precipitation_rules,omitempty"`
}

// scanJSONB unmarshals a JSONB column value into dst.
func scanJSONB(value interface{}, dst interface{}) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("rules: unsupported scan type %T", value)
	}
	return json.Unmarshal(data, dst)
}

// Scan implements sql.Scanner for reading JSONB from the database.
func (r *TemperatureRules) Scan(value interface{}) error { return scanJSONB(value, r) }

// Value implements driver.Valuer for writing JSONB to the database.
func (r TemperatureRules) Value() (driver.Value, error) { return json.Marshal(r) }

// Scan implements sql.Scanner for reading JSONB from the database.
func (r *HumidityRules) Scan(value interface{}) error { return scanJSONB(value, r) }

// Value implements driver.Valuer for writing JSONB to the database.
func (r HumidityRules) Value() (driver.Value, error) { return json.Marshal(r) }

// Scan implements sql.Scanner for reading JSONB from the database.
func (r *WindRules) Scan(value interface{}) error { return scanJSONB(value, r) }

// Value implements driver.Valuer for writing JSONB to the database.
func (r WindRules) Value() (driver.Value, error) { return json.Marshal(r) }

// Scan implements sql.Scanner for reading JSONB from the database.
func (r *PrecipitationRules) Scan(value interface{}) error { return scanJSONB(value, r) }

// Value implements driver.Valuer for writing JSONB to the database.
func (r PrecipitationRules) Value() (driver.Value, error) { return json.Marshal(r) }
