package types

// ConditionStatus is the discrete suitability label derived from the score.
type ConditionStatus string

const (
	StatusExcellent ConditionStatus = "excellent"
	StatusGood      ConditionStatus = "good"
	StatusFair      ConditionStatus = "fair"
	StatusPoor      ConditionStatus = "poor"
)

// Label returns the human-readable text for the status.
func (s ConditionStatus) Label() string {
	switch s {
	case StatusExcellent:
		return "Excellent Farming Conditions"
	case StatusGood:
		return "Good Farming Conditions"
	case StatusFair:
		return "Fair Farming Conditions"
	case StatusPoor:
		return "Poor Farming Conditions"
	default:
		return "Unknown Farming Conditions"
	}
}

// WeatherReading is the scorer's input. Fields are pointers so a missing
// metric is distinguishable from a legitimate zero (0°C is a valid
// temperature).
type WeatherReading struct {
	Temperature   *float64 `json:"temperature"`
	Humidity      *float64 `json:"humidity"`
	WindSpeed     *float64 `json:"wind_speed"`
	Precipitation *float64 `json:"precipitation"`
}

// AssessmentDetails holds the per-dimension human-readable summaries.
// All four strings are always present, whether or not a warning fired.
type AssessmentDetails struct {
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	Rainfall    string `json:"rainfall"`
	Wind        string `json:"wind"`
}

// ConditionAssessment is the scorer's output for a single weather reading.
// It is ephemeral and never persisted.
type ConditionAssessment struct {
	Score           int               `json:"score"`
	Status          ConditionStatus   `json:"status"`
	StatusLabel     string            `json:"status_label"`
	Details         AssessmentDetails `json:"details"`
	Warnings        []string          `json:"warnings"`
	Recommendations []string          `json:"recommendations"`
}
