package types

import "time"

// User is a registered account. Farmers self-register; administrators are
// promoted by an existing administrator.
type User struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Mobile       string     `json:"mobile,omitempty"`
	Location     string     `json:"location,omitempty"`
	FarmName     string     `json:"farm_name,omitempty"`
	IsAdmin      bool       `json:"is_admin"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

// CropGuide groups the long-form guidance sections of a crop entry.
type CropGuide struct {
	ClimateSuitability string `json:"climate_suitability,omitempty"`
	SoilRequirements   string `json:"soil_requirements,omitempty"`
	WaterNeeds         string `json:"water_needs,omitempty"`
	CommonProblems     string `json:"common_problems,omitempty"`
}

// Crop is a reference entry in the crop catalog.
type Crop struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Description    string    `json:"description,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	PlantingSeason string    `json:"planting_season,omitempty"`
	HarvestTime    string    `json:"harvest_time,omitempty"`
	GrowingDays    int       `json:"growing_days"`
	Guide          CropGuide `json:"guide"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Pest is a reference entry in the pest catalog.
type Pest struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ImageURL      string    `json:"image_url,omitempty"`
	AffectedCrops []string  `json:"affected_crops"`
	Symptoms      []string  `json:"symptoms"`
	Treatments    []string  `json:"treatments"`
	Prevention    []string  `json:"prevention,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewsArticle is an agricultural news item shown to all users.
type NewsArticle struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Content     string    `json:"content"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WeatherDetails carries the secondary metrics of a weather snapshot.
// Precipitation is a probability in percent and feeds the condition scorer.
type WeatherDetails struct {
	FeelsLike     *float64 `json:"feels_like,omitempty"`
	Pressure      *float64 `json:"pressure,omitempty"`
	Visibility    *float64 `json:"visibility,omitempty"`
	UVIndex       *float64 `json:"uv_index,omitempty"`
	Precipitation *float64 `json:"precipitation,omitempty"`
}

// DailyForecast is one day of the stored multi-day outlook.
type DailyForecast struct {
	Date      string  `json:"date"`
	Condition string  `json:"condition"`
	HighTemp  float64 `json:"high_temp"`
	LowTemp   float64 `json:"low_temp"`
}

// WeatherSnapshot is the current weather document for one location.
// One row per location, replaced on every poller refresh.
type WeatherSnapshot struct {
	ID          string          `json:"id"`
	Location    string          `json:"location"`
	Temperature *float64        `json:"temperature,omitempty"`
	Humidity    *float64        `json:"humidity,omitempty"`
	WindSpeed   *float64        `json:"wind_speed,omitempty"`
	Condition   string          `json:"condition,omitempty"`
	Details     WeatherDetails  `json:"details"`
	Forecast    []DailyForecast `json:"forecast,omitempty"`
	FetchedAt   time.Time       `json:"fetched_at"`
}

// Task is a per-user farm task.
type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes,omitempty"`
	DueDate   time.Time `json:"due_date"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CropTracking records a crop a user is growing. Progress is derived from
// the elapsed fraction of the crop's growing duration, clamped to [0,100].
type CropTracking struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	CropID          string    `json:"crop_id"`
	CropName        string    `json:"crop_name,omitempty"`
	PlantedAt       time.Time `json:"planted_at"`
	ExpectedHarvest time.Time `json:"expected_harvest"`
	Progress        int       `json:"progress"`
	CreatedAt       time.Time `json:"created_at"`
}

// ProgressAt computes the growth progress percentage at the given time.
func (ct *CropTracking) ProgressAt(now time.Time) int {
	total := ct.ExpectedHarvest.Sub(ct.PlantedAt)
	if total <= 0 {
		return 100
	}
	elapsed := now.Sub(ct.PlantedAt)
	pct := int(elapsed * 100 / total)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
