package types

import (
	"testing"
	"time"
)

func TestCropTrackingProgressAt(t *testing.T) {
	planted := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ct := &CropTracking{
		PlantedAt:       planted,
		ExpectedHarvest: planted.AddDate(0, 0, 100),
	}

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before planting", planted.AddDate(0, 0, -5), 0},
		{"at planting", planted, 0},
		{"quarter grown", planted.AddDate(0, 0, 25), 25},
		{"half grown", planted.AddDate(0, 0, 50), 50},
		{"at harvest", planted.AddDate(0, 0, 100), 100},
		{"past harvest", planted.AddDate(0, 0, 150), 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ct.ProgressAt(tc.now); got != tc.want {
				t.Errorf("ProgressAt() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCropTrackingProgressAt_DegenerateWindow(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	ct := &CropTracking{PlantedAt: now, ExpectedHarvest: now}

	if got := ct.ProgressAt(now); got != 100 {
		t.Errorf("expected 100 for zero-length window, got %d", got)
	}
}
