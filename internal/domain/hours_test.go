package domain_test

import (
	"encoding/json"
	"testing"

	"mealplanner/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestWeekHoursOpenAt(t *testing.T) {
	cases := []struct {
		name    string
		hours   domain.WeekHours
		weekday string
		clock   int
		open    bool
	}{
		{"within single window", domain.WeekHours{"Mon": {1000, 2000}}, "Mon", 1200, true},
		{"after single window", domain.WeekHours{"Mon": {1000, 1100}}, "Mon", 1200, false},
		{"second window of split shift", domain.WeekHours{"Mon": {1000, 1200, 1400, 2000}}, "Mon", 1500, true},
		{"gap between split shifts", domain.WeekHours{"Mon": {1000, 1100, 1400, 2000}}, "Mon", 1200, false},
		{"odd-length list is closed", domain.WeekHours{"Mon": {1000, 1100, 1400}}, "Mon", 1200, false},
		{"exactly at opening", domain.WeekHours{"Mon": {1000, 2000}}, "Mon", 1000, true},
		{"exactly at closing", domain.WeekHours{"Mon": {1000, 2000}}, "Mon", 2000, true},
		{"missing weekday", domain.WeekHours{"Mon": {1000, 2000}}, "Tue", 1200, false},
		{"empty hours", domain.WeekHours{}, "Mon", 1200, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.open, tc.hours.OpenAt(tc.weekday, tc.clock))
		})
	}
}

func TestWeekHoursUnmarshalsFlatLists(t *testing.T) {
	var hours domain.WeekHours
	err := json.Unmarshal([]byte(`{"Mon": [1000, 1200, 1400, 2000], "Tue": [800, 2200]}`), &hours)
	assert.NoError(t, err)
	assert.True(t, hours.OpenAt("Mon", 1100))
	assert.False(t, hours.OpenAt("Mon", 1300))
	assert.True(t, hours.OpenAt("Mon", 1500))
	assert.True(t, hours.OpenAt("Tue", 900))
}
