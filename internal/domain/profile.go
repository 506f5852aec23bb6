package domain

import (
	"fmt"
	"time"
)

// Frequency is how often a user receives financial reports.
type Frequency string

const (
	FrequencyWeekly     Frequency = "weekly"
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencyHalfYearly Frequency = "half-yearly"
	FrequencyYearly     Frequency = "yearly"
)

// Frequencies lists every supported report frequency.
var Frequencies = []Frequency{
	FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly,
	FrequencyHalfYearly, FrequencyYearly,
}

// ParseFrequency validates a frequency string from a request or profile row.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	for _, known := range Frequencies {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown report frequency %q", s)
}

// Label returns the human form used in email subjects ("Weekly", "Annual").
func (f Frequency) Label() string {
	switch f {
	case FrequencyWeekly:
		return "Weekly"
	case FrequencyMonthly:
		return "Monthly"
	case FrequencyQuarterly:
		return "Quarterly"
	case FrequencyHalfYearly:
		return "Half-Yearly"
	case FrequencyYearly:
		return "Annual"
	}
	return "Financial"
}

// Profile is one row in the profiles table. Its id equals the auth user id.
type Profile struct {
	ID              string    `json:"id"`
	Username        *string   `json:"username,omitempty"`
	AvatarURL       *string   `json:"avatar_url,omitempty"`
	Currency        *string   `json:"currency,omitempty"`
	ReportFrequency *string   `json:"report_frequency,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}
