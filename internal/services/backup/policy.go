package backup

import "fmt"

// Cadence identifies a backup series
type Cadence string

const (
	Daily   Cadence = "daily"
	Weekly  Cadence = "weekly"
	Monthly Cadence = "monthly"
	Manual  Cadence = "manual"
)

// ParseCadence validates a cadence name
func ParseCadence(s string) (Cadence, error) {
	switch c := Cadence(s); c {
	case Daily, Weekly, Monthly, Manual:
		return c, nil
	}
	return "", fmt.Errorf("unknown cadence %q", s)
}

// Policy controls one cadence. Keep is in the cadence's unit: days, weeks
// or months for the age-based series, a file count for manual backups.
// Zero values select the cadence defaults.
type Policy struct {
	Enabled  bool `json:"enabled"`
	Interval int  `json:"interval"`
	Keep     int  `json:"keep"`
}

// Policies holds the policy of every cadence
type Policies struct {
	Daily   Policy `json:"daily"`
	Weekly  Policy `json:"weekly"`
	Monthly Policy `json:"monthly"`
	Manual  Policy `json:"manual"`
}

// DefaultPolicies returns the default backup policies
func DefaultPolicies() Policies {
	return Policies{
		Daily:   Policy{Enabled: true, Interval: 1},
		Weekly:  Policy{Enabled: true, Interval: 1},
		Monthly: Policy{Enabled: true, Interval: 3},
		Manual:  Policy{Enabled: true},
	}
}

// For returns the policy of cadence
func (p Policies) For(c Cadence) Policy {
	switch c {
	case Daily:
		return p.Daily
	case Weekly:
		return p.Weekly
	case Monthly:
		return p.Monthly
	default:
		return p.Manual
	}
}

// Default retention when Keep is unset
const (
	defaultDailyDays   = 7
	defaultWeeklyDays  = 30
	defaultMonthlyDays = 365
	defaultManualFiles = 180
)

// retentionDays converts keep to days for the age-based cadences
func retentionDays(c Cadence, keep int) int {
	switch c {
	case Daily:
		if keep <= 0 {
			return defaultDailyDays
		}
		return keep
	case Weekly:
		if keep <= 0 {
			return defaultWeeklyDays
		}
		return keep * 7
	case Monthly:
		if keep <= 0 {
			return defaultMonthlyDays
		}
		return keep * 30
	}
	return 0
}

func manualKeep(keep int) int {
	if keep <= 0 {
		return defaultManualFiles
	}
	return keep
}

func due(value, interval int) bool {
	return interval <= 1 || value%interval == 0
}
