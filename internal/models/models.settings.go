// FilePath: internal/models/models.settings.go
package models

import "time"

// AlertConfig is one user's hornet alert subscription. RecipientEmail may
// be empty, in which case alerts go to the account email.
type AlertConfig struct {
	UserID           string  `json:"user_id" db:"user_id"`
	Enabled          bool    `json:"enabled" db:"alerts_enabled"`
	ThresholdPercent float64 `json:"threshold_percent" db:"alerts_threshold"`
	RecipientEmail   string  `json:"recipient_email" db:"alerts_email"`
	AccountEmail     string  `json:"account_email" db:"account_email"`
}

// Recipient returns the effective alert destination
func (c AlertConfig) Recipient() string {
	if c.RecipientEmail != "" {
		return c.RecipientEmail
	}
	return c.AccountEmail
}

// Report frequencies
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// ReportConfig is one user's periodic report subscription. DayOfWeek uses
// 0 = Monday .. 6 = Sunday and only applies to weekly reports.
type ReportConfig struct {
	UserID         string `json:"user_id" db:"user_id"`
	Enabled        bool   `json:"enabled" db:"reports_enabled"`
	Frequency      string `json:"frequency" db:"reports_frequency"`
	DayOfWeek      int    `json:"day_of_week" db:"reports_day_of_week"`
	HourOfDay      int    `json:"hour_of_day" db:"reports_hour_of_day"`
	RecipientEmail string `json:"recipient_email" db:"reports_email"`
	AccountEmail   string `json:"account_email" db:"account_email"`
}

// Recipient returns the effective report destination
func (c ReportConfig) Recipient() string {
	if c.RecipientEmail != "" {
		return c.RecipientEmail
	}
	return c.AccountEmail
}

// PeriodDays returns the report window length in days
func (c ReportConfig) PeriodDays() int {
	if c.Frequency == FrequencyWeekly {
		return 7
	}
	return 1
}

// AlertBatchItem is one violating hive inside a grouped alert
// notification. It only lives for a single evaluation cycle.
type AlertBatchItem struct {
	HiveName     string  `json:"hive_name"`
	ApiaryName   string  `json:"apiary_name"`
	RatioPercent float64 `json:"ratio_percent"`
	HornetAvg    float64 `json:"hornet_avg"`
	BeeAvg       float64 `json:"bee_avg"`
}

// HiveStats holds the per-hive period statistics that go into a report
type HiveStats struct {
	TempAvg      float64 `json:"temp_avg"`
	TempMin      float64 `json:"temp_min"`
	TempMax      float64 `json:"temp_max"`
	HumidityAvg  float64 `json:"humidity_avg"`
	HumidityMin  float64 `json:"humidity_min"`
	HumidityMax  float64 `json:"humidity_max"`
	BeesAvg      float64 `json:"bees_avg"`
	BeesTotal    float64 `json:"bees_total"`
	BeesMax      float64 `json:"bees_max"`
	HornetsTotal float64 `json:"hornets_total"`
	HornetsMax   float64 `json:"hornets_max"`
	Samples      int     `json:"samples"`
}

// HiveReport pairs a hive with its period statistics. Stats is nil when
// the hive produced no samples in the window; the renderer shows a
// placeholder instead of failing.
type HiveReport struct {
	Hive  HiveOverview `json:"hive"`
	Stats *HiveStats   `json:"stats,omitempty"`
}

// ReportPeriod describes the window a report covers
type ReportPeriod struct {
	Frequency   string    `json:"frequency"`
	Days        int       `json:"days"`
	GeneratedAt time.Time `json:"generated_at"`
}
