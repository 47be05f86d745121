// FilePath: internal/models/models.reading.go
package models

import "time"

// Reading is one timestamped sensor sample for a hive. Readings are
// append-only: written once on ingestion, never mutated.
type Reading struct {
	ID            string    `json:"id" db:"id"`
	HiveID        string    `json:"hive_id" db:"hive_id"`
	TenantID      string    `json:"tenant_id" db:"tenant_id"`
	HornetCount   int       `json:"hornet_count" db:"hornet_count"`
	BeeCount      int       `json:"bee_count" db:"bee_count"`
	Temperature   float64   `json:"temperature" db:"temperature"`
	Humidity      float64   `json:"humidity" db:"humidity"`
	Luminosity    int       `json:"luminosity" db:"luminosity"` // 0 = night, 1 = day
	BeeState      string    `json:"bee_state" db:"bee_state"`
	AcousticState string    `json:"acoustic_state" db:"acoustic_state"`
	Timestamp     time.Time `json:"timestamp" db:"timestamp"`
}

// Window is a time range for aggregation queries: either a trailing
// duration relative to now, or an absolute [Start, End) range.
type Window struct {
	Trailing time.Duration
	Start    time.Time
	End      time.Time
}

// TrailingWindow returns a window covering the last d before now
func TrailingWindow(d time.Duration) Window {
	return Window{Trailing: d}
}

// AbsoluteWindow returns a fixed [start, end) window
func AbsoluteWindow(start, end time.Time) Window {
	return Window{Start: start, End: end}
}

// Bounds resolves the window against a reference time
func (w Window) Bounds(now time.Time) (start, end time.Time) {
	if w.Trailing > 0 {
		return now.Add(-w.Trailing), now
	}
	return w.Start, w.End
}

// AggFunc selects the aggregation applied to each field in a window
type AggFunc string

const (
	AggLast  AggFunc = "last"
	AggMean  AggFunc = "mean"
	AggSum   AggFunc = "sum"
	AggMin   AggFunc = "min"
	AggMax   AggFunc = "max"
	AggCount AggFunc = "count"
)

// Aggregatable field names accepted by the time-series store
const (
	FieldHornetCount = "hornet_count"
	FieldBeeCount    = "bee_count"
	FieldTemperature = "temperature"
	FieldHumidity    = "humidity"
	FieldLuminosity  = "luminosity"
)
