package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowBounds(t *testing.T) {
	now := time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)

	start, end := TrailingWindow(time.Hour).Bounds(now)
	assert.Equal(t, now.Add(-time.Hour), start)
	assert.Equal(t, now, end)

	absStart := now.Add(-48 * time.Hour)
	start, end = AbsoluteWindow(absStart, now).Bounds(now.Add(time.Minute))
	assert.Equal(t, absStart, start)
	assert.Equal(t, now, end)
}

func TestAlertConfigRecipient(t *testing.T) {
	cfg := AlertConfig{RecipientEmail: "alerts@example.com", AccountEmail: "me@example.com"}
	assert.Equal(t, "alerts@example.com", cfg.Recipient())

	cfg.RecipientEmail = ""
	assert.Equal(t, "me@example.com", cfg.Recipient())

	cfg.AccountEmail = ""
	assert.Equal(t, "", cfg.Recipient())
}

func TestReportConfigPeriodDays(t *testing.T) {
	assert.Equal(t, 7, ReportConfig{Frequency: FrequencyWeekly}.PeriodDays())
	assert.Equal(t, 1, ReportConfig{Frequency: FrequencyDaily}.PeriodDays())
	assert.Equal(t, 1, ReportConfig{}.PeriodDays())
}
