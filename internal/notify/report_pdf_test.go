package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beeguardai/hub/internal/models"
)

func testPeriod() models.ReportPeriod {
	return models.ReportPeriod{
		Frequency:   models.FrequencyWeekly,
		Days:        7,
		GeneratedAt: time.Date(2026, 5, 12, 8, 0, 0, 0, time.UTC),
	}
}

func TestPDFRenderer_BuildReport(t *testing.T) {
	r := NewPDFRenderer()

	document, err := r.BuildReport(testPeriod(), []models.HiveReport{
		{
			Hive: models.HiveOverview{ID: "h1", Name: "Hive One", ApiaryName: "North Field"},
			Stats: &models.HiveStats{
				TempAvg: 34.2, TempMin: 28.1, TempMax: 39.0,
				HumidityAvg: 60.5, HumidityMin: 48.0, HumidityMax: 72.3,
				BeesAvg: 110, BeesTotal: 18480, BeesMax: 240,
				HornetsTotal: 35, HornetsMax: 6,
				Samples: 168,
			},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, document)
	assert.Equal(t, "%PDF", string(document[:4]))
}

func TestPDFRenderer_HiveWithoutData(t *testing.T) {
	r := NewPDFRenderer()

	document, err := r.BuildReport(testPeriod(), []models.HiveReport{
		{Hive: models.HiveOverview{ID: "h1", Name: "Hive One"}},
		{Hive: models.HiveOverview{ID: "h2", Name: "Hive Two"}, Stats: &models.HiveStats{}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, document)
}

func TestPDFRenderer_EmptyHiveList(t *testing.T) {
	r := NewPDFRenderer()

	document, err := r.BuildReport(testPeriod(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, document)
}
