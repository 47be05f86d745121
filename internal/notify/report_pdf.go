// FilePath: internal/notify/report_pdf.go
package notify

import (
	"bytes"
	"fmt"

	"github.com/beeguardai/hub/internal/errors"
	"github.com/beeguardai/hub/internal/models"
	"github.com/go-pdf/fpdf"
)

// PDFRenderer builds the periodic report document: a summary table over
// all hives followed by one statistics block per hive.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) BuildReport(period models.ReportPeriod, hives []models.HiveReport) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	periodLabel := "Daily"
	if period.Frequency == models.FrequencyWeekly {
		periodLabel = "Weekly"
	}

	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(30, 41, 59)
	pdf.Cell(0, 12, "BeeGuard")
	pdf.Ln(14)
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(100, 116, 139)
	pdf.Cell(0, 8, fmt.Sprintf("%s report - %s", periodLabel, period.GeneratedAt.Format("02/01/2006")))
	pdf.Ln(16)

	if len(hives) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 8, "No hives found.")
	} else {
		r.writeSummary(pdf, hives)
		for _, hive := range hives {
			r.writeHiveBlock(pdf, hive)
		}
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(100, 116, 139)
	pdf.Cell(0, 6, "Report generated automatically by BeeGuard")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.NewInternalError("failed to render report pdf", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) writeSummary(pdf *fpdf.Fpdf, hives []models.HiveReport) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(245, 158, 11)
	pdf.Cell(0, 10, "Summary")
	pdf.Ln(12)

	widths := []float64{45, 45, 27, 27, 27}
	headers := []string{"Hive", "Apiary", "Temp. avg", "Bees", "Hornets"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(245, 158, 11)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(30, 41, 59)
	for _, hive := range hives {
		apiary := hive.Hive.ApiaryName
		if apiary == "" {
			apiary = "-"
		}
		cells := []string{hive.Hive.Name, apiary, "-", "-", "-"}
		if hive.Stats != nil {
			cells[2] = fmt.Sprintf("%.1f C", hive.Stats.TempAvg)
			cells[3] = fmt.Sprintf("%.0f", hive.Stats.BeesTotal)
			cells[4] = fmt.Sprintf("%.0f", hive.Stats.HornetsTotal)
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 8, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(8)
}

func (r *PDFRenderer) writeHiveBlock(pdf *fpdf.Fpdf, hive models.HiveReport) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(245, 158, 11)
	pdf.Cell(0, 10, hive.Hive.Name)
	pdf.Ln(10)

	if hive.Hive.ApiaryName != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(30, 41, 59)
		pdf.Cell(0, 6, "Apiary: "+hive.Hive.ApiaryName)
		pdf.Ln(8)
	}

	if hive.Stats == nil || hive.Stats.Samples == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 116, 139)
		pdf.Cell(0, 6, "No data available for this period.")
		pdf.Ln(10)
		return
	}

	stats := hive.Stats
	widths := []float64{55, 38, 38, 38}
	rows := [][]string{
		{"Metric", "Average", "Min", "Max"},
		{"Temperature", fmt.Sprintf("%.1f C", stats.TempAvg), fmt.Sprintf("%.1f C", stats.TempMin), fmt.Sprintf("%.1f C", stats.TempMax)},
		{"Humidity", fmt.Sprintf("%.0f%%", stats.HumidityAvg), fmt.Sprintf("%.0f%%", stats.HumidityMin), fmt.Sprintf("%.0f%%", stats.HumidityMax)},
		{"Bees per sample", fmt.Sprintf("%.0f", stats.BeesAvg), "-", fmt.Sprintf("%.0f", stats.BeesMax)},
		{"Hornets total", fmt.Sprintf("%.0f", stats.HornetsTotal), "-", fmt.Sprintf("%.0f", stats.HornetsMax)},
	}

	for i, row := range rows {
		if i == 0 {
			pdf.SetFont("Helvetica", "B", 9)
			pdf.SetFillColor(30, 41, 59)
			pdf.SetTextColor(255, 255, 255)
		} else {
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetTextColor(30, 41, 59)
		}
		for j, c := range row {
			pdf.CellFormat(widths[j], 7, c, "1", 0, "C", i == 0, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 116, 139)
	pdf.Cell(0, 6, fmt.Sprintf("Based on %d samples", stats.Samples))
	pdf.Ln(10)
}
