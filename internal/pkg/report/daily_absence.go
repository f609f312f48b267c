package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// AbsenceLine is one absence of one worker in the printed report.
type AbsenceLine struct {
	Kind    string
	Portion string
	Source  string
}

type WorkerLines struct {
	Worker   string
	Absences []AbsenceLine
}

// DailyAbsence is the content of a one-page absence sheet for a date.
type DailyAbsence struct {
	Company   string
	Date      string
	GlobalDay string
	Workers   []WorkerLines
}

// RenderDailyAbsencePDF lays the sheet out on A4 portrait and returns the
// PDF bytes.
func RenderDailyAbsencePDF(in DailyAbsence) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Absences %s", in.Date), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	title := "Daily absence report"
	if in.Company != "" {
		title = in.Company + " - " + title
	}
	pdf.Cell(0, 10, title)
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, "Date: "+in.Date)
	pdf.Ln(8)
	if in.GlobalDay != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Company-wide: "+strings.ToUpper(in.GlobalDay))
		pdf.Ln(8)
	}
	pdf.Ln(4)

	if len(in.Workers) == 0 {
		pdf.SetFont("Arial", "I", 12)
		pdf.Cell(0, 8, "Everybody is available.")
		pdf.Ln(8)
		return output(pdf)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(60, 8, "Worker", "1", 0, "L", true, 0, "")
	pdf.CellFormat(45, 8, "Reason", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Part of day", "1", 0, "L", true, 0, "")
	pdf.CellFormat(35, 8, "Source", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, w := range in.Workers {
		for i, a := range w.Absences {
			name := ""
			if i == 0 {
				name = w.Worker
			}
			pdf.CellFormat(60, 7, name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(45, 7, humanize(a.Kind), "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 7, humanize(a.Portion), "1", 0, "L", false, 0, "")
			pdf.CellFormat(35, 7, humanize(a.Source), "1", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Workers absent: %d", len(in.Workers)))
	pdf.Ln(8)

	return output(pdf)
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// humanize turns "full_day" into "Full day".
func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
