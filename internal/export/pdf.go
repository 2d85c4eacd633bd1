package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"Itinerary-App/internal/domain/model"
)

// RenderPDF は旅程をA4のPDFにする（コアフォントのためcp1252に変換して出力）
func RenderPDF(itinerary *model.Itinerary) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(displayTitle(itinerary), true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(0, 9, tr(displayTitle(itinerary)), "", "L", false)
	if itinerary.Summary != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr(itinerary.Summary), "", "L", false)
	}
	pdf.Ln(4)

	colWidths := []float64{28, 82, 30, 40}
	for _, day := range itinerary.Days {
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 8, tr(dayHeading(day)), "", 1, "L", false, 0, "")
		if day.Summary != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, tr(day.Summary), "", "L", false)
		}

		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, header := range []string{"Time", "Place", "Category", "Note"} {
			pdf.CellFormat(colWidths[i], 6, header, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, slot := range day.Slots {
			cells := []string{
				slot.StartTime + "-" + slot.EndTime,
				slot.POIName,
				model.GetCategoryDisplayName(slot.Category),
				slot.Note,
			}
			for i, cell := range cells {
				pdf.CellFormat(colWidths[i], 6, truncate(tr(cell), 48), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, tr(budgetHeading(itinerary)), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, line := range budgetLines(itinerary.Budget) {
		pdf.CellFormat(50, 6, line.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, line.amount, "", 1, "R", false, 0, "")
	}
	if itinerary.BudgetCheck.IsOverBudget {
		pdf.SetTextColor(180, 0, 0)
		pdf.CellFormat(0, 6, fmt.Sprintf("Over budget by %s", money(itinerary.BudgetCheck.OverageAmount)), "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	for _, section := range []struct {
		heading string
		items   []string
	}{
		{"Warnings", itinerary.Warnings},
		{"Suggestions", itinerary.Suggestions},
	} {
		if len(section.items) == 0 {
			continue
		}
		pdf.Ln(3)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, section.heading, "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, item := range section.items {
			pdf.MultiCell(0, 5, tr("- "+item), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
