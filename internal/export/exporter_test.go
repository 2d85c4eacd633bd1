package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Itinerary-App/internal/domain/model"
)

func sampleItinerary() *model.Itinerary {
	return &model.Itinerary{
		ID:          "session-1",
		Destination: "Kyoto",
		Title:       "Temples & Tastes",
		Summary:     "Two relaxed days around Higashiyama.",
		Days: []model.DaySchedule{
			{
				DayIndex: 0,
				Date:     "2025-04-01",
				Summary:  "Temples in the morning, market at noon.",
				Slots: []model.TimeSlot{
					{POIID: "p1", POIName: "Kiyomizu-dera", Category: model.CategoryTemple, StartTime: "09:00", EndTime: "10:00", VisitDurationMinutes: 60, IsOptimalTime: true, Note: "Early visit to beat the crowds"},
					{POIID: "p2", POIName: "Nishiki Market", Category: model.CategoryMarket, StartTime: "10:20", EndTime: "11:50", VisitDurationMinutes: 90, TravelTimeMinutes: 20},
				},
				TotalDurationMinutes: 170,
			},
			{
				DayIndex: 1,
				Date:     "2025-04-02",
				Slots: []model.TimeSlot{
					{POIID: "p3", POIName: "Gion Sushi | Omakase", Category: model.CategoryRestaurant, StartTime: "12:00", EndTime: "13:00", VisitDurationMinutes: 60, Note: "Lunch"},
				},
				TotalDurationMinutes: 60,
			},
		},
		Budget:      model.BudgetBreakdown{Food: 40, Activities: 15, Transport: 2, Misc: 6, Total: 63, Currency: "USD", NumDays: 2},
		BudgetCheck: model.BudgetCheck{IsOverBudget: true, OverageAmount: 13, BudgetLimit: 50, EstimatedTotal: 63},
		Warnings:    []string{"Day 2 ends after 21:00"},
		Suggestions: []string{"Try a cheaper lunch"},
		GeneratedAt: time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"txt", FormatText, false},
		{"md", FormatMarkdown, false},
		{"budget-chart", FormatBudgetChart, false},
		{"docx", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestRenderJSON_RoundTrip(t *testing.T) {
	it := sampleItinerary()
	raw, err := RenderJSON(it)
	require.NoError(t, err)

	var decoded model.Itinerary
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, it.Days, decoded.Days)
	assert.Equal(t, it.Budget, decoded.Budget)
	assert.True(t, it.GeneratedAt.Equal(decoded.GeneratedAt))
	assert.Contains(t, string(raw), "Temples & Tastes", "HTMLエスケープしない")
}

func TestRenderText(t *testing.T) {
	text := RenderText(sampleItinerary())

	assert.True(t, strings.HasPrefix(text, "Temples & Tastes\n================\n"))
	assert.Contains(t, text, "Day 1 (2025-04-01)")
	assert.Contains(t, text, "  09:00-10:00  Kiyomizu-dera [Temple] - Early visit to beat the crowds\n")
	assert.Contains(t, text, "  10:20-11:50  Nishiki Market [Market] (travel 20 min)\n")
	assert.Contains(t, text, "Budget (USD)")
	assert.Contains(t, text, "Total:")
	assert.Contains(t, text, "Over budget by 13")
	assert.Contains(t, text, "Warnings:\n- Day 2 ends after 21:00\n")

	t.Run("タイトルがない場合は目的地から見出しを作る", func(t *testing.T) {
		it := sampleItinerary()
		it.Title = ""
		assert.True(t, strings.HasPrefix(RenderText(it), "Kyoto Itinerary\n"))
	})
}

func TestRenderMarkdownAndHTML(t *testing.T) {
	md := RenderMarkdown(sampleItinerary())
	assert.Contains(t, md, "# Temples & Tastes\n")
	assert.Contains(t, md, "| 12:00-13:00 | Gion Sushi \\| Omakase | Restaurant | 0 min | Lunch |")

	page, err := RenderHTML(sampleItinerary())
	require.NoError(t, err)
	html := string(page)
	assert.Contains(t, html, "<title>Temples &amp; Tastes</title>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "Nishiki Market")
	assert.True(t, strings.HasSuffix(html, "</html>\n"))
}

func TestRenderPDF(t *testing.T) {
	body, err := RenderPDF(sampleItinerary())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
}

func TestRenderBudgetChart(t *testing.T) {
	body, err := RenderBudgetChart(sampleItinerary())
	require.NoError(t, err)
	html := string(body)
	assert.Contains(t, html, "Food")
	assert.Contains(t, html, "Transport")
	assert.NotContains(t, html, "Accommodation", "0のカテゴリは含めない")
}

func TestExporter_Export(t *testing.T) {
	exp := NewExporter()

	for _, format := range SupportedFormats() {
		doc, err := exp.Export(sampleItinerary(), format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, doc.Body, format)
		assert.True(t, strings.HasPrefix(doc.FileName, "kyoto"), format)
	}

	doc, err := exp.Export(sampleItinerary(), FormatBudgetChart)
	require.NoError(t, err)
	assert.Equal(t, "kyoto-budget.html", doc.FileName)

	_, err = exp.Export(nil, FormatJSON)
	assert.Error(t, err)
	_, err = exp.Export(sampleItinerary(), Format("docx"))
	assert.Error(t, err)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "kyoto-osaka", slug("Kyoto & Osaka!"))
	assert.Equal(t, "", slug("京都"))
}
