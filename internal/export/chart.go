package export

import (
	"bytes"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"Itinerary-App/internal/domain/model"
)

// RenderBudgetChart は費用内訳を円グラフのHTMLページにする（0のカテゴリは省略）
func RenderBudgetChart(itinerary *model.Itinerary) ([]byte, error) {
	budget := itinerary.Budget
	data := make([]opts.PieData, 0, 5)
	for _, line := range []struct {
		name  string
		value float64
	}{
		{"Food", budget.Food},
		{"Activities", budget.Activities},
		{"Transport", budget.Transport},
		{"Accommodation", budget.Accommodation},
		{"Misc", budget.Misc},
	} {
		if line.value <= 0 {
			continue
		}
		data = append(data, opts.PieData{Name: line.name, Value: line.value})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: displayTitle(itinerary),
			Width:     "800px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    budgetHeading(itinerary),
			Subtitle: "Total " + money(budget.Total),
		}),
	)
	pie.AddSeries("Budget", data).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Formatter: "{b}: {c}",
		}))

	var buf bytes.Buffer
	if err := pie.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
