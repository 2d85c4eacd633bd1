package export

import (
	"fmt"
	"strings"

	"Itinerary-App/internal/domain/model"
)

// RenderText は旅程をプレーンテキストにする
func RenderText(itinerary *model.Itinerary) string {
	var b strings.Builder
	title := displayTitle(itinerary)
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len([]rune(title))) + "\n")
	if itinerary.Summary != "" {
		b.WriteString(itinerary.Summary + "\n")
	}

	for _, day := range itinerary.Days {
		fmt.Fprintf(&b, "\n%s\n", dayHeading(day))
		if day.Summary != "" {
			fmt.Fprintf(&b, "  %s\n", day.Summary)
		}
		for _, slot := range day.Slots {
			fmt.Fprintf(&b, "  %s-%s  %s [%s]", slot.StartTime, slot.EndTime, slot.POIName, model.GetCategoryDisplayName(slot.Category))
			if slot.TravelTimeMinutes > 0 {
				fmt.Fprintf(&b, " (travel %d min)", slot.TravelTimeMinutes)
			}
			if slot.Note != "" {
				fmt.Fprintf(&b, " - %s", slot.Note)
			}
			b.WriteString("\n")
		}
		if day.RestBreakCount > 0 {
			fmt.Fprintf(&b, "  Rest breaks: %d\n", day.RestBreakCount)
		}
	}

	b.WriteString("\n" + budgetHeading(itinerary) + "\n")
	for _, line := range budgetLines(itinerary.Budget) {
		fmt.Fprintf(&b, "  %-14s %s\n", line.label+":", line.amount)
	}
	if itinerary.BudgetCheck.IsOverBudget {
		fmt.Fprintf(&b, "  Over budget by %s\n", money(itinerary.BudgetCheck.OverageAmount))
	}

	writeList(&b, "Warnings", itinerary.Warnings, "- ")
	writeList(&b, "Suggestions", itinerary.Suggestions, "- ")
	return b.String()
}

// RenderMarkdown は旅程をMarkdownにする
func RenderMarkdown(itinerary *model.Itinerary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", displayTitle(itinerary))
	if itinerary.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", itinerary.Summary)
	}

	for _, day := range itinerary.Days {
		fmt.Fprintf(&b, "## %s\n\n", dayHeading(day))
		if day.Summary != "" {
			fmt.Fprintf(&b, "_%s_\n\n", day.Summary)
		}
		b.WriteString("| Time | Place | Category | Travel | Note |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, slot := range day.Slots {
			fmt.Fprintf(&b, "| %s-%s | %s | %s | %d min | %s |\n",
				slot.StartTime, slot.EndTime, escapeCell(slot.POIName), model.GetCategoryDisplayName(slot.Category),
				slot.TravelTimeMinutes, escapeCell(slot.Note))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## %s\n\n", budgetHeading(itinerary))
	b.WriteString("| Item | Amount |\n|---|---|\n")
	for _, line := range budgetLines(itinerary.Budget) {
		fmt.Fprintf(&b, "| %s | %s |\n", line.label, line.amount)
	}
	if itinerary.BudgetCheck.IsOverBudget {
		fmt.Fprintf(&b, "\n**Over budget by %s**\n", money(itinerary.BudgetCheck.OverageAmount))
	}

	if len(itinerary.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range itinerary.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	if len(itinerary.Suggestions) > 0 {
		b.WriteString("\n## Suggestions\n\n")
		for _, s := range itinerary.Suggestions {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	return b.String()
}

type budgetLine struct {
	label  string
	amount string
}

func budgetLines(budget model.BudgetBreakdown) []budgetLine {
	return []budgetLine{
		{"Food", money(budget.Food)},
		{"Activities", money(budget.Activities)},
		{"Transport", money(budget.Transport)},
		{"Accommodation", money(budget.Accommodation)},
		{"Misc", money(budget.Misc)},
		{"Total", money(budget.Total)},
	}
}

func budgetHeading(itinerary *model.Itinerary) string {
	if itinerary.Budget.Currency == "" {
		return "Budget"
	}
	return fmt.Sprintf("Budget (%s)", itinerary.Budget.Currency)
}

func dayHeading(day model.DaySchedule) string {
	if day.Date == "" {
		return fmt.Sprintf("Day %d", day.DayIndex+1)
	}
	return fmt.Sprintf("Day %d (%s)", day.DayIndex+1, day.Date)
}

func money(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func writeList(b *strings.Builder, heading string, items []string, bullet string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "%s%s\n", bullet, item)
	}
}
