package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"mealwheel/storage"
)

type historyColumn struct {
	title string
	width int
	value func(storage.RunRecord) string
}

var historyColumns = []historyColumn{
	{"When", 16, func(r storage.RunRecord) string { return r.StartedAt.Local().Format("2006-01-02 15:04") }},
	{"User", 14, func(r storage.RunRecord) string { return r.UserName }},
	{"Model", 22, func(r storage.RunRecord) string { return r.Provider + "/" + r.Model }},
	{"Result", 0, func(r storage.RunRecord) string {
		if !r.Succeeded() {
			return "error: " + r.Error
		}
		return fmt.Sprintf("%s (of %d)", r.Selected, r.MainDishCount)
	}},
}

// RenderHistory formats runs as a fixed-width table. The last column takes
// whatever is left of width. Cells are measured in terminal cells, so dish
// names with wide characters line up.
func RenderHistory(runs []storage.RunRecord, width int) string {
	if len(runs) == 0 {
		return DimStyle.Render("No runs recorded yet.") + "\n"
	}

	fixed := 0
	for _, col := range historyColumns[:len(historyColumns)-1] {
		fixed += col.width + 2
	}
	last := width - fixed
	if last < 20 {
		last = 20
	}

	var sb strings.Builder
	writeRow := func(cells []string, render func(string) string) {
		var line strings.Builder
		for i, col := range historyColumns {
			w := col.width
			if i == len(historyColumns)-1 {
				w = last
			}
			cell := runewidth.Truncate(cells[i], w, "…")
			if i < len(historyColumns)-1 {
				cell = runewidth.FillRight(cell, w) + "  "
			}
			line.WriteString(cell)
		}
		sb.WriteString(render(line.String()))
		sb.WriteString("\n")
	}

	titles := make([]string, len(historyColumns))
	for i, col := range historyColumns {
		titles[i] = col.title
	}
	writeRow(titles, TitleStyle.Render)

	for _, run := range runs {
		cells := make([]string, len(historyColumns))
		for i, col := range historyColumns {
			cells[i] = col.value(run)
		}
		render := SelectedStyle.Render
		if !run.Succeeded() {
			render = ErrorStyle.Render
		}
		writeRow(cells, render)
	}

	return sb.String()
}
