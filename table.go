package main

import (
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newCardTable(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(header)
	return tw
}

// renderProbe lists what tcard learned about inputFile.
func renderProbe(inputFile string, w MediaWindow) string {
	tw := newCardTable(table.Row{"Field", "Value"})
	trim := "no"
	if w.NeedsTrim() {
		trim = "yes"
	}
	tw.AppendRows([]table.Row{
		{"File", inputFile},
		{"Kind", MediaKindOf(inputFile).String()},
		{"Duration", formatClock(w.Duration)},
		{"Window", formatClock(w.Start) + " - " + formatClock(w.End)},
		{"Needs trim", trim},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Field", Colors: text.Colors{text.Bold}},
	})
	return tw.Render()
}

// renderRecent lists history entries, newest first as stored.
func renderRecent(entries []HistoryEntry) string {
	tw := newCardTable(table.Row{"File", "Caption", "User", "Style", "Window", "Updated"})
	for _, e := range entries {
		window := "-"
		if e.End > e.Start {
			window = formatClock(e.Start) + " - " + formatClock(e.End)
		}
		updated := "-"
		if !e.UpdatedAt.IsZero() {
			updated = e.UpdatedAt.Local().Format(time.DateTime)
		}
		tw.AppendRow(table.Row{
			filepath.Base(e.Path),
			e.Card.Caption,
			e.Card.Handle(),
			e.Card.StyleName(),
			window,
			updated,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Caption", WidthMax: 32},
		{Name: "Window", Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
