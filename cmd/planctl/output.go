package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

var (
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// itemLine renders one planned item: name, kind, and its schedule when set.
func itemLine(it domain.PlannedItem) string {
	line := fmt.Sprintf("%s %s", it.Name(lang), gray("("+string(it.Type)+":"+string(it.ID())+")"))
	if it.Date != nil {
		when := domain.FormatDate(*it.Date)
		if it.Time != nil {
			when += " " + *it.Time
		}
		line += "  " + green(when)
	}
	if it.Pinned {
		line += " " + yellow("pinned")
	}
	return line
}

func printGroups(w io.Writer, groups []domain.Group, orphans []domain.PlannedItem) {
	for _, g := range groups {
		title := g.ID
		if g.Header != nil {
			title = g.Header.Name(lang)
			if g.Header.Date != nil {
				title += "  " + green(domain.FormatDate(*g.Header.Date))
			}
		}
		fmt.Fprintf(w, "%s\n", cyan(title))
		for _, it := range g.Items {
			fmt.Fprintf(w, "  - %s\n", itemLine(it))
		}
	}
	if len(orphans) > 0 {
		fmt.Fprintf(w, "%s\n", yellow("Not grouped"))
		for _, it := range orphans {
			fmt.Fprintf(w, "  - %s\n", itemLine(it))
		}
	}
}

type itemJSON struct {
	Type              string  `json:"type"`
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	CityIDForGrouping string  `json:"cityIdForGrouping"`
	Date              *string `json:"date,omitempty"`
	Time              *string `json:"time,omitempty"`
	Pinned            bool    `json:"pinned"`
}

func itemsJSON(items []domain.PlannedItem) []itemJSON {
	out := make([]itemJSON, 0, len(items))
	for _, it := range items {
		ij := itemJSON{
			Type:              string(it.Type),
			ID:                string(it.ID()),
			Name:              it.Name(lang),
			CityIDForGrouping: string(it.CityIDForGrouping),
			Time:              domain.CloneStringPtr(it.Time),
			Pinned:            it.Pinned,
		}
		if it.Date != nil {
			d := domain.FormatDate(*it.Date)
			ij.Date = &d
		}
		out = append(out, ij)
	}
	return out
}
