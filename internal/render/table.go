// Package render formats impact reports for terminal output.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/blastradius/internal/impact"
)

// severityColor maps tiers to their terminal style.
func severityColor(s impact.Severity) color.Color {
	switch s {
	case impact.SeverityCritical:
		return color.Red
	case impact.SeverityHigh:
		return color.Yellow
	case impact.SeverityMedium:
		return color.Cyan
	default:
		return color.Green
	}
}

// Report writes a human-readable rendering of one analysis.
func Report(w io.Writer, report *impact.Report) {
	fmt.Fprintf(w, "Impact analysis %s\n", report.AnalysisID)
	fmt.Fprintf(w, "Target: %s (%s)  modification: %s  depth: %s\n",
		report.Target.Path, report.Target.Type,
		report.Config.Modification, report.Config.Depth)
	fmt.Fprintln(w)

	if len(report.Affected) == 0 {
		fmt.Fprintln(w, color.Green.Sprint("No affected components detected."))
	} else {
		renderAffected(w, report.Affected)
	}
	fmt.Fprintln(w)

	renderStatistics(w, report)
	fmt.Fprintln(w)
	renderRecommendations(w, report.Recommendations)

	if report.Truncated {
		fmt.Fprintln(w)
		fmt.Fprintln(w, color.Yellow.Sprint("Warning: traversal hit the node cap; results are truncated."))
	}
	if report.Incomplete {
		fmt.Fprintln(w)
		fmt.Fprintln(w, color.Yellow.Sprint("Warning: analysis was cancelled; results are incomplete."))
	}
}

func renderAffected(w io.Writer, entries []impact.Entry) {
	headers := []string{"SEVERITY", "SCORE", "DEPTH", "KIND", "COMPONENT", "PRIMARY REASON"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := []string{
			string(e.Severity),
			fmt.Sprintf("%.1f", e.Score),
			fmt.Sprintf("%d", e.Depth),
			string(e.Kind),
			e.AssetID,
			e.PrimaryReason,
		}
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
		rows = append(rows, row)
	}

	var b strings.Builder
	for i, h := range headers {
		b.WriteString(runewidth.FillRight(h, widths[i]+2))
	}
	fmt.Fprintln(w, color.Bold.Sprint(strings.TrimRight(b.String(), " ")))

	for idx, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			line.WriteString(runewidth.FillRight(cell, widths[i]+2))
		}
		fmt.Fprintln(w, severityColor(entries[idx].Severity).Sprint(strings.TrimRight(line.String(), " ")))
	}
}

func renderStatistics(w io.Writer, report *impact.Report) {
	s := report.Statistics
	fmt.Fprintln(w, color.Bold.Sprint("Statistics"))
	fmt.Fprintf(w, "  total affected:     %d\n", s.TotalComponents)
	fmt.Fprintf(w, "  direct dependents:  %d\n", s.DirectDependents)
	fmt.Fprintf(w, "  high impact:        %d\n", s.HighImpactComponents)
	fmt.Fprintf(w, "  medium impact:      %d\n", s.MediumImpactComponents)
	fmt.Fprintf(w, "  low impact:         %d\n", s.LowImpactComponents)
}

func renderRecommendations(w io.Writer, recs []impact.Recommendation) {
	fmt.Fprintln(w, color.Bold.Sprint("Recommendations"))
	for _, r := range recs {
		marker := "-"
		if r.Blocking {
			marker = "!"
		}
		fmt.Fprintf(w, "  %s [%s] %s: %s\n",
			marker, severityColor(r.Priority).Sprint(string(r.Priority)), r.Action, r.Detail)
		for _, p := range r.SamplePaths {
			fmt.Fprintf(w, "      %s\n", p)
		}
	}
}
