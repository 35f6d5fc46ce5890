package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxCellWidth caps long cells such as URLs and suggestion text
const maxCellWidth = 72

// table is a left-aligned text table. Widths are measured in terminal
// columns so wide characters in URLs or titles keep the columns aligned.
type table struct {
	header []string
	rows   [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	w := make([]int, len(t.header))
	for _, row := range append([][]string{t.header}, t.rows...) {
		for i, cell := range row {
			if i >= len(w) {
				break
			}
			if cw := runewidth.StringWidth(fit(cell)); cw > w[i] {
				w[i] = cw
			}
		}
	}
	return w
}

func (t *table) write(w *bufio.Writer) {
	widths := t.widths()
	line := func(cells []string) {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = fit(cells[i])
			}
			parts[i] = runewidth.FillRight(cell, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	line(t.header)
	rule := make([]string, len(widths))
	for i, n := range widths {
		rule[i] = strings.Repeat("-", n)
	}
	line(rule)
	for _, row := range t.rows {
		line(row)
	}
}

func fit(s string) string {
	return runewidth.Truncate(s, maxCellWidth, "...")
}

func heading(w *bufio.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", runewidth.StringWidth(title)))
}

// RenderText writes the report as plain text tables.
func RenderText(out io.Writer, v View) error {
	w := bufio.NewWriter(out)

	if !v.HasResult() {
		if v.Pending {
			fmt.Fprintln(w, "Analyzing website...")
		} else {
			fmt.Fprintln(w, "No audit result yet.")
		}
		return w.Flush()
	}

	fmt.Fprintln(w, "SEO Audit Results")
	fmt.Fprintln(w, v.URL)
	fmt.Fprintf(w, "Analyzed on %s\n", v.AnalyzedOn)
	fmt.Fprintf(w, "%s: %d/100 (%s)\n", v.ScoreCard.Title, v.ScoreCard.Score, v.ScoreCard.Grade)

	heading(w, "SEO Metrics Breakdown")
	cats := &table{header: []string{"Category", "Score"}}
	for _, c := range v.Breakdown.Categories {
		cats.add(c.Name, fmt.Sprintf("%.0f", c.Score))
	}
	cats.write(w)
	fmt.Fprintf(w, "Average Score: %d   Passing: %d/%d\n", v.Breakdown.AverageScore, v.Breakdown.Passing, v.Breakdown.Total)

	heading(w, "Key Metrics")
	tiles := &table{header: []string{"Metric", "Value"}}
	for _, t := range v.KeyMetrics {
		tiles.add(t.Label, t.Value)
	}
	tiles.write(w)

	heading(w, "Core Web Vitals")
	vitals := &table{header: []string{"Metric", "Value", "Status"}}
	for _, vt := range v.Vitals {
		vitals.add(vt.Name, vt.Display, string(vt.Status))
	}
	vitals.write(w)

	heading(w, "Technical SEO")
	checks := &table{header: []string{"Check", "Result"}}
	for _, c := range v.Checks {
		checks.add(c.Name, c.Label)
	}
	checks.write(w)
	for _, issue := range v.AccessibilityIssues {
		fmt.Fprintf(w, "! %s\n", issue)
	}

	heading(w, "Improvement Suggestions")
	sugg := &table{header: []string{"", "Suggestion", "Priority"}}
	for _, s := range v.Suggestions {
		mark := "[ ]"
		if s.Completed {
			mark = "[x]"
		}
		sugg.add(mark, s.Text, string(s.Priority))
	}
	sugg.write(w)
	fmt.Fprintf(w, "Progress: %d/%d completed\n", v.Progress.Completed, v.Progress.Total)

	if c := v.Comparison; c != nil {
		heading(w, "Competitor Analysis")
		fmt.Fprintf(w, "%s vs %s\n", c.YourURL, c.TheirURL)
		rows := &table{header: []string{"Metric", "Your Site", "Competitor", "Result"}}
		for _, r := range c.Rows {
			rows.add(r.Name, r.YoursDisplay, r.TheirsDisplay, string(r.Outcome))
		}
		rows.write(w)
		fmt.Fprintf(w, "Wins: %d  Areas to improve: %d  Ties: %d\n", c.Summary.Wins, c.Summary.Losses, c.Summary.Ties)
	}

	return w.Flush()
}
