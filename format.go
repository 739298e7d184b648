package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReportItem is one selected item with its resources.
type ReportItem struct {
	Name     string   `json:"name" yaml:"name"`
	Requires []string `json:"requires" yaml:"requires"`
}

// ReportStats is the search breakdown included in a report.
type ReportStats struct {
	Popped          int   `json:"popped" yaml:"popped"`
	Expanded        int   `json:"expanded" yaml:"expanded"`
	PrunedForbidden int   `json:"prunedForbidden" yaml:"prunedForbidden"`
	PrunedCount     int   `json:"prunedCount" yaml:"prunedCount"`
	PrunedSingleton int   `json:"prunedSingleton" yaml:"prunedSingleton"`
	Improvements    int   `json:"improvements" yaml:"improvements"`
	Filtered        int   `json:"filtered" yaml:"filtered"`
	ElapsedMs       int64 `json:"elapsedMs" yaml:"elapsedMs"`
}

// RunReport is the presentation view of a Result.
type RunReport struct {
	RunID     string       `json:"runId" yaml:"runId"`
	Budget    int          `json:"budget" yaml:"budget"`
	Size      int          `json:"size" yaml:"size"`
	Complete  bool         `json:"complete" yaml:"complete"`
	Items     []ReportItem `json:"items" yaml:"items"`
	Resources []string     `json:"resources" yaml:"resources"`
	Stats     ReportStats  `json:"stats" yaml:"stats"`
}

// NewRunReport resolves the indices of r back to names through u.
func NewRunReport(runID string, r Result, u *Universe) RunReport {
	rep := RunReport{
		RunID:     runID,
		Budget:    r.Budget,
		Size:      r.Size,
		Complete:  r.Complete,
		Items:     make([]ReportItem, len(r.Items)),
		Resources: u.Names(r.Load),
		Stats: ReportStats{
			Popped:          r.Stats.Popped,
			Expanded:        r.Stats.Expanded,
			PrunedForbidden: r.Stats.PrunedForbidden,
			PrunedCount:     r.Stats.PrunedCount,
			PrunedSingleton: r.Stats.PrunedSingleton,
			Improvements:    r.Stats.Improvements,
			Filtered:        r.Stats.Filtered,
			ElapsedMs:       r.Stats.Elapsed.Milliseconds(),
		},
	}
	if rep.Resources == nil {
		rep.Resources = []string{}
	}
	for i, it := range r.Items {
		rep.Items[i] = ReportItem{Name: it.Name, Requires: u.Names(it.Requires)}
	}
	return rep
}

// RenderText renders a report for a terminal.
func RenderText(rep RunReport) string {
	var b strings.Builder

	state := "search complete"
	if !rep.Complete {
		state = "search stopped early"
	}
	fmt.Fprintf(&b, "%d items for %d resources (%d used, %s)\n",
		rep.Size, rep.Budget, len(rep.Resources), state)
	for _, it := range rep.Items {
		fmt.Fprintf(&b, "  %s: %s\n", it.Name, strings.Join(it.Requires, ", "))
	}
	if len(rep.Resources) > 0 {
		fmt.Fprintf(&b, "resources: %s\n", strings.Join(rep.Resources, ", "))
	}
	return b.String()
}

// WriteReport writes rep to w in the given format.
func WriteReport(w io.Writer, rep RunReport, format string) error {
	switch format {
	case FormatText:
		_, err := io.WriteString(w, RenderText(rep))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown report format %q", format)
}
