// Package report persists simulation results: a raw stats.json plus a
// plain-text performance analysis per run. Graphical rendering is out of
// scope; external tooling consumes the JSON.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/relaymesh/dtnsim/core"
)

type Analyzer struct {
	// Dir is the root results directory; each run gets a subdirectory.
	Dir string
}

func NewAnalyzer(dir string) *Analyzer {
	return &Analyzer{Dir: dir}
}

// Analyze writes stats.json and analysis.txt for one run and returns the
// run's output directory.
func (a *Analyzer) Analyze(rec core.StatsRecord, runId string) (string, error) {
	if runId == "" {
		runId = time.Now().Format("20060102_150405")
	}
	dir := filepath.Join(a.Dir, runId)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", err
	}

	raw, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return "", err
	}
	err = os.WriteFile(filepath.Join(dir, "stats.json"), raw, 0644)
	if err != nil {
		return "", err
	}

	err = os.WriteFile(filepath.Join(dir, "analysis.txt"), []byte(Summarize(rec)), 0644)
	if err != nil {
		return "", err
	}
	return dir, nil
}

// Summarize renders the record as a human-readable analysis report.
func Summarize(rec core.StatsRecord) string {
	var b strings.Builder
	section := func(title string) {
		fmt.Fprintf(&b, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
	}

	fmt.Fprintf(&b, "DTN Performance Analysis\n========================\n")
	fmt.Fprintf(&b, "Bundle: %s (%s -> %s)\n", rec.Bundle, rec.Source, rec.Destination)
	fmt.Fprintf(&b, "Timestamp: %s\n", rec.FinishedAt.Format("2006-01-02 15:04:05"))

	section("Outcome")
	if rec.Status == core.StatusDelivered {
		fmt.Fprintf(&b, "- Status: %s\n", rec.Status)
	} else {
		fmt.Fprintf(&b, "- Status: %s (%s)\n", rec.Status, rec.Reason)
	}
	attempts := rec.TotalRetransmissions + 1
	fmt.Fprintf(&b, "- Transmission Attempts: %d\n", attempts)
	fmt.Fprintf(&b, "- Total Retransmissions: %d\n", rec.TotalRetransmissions)
	fmt.Fprintf(&b, "- Disruptions Handled: %d\n", rec.Disruptions)

	section("Delay Analysis")
	fmt.Fprintf(&b, "- Total Delay: %.1f seconds (%.1f minutes)\n", rec.TotalDelay, rec.TotalDelay/60)
	if rec.Hops > 0 {
		fmt.Fprintf(&b, "- Average Delay per Hop: %.2f seconds\n", rec.TotalDelay/float64(rec.Hops))
	}
	fmt.Fprintf(&b, "- Path Length: %d hops\n", rec.Hops)

	section("Storage Utilization")
	fmt.Fprintf(&b, "- Maximum Stored Bundles: %d\n", rec.MaxStoredBundles)
	fmt.Fprintf(&b, "- Total Storage Events: %d\n", rec.StorageEvents)

	section("Path Analysis")
	fmt.Fprintf(&b, "- Paths Attempted: %d/%d\n", rec.PathsAttempted, rec.TotalAvailablePaths)
	fmt.Fprintf(&b, "- Final Path: %s\n", joinPath(rec.FinalPath))
	fmt.Fprintf(&b, "- Disrupted Links: %v\n", rec.DisruptedLinks)
	for _, attempt := range rec.PathHistory {
		fmt.Fprintf(&b, "- Attempt %d: %s (%s)\n", attempt.Attempt, joinPath(attempt.Path), attempt.Status)
	}
	return b.String()
}

func joinPath[T ~string](hops []T) string {
	parts := make([]string, 0, len(hops))
	for _, h := range hops {
		parts = append(parts, string(h))
	}
	return strings.Join(parts, " -> ")
}
