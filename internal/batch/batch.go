// Package batch partitions resolved entries into the jobs the orchestrator
// dispatches concurrently.
package batch

import (
	"github.com/irakli/algebras-go/internal/catalog"
	"github.com/irakli/algebras-go/internal/provider"
)

// Job is one unit of concurrent dispatch: an ordered slice of units plus a
// sequential index used only for progress display.
type Job struct {
	Index int
	Units []provider.Unit
}

// Plan splits entries into contiguous jobs of at most batchSize units,
// preserving order. The last job may be smaller; zero entries yield zero
// jobs. Jobs never overlap, so merges of different jobs touch disjoint keys.
func Plan(entries []catalog.Entry, batchSize int) []Job {
	if batchSize <= 0 {
		batchSize = 1
	}

	var jobs []Job
	for start := 0; start < len(entries); start += batchSize {
		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		units := make([]provider.Unit, 0, end-start)
		for _, e := range entries[start:end] {
			units = append(units, provider.Unit{Key: e.Key, Text: e.Text})
		}
		jobs = append(jobs, Job{Index: len(jobs), Units: units})
	}
	return jobs
}
