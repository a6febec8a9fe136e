package pipeline

import "github.com/irakli/algebras-go/internal/orchestrator"

// RunStatus is the terminal state of a translation run.
type RunStatus string

const (
	RunStatusSuccess        RunStatus = "Success"
	RunStatusPartialSuccess RunStatus = "Partial Success"
	RunStatusFailure        RunStatus = "Failure"
	RunStatusSkipped        RunStatus = "Skipped"
)

// Result contains structured outputs from Run.
type Result struct {
	Status RunStatus
	// Dir is the catalog directory the results were written to; empty when
	// nothing was saved.
	Dir    string
	Report *orchestrator.Report
}

func statusFromReport(report *orchestrator.Report) RunStatus {
	switch {
	case len(report.Errors) == 0 && report.Translated == 0 && report.Failed == 0:
		return RunStatusSkipped
	case len(report.Errors) == 0:
		return RunStatusSuccess
	case report.Translated > 0:
		return RunStatusPartialSuccess
	default:
		return RunStatusFailure
	}
}
