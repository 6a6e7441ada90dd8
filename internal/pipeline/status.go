package pipeline

import "medvision/internal/domain"

// RunOutcome classifies a processing run explicitly instead of inferring
// the state from counts at every call site.
type RunOutcome int

const (
	RunInProgress RunOutcome = iota
	RunAllSucceeded
	RunPartialFailure
	RunAllFailed
)

// Outcome derives the run classification from the batch list. Zero batches
// and any non-terminal batch both classify as in progress; a run is all
// failed only when the list is non-empty and every batch failed.
func Outcome(batches []domain.ImageBatch) RunOutcome {
	if len(batches) == 0 {
		return RunInProgress
	}

	failed := 0
	for _, b := range batches {
		switch b.Status {
		case domain.BatchFailed:
			failed++
		case domain.BatchCompleted:
		default:
			return RunInProgress
		}
	}

	switch failed {
	case len(batches):
		return RunAllFailed
	case 0:
		return RunAllSucceeded
	default:
		return RunPartialFailure
	}
}

// WireState maps the outcome to the status string carried in responses.
// A partial failure still reports completed; callers inspect the per-batch
// results for detail.
func (o RunOutcome) WireState() string {
	switch o {
	case RunAllSucceeded, RunPartialFailure:
		return domain.StateCompleted
	case RunAllFailed:
		return domain.StateFailed
	default:
		return domain.StateProcessing
	}
}

// SuccessfulBatches returns the batches that completed with a response.
func SuccessfulBatches(batches []domain.ImageBatch) []domain.ImageBatch {
	var out []domain.ImageBatch
	for _, b := range batches {
		if b.Status == domain.BatchCompleted && b.Response != "" {
			out = append(out, b)
		}
	}
	return out
}

// FailedBatches returns the batches that ended in failure.
func FailedBatches(batches []domain.ImageBatch) []domain.ImageBatch {
	var out []domain.ImageBatch
	for _, b := range batches {
		if b.Status == domain.BatchFailed {
			out = append(out, b)
		}
	}
	return out
}

// CountImages sums the images across all batches.
func CountImages(batches []domain.ImageBatch) int {
	total := 0
	for _, b := range batches {
		total += len(b.Images)
	}
	return total
}
