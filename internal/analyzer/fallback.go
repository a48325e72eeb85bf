package analyzer

import (
	"fmt"

	"github.com/fpang/place-analyzer/internal/media"
)

// FallbackState describes how much of the requested media survived.
type FallbackState string

const (
	// StateNormal: every attempted image survived, or none were requested.
	StateNormal FallbackState = "normal"
	// StatePartialMediaFailure: some images failed; analysis continues with
	// the survivors under a confidence penalty.
	StatePartialMediaFailure FallbackState = "partial_media_failure"
	// StateTotalMediaFailure: every image failed; analysis degrades to
	// text only.
	StateTotalMediaFailure FallbackState = "total_media_failure"
)

// FallbackOutcome is the assessment of one media batch.
type FallbackOutcome struct {
	State   FallbackState
	Penalty float64
	Reason  string
}

// maxPartialPenalty caps the confidence cost of partial media failures so a
// noisy batch cannot zero out an otherwise solid result.
const maxPartialPenalty = 0.3

// assessFallback maps the batch outcome to a fallback state. Each failed
// image costs 0.1 confidence, capped at maxPartialPenalty. A fully failed
// batch carries no penalty of its own; the missing image bonus and the
// degraded flag already reflect it.
func assessFallback(batch media.BatchResult) FallbackOutcome {
	failed := len(batch.Failures)
	switch {
	case batch.Attempted == 0 || failed == 0:
		return FallbackOutcome{State: StateNormal}
	case batch.AllFailed():
		return FallbackOutcome{
			State:  StateTotalMediaFailure,
			Reason: fmt.Sprintf("all %d images failed, analyzing text only", batch.Attempted),
		}
	default:
		penalty := float64(failed) * 0.1
		if penalty > maxPartialPenalty {
			penalty = maxPartialPenalty
		}
		return FallbackOutcome{
			State:   StatePartialMediaFailure,
			Penalty: penalty,
			Reason:  fmt.Sprintf("%d of %d images failed", failed, batch.Attempted),
		}
	}
}
