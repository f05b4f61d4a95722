package capture

import (
	"fmt"

	"github.com/hpungsan/pastedock/internal/clip"
)

// Outcome is the terminal state of one capture.
type Outcome string

const (
	OutcomeSaved   Outcome = "saved"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// SkipReason explains a policy skip. Skips are decisions, not errors.
type SkipReason string

const (
	SkipExcludedApp      SkipReason = "excluded_app"
	SkipSensitiveContent SkipReason = "sensitive_content"
	SkipDuplicate        SkipReason = "duplicate"
)

// FailureCode classifies a failed capture.
type FailureCode string

const (
	FailInvalidInput     FailureCode = "invalid_input"
	FailStoreWriteFailed FailureCode = "store_write_failed"
	FailRetentionFailed  FailureCode = "retention_failed"
)

// Failure carries a failure code and, for store errors, the error text.
type Failure struct {
	Code   FailureCode `json:"code"`
	Detail string      `json:"detail,omitempty"`
}

func (f Failure) String() string {
	if f.Detail == "" {
		return string(f.Code)
	}
	return fmt.Sprintf("%s(%s)", f.Code, f.Detail)
}

// Decision is the result of Pipeline.Process.
type Decision struct {
	Outcome Outcome
	Item    *clip.Item
	Skip    SkipReason
	Failure *Failure
}

// Saved reports a stored item.
func Saved(it *clip.Item) Decision {
	return Decision{Outcome: OutcomeSaved, Item: it}
}

// Skipped reports a policy skip.
func Skipped(reason SkipReason) Decision {
	return Decision{Outcome: OutcomeSkipped, Skip: reason}
}

// Failed reports a failure.
func Failed(code FailureCode, detail string) Decision {
	return Decision{Outcome: OutcomeFailed, Failure: &Failure{Code: code, Detail: detail}}
}

// Reason returns the skip reason or failure code, or "" when saved.
func (d Decision) Reason() string {
	switch d.Outcome {
	case OutcomeSkipped:
		return string(d.Skip)
	case OutcomeFailed:
		if d.Failure != nil {
			return string(d.Failure.Code)
		}
	}
	return ""
}

func (d Decision) String() string {
	switch d.Outcome {
	case OutcomeSaved:
		if d.Item != nil {
			return "saved(" + d.Item.ID + ")"
		}
	case OutcomeSkipped:
		return "skipped(" + string(d.Skip) + ")"
	case OutcomeFailed:
		if d.Failure != nil {
			return "failed(" + d.Failure.String() + ")"
		}
	}
	return string(d.Outcome)
}
