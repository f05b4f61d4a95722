package paste

import "fmt"

// Status is the terminal state of a restore or paste.
type Status string

const (
	StatusPasted       Status = "pasted"
	StatusRestoredOnly Status = "restored_only"
	StatusFailed       Status = "failed"
)

// RestoredOnlyCode says why content reached the pasteboard without being pasted.
type RestoredOnlyCode string

const (
	ReasonAutoPasteDisabled RestoredOnlyCode = "auto_paste_disabled"
	ReasonPermissionNeeded  RestoredOnlyCode = "permission_needed"
	ReasonPasteFailed       RestoredOnlyCode = "paste_failed"
)

// FailureCode says why nothing reached the pasteboard.
type FailureCode string

const (
	FailItemNotFound  FailureCode = "item_not_found"
	FailRestoreFailed FailureCode = "restore_failed"
)

// FileMissingDetail is the stable detail for a restore that hit a missing file.
const FileMissingDetail = "file_missing"

// Reason describes a restored-only result.
type Reason struct {
	Code   RestoredOnlyCode `json:"code"`
	Detail string           `json:"detail,omitempty"`
}

// Failure describes a failed result.
type Failure struct {
	Code   FailureCode `json:"code"`
	Detail string      `json:"detail,omitempty"`
}

// Result is returned by Engine.Restore and Engine.RestoreAndPaste.
type Result struct {
	Status  Status   `json:"status"`
	Reason  *Reason  `json:"reason,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
}

// Pasted is a successful synthetic paste.
func Pasted() Result {
	return Result{Status: StatusPasted}
}

// RestoredOnly is content on the pasteboard without a paste.
func RestoredOnly(code RestoredOnlyCode, detail string) Result {
	return Result{Status: StatusRestoredOnly, Reason: &Reason{Code: code, Detail: detail}}
}

// Failed is a restore that did not reach the pasteboard.
func Failed(code FailureCode, detail string) Result {
	return Result{Status: StatusFailed, Failure: &Failure{Code: code, Detail: detail}}
}

func (r Result) String() string {
	switch r.Status {
	case StatusRestoredOnly:
		if r.Reason != nil {
			return fmt.Sprintf("restored_only(%s)", withDetail(string(r.Reason.Code), r.Reason.Detail))
		}
	case StatusFailed:
		if r.Failure != nil {
			return fmt.Sprintf("failed(%s)", withDetail(string(r.Failure.Code), r.Failure.Detail))
		}
	}
	return string(r.Status)
}

func withDetail(code, detail string) string {
	if detail == "" {
		return code
	}
	return fmt.Sprintf("%s(%q)", code, detail)
}
