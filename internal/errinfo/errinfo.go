package errinfo

import "fmt"

// ErrorInfo is the structured error payload surfaced to the host UI.
type ErrorInfo struct {
	ErrorCode string   `json:"error_code"`
	Phase     string   `json:"phase,omitempty"`
	Kind      string   `json:"kind,omitempty"`
	Target    string   `json:"target,omitempty"`
	Retryable bool     `json:"retryable"`
	Actions   []string `json:"actions,omitempty"`
	Detail    string   `json:"detail,omitempty"`
}

const (
	CodeInvalidTarget     = "INVALID_TARGET"
	CodeUnsupportedAction = "UNSUPPORTED_ACTION"
	CodeInvalidPayload    = "INVALID_PAYLOAD"
	CodeHostAPIFailure    = "HOST_API_FAILURE"
	CodeUndoCaptureFailed = "UNDO_CAPTURE_FAILED"
	CodeNothingToUndo     = "NOTHING_TO_UNDO"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeFileReadFailed    = "FILE_READ_FAILED"
	CodeFileWriteFailed   = "FILE_WRITE_FAILED"
	CodeNoWorkbook        = "NO_WORKBOOK_OPEN"
)

const (
	ActionRetry   = "retry"
	ActionDismiss = "dismiss"
)

const (
	PhaseSession  = "session"
	PhaseProposal = "proposal"
	PhaseApply    = "apply"
	PhaseUndo     = "undo"
	PhaseSettings = "settings"
)

// Error makes ErrorInfo usable as a plain error inside the engine while the
// RPC layer keeps the structured form.
func (e *ErrorInfo) Error() string {
	if e.Detail == "" {
		return e.ErrorCode
	}
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Detail)
}

func (e *ErrorInfo) WithAction(kind, target string) *ErrorInfo {
	out := *e
	out.Kind = kind
	out.Target = target
	return &out
}

func InvalidTarget(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeInvalidTarget,
		Phase:     phase,
		Retryable: false,
		Detail:    detail,
	}
}

func UnsupportedAction(phase, kind string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeUnsupportedAction,
		Phase:     phase,
		Kind:      kind,
		Retryable: false,
	}
}

func InvalidPayload(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeInvalidPayload,
		Phase:     phase,
		Retryable: false,
		Detail:    detail,
	}
}

func HostAPIFailure(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeHostAPIFailure,
		Phase:     phase,
		Retryable: true,
		Actions:   []string{ActionRetry},
		Detail:    detail,
	}
}

func UndoCaptureFailed(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeUndoCaptureFailed,
		Phase:     phase,
		Retryable: false,
		Detail:    detail,
	}
}

func NothingToUndo() *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeNothingToUndo,
		Phase:     PhaseUndo,
		Retryable: false,
		Actions:   []string{ActionDismiss},
	}
}

func ValidationFailed(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeValidationFailed,
		Phase:     phase,
		Retryable: false,
		Detail:    detail,
	}
}

func FileReadFailed(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeFileReadFailed,
		Phase:     phase,
		Retryable: false,
		Detail:    detail,
	}
}

func FileWriteFailed(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeFileWriteFailed,
		Phase:     phase,
		Retryable: false,
		Detail:    detail,
	}
}

func NoWorkbook(phase string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeNoWorkbook,
		Phase:     phase,
		Retryable: false,
	}
}
