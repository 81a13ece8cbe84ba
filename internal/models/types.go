package models

// OutcomeStatus is the terminal status reported for a dispatched scan.
// The zero value means the scan is still pending.
type OutcomeStatus string

const (
	OutcomePending   OutcomeStatus = ""
	OutcomeCompleted OutcomeStatus = "completed"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeError     OutcomeStatus = "error"
)

// IsTerminal reports whether the status ends the scan lifecycle.
func (s OutcomeStatus) IsTerminal() bool {
	return s != OutcomePending
}

// RecordStatus is the status string stored with a historical scan record.
// Values other than completed and failed are treated as in progress.
type RecordStatus string

const (
	RecordCompleted RecordStatus = "completed"
	RecordFailed    RecordStatus = "failed"
	RecordPending   RecordStatus = "pending"
	RecordRunning   RecordStatus = "running"
)

// Indicator is the coarse visual state a status renders as.
type Indicator int

const (
	IndicatorInProgress Indicator = iota
	IndicatorSuccess
	IndicatorFailure
)

func (i Indicator) String() string {
	switch i {
	case IndicatorSuccess:
		return "success"
	case IndicatorFailure:
		return "failure"
	default:
		return "in-progress"
	}
}

// Indicator maps a record status to its display indicator. Unknown values
// are never errors; they render as in progress.
func (s RecordStatus) Indicator() Indicator {
	switch s {
	case RecordCompleted:
		return IndicatorSuccess
	case RecordFailed:
		return IndicatorFailure
	default:
		return IndicatorInProgress
	}
}

// Indicator maps an outcome status to its display indicator. Unlike records,
// a synthesized error outcome is shown as a failure.
func (s OutcomeStatus) Indicator() Indicator {
	switch s {
	case OutcomeCompleted:
		return IndicatorSuccess
	case OutcomeFailed, OutcomeError:
		return IndicatorFailure
	default:
		return IndicatorInProgress
	}
}
