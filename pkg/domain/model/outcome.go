package model

// FaultTarget names a secondary step that failed after the authoritative
// mutation committed
type FaultTarget string

const (
	FaultTargetAlertView  FaultTarget = "alert_view"
	FaultTargetOriginView FaultTarget = "origin_view"
	FaultTargetLedger     FaultTarget = "ledger"
)

// Fault records one failed secondary step of a lifecycle operation
type Fault struct {
	Target FaultTarget
	Err    error
}

// Outcome is the result of a lifecycle entry point that got past its
// precondition checks. Hard rejections are returned as errors instead;
// an Outcome always means the authoritative step succeeded, possibly with
// secondary faults (degraded-partial-success).
type Outcome struct {
	Request *Request

	// Already marks a benign no-op, e.g. responding twice
	Already bool

	Faults []Fault
}

// Degraded reports whether any secondary step failed
func (o *Outcome) Degraded() bool {
	return len(o.Faults) > 0
}

// AddFault records a failed secondary step
func (o *Outcome) AddFault(target FaultTarget, err error) {
	o.Faults = append(o.Faults, Fault{Target: target, Err: err})
}

// HasFault reports whether the given target failed
func (o *Outcome) HasFault(target FaultTarget) bool {
	for _, f := range o.Faults {
		if f.Target == target {
			return true
		}
	}
	return false
}
