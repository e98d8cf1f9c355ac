package entity

import (
	"errors"
	"fmt"
)

type FaultKind string

const (
	TransportFault     FaultKind = "transport_fault"
	MalformedDecision  FaultKind = "malformed_decision"
	InvalidAction      FaultKind = "invalid_action"
	ExecutionFault     FaultKind = "execution_fault"
	SafetyLimitReached FaultKind = "safety_limit_reached"
)

var ErrNoStructuredObject = errors.New("no structured object found in response")

type Fault struct {
	Kind FaultKind
	Role Role
	Err  error
}

func NewFault(kind FaultKind, role Role, err error) *Fault {
	return &Fault{Kind: kind, Role: role, Err: err}
}

func (f *Fault) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %s", f.Role, f.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", f.Role, f.Kind, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// KindOf returns the fault kind carried by err, or "" when err is not a Fault.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
