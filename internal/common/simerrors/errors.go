// Package simerrors contains the errors returned when a caller violates the contract of the simulation core.
//
// Expected rejections, e.g. scheduling a job on a machine without enough free capacity, are not errors; they are
// reported through boolean return values. The types in this package are reserved for programmer errors in the
// driver, such as navigating a dilation past its last level or indexing a machine that does not exist.
//
// If multiple errors occur in some function (e.g., when validating a spec), that function should return an
// error of type multierror.Error from package github.com/hashicorp/go-multierror that encapsulates those
// individual errors.
package simerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidArgument is a generic error to be returned on invalid argument.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string      // Name of the field referred to, e.g., "kernel"
	Value   interface{} // The invalid value that was provided
	Message string      // An optional message to include with the error message, e.g., explaining why the value is invalid
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %v is invalid for field %q", err.Value, err.Name)
	} else {
		return fmt.Sprintf("value %v is invalid for field %q; %s", err.Value, err.Name, err.Message)
	}
}

// ErrInvalidNavigation is returned when a dilation is asked to perform a transition its current state does not
// allow, e.g. expanding an already fully expanded state.
type ErrInvalidNavigation struct {
	Operation string // The attempted operation, e.g., "expand"
	State     string // Name of the state the dilator was in
	Message   string // Optional
}

func (err *ErrInvalidNavigation) Error() (s string) {
	s = fmt.Sprintf("cannot %s from state %s", err.Operation, err.State)
	if err.Message != "" {
		s = s + fmt.Sprintf("; %s", err.Message)
	}
	return
}

// ErrUnknownName is returned when a flavor, policy or operation is referred to by a name that isn't registered.
type ErrUnknownName struct {
	Type  string // e.g. "policy"
	Value string
}

func (err *ErrUnknownName) Error() string {
	return fmt.Sprintf("unknown %s %q", err.Type, err.Value)
}

// ErrUnschedulable is returned when a job demands more than an idle machine offers, so it could never leave the
// pending state. It describes a workload that doesn't suit the cluster rather than a contract violation.
type ErrUnschedulable struct {
	Job int
}

func (err *ErrUnschedulable) Error() string {
	return fmt.Sprintf("job %d does not fit on an idle machine and can never be scheduled", err.Job)
}

// IsContractViolation returns true if err, or any error in its chain, is one of the contract violations defined
// in this package.
func IsContractViolation(err error) bool {
	if err == nil {
		return false
	}
	{
		var e *ErrInvalidArgument
		if errors.As(err, &e) {
			return true
		}
	}
	{
		var e *ErrInvalidNavigation
		if errors.As(err, &e) {
			return true
		}
	}
	return false
}
