package models

import (
	"errors"
	"fmt"
)

// Error kinds. Typed errors below match these with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrTransport      = errors.New("transport failure")
	ErrNoData         = errors.New("no data")
	ErrMissingAccount = errors.New("missing account")
)

// ResolutionError reports a ticker absent from the directory
type ResolutionError struct {
	Ticker string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("ticker %q not found in company directory", e.Ticker)
}

func (e *ResolutionError) Is(target error) bool {
	return target == ErrNotFound
}

// FetchError reports a failure retrieving one account for one entity.
// Kind is ErrNotFound when the entity has no such account and ErrTransport otherwise.
type FetchError struct {
	Kind    error
	CIK     string
	Account string
	Err     error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s for CIK%s: %v", e.Account, e.CIK, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Is(target error) bool {
	return target == e.Kind
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the error marks an absent account
func (e *FetchError) NotFound() bool {
	return e.Kind == ErrNotFound
}

// NewNotFoundError builds a FetchError of kind ErrNotFound
func NewNotFoundError(cik, account string, err error) *FetchError {
	return &FetchError{Kind: ErrNotFound, CIK: cik, Account: account, Err: err}
}

// NewTransportError builds a FetchError of kind ErrTransport
func NewTransportError(cik, account string, err error) *FetchError {
	return &FetchError{Kind: ErrTransport, CIK: cik, Account: account, Err: err}
}

// MergeError reports that no input table held any data
type MergeError struct {
	Tables int
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge: none of %d account tables hold data", e.Tables)
}

func (e *MergeError) Is(target error) bool {
	return target == ErrNoData
}

// ValuationError reports canonical accounts absent from a merged table
type ValuationError struct {
	Formula string
	Missing []string
}

func (e *ValuationError) Error() string {
	return fmt.Sprintf("%s: missing required accounts %v", e.Formula, e.Missing)
}

func (e *ValuationError) Is(target error) bool {
	return target == ErrMissingAccount
}
