// Package fault carries the error taxonomy shared by the marketplace operations.
//
// Every error surfaced by a coordinator or tracker can be classified with KindOf.
// Validation and AlreadyInProgress errors are produced locally and never reach the
// ledger or the content store.
package fault

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Unknown             Kind = ""
	RejectedByUser      Kind = "RejectedByUser"
	LedgerRejected      Kind = "LedgerRejected"
	NetworkError        Kind = "NetworkError"
	UploadFailed        Kind = "UploadFailed"
	MetadataUnavailable Kind = "MetadataUnavailable"
	ValidationError     Kind = "ValidationError"
	AlreadyInProgress   Kind = "AlreadyInProgress"
	FeeRateUnknown      Kind = "FeeRateUnknown"
)

var (
	ErrMissingAsset = New(ValidationError, "missing asset: upload the asset before minting")
	ErrEmptyInput   = New(ValidationError, "empty input")
	ErrInvalidPrice = New(ValidationError, "invalid price: must be greater than zero")
	ErrInvalidToken = New(ValidationError, "invalid token id")
	ErrInProgress   = New(AlreadyInProgress, "a transaction is already in progress")
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
	}

	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind. An err that is already classified keeps its kind.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}

	var fe *Error
	if errors.As(err, &fe) {
		return err
	}

	return &Error{Kind: kind, Err: err}
}

func Wrapf(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}

	return Unknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Local reports whether err was raised before any remote call was attempted.
func Local(err error) bool {
	switch KindOf(err) {
	case ValidationError, AlreadyInProgress:
		return true
	}

	return false
}
