package core

import (
	"errors"
	"fmt"
)

// ErrKind is the category of a domain error. Callers branch on it with
// errors.Is against the Err* sentinels.
type ErrKind int

const (
	KindUnknown ErrKind = iota
	KindInvalidDIDDoc
	KindInvalidAgencyResponse
	KindInvalidJSON
	KindNotReady
	KindConnectionNotCompleted
	KindInvalidHandle
	KindInvalidState
	KindInvalidVerkey
	KindInvalidOption
	KindInvalidWallet
	KindPostMessageFailed
)

var kindNames = map[ErrKind]string{
	KindUnknown:                "unknown error",
	KindInvalidDIDDoc:          "invalid DIDDoc",
	KindInvalidAgencyResponse:  "invalid agency response",
	KindInvalidJSON:            "invalid JSON",
	KindNotReady:               "object not ready",
	KindConnectionNotCompleted: "connection not completed",
	KindInvalidHandle:          "invalid handle",
	KindInvalidState:           "invalid state",
	KindInvalidVerkey:          "invalid verkey",
	KindInvalidOption:          "invalid option",
	KindInvalidWallet:          "invalid wallet",
	KindPostMessageFailed:      "post message failed",
}

func (k ErrKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

// Sentinels for errors.Is. They carry no message of their own.
var (
	ErrInvalidDIDDoc          = &Error{Kind: KindInvalidDIDDoc}
	ErrInvalidAgencyResponse  = &Error{Kind: KindInvalidAgencyResponse}
	ErrInvalidJSON            = &Error{Kind: KindInvalidJSON}
	ErrNotReady               = &Error{Kind: KindNotReady}
	ErrConnectionNotCompleted = &Error{Kind: KindConnectionNotCompleted}
	ErrInvalidHandle          = &Error{Kind: KindInvalidHandle}
	ErrInvalidState           = &Error{Kind: KindInvalidState}
	ErrInvalidVerkey          = &Error{Kind: KindInvalidVerkey}
	ErrInvalidOption          = &Error{Kind: KindInvalidOption}
	ErrInvalidWallet          = &Error{Kind: KindInvalidWallet}
	ErrPostMessageFailed      = &Error{Kind: KindPostMessageFailed}
)

// Error is a typed domain error. Two Errors match in errors.Is when their
// kinds are the same.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error
}

// Errorf builds a new Error of the kind.
func Errorf(kind ErrKind, format string, a ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, a...)}
}

// Wrap makes err an Error of the kind. Nil error stays nil.
func Wrap(kind ErrKind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first Error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
