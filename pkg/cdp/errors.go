package cdp

import (
	"errors"

	"github.com/notifyhub/opencdp-go/internal/domain"
)

// Code classifies a failed call to the CDP.
type Code string

const (
	CodeCDP             Code = "CDP_ERROR"
	CodeEmailSendFailed Code = "EMAIL_SEND_FAILED"
	CodePushSendFailed  Code = "PUSH_SEND_FAILED"
	CodeSmsSendFailed   Code = "SMS_SEND_FAILED"
)

// Sentinels for errors.Is. Every *Error matches exactly one of them.
var (
	ErrCDP       = errors.New("cdp request failed")
	ErrEmailSend = errors.New("email send failed")
	ErrPushSend  = errors.New("push send failed")
	ErrSmsSend   = errors.New("sms send failed")
)

// ErrSecondary is matched by dual-write failures returned when
// FailOnException is on.
var ErrSecondary = domain.ErrSecondary

// ErrorSummary describes a failed request: the transport error message, the
// HTTP status and the server's own message (or "[truncated]").
type ErrorSummary struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Data    string `json:"data"`
}

// Error is returned for transport and remote API failures when
// FailOnException is on.
type Error struct {
	Code    Code
	Status  int
	Message string
	Summary ErrorSummary
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == e.Code.sentinel()
}

func (c Code) sentinel() error {
	switch c {
	case CodeEmailSendFailed:
		return ErrEmailSend
	case CodePushSendFailed:
		return ErrPushSend
	case CodeSmsSendFailed:
		return ErrSmsSend
	}
	return ErrCDP
}

func codeFor(op domain.Operation) Code {
	switch op {
	case domain.OpSendEmail:
		return CodeEmailSendFailed
	case domain.OpSendPush:
		return CodePushSendFailed
	case domain.OpSendSms:
		return CodeSmsSendFailed
	}
	return CodeCDP
}
