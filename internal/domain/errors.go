package domain

import "errors"

// Kind 业务错误类别，由传输层统一映射为响应码
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindStorage
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "error"
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error       { return &Error{Kind: KindValidation, Msg: msg} }
func Unauthorized(msg string) error     { return &Error{Kind: KindAuth, Msg: msg} }
func Forbidden(msg string) error        { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) error         { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) error         { return &Error{Kind: KindConflict, Msg: msg} }
func Storage(msg string, err error) error { return &Error{Kind: KindStorage, Msg: msg, Err: err} }

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
