// Copyright 2021 - 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package moerr

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

const (
	// 0 - 99 is OK.  They do not contain info, and are special handled
	// using a static instance, no alloc.
	Ok              uint16 = 0
	OkStopCurrRecur uint16 = 1
	OkExpectedEOF   uint16 = 2 // Expected End Of File

	OkMax uint16 = 99

	// Group 1: Internal errors
	ErrStart    uint16 = 20100
	ErrInternal uint16 = 20101
	ErrNYI      uint16 = 20102

	// Group 2: invalid input
	ErrBadConfig           uint16 = 20300
	ErrInvalidInput        uint16 = 20301
	ErrInvalidArg          uint16 = 20302
	ErrConstructionFailure uint16 = 20303
	ErrMissingPayload      uint16 = 20305

	// Group 3: index errors
	ErrKeyNotFound  uint16 = 20400
	ErrDuplicateKey uint16 = 20401
	ErrApplyFailed  uint16 = 20402
	ErrTableFreed   uint16 = 20403

	// Group 4: unexpected state and io errors
	ErrInvalidState  uint16 = 20500
	ErrFileNotFound  uint16 = 20501
	ErrUnexpectedEOF uint16 = 20502
	ErrOutOfRange    uint16 = 20503

	// ErrEnd, the max value of MOErrorCode
	ErrEnd uint16 = 65535
)

type moErrorMsgItem struct {
	errorMsgOrFormat string
}

var errorMsgRefer = map[uint16]moErrorMsgItem{
	// OK code not in this table.

	// Group 1: Internal errors
	ErrStart:    {"internal error: error code start"},
	ErrInternal: {"internal error: %s"},
	ErrNYI:      {"%s is not yet implemented"},

	// Group 2: invalid input
	ErrBadConfig:           {"invalid configuration: %s"},
	ErrInvalidInput:        {"invalid input: %s"},
	ErrInvalidArg:          {"invalid argument %s, bad value %s"},
	ErrConstructionFailure: {"construction failure: %s"},
	ErrMissingPayload:      {"construction failure: missing payload for key %v"},

	// Group 3: index errors
	ErrKeyNotFound:  {"key %v not found"},
	ErrDuplicateKey: {"key %v already exists in the list index"},
	ErrApplyFailed:  {"apply failed at node %d: %v"},
	ErrTableFreed:   {"hash table has been released"},

	// Group 4: unexpected state or file io error
	ErrInvalidState:  {"invalid state %s"},
	ErrFileNotFound:  {"file %s is not found"},
	ErrUnexpectedEOF: {"unexpected end of file %s"},
	ErrOutOfRange:    {"out of range: %s"},

	// Group End: max value of MOErrorCode
	ErrEnd: {"internal error: end of errcode code"},
}

func newError(ctx context.Context, code uint16, args ...any) *Error {
	var err *Error
	item, has := errorMsgRefer[code]
	if !has {
		panic(NewInternalError(ctx, "not exist MOErrorCode: %d", code))
	}
	if len(args) == 0 {
		err = &Error{
			code:    code,
			message: item.errorMsgOrFormat,
		}
	} else {
		err = &Error{
			code:    code,
			message: fmt.Sprintf(item.errorMsgOrFormat, args...),
		}
	}
	return err
}

type Error struct {
	code    uint16
	message string
	detail  string
	cause   error
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Detail() string {
	return e.detail
}

func (e *Error) Display() string {
	if len(e.detail) == 0 {
		return e.message
	}
	return fmt.Sprintf("%s: %s", e.message, e.detail)
}

func (e *Error) ErrorCode() uint16 {
	return e.code
}

// Unwrap returns the error that caused e, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Succeeded() bool {
	return e.code < OkMax
}

func IsMoErrCode(e error, rc uint16) bool {
	if e == nil {
		return rc == Ok
	}

	me, ok := e.(*Error)
	if !ok {
		// This is not a moerr
		return false
	}
	return me.code == rc
}

func DowncastError(e error) *Error {
	if err, ok := e.(*Error); ok {
		return err
	}
	return newError(Context(), ErrInternal, fmt.Sprintf("downcast error failed: %v", e))
}

// ConvertPanicError converts a runtime panic to internal error.
func ConvertPanicError(ctx context.Context, v interface{}) *Error {
	if e, ok := v.(*Error); ok {
		return e
	}
	return newError(ctx, ErrInternal, fmt.Sprintf("panic %v", v))
}

// ConvertGoError converts a go error into mo error.
// Note here we must return error, because nil error
// is the same as nil *Error -- Go strangeness.
func ConvertGoError(ctx context.Context, err error) error {
	// nil is nil
	if err == nil {
		return err
	}

	// already a moerr, return it as is
	if _, ok := err.(*Error); ok {
		return err
	}

	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// if io.EOF reaches here, we believe it is not expected.
		return NewUnexpectedEOF(ctx, err.Error())
	}

	if pe, ok := err.(*os.PathError); ok && os.IsNotExist(pe) {
		return NewFileNotFound(ctx, pe.Path)
	}

	return NewInternalError(ctx, "convert go error to mo error %v", err)
}

var errOkStopCurrRecur = Error{code: OkStopCurrRecur, message: "StopCurrRecur"}
var errOkExpectedEOF = Error{code: OkExpectedEOF, message: "ExpectedEOF"}

// GetOkStopCurrRecur is returned by visitor callbacks that want to stop a
// walk early without reporting a failure.
func GetOkStopCurrRecur() *Error {
	return &errOkStopCurrRecur
}

func GetOkExpectedEOF() *Error {
	return &errOkExpectedEOF
}

func NewInternalError(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInternal, xmsg)
}

func NewNYI(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrNYI, xmsg)
}

func NewBadConfig(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrBadConfig, xmsg)
}

func NewInvalidInput(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInvalidInput, xmsg)
}

func NewInvalidArg(ctx context.Context, arg string, val any) *Error {
	return newError(ctx, ErrInvalidArg, arg, fmt.Sprintf("%v", val))
}

func NewConstructionFailure(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrConstructionFailure, xmsg)
}

// NewInvalidCapacity reports a non-positive initial table size as an
// ErrConstructionFailure.
func NewInvalidCapacity(ctx context.Context, size int) *Error {
	return NewConstructionFailure(ctx, "invalid initial capacity %d", size)
}

func NewMissingPayload(ctx context.Context, key any) *Error {
	return newError(ctx, ErrMissingPayload, key)
}

func NewKeyNotFound(ctx context.Context, key any) *Error {
	return newError(ctx, ErrKeyNotFound, key)
}

func NewDuplicateKey(ctx context.Context, key any) *Error {
	return newError(ctx, ErrDuplicateKey, key)
}

func NewApplyFailed(ctx context.Context, id int, cause error) *Error {
	err := newError(ctx, ErrApplyFailed, id, cause)
	err.cause = cause
	return err
}

func NewTableFreed(ctx context.Context) *Error {
	return newError(ctx, ErrTableFreed)
}

func NewInvalidState(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInvalidState, xmsg)
}

func NewFileNotFound(ctx context.Context, f string) *Error {
	return newError(ctx, ErrFileNotFound, f)
}

func NewUnexpectedEOF(ctx context.Context, f string) *Error {
	return newError(ctx, ErrUnexpectedEOF, f)
}

func NewOutOfRange(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrOutOfRange, xmsg)
}

var contextFunc atomic.Value

func SetContextFunc(f func() context.Context) {
	contextFunc.Store(f)
}

// Context should be trace.DefaultContext
func Context() context.Context {
	return contextFunc.Load().(func() context.Context)()
}

func init() {
	SetContextFunc(func() context.Context { return context.Background() })
}
