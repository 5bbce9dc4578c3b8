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

func NewInternalErrorNoCtx(msg string, args ...any) *Error {
	return NewInternalError(Context(), msg, args...)
}

func NewBadConfigNoCtx(msg string, args ...any) *Error {
	return NewBadConfig(Context(), msg, args...)
}

func NewInvalidInputNoCtx(msg string, args ...any) *Error {
	return NewInvalidInput(Context(), msg, args...)
}

func NewInvalidArgNoCtx(arg string, val any) *Error {
	return NewInvalidArg(Context(), arg, val)
}

func NewInvalidCapacityNoCtx(size int) *Error {
	return NewInvalidCapacity(Context(), size)
}

func NewMissingPayloadNoCtx(key any) *Error {
	return NewMissingPayload(Context(), key)
}

func NewKeyNotFoundNoCtx(key any) *Error {
	return NewKeyNotFound(Context(), key)
}

func NewDuplicateKeyNoCtx(key any) *Error {
	return NewDuplicateKey(Context(), key)
}

func NewInvalidStateNoCtx(msg string, args ...any) *Error {
	return NewInvalidState(Context(), msg, args...)
}

func NewOutOfRangeNoCtx(msg string, args ...any) *Error {
	return NewOutOfRange(Context(), msg, args...)
}

func NewConstructionFailureNoCtx(msg string, args ...any) *Error {
	return NewConstructionFailure(Context(), msg, args...)
}

func NewTableFreedNoCtx() *Error {
	return NewTableFreed(Context())
}

func NewApplyFailedNoCtx(id int, cause error) *Error {
	return NewApplyFailed(Context(), id, cause)
}

func NewFileNotFoundNoCtx(f string) *Error {
	return NewFileNotFound(Context(), f)
}
