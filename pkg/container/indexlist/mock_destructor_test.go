// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package indexlist

import (
	reflect "reflect"

	gomock "github.com/golang/mock/gomock"
)

// MockItemDestructor is a mock of Destructor[*item].
type MockItemDestructor struct {
	ctrl     *gomock.Controller
	recorder *MockItemDestructorMockRecorder
}

// MockItemDestructorMockRecorder is the mock recorder for MockItemDestructor.
type MockItemDestructorMockRecorder struct {
	mock *MockItemDestructor
}

// NewMockItemDestructor creates a new mock instance.
func NewMockItemDestructor(ctrl *gomock.Controller) *MockItemDestructor {
	mock := &MockItemDestructor{ctrl: ctrl}
	mock.recorder = &MockItemDestructorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockItemDestructor) EXPECT() *MockItemDestructorMockRecorder {
	return m.recorder
}

// Release mocks base method.
func (m *MockItemDestructor) Release(payload *item) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Release", payload)
}

// Release indicates an expected call of Release.
func (mr *MockItemDestructorMockRecorder) Release(payload interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Release", reflect.TypeOf((*MockItemDestructor)(nil).Release), payload)
}
