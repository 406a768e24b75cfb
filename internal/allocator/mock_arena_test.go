// Hand-written in the shape MockGen produces for the arena interface
// in internal/allocator/arena.go.

package allocator

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockArena is a mock of the arena interface.
type MockArena struct {
	ctrl     *gomock.Controller
	recorder *MockArenaMockRecorder
}

// MockArenaMockRecorder is the mock recorder for MockArena.
type MockArenaMockRecorder struct {
	mock *MockArena
}

// NewMockArena creates a new mock instance.
func NewMockArena(ctrl *gomock.Controller) *MockArena {
	mock := &MockArena{ctrl: ctrl}
	mock.recorder = &MockArenaMockRecorder{mock}

	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockArena) EXPECT() *MockArenaMockRecorder {
	return m.recorder
}

func (m *MockArena) grow(n uintptr) (uintptr, bool) {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "grow", n)
	ret0, _ := ret[0].(uintptr)
	ret1, _ := ret[1].(bool)

	return ret0, ret1
}

func (mr *MockArenaMockRecorder) grow(n interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "grow", reflect.TypeOf((*MockArena)(nil).grow), n)
}

func (m *MockArena) low() uintptr {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "low")
	ret0, _ := ret[0].(uintptr)

	return ret0
}

func (mr *MockArenaMockRecorder) low() *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "low", reflect.TypeOf((*MockArena)(nil).low))
}

func (m *MockArena) high() uintptr {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "high")
	ret0, _ := ret[0].(uintptr)

	return ret0
}

func (mr *MockArenaMockRecorder) high() *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "high", reflect.TypeOf((*MockArena)(nil).high))
}

func (m *MockArena) bytes() []byte {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "bytes")
	ret0, _ := ret[0].([]byte)

	return ret0
}

func (mr *MockArenaMockRecorder) bytes() *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "bytes", reflect.TypeOf((*MockArena)(nil).bytes))
}
