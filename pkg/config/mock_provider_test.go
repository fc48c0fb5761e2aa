package config

import (
	"reflect"

	"go.uber.org/mock/gomock"
)

// MockConfigProvider is a hand-written stand-in for what `mockgen`
// would generate for ConfigProvider: ConfigManager's only collaborator
// that is a genuine interface rather than a concrete struct, so it is
// the one place in this package worth a gomock double instead of a
// real on-disk fixture.
type MockConfigProvider struct {
	ctrl     *gomock.Controller
	recorder *MockConfigProviderMockRecorder
}

type MockConfigProviderMockRecorder struct {
	mock *MockConfigProvider
}

func NewMockConfigProvider(ctrl *gomock.Controller) *MockConfigProvider {
	m := &MockConfigProvider{ctrl: ctrl}
	m.recorder = &MockConfigProviderMockRecorder{m}
	return m
}

func (m *MockConfigProvider) EXPECT() *MockConfigProviderMockRecorder {
	return m.recorder
}

func (m *MockConfigProvider) Start() error {
	ret := m.ctrl.Call(m, "Start")
	err, _ := ret[0].(error)
	return err
}

func (mr *MockConfigProviderMockRecorder) Start() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Start", reflect.TypeOf((*MockConfigProvider)(nil).Start))
}

func (m *MockConfigProvider) Stop() {
	m.ctrl.Call(m, "Stop")
}

func (mr *MockConfigProviderMockRecorder) Stop() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Stop", reflect.TypeOf((*MockConfigProvider)(nil).Stop))
}

func (m *MockConfigProvider) OnConfigChange(callback func(*Config) error) {
	m.ctrl.Call(m, "OnConfigChange", callback)
}

func (mr *MockConfigProviderMockRecorder) OnConfigChange(callback interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "OnConfigChange", reflect.TypeOf((*MockConfigProvider)(nil).OnConfigChange), callback)
}

func (m *MockConfigProvider) Reload() error {
	ret := m.ctrl.Call(m, "Reload")
	err, _ := ret[0].(error)
	return err
}

func (mr *MockConfigProviderMockRecorder) Reload() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Reload", reflect.TypeOf((*MockConfigProvider)(nil).Reload))
}
