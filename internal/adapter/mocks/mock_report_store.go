package mocks

import (
	mock "github.com/stretchr/testify/mock"

	model "impall.dev/pkg/impall/internal/model"
)

// MockReportStore is a mock type for the ReportStore type
type MockReportStore struct {
	mock.Mock
}

// LoadReport provides a mock function with given fields: path
func (_m *MockReportStore) LoadReport(path model.Path) (model.SavedReport, error) {
	ret := _m.Called(path)

	var r0 model.SavedReport
	if rf, ok := ret.Get(0).(func(model.Path) model.SavedReport); ok {
		r0 = rf(path)
	} else {
		r0 = ret.Get(0).(model.SavedReport)
	}

	return r0, ret.Error(1)
}

// SaveReport provides a mock function with given fields: path, report
func (_m *MockReportStore) SaveReport(path model.Path, report model.SavedReport) error {
	ret := _m.Called(path, report)

	if rf, ok := ret.Get(0).(func(model.Path, model.SavedReport) error); ok {
		return rf(path, report)
	}

	return ret.Error(0)
}

// NewMockReportStore creates a new instance of MockReportStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockReportStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockReportStore {
	m := &MockReportStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
