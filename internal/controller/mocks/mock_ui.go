package mocks

import (
	context "context"

	controller "impall.dev/pkg/impall/internal/controller"
	mock "github.com/stretchr/testify/mock"

	model "impall.dev/pkg/impall/internal/model"
)

// MockUI is a mock type for the UI type
type MockUI struct {
	mock.Mock
}

// Close provides a mock function with given fields: ctx
func (_m *MockUI) Close(ctx context.Context) {
	_m.Called(ctx)
}

// DisplayChanges provides a mock function with given fields: ctx, changed
func (_m *MockUI) DisplayChanges(ctx context.Context, changed []model.Path) {
	_m.Called(ctx, changed)
}

// DisplayReport provides a mock function with given fields: ctx, report, rec, diff
func (_m *MockUI) DisplayReport(ctx context.Context, report model.Report, rec model.Reconciliation, diff string) error {
	ret := _m.Called(ctx, report, rec, diff)

	return ret.Error(0)
}

// DisplayResolution provides a mock function with given fields: ctx, path, root, name
func (_m *MockUI) DisplayResolution(ctx context.Context, path model.Path, root model.Path, name string) error {
	ret := _m.Called(ctx, path, root, name)

	return ret.Error(0)
}

// DisplayRunInfo provides a mock function with given fields: ctx, runID, cfg
func (_m *MockUI) DisplayRunInfo(ctx context.Context, runID string, cfg model.Config) {
	_m.Called(ctx, runID, cfg)
}

// DisplaySavedReport provides a mock function with given fields: ctx, saved
func (_m *MockUI) DisplaySavedReport(ctx context.Context, saved model.SavedReport) error {
	ret := _m.Called(ctx, saved)

	return ret.Error(0)
}

// DisplayUnits provides a mock function with given fields: ctx, units
func (_m *MockUI) DisplayUnits(ctx context.Context, units []model.Unit) error {
	ret := _m.Called(ctx, units)

	return ret.Error(0)
}

// Start provides a mock function with given fields: ctx, options
func (_m *MockUI) Start(ctx context.Context, options ...controller.StartOption) error {
	_va := make([]interface{}, len(options))
	for _i := range options {
		_va[_i] = options[_i]
	}

	var _ca []interface{}
	_ca = append(_ca, ctx)
	_ca = append(_ca, _va...)
	ret := _m.Called(_ca...)

	return ret.Error(0)
}

// UnitFinished provides a mock function with given fields: result
func (_m *MockUI) UnitFinished(result model.Result) {
	_m.Called(result)
}

// UnitStarted provides a mock function with given fields: unit
func (_m *MockUI) UnitStarted(unit model.Unit) {
	_m.Called(unit)
}

// NewMockUI creates a new instance of MockUI. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockUI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUI {
	m := &MockUI{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
