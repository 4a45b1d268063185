package mocks

import (
	context "context"

	mock "github.com/stretchr/testify/mock"

	model "impall.dev/pkg/impall/internal/model"
)

// MockWatcher is a mock type for the Watcher type
type MockWatcher struct {
	mock.Mock
}

// Watch provides a mock function with given fields: ctx, roots, layout, onChange
func (_m *MockWatcher) Watch(ctx context.Context, roots []model.Path, layout model.Layout, onChange func(context.Context, []model.Path)) error {
	ret := _m.Called(ctx, roots, layout, onChange)

	if rf, ok := ret.Get(0).(func(context.Context, []model.Path, model.Layout, func(context.Context, []model.Path)) error); ok {
		return rf(ctx, roots, layout, onChange)
	}

	return ret.Error(0)
}

// NewMockWatcher creates a new instance of MockWatcher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockWatcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWatcher {
	m := &MockWatcher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
