package mocks

import (
	context "context"

	domain "impall.dev/pkg/impall/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// MockWorkflow is a mock type for the Workflow type
type MockWorkflow struct {
	mock.Mock
}

// List provides a mock function with given fields: ctx, args
func (_m *MockWorkflow) List(ctx context.Context, args domain.ListArgs) error {
	ret := _m.Called(ctx, args)

	if rf, ok := ret.Get(0).(func(context.Context, domain.ListArgs) error); ok {
		return rf(ctx, args)
	}

	return ret.Error(0)
}

// Resolve provides a mock function with given fields: ctx, args
func (_m *MockWorkflow) Resolve(ctx context.Context, args domain.ResolveArgs) error {
	ret := _m.Called(ctx, args)

	if rf, ok := ret.Get(0).(func(context.Context, domain.ResolveArgs) error); ok {
		return rf(ctx, args)
	}

	return ret.Error(0)
}

// Run provides a mock function with given fields: ctx, args
func (_m *MockWorkflow) Run(ctx context.Context, args domain.RunArgs) error {
	ret := _m.Called(ctx, args)

	if rf, ok := ret.Get(0).(func(context.Context, domain.RunArgs) error); ok {
		return rf(ctx, args)
	}

	return ret.Error(0)
}

// View provides a mock function with given fields: ctx, args
func (_m *MockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	ret := _m.Called(ctx, args)

	if rf, ok := ret.Get(0).(func(context.Context, domain.ViewArgs) error); ok {
		return rf(ctx, args)
	}

	return ret.Error(0)
}

// NewMockWorkflow creates a new instance of MockWorkflow. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	m := &MockWorkflow{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
