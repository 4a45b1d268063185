package mocks

import (
	context "context"

	domain "impall.dev/pkg/impall/internal/domain"
	mock "github.com/stretchr/testify/mock"

	model "impall.dev/pkg/impall/internal/model"
)

// MockEngine is a mock type for the Engine type
type MockEngine struct {
	mock.Mock
}

// Discover provides a mock function with given fields: ctx, cfg
func (_m *MockEngine) Discover(ctx context.Context, cfg model.Config) ([]model.Unit, error) {
	ret := _m.Called(ctx, cfg)

	var r0 []model.Unit
	if rf, ok := ret.Get(0).(func(context.Context, model.Config) []model.Unit); ok {
		r0 = rf(ctx, cfg)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Unit)
	}

	return r0, ret.Error(1)
}

// Resolver provides a mock function with given fields: cfg
func (_m *MockEngine) Resolver(cfg model.Config) domain.PathResolver {
	ret := _m.Called(cfg)

	var r0 domain.PathResolver
	if rf, ok := ret.Get(0).(func(model.Config) domain.PathResolver); ok {
		r0 = rf(cfg)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(domain.PathResolver)
	}

	return r0
}

// Run provides a mock function with given fields: ctx, cfg, progress
func (_m *MockEngine) Run(ctx context.Context, cfg model.Config, progress domain.Progress) (model.Report, error) {
	ret := _m.Called(ctx, cfg, progress)

	var r0 model.Report
	if rf, ok := ret.Get(0).(func(context.Context, model.Config, domain.Progress) model.Report); ok {
		r0 = rf(ctx, cfg, progress)
	} else {
		r0 = ret.Get(0).(model.Report)
	}

	return r0, ret.Error(1)
}

// NewMockEngine creates a new instance of MockEngine. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockEngine(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEngine {
	m := &MockEngine{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
