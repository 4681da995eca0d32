package customer

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockTableStore struct {
	mock.Mock
}

func (_m *MockTableStore) Load(ctx context.Context) ([]Customer, error) {
	ret := _m.Called(ctx)

	var r0 []Customer
	if rf, ok := ret.Get(0).(func(context.Context) []Customer); ok {
		r0 = rf(ctx)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockTableStore) Save(ctx context.Context, rows []Customer) error {
	ret := _m.Called(ctx, rows)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, []Customer) error); ok {
		r0 = rf(ctx, rows)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}
