package core_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/orrn/printbridge/internal/core"
)

// MockStore implements core.JobStore
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Insert(ctx context.Context, job *core.PrintJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockStore) Get(ctx context.Context, id string) (*core.PrintJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.PrintJob), args.Error(1)
}
