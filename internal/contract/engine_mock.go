package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEngine is a mock implementation of Engine for testing.
type MockEngine struct {
	mock.Mock
}

var _ Engine = &MockEngine{} // Compile-time check

// Version implements the Engine interface.
func (m *MockEngine) Version(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// Run implements the Engine interface.
func (m *MockEngine) Run(ctx context.Context, input *EngineInput) (*EngineOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*EngineOutput)
	return out, args.Error(1)
}
