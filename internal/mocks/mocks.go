package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/nutrichat/backend/internal/service"
)

// MockAdvisorService is a mock implementation of the IAdvisorService interface
type MockAdvisorService struct {
	mock.Mock
}

func (m *MockAdvisorService) Answer(ctx context.Context, condition, query string) service.AdviceResult {
	args := m.Called(ctx, condition, query)
	return args.Get(0).(service.AdviceResult)
}

func (m *MockAdvisorService) Conditions() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *MockAdvisorService) Records() int {
	args := m.Called()
	return args.Int(0)
}

// MockGenerationBackend is a mock implementation of the GenerationBackend interface
type MockGenerationBackend struct {
	mock.Mock
}

func (m *MockGenerationBackend) Complete(ctx context.Context, prompt string, cfg service.GenerationConfig) (string, error) {
	args := m.Called(ctx, prompt, cfg)
	return args.String(0), args.Error(1)
}

func (m *MockGenerationBackend) Ready(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockGenerationBackend) Name() string {
	args := m.Called()
	return args.String(0)
}
