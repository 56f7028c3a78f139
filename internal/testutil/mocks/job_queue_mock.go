package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/mariana/studydeck/internal/worker"
)

// MockJobQueue is a mock implementation of worker.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) Submit(job worker.Job) {
	m.Called(job)
}

func (m *MockJobQueue) TrySubmit(job worker.Job) bool {
	args := m.Called(job)
	return args.Bool(0)
}
